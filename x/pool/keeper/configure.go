package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/openalpha/poolparty/x/pool/types"
)

// SetConfigurator binds the oracle-resolved owner of the pool's identity as
// the sole account allowed to configure, complete, kick, release and claim
// from the vendor. The sender pays the authorization fee, forwarded to the
// registry owner.
func (k *Keeper) SetConfigurator(ctx context.Context, sender, poolID, configurator string) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	pool := k.GetPool(sdkCtx, poolID)
	if pool == nil {
		return types.ErrPoolNotFound
	}
	senderAddr, err := sdk.AccAddressFromBech32(sender)
	if err != nil {
		return types.ErrInvalidArgument.Wrap("invalid sender address")
	}
	if _, err := sdk.AccAddressFromBech32(configurator); err != nil {
		return types.ErrInvalidArgument.Wrap("invalid configurator address")
	}

	if err := pool.SetConfigurator(configurator, sdkCtx.BlockTime().Unix()); err != nil {
		return err
	}

	owner, err := k.registryOwner(sdkCtx)
	if err != nil {
		return err
	}
	coins := sdk.NewCoins(sdk.NewCoin(types.FundsDenom, types.AuthorizationFee))
	if err := k.bankKeeper.SendCoins(sdkCtx, senderAddr, owner, coins); err != nil {
		return err
	}

	k.SetPool(sdkCtx, pool)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"pool_configurator_set",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("configurator", configurator),
			sdk.NewAttribute("fee_paid", types.AuthorizationFee.String()),
		),
	)

	k.logger.Info("Configurator authorized",
		"pool_id", poolID,
		"configurator", configurator,
	)
	return nil
}

// Configure stores the sale-integration configuration. Configurator-only;
// does not change phase.
func (k *Keeper) Configure(ctx context.Context, configurator, poolID string, cfg types.SaleConfig) (*types.Pool, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	pool := k.GetPool(sdkCtx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	if pool.AuthorizedConfigurator == "" || configurator != pool.AuthorizedConfigurator {
		return nil, types.ErrUnauthorized
	}
	if _, err := sdk.AccAddressFromBech32(cfg.SaleTarget); err != nil {
		return nil, types.ErrInvalidArgument.Wrap("invalid sale target address")
	}

	if err := pool.Configure(cfg, sdkCtx.BlockTime().Unix()); err != nil {
		return nil, err
	}
	k.SetPool(sdkCtx, pool)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"pool_configured",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("sale_target", cfg.SaleTarget),
			sdk.NewAttribute("token_denom", cfg.TokenDenom),
			sdk.NewAttribute("public_price", cfg.PublicPrice.String()),
			sdk.NewAttribute("group_price", cfg.GroupPrice.String()),
			sdk.NewAttribute("actual_discount_percent", pool.ActualDiscountPercent().String()),
		),
	)

	k.logger.Info("Pool configured",
		"pool_id", poolID,
		"sale_target", cfg.SaleTarget,
		"actual_discount", pool.ActualDiscountPercent().String(),
	)
	return pool, nil
}

// CompleteConfiguration verifies the discount gate and starts the due
// diligence clock.
func (k *Keeper) CompleteConfiguration(ctx context.Context, configurator, poolID string) (*types.Pool, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	pool := k.GetPool(sdkCtx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	if pool.AuthorizedConfigurator == "" || configurator != pool.AuthorizedConfigurator {
		return nil, types.ErrUnauthorized
	}

	before := pool.Phase
	if err := pool.CompleteConfiguration(sdkCtx.BlockTime().Unix()); err != nil {
		return nil, err
	}
	k.SetPool(sdkCtx, pool)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"pool_due_diligence",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("started_at", math.NewInt(pool.DueDiligenceStartTime).String()),
			sdk.NewAttribute("duration_secs", math.NewInt(pool.DueDiligenceDuration).String()),
		),
	)
	k.emitPhaseChange(sdkCtx, pool, before)

	k.logger.Info("Configuration complete, due diligence started",
		"pool_id", poolID,
		"duration_secs", pool.DueDiligenceDuration,
	)
	return pool, nil
}

// StartReview transitions DueDiligence -> InReview once the waiting period
// has elapsed.
func (k *Keeper) StartReview(ctx context.Context, configurator, poolID string) (*types.Pool, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	pool := k.GetPool(sdkCtx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	if pool.AuthorizedConfigurator == "" || configurator != pool.AuthorizedConfigurator {
		return nil, types.ErrUnauthorized
	}

	before := pool.Phase
	if err := pool.StartReview(sdkCtx.BlockTime().Unix()); err != nil {
		return nil, err
	}
	k.SetPool(sdkCtx, pool)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"pool_in_review",
			sdk.NewAttribute("pool_id", poolID),
		),
	)
	k.emitPhaseChange(sdkCtx, pool, before)

	k.logger.Info("Review period started", "pool_id", poolID)
	return pool, nil
}
