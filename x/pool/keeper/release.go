package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/openalpha/poolparty/x/pool/types"
)

// ReleaseFunds pays the pool's escrow plus subsidy into the external sale.
// The configurator must attach exactly subsidy + fee; the fee goes to the
// registry owner. The released flag and contribution snapshot are committed
// before the external buy call.
func (k *Keeper) ReleaseFunds(ctx context.Context, configurator, poolID string, attached math.Int) (subsidy, fee, tokensDelivered math.Int, pool *types.Pool, err error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	zero := math.ZeroInt()

	pool = k.GetPool(sdkCtx, poolID)
	if pool == nil {
		return zero, zero, zero, nil, types.ErrPoolNotFound
	}
	if pool.AuthorizedConfigurator == "" || configurator != pool.AuthorizedConfigurator {
		return zero, zero, zero, nil, types.ErrUnauthorized
	}
	configuratorAddr, err := sdk.AccAddressFromBech32(configurator)
	if err != nil {
		return zero, zero, zero, nil, types.ErrInvalidArgument.Wrap("invalid configurator address")
	}

	now := sdkCtx.BlockTime().Unix()
	before := pool.Phase
	subsidy, fee, err = pool.BeginRelease(attached, now)
	if err != nil {
		return zero, zero, zero, nil, err
	}

	// Collect the attached subsidy + fee into escrow.
	if attached.IsPositive() {
		coins := sdk.NewCoins(sdk.NewCoin(types.FundsDenom, attached))
		if err := k.bankKeeper.SendCoinsFromAccountToModule(sdkCtx, configuratorAddr, types.ModuleName, coins); err != nil {
			return zero, zero, zero, nil, err
		}
	}

	// Fee to the registry owner.
	if fee.IsPositive() {
		owner, err := k.registryOwner(sdkCtx)
		if err != nil {
			return zero, zero, zero, nil, err
		}
		coins := sdk.NewCoins(sdk.NewCoin(types.FundsDenom, fee))
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(sdkCtx, types.ModuleName, owner, coins); err != nil {
			return zero, zero, zero, nil, err
		}
	}

	// Everything else goes to the sale: contributions plus subsidy.
	saleValue := pool.TotalContributedAtRelease.Add(subsidy)
	tokensDelivered = math.ZeroInt()
	if saleValue.IsPositive() || pool.Sale.BuySelector != types.NoSelector {
		tokensDelivered, err = k.gateway.Buy(sdkCtx, pool, saleValue)
		if err != nil {
			k.collector.RecordSaleCall(pool.Sale.BuySelector, "error")
			return zero, zero, zero, nil, err
		}
		k.collector.RecordSaleCall(pool.Sale.BuySelector, "ok")
	}

	// All funds have left the pool; the snapshot confirms a zero balance in
	// the happy path.
	pool.FinishRelease(tokensDelivered, math.ZeroInt(), now)
	k.SetPool(sdkCtx, pool)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"pool_funds_released",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("total_released", saleValue.String()),
			sdk.NewAttribute("subsidy", subsidy.String()),
			sdk.NewAttribute("fee", fee.String()),
			sdk.NewAttribute("tokens_delivered", tokensDelivered.String()),
			sdk.NewAttribute("phase", pool.Phase.String()),
		),
	)
	k.emitPhaseChange(sdkCtx, pool, before)
	k.collector.RecordRelease(poolID, weiFloat(saleValue), weiFloat(subsidy), weiFloat(fee))

	k.logger.Info("Funds released to sale",
		"pool_id", poolID,
		"total_released", saleValue.String(),
		"subsidy", subsidy.String(),
		"fee", fee.String(),
		"tokens_delivered", tokensDelivered.String(),
		"phase", pool.Phase.String(),
	)
	return subsidy, fee, tokensDelivered, pool, nil
}
