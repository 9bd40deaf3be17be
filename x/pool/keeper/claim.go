package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/openalpha/poolparty/x/pool/types"
)

// ClaimFromVendor pulls purchased tokens from the sale after release. A
// non-zero delivery moves the pool to Claim; delivering zero leaves it in
// review so the call can be retried once the sale concludes.
func (k *Keeper) ClaimFromVendor(ctx context.Context, configurator, poolID string) (math.Int, *types.Pool, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	pool := k.GetPool(sdkCtx, poolID)
	if pool == nil {
		return math.ZeroInt(), nil, types.ErrPoolNotFound
	}
	if pool.AuthorizedConfigurator == "" || configurator != pool.AuthorizedConfigurator {
		return math.ZeroInt(), nil, types.ErrUnauthorized
	}

	before := pool.Phase
	tokens, err := k.gateway.Claim(sdkCtx, pool)
	if err != nil {
		k.collector.RecordSaleCall(pool.Sale.ClaimSelector, "error")
		return math.ZeroInt(), nil, err
	}
	k.collector.RecordSaleCall(pool.Sale.ClaimSelector, "ok")
	if err := pool.VendorClaim(tokens, sdkCtx.BlockTime().Unix()); err != nil {
		return math.ZeroInt(), nil, err
	}
	k.SetPool(sdkCtx, pool)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"pool_vendor_claimed",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("tokens_received", tokens.String()),
			sdk.NewAttribute("phase", pool.Phase.String()),
		),
	)
	k.emitPhaseChange(sdkCtx, pool, before)

	k.logger.Info("Vendor claim executed",
		"pool_id", poolID,
		"tokens_received", tokens.String(),
		"phase", pool.Phase.String(),
	)
	return tokens, pool, nil
}

// ClaimRefundFromVendor recovers the pool's funds from a failed sale and
// moves the pool to Refunding. One-shot.
func (k *Keeper) ClaimRefundFromVendor(ctx context.Context, configurator, poolID string) (math.Int, *types.Pool, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	pool := k.GetPool(sdkCtx, poolID)
	if pool == nil {
		return math.ZeroInt(), nil, types.ErrPoolNotFound
	}
	if pool.AuthorizedConfigurator == "" || configurator != pool.AuthorizedConfigurator {
		return math.ZeroInt(), nil, types.ErrUnauthorized
	}

	before := pool.Phase
	funds, err := k.gateway.Refund(sdkCtx, pool)
	if err != nil {
		k.collector.RecordSaleCall(pool.Sale.RefundSelector, "error")
		return math.ZeroInt(), nil, err
	}
	k.collector.RecordSaleCall(pool.Sale.RefundSelector, "ok")
	if err := pool.VendorRefund(funds, sdkCtx.BlockTime().Unix()); err != nil {
		return math.ZeroInt(), nil, err
	}
	k.SetPool(sdkCtx, pool)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"pool_vendor_refunded",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("funds_recovered", funds.String()),
		),
	)
	k.emitPhaseChange(sdkCtx, pool, before)

	k.logger.Info("Vendor refund executed",
		"pool_id", poolID,
		"funds_recovered", funds.String(),
	)
	return funds, pool, nil
}

// ClaimTokens pays a participant their pro-rata share of the tokens the pool
// has received so far. Re-claimable: later inflows (bonuses, staged vendor
// deliveries) raise the participant's due and a repeat claim pays the delta.
func (k *Keeper) ClaimTokens(ctx context.Context, participant, poolID string) (math.Int, *types.Pool, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	pool := k.GetPool(sdkCtx, poolID)
	if pool == nil {
		return math.ZeroInt(), nil, types.ErrPoolNotFound
	}
	addr, err := sdk.AccAddressFromBech32(participant)
	if err != nil {
		return math.ZeroInt(), nil, types.ErrInvalidArgument.Wrap("invalid participant address")
	}

	k.syncTokenInflow(sdkCtx, pool)

	amount, err := pool.ClaimTokens(participant, sdkCtx.BlockTime().Unix())
	if err != nil {
		return math.ZeroInt(), nil, err
	}

	coins := sdk.NewCoins(sdk.NewCoin(pool.Sale.TokenDenom, amount))
	if err := k.bankKeeper.SendCoinsFromModuleToAccount(sdkCtx, types.ModuleName, addr, coins); err != nil {
		return math.ZeroInt(), nil, err
	}
	k.SetPool(sdkCtx, pool)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"pool_tokens_claimed",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("participant", participant),
			sdk.NewAttribute("amount", amount.String()),
		),
	)

	k.collector.RecordTokenClaim(poolID, weiFloat(amount))

	k.logger.Info("Tokens claimed",
		"pool_id", poolID,
		"participant", participant,
		"amount", amount.String(),
	)
	return amount, pool, nil
}

// ClaimRefund pays a participant their pro-rata share of the pool's leftover
// or recovered funds. One-shot per participant.
func (k *Keeper) ClaimRefund(ctx context.Context, participant, poolID string) (math.Int, *types.Pool, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	pool := k.GetPool(sdkCtx, poolID)
	if pool == nil {
		return math.ZeroInt(), nil, types.ErrPoolNotFound
	}
	addr, err := sdk.AccAddressFromBech32(participant)
	if err != nil {
		return math.ZeroInt(), nil, types.ErrInvalidArgument.Wrap("invalid participant address")
	}

	amount, err := pool.ClaimRefund(participant, sdkCtx.BlockTime().Unix())
	if err != nil {
		return math.ZeroInt(), nil, err
	}

	coins := sdk.NewCoins(sdk.NewCoin(types.FundsDenom, amount))
	if err := k.bankKeeper.SendCoinsFromModuleToAccount(sdkCtx, types.ModuleName, addr, coins); err != nil {
		return math.ZeroInt(), nil, err
	}
	k.SetPool(sdkCtx, pool)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"pool_refund_claimed",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("participant", participant),
			sdk.NewAttribute("amount", amount.String()),
		),
	)

	k.collector.RecordRefundClaim(poolID, weiFloat(amount))

	k.logger.Info("Refund claimed",
		"pool_id", poolID,
		"participant", participant,
		"amount", amount.String(),
	)
	return amount, pool, nil
}

// syncTokenInflow folds tokens sent straight to the pool's escrow account
// (vendor bonuses) into the claim accounting. The cumulative received total
// is escrow balance plus everything already paid out.
func (k *Keeper) syncTokenInflow(ctx sdk.Context, pool *types.Pool) {
	if pool.Sale.TokenDenom == "" {
		return
	}
	moduleAddr := authtypes.NewModuleAddress(types.ModuleName)
	held := k.bankKeeper.GetBalance(ctx, moduleAddr, pool.Sale.TokenDenom).Amount
	cumulative := held.Add(pool.AllTokensClaimedTotal)
	if cumulative.GT(pool.PoolTokenBalance) {
		inflow := cumulative.Sub(pool.PoolTokenBalance)
		pool.RecordTokenInflow(inflow)
		k.logger.Info("Token inflow recorded",
			"pool_id", pool.PoolID,
			"amount", inflow.String(),
			"cumulative", pool.PoolTokenBalance.String(),
		)
	}
}
