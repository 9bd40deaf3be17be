package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/openalpha/poolparty/x/pool/types"
)

// Contribute adds funds to a pool. Legal while the pool is Open,
// WatermarkReached or DueDiligence; crossing the watermark advances the
// phase.
func (k *Keeper) Contribute(ctx context.Context, contributor, poolID string, amount math.Int) (*types.Pool, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	pool := k.GetPool(sdkCtx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	addr, err := sdk.AccAddressFromBech32(contributor)
	if err != nil {
		return nil, types.ErrInvalidArgument.Wrap("invalid contributor address")
	}

	before := pool.Phase
	if err := pool.AddContribution(contributor, amount, sdkCtx.BlockTime().Unix()); err != nil {
		return nil, err
	}

	// Escrow the contribution in the module account.
	coins := sdk.NewCoins(sdk.NewCoin(types.FundsDenom, amount))
	if err := k.bankKeeper.SendCoinsFromAccountToModule(sdkCtx, addr, types.ModuleName, coins); err != nil {
		return nil, err
	}

	k.SetPool(sdkCtx, pool)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"pool_contribution",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("contributor", contributor),
			sdk.NewAttribute("amount", amount.String()),
			sdk.NewAttribute("total_contributed", pool.TotalContributed.String()),
			sdk.NewAttribute("phase", pool.Phase.String()),
		),
	)
	k.emitPhaseChange(sdkCtx, pool, before)
	k.collector.RecordContribution(poolID, weiFloat(amount))

	k.logger.Info("Contribution processed",
		"pool_id", poolID,
		"contributor", contributor,
		"amount", amount.String(),
		"total_contributed", pool.TotalContributed.String(),
		"participants", pool.ParticipantCount,
	)
	return pool, nil
}

// Leave refunds the caller's full contribution and removes them from the
// ledger. Leaving in DueDiligence or InReview costs the withdrawal fee,
// which goes to the registry owner.
func (k *Keeper) Leave(ctx context.Context, participant, poolID string) (refund, fee math.Int, pool *types.Pool, err error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	pool = k.GetPool(sdkCtx, poolID)
	if pool == nil {
		return math.ZeroInt(), math.ZeroInt(), nil, types.ErrPoolNotFound
	}
	addr, err := sdk.AccAddressFromBech32(participant)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), nil, types.ErrInvalidArgument.Wrap("invalid participant address")
	}

	before := pool.Phase
	refund, fee, err = pool.Leave(participant, sdkCtx.BlockTime().Unix())
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), nil, err
	}

	if err := k.payFromEscrow(sdkCtx, addr, refund, fee); err != nil {
		return math.ZeroInt(), math.ZeroInt(), nil, err
	}

	k.SetPool(sdkCtx, pool)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"pool_left",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("participant", participant),
			sdk.NewAttribute("refund", refund.String()),
			sdk.NewAttribute("fee", fee.String()),
			sdk.NewAttribute("total_contributed", pool.TotalContributed.String()),
		),
	)
	k.emitPhaseChange(sdkCtx, pool, before)
	k.collector.RecordWithdrawal(poolID, before.String(), weiFloat(fee))

	k.logger.Info("Participant left pool",
		"pool_id", poolID,
		"participant", participant,
		"refund", refund.String(),
		"fee", fee.String(),
	)
	return refund, fee, pool, nil
}

// Kick removes a participant during review for compliance reasons. Only the
// authorized configurator may kick, and only in InReview.
func (k *Keeper) Kick(ctx context.Context, configurator, poolID, participant string, reason types.KickReason) (refund, fee math.Int, err error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	pool := k.GetPool(sdkCtx, poolID)
	if pool == nil {
		return math.ZeroInt(), math.ZeroInt(), types.ErrPoolNotFound
	}
	if pool.AuthorizedConfigurator == "" || configurator != pool.AuthorizedConfigurator {
		return math.ZeroInt(), math.ZeroInt(), types.ErrUnauthorized
	}
	addr, err := sdk.AccAddressFromBech32(participant)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), types.ErrInvalidArgument.Wrap("invalid participant address")
	}

	refund, fee, err = pool.Kick(participant, reason, sdkCtx.BlockTime().Unix())
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}

	if err := k.payFromEscrow(sdkCtx, addr, refund, fee); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}

	k.SetPool(sdkCtx, pool)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"pool_kicked",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("participant", participant),
			sdk.NewAttribute("reason", reason.String()),
			sdk.NewAttribute("refund", refund.String()),
			sdk.NewAttribute("fee", fee.String()),
		),
	)

	k.collector.RecordKick(poolID, reason.String())

	k.logger.Info("Participant kicked",
		"pool_id", poolID,
		"participant", participant,
		"reason", reason.String(),
		"refund", refund.String(),
	)
	return refund, fee, nil
}

// payFromEscrow sends a refund to the participant and the withdrawal fee,
// if any, to the registry owner.
func (k *Keeper) payFromEscrow(ctx sdk.Context, participant sdk.AccAddress, refund, fee math.Int) error {
	if refund.IsPositive() {
		coins := sdk.NewCoins(sdk.NewCoin(types.FundsDenom, refund))
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, participant, coins); err != nil {
			return err
		}
	}
	if fee.IsPositive() {
		owner, err := k.registryOwner(ctx)
		if err != nil {
			return err
		}
		coins := sdk.NewCoins(sdk.NewCoin(types.FundsDenom, fee))
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, owner, coins); err != nil {
			return err
		}
	}
	return nil
}
