package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/openalpha/poolparty/x/pool/types"
)

// QueryServer defines the pool QueryServer
type QueryServer struct {
	keeper *Keeper
}

// NewQueryServerImpl creates a new QueryServer instance
func NewQueryServerImpl(keeper *Keeper) *QueryServer {
	return &QueryServer{keeper: keeper}
}

// Pool returns a pool by ID
func (q *QueryServer) Pool(ctx context.Context, poolID string) (*types.Pool, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	pool := q.keeper.GetPool(sdkCtx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	return pool, nil
}

// PoolByIdentity returns the pool registered for an identity, or nil when
// none exists. Lookup misses are not errors.
func (q *QueryServer) PoolByIdentity(ctx context.Context, identity string) (*types.Pool, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.GetPoolByIdentity(sdkCtx, identity), nil
}

// Pools returns all pools
func (q *QueryServer) Pools(ctx context.Context, offset, limit uint64) ([]*types.Pool, uint64, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	allPools := q.keeper.GetAllPools(sdkCtx)

	total := uint64(len(allPools))

	// Apply pagination
	if offset >= total {
		return []*types.Pool{}, total, nil
	}

	end := offset + limit
	if end > total || limit == 0 {
		end = total
	}

	return allPools[offset:end], total, nil
}

// PoolsByPhase returns pools filtered by lifecycle phase
func (q *QueryServer) PoolsByPhase(ctx context.Context, phase types.Phase) ([]*types.Pool, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.GetPoolsByPhase(sdkCtx, phase), nil
}

// Participant returns a single ledger entry, active or historical
func (q *QueryServer) Participant(ctx context.Context, poolID, address string) (*types.Participant, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	pool := q.keeper.GetPool(sdkCtx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	part := pool.GetParticipant(address)
	if part == nil {
		return nil, types.ErrNotAParticipant
	}
	return part, nil
}

// Participants returns the pool's active participants in ledger order
func (q *QueryServer) Participants(ctx context.Context, poolID string, offset, limit uint64) ([]*types.Participant, uint64, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	pool := q.keeper.GetPool(sdkCtx, poolID)
	if pool == nil {
		return nil, 0, types.ErrPoolNotFound
	}

	total := uint64(len(pool.ParticipantOrder))
	if offset >= total {
		return []*types.Participant{}, total, nil
	}
	end := offset + limit
	if end > total || limit == 0 {
		end = total
	}

	parts := make([]*types.Participant, 0, end-offset)
	for _, addr := range pool.ParticipantOrder[offset:end] {
		if part := pool.GetParticipant(addr); part != nil {
			parts = append(parts, part)
		}
	}
	return parts, total, nil
}

// ContributionsDue reports a participant's frozen share and outstanding
// entitlements. Read-only: the share freeze is computed but not persisted.
func (q *QueryServer) ContributionsDue(ctx context.Context, poolID, address string) (*types.ContributionsDueResult, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	pool := q.keeper.GetPool(sdkCtx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	q.keeper.syncTokenInflow(sdkCtx, pool)

	pct, refundDue, tokensDue, hasClaimedRefund, hasClaimedTokens, err := pool.ContributionsDue(address)
	if err != nil {
		return nil, err
	}
	part := pool.GetParticipant(address)

	return &types.ContributionsDueResult{
		Address:                address,
		AmountContributed:      part.AmountContributed,
		PercentageContribution: pct,
		RefundDue:              refundDue,
		TokensDue:              tokensDue,
		HasClaimedRefund:       hasClaimedRefund,
		HasClaimedTokens:       hasClaimedTokens,
	}, nil
}

// ReleaseQuote returns the exact value a configurator must attach to release
// the pool's funds
func (q *QueryServer) ReleaseQuote(ctx context.Context, poolID string) (*types.ReleaseQuote, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	pool := q.keeper.GetPool(sdkCtx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}

	subsidy := pool.CalculateSubsidy()
	fee := pool.CalculateFee()
	return &types.ReleaseQuote{
		Subsidy:       subsidy,
		Fee:           fee,
		RequiredValue: subsidy.Add(fee),
		FeeWaived:     pool.FeeWaived,
	}, nil
}

// PoolStats returns an aggregated view of a pool
func (q *QueryServer) PoolStats(ctx context.Context, poolID string) (*types.PoolStats, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	pool := q.keeper.GetPool(sdkCtx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}

	return &types.PoolStats{
		PoolID:                pool.PoolID,
		Identity:              pool.Identity,
		Name:                  pool.Name,
		Phase:                 pool.Phase.String(),
		ParticipantCount:      pool.ParticipantCount,
		TotalContributed:      pool.TotalContributed,
		Watermark:             pool.Watermark,
		WatermarkReached:      pool.Phase >= types.PhaseWatermarkReached,
		FundsReleased:         pool.FundsReleased,
		PoolTokenBalance:      pool.PoolTokenBalance,
		AllTokensClaimedTotal: pool.AllTokensClaimedTotal,
		BalanceSnapshot:       pool.BalanceSnapshot,
		CreatedAt:             pool.CreatedAt,
		UpdatedAt:             pool.UpdatedAt,
	}, nil
}
