package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/openalpha/poolparty/x/registry/types"
)

// QueryServer defines the registry QueryServer
type QueryServer struct {
	keeper *Keeper
}

// NewQueryServerImpl creates a new QueryServer instance
func NewQueryServerImpl(keeper *Keeper) *QueryServer {
	return &QueryServer{keeper: keeper}
}

// Params returns the registry globals
func (q *QueryServer) Params(ctx context.Context) (*types.Params, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.GetParams(sdkCtx), nil
}

// PoolRef resolves an identity to its pool reference. Lookup misses return
// nil rather than an error so callers can probe for free identities.
func (q *QueryServer) PoolRef(ctx context.Context, identity string) (*types.PoolRef, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.GetPoolRef(sdkCtx, identity), nil
}

// PoolRefs returns all registered pool references
func (q *QueryServer) PoolRefs(ctx context.Context, offset, limit uint64) ([]*types.PoolRef, uint64, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	allRefs := q.keeper.GetAllPoolRefs(sdkCtx)

	total := uint64(len(allRefs))
	if offset >= total {
		return []*types.PoolRef{}, total, nil
	}
	end := offset + limit
	if end > total || limit == 0 {
		end = total
	}
	return allRefs[offset:end], total, nil
}
