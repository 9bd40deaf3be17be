package keeper

import (
	"encoding/json"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/openalpha/poolparty/x/pool/types"
)

// EndBlocker is called at the end of each block to surface pools whose due
// diligence period elapsed and refresh the aggregate module stats.
func (k *Keeper) EndBlocker(ctx sdk.Context) error {
	blockHeight := ctx.BlockHeight()
	start := time.Now()

	readyCount := k.NotifyReviewReady(ctx)
	k.RefreshModuleStats(ctx)

	totalDuration := time.Since(start)
	k.collector.RecordBlock(blockHeight, float64(totalDuration.Milliseconds()))

	k.logger.Debug("Pool EndBlocker completed",
		"block", blockHeight,
		"total_ms", totalDuration.Milliseconds(),
		"review_ready", readyCount,
	)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"pool_endblock",
			sdk.NewAttribute("block_height", math.NewInt(blockHeight).String()),
			sdk.NewAttribute("duration_ms", math.NewInt(totalDuration.Milliseconds()).String()),
			sdk.NewAttribute("review_ready", math.NewInt(int64(readyCount)).String()),
		),
	)

	return nil
}

// NotifyReviewReady emits a one-shot event for each pool whose due diligence
// window has elapsed. The phase transition itself stays configurator-driven;
// the event exists for off-chain watchers.
func (k *Keeper) NotifyReviewReady(ctx sdk.Context) int {
	now := ctx.BlockTime().Unix()
	notified := 0

	for _, pool := range k.GetPoolsByPhase(ctx, types.PhaseDueDiligence) {
		if now < pool.DueDiligenceStartTime+pool.DueDiligenceDuration {
			continue
		}
		if k.reviewReadyNotified(ctx, pool.PoolID) {
			continue
		}
		k.markReviewReadyNotified(ctx, pool.PoolID, now)
		notified++

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				"pool_review_ready",
				sdk.NewAttribute("pool_id", pool.PoolID),
				sdk.NewAttribute("due_diligence_elapsed_at", math.NewInt(pool.DueDiligenceStartTime+pool.DueDiligenceDuration).String()),
			),
		)

		k.logger.Info("Due diligence period elapsed",
			"pool_id", pool.PoolID,
			"started_at", pool.DueDiligenceStartTime,
			"duration_secs", pool.DueDiligenceDuration,
		)
	}
	return notified
}

// ModuleStats is the per-block aggregate over all pools.
type ModuleStats struct {
	PoolCount        int64    `json:"pool_count"`
	OpenCount        int64    `json:"open_count"`
	ActiveCount      int64    `json:"active_count"` // watermark reached through in review
	ClaimCount       int64    `json:"claim_count"`
	RefundingCount   int64    `json:"refunding_count"`
	TotalContributed math.Int `json:"total_contributed"`
	UpdatedAtHeight  int64    `json:"updated_at_height"`
}

// RefreshModuleStats recomputes and stores the module-wide aggregates
func (k *Keeper) RefreshModuleStats(ctx sdk.Context) {
	stats := ModuleStats{
		TotalContributed: math.ZeroInt(),
		UpdatedAtHeight:  ctx.BlockHeight(),
	}
	for _, pool := range k.GetAllPools(ctx) {
		stats.PoolCount++
		switch pool.Phase {
		case types.PhaseOpen:
			stats.OpenCount++
		case types.PhaseClaim:
			stats.ClaimCount++
		case types.PhaseRefunding:
			stats.RefundingCount++
		default:
			stats.ActiveCount++
		}
		stats.TotalContributed = stats.TotalContributed.Add(pool.TotalContributed)
	}

	store := k.GetStore(ctx)
	bz, err := json.Marshal(&stats)
	if err != nil {
		k.logger.Error("Failed to marshal module stats", "error", err)
		return
	}
	store.Set(PoolStatsKeyPrefix, bz)
}

// GetModuleStats returns the last stored aggregate view
func (k *Keeper) GetModuleStats(ctx sdk.Context) *ModuleStats {
	store := k.GetStore(ctx)
	bz := store.Get(PoolStatsKeyPrefix)
	if bz == nil {
		return nil
	}
	var stats ModuleStats
	if err := json.Unmarshal(bz, &stats); err != nil {
		k.logger.Error("Failed to unmarshal module stats", "error", err)
		return nil
	}
	return &stats
}

// reviewReady tracks one-shot review-ready notifications
type reviewReady struct {
	PoolID     string `json:"pool_id"`
	NotifiedAt int64  `json:"notified_at"`
}

// ReviewReadyKeyPrefix is the prefix for review-ready notification markers
var ReviewReadyKeyPrefix = []byte{0x0A}

func (k *Keeper) reviewReadyNotified(ctx sdk.Context, poolID string) bool {
	store := k.GetStore(ctx)
	return store.Has(append(ReviewReadyKeyPrefix, []byte(poolID)...))
}

func (k *Keeper) markReviewReadyNotified(ctx sdk.Context, poolID string, now int64) {
	store := k.GetStore(ctx)
	marker := reviewReady{PoolID: poolID, NotifiedAt: now}
	bz, err := json.Marshal(&marker)
	if err != nil {
		k.logger.Error("Failed to marshal review-ready marker", "error", err)
		return
	}
	store.Set(append(ReviewReadyKeyPrefix, []byte(poolID)...), bz)
}
