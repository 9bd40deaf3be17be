package api

import (
	"github.com/openalpha/poolparty/api/types"
)

// Re-export types for convenience
type (
	PoolSummary        = types.PoolSummary
	PoolDetail         = types.PoolDetail
	ParticipantInfo    = types.ParticipantInfo
	ContributionsDue   = types.ContributionsDue
	LeaderboardEntry   = types.LeaderboardEntry
	ContributeRequest  = types.ContributeRequest
	ContributeResponse = types.ContributeResponse
	LeaveRequest       = types.LeaveRequest
	LeaveResponse      = types.LeaveResponse
	CreatePoolRequest  = types.CreatePoolRequest
	CreatePoolResponse = types.CreatePoolResponse
	PoolService        = types.PoolService
)

// nowMillis returns current timestamp in milliseconds
func nowMillis() int64 {
	return types.NowMillis()
}
