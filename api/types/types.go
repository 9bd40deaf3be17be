package types

import (
	"time"
)

// PoolSummary is the list-view representation of a pool
type PoolSummary struct {
	PoolID           string `json:"pool_id"`
	Identity         string `json:"identity"`
	Name             string `json:"name"`
	Phase            string `json:"phase"`
	Watermark        string `json:"watermark"`
	TotalContributed string `json:"total_contributed"`
	ParticipantCount int    `json:"participant_count"`
	CreatedAt        int64  `json:"created_at"`
}

// PoolDetail is the full representation of a pool
type PoolDetail struct {
	PoolSummary
	Description           string `json:"description"`
	Configurator          string `json:"configurator,omitempty"`
	SaleTarget            string `json:"sale_target,omitempty"`
	TokenDenom            string `json:"token_denom,omitempty"`
	PublicPrice           string `json:"public_price,omitempty"`
	GroupPrice            string `json:"group_price,omitempty"`
	SubsidyRequired       bool   `json:"subsidy_required"`
	FeePercent            string `json:"fee_percent"`
	FeeWaived             bool   `json:"fee_waived"`
	WithdrawalFee         string `json:"withdrawal_fee"`
	DueDiligenceStartTime int64  `json:"due_diligence_start_time,omitempty"`
	FundsReleased         bool   `json:"funds_released"`
	PoolTokenBalance      string `json:"pool_token_balance"`
	BalanceSnapshot       string `json:"balance_snapshot"`
}

// ParticipantInfo is the REST representation of a pool participant
type ParticipantInfo struct {
	Address            string `json:"address"`
	AmountContributed  string `json:"amount_contributed"`
	TotalTokensClaimed string `json:"total_tokens_claimed"`
	ClaimCount         int    `json:"claim_count"`
	HasClaimedRefund   bool   `json:"has_claimed_refund"`
	JoinedAt           int64  `json:"joined_at"`
}

// ContributionsDue reports a participant's frozen share and claimable
// amounts
type ContributionsDue struct {
	PoolID                 string `json:"pool_id"`
	Address                string `json:"address"`
	AmountContributed      string `json:"amount_contributed"`
	PercentageContribution string `json:"percentage_contribution"`
	TokensDue              string `json:"tokens_due"`
	RefundDue              string `json:"refund_due"`
	TotalTokensClaimed     string `json:"total_tokens_claimed"`
	RefundPaid             string `json:"refund_paid"`
}

// LeaderboardEntry ranks a contributor by total contributed across pools
type LeaderboardEntry struct {
	Rank             int    `json:"rank"`
	Address          string `json:"address"`
	TotalContributed string `json:"total_contributed"`
	PoolCount        int    `json:"pool_count"`
}

// ContributeRequest is the standalone-mode contribution request
type ContributeRequest struct {
	PoolID      string `json:"pool_id"`
	Contributor string `json:"contributor"`
	Amount      string `json:"amount"`
}

// ContributeResponse is the standalone-mode contribution response
type ContributeResponse struct {
	RequestID        string `json:"request_id"`
	PoolID           string `json:"pool_id"`
	TotalContributed string `json:"total_contributed"`
	Phase            string `json:"phase"`
}

// LeaveRequest is the standalone-mode withdrawal request
type LeaveRequest struct {
	PoolID      string `json:"pool_id"`
	Participant string `json:"participant"`
}

// LeaveResponse is the standalone-mode withdrawal response
type LeaveResponse struct {
	RequestID    string `json:"request_id"`
	RefundAmount string `json:"refund_amount"`
	FeeCharged   string `json:"fee_charged"`
}

// CreatePoolRequest is the standalone-mode pool creation request
type CreatePoolRequest struct {
	Identity    string `json:"identity"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Creator     string `json:"creator"`
	Watermark   string `json:"watermark,omitempty"`
}

// CreatePoolResponse is the standalone-mode pool creation response
type CreatePoolResponse struct {
	RequestID string `json:"request_id"`
	PoolID    string `json:"pool_id"`
	Identity  string `json:"identity"`
}

// PoolService is the backing service for the pool REST endpoints
type PoolService interface {
	CreatePool(req *CreatePoolRequest) (*CreatePoolResponse, error)
	Contribute(req *ContributeRequest) (*ContributeResponse, error)
	Leave(req *LeaveRequest) (*LeaveResponse, error)

	GetPools(phase string) ([]*PoolSummary, error)
	GetPool(poolID string) (*PoolDetail, error)
	GetParticipants(poolID string) ([]*ParticipantInfo, error)
	GetContributionsDue(poolID, address string) (*ContributionsDue, error)
	GetLeaderboard(limit int) ([]*LeaderboardEntry, error)
}

// NowMillis returns current timestamp in milliseconds
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
