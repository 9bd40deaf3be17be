package types

import "cosmossdk.io/math"

// PoolStats is an aggregated view of a pool for queries and the API layer.
type PoolStats struct {
	PoolID                string   `json:"pool_id"`
	Identity              string   `json:"identity"`
	Name                  string   `json:"name"`
	Phase                 string   `json:"phase"`
	ParticipantCount      int64    `json:"participant_count"`
	TotalContributed      math.Int `json:"total_contributed"`
	Watermark             math.Int `json:"watermark"`
	WatermarkReached      bool     `json:"watermark_reached"`
	FundsReleased         bool     `json:"funds_released"`
	PoolTokenBalance      math.Int `json:"pool_token_balance"`
	AllTokensClaimedTotal math.Int `json:"all_tokens_claimed_total"`
	BalanceSnapshot       math.Int `json:"balance_snapshot"`
	CreatedAt             int64    `json:"created_at"`
	UpdatedAt             int64    `json:"updated_at"`
}

// ContributionsDueResult reports a participant's frozen share and outstanding
// entitlements.
type ContributionsDueResult struct {
	Address                string   `json:"address"`
	AmountContributed      math.Int `json:"amount_contributed"`
	PercentageContribution math.Int `json:"percentage_contribution"`
	RefundDue              math.Int `json:"refund_due"`
	TokensDue              math.Int `json:"tokens_due"`
	HasClaimedRefund       bool     `json:"has_claimed_refund"`
	HasClaimedTokens       bool     `json:"has_claimed_tokens"`
}

// ReleaseQuote is what a configurator must attach to release funds.
type ReleaseQuote struct {
	Subsidy       math.Int `json:"subsidy"`
	Fee           math.Int `json:"fee"`
	RequiredValue math.Int `json:"required_value"`
	FeeWaived     bool     `json:"fee_waived"`
}
