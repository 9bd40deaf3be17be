package types

import (
	"crypto/rand"
	"encoding/hex"

	"cosmossdk.io/math"
)

// Module name and store key
const (
	ModuleName = "pool"
	StoreKey   = ModuleName
)

// FundsDenom is the bank denom used for contributions, in the smallest
// integer unit (wei).
const FundsDenom = "wei"

// NoSelector is the sentinel for an unset sale function selector. A pool
// configured with NoSelector for buy performs a bare value transfer; for
// claim it means tokens are delivered synchronously by the buy call.
const NoSelector = "N/A"

// Phase is the pool lifecycle phase, the single source of truth for which
// operations are legal.
type Phase int

const (
	PhaseOpen Phase = iota
	PhaseWatermarkReached
	PhaseDueDiligence
	PhaseInReview
	PhaseClaim
	PhaseRefunding
)

func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseWatermarkReached:
		return "watermark_reached"
	case PhaseDueDiligence:
		return "due_diligence"
	case PhaseInReview:
		return "in_review"
	case PhaseClaim:
		return "claim"
	case PhaseRefunding:
		return "refunding"
	default:
		return "unknown"
	}
}

// KickReason records why a configurator removed a participant during review.
type KickReason int

const (
	KickReasonOther KickReason = iota
	KickReasonKyc
)

// ParseKickReason maps the wire string to a KickReason.
func ParseKickReason(s string) (KickReason, error) {
	switch s {
	case "other":
		return KickReasonOther, nil
	case "kyc":
		return KickReasonKyc, nil
	default:
		return KickReasonOther, ErrUnknownKickReason
	}
}

func (r KickReason) String() string {
	switch r {
	case KickReasonOther:
		return "other"
	case KickReasonKyc:
		return "kyc"
	default:
		return "unknown"
	}
}

// Fixed-point and monetary constants (wei, 18-decimal convention)
var (
	// Precision is the fixed-point base for percentage-contribution math.
	Precision = math.NewIntWithDecimal(1, 18)

	// MinContribution is 0.01 ether in wei.
	MinContribution = math.NewIntWithDecimal(1, 16)

	// AuthorizationFee is attached when binding the configurator, covering
	// the identity-oracle cost. 0.005 ether in wei.
	AuthorizationFee = math.NewIntWithDecimal(5, 15)
)

// Participant is one contributor's ledger entry. Records are retained after
// leave/kick (IsActive=false) so historical percentage and claim data
// survive for late claims.
type Participant struct {
	Address           string `json:"address"`
	AmountContributed math.Int `json:"amount_contributed"`

	// Frozen at first post-release access: amount * Precision / totalAtRelease.
	PercentageContribution math.Int `json:"percentage_contribution"`

	LastAmountTokensClaimed math.Int `json:"last_amount_tokens_claimed"`
	TotalTokensClaimed      math.Int `json:"total_tokens_claimed"`
	ClaimCount              int64    `json:"claim_count"`

	RefundPaid       math.Int `json:"refund_paid"`
	HasClaimedRefund bool     `json:"has_claimed_refund"`

	ArrayIndex int  `json:"array_index"`
	IsActive   bool `json:"is_active"`
	JoinedAt   int64 `json:"joined_at"`
}

// SaleConfig is the sale-integration configuration, set exactly once by the
// authorized configurator.
type SaleConfig struct {
	SaleTarget      string   `json:"sale_target"`
	TokenDenom      string   `json:"token_denom"`
	BuySelector     string   `json:"buy_selector"`
	ClaimSelector   string   `json:"claim_selector"`
	RefundSelector  string   `json:"refund_selector"`
	PublicPrice     math.Int `json:"public_price"`
	GroupPrice      math.Int `json:"group_price"`
	SubsidyRequired bool     `json:"subsidy_required"`
}

// Validate checks the configuration arguments.
func (c *SaleConfig) Validate() error {
	if c.SaleTarget == "" || c.TokenDenom == "" {
		return ErrInvalidArgument
	}
	if c.BuySelector == "" || c.ClaimSelector == "" || c.RefundSelector == "" {
		return ErrInvalidArgument
	}
	if c.PublicPrice.IsNil() || !c.PublicPrice.IsPositive() {
		return ErrInvalidArgument
	}
	if c.GroupPrice.IsNil() || !c.GroupPrice.IsPositive() {
		return ErrInvalidArgument
	}
	return nil
}

// Pool is the per-sale contributor ledger and phase state machine.
type Pool struct {
	PoolID      string `json:"pool_id"`
	Identity    string `json:"identity"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Creator     string `json:"creator"`
	Phase       Phase  `json:"phase"`

	// Registry configuration frozen at creation
	Watermark               math.Int `json:"watermark"`
	FeePercent              math.Int `json:"fee_percent"`
	ExpectedDiscountPercent math.Int `json:"expected_discount_percent"`
	DueDiligenceDuration    int64    `json:"due_diligence_duration"` // seconds
	WithdrawalFee           math.Int `json:"withdrawal_fee"`
	FeeWaived               bool     `json:"fee_waived"`

	// Sale configuration
	AuthorizedConfigurator string     `json:"authorized_configurator"`
	Sale                   SaleConfig `json:"sale"`
	SaleConfigured         bool       `json:"sale_configured"`
	DueDiligenceStartTime  int64      `json:"due_diligence_start_time"`

	// Ledger
	TotalContributed math.Int `json:"total_contributed"`
	ParticipantCount int64    `json:"participant_count"`

	Participants     map[string]*Participant `json:"participants"`
	ParticipantOrder []string                `json:"participant_order"`

	// Release/claim snapshot state
	FundsReleased             bool     `json:"funds_released"`
	TotalContributedAtRelease math.Int `json:"total_contributed_at_release"`
	BalanceSnapshot           math.Int `json:"balance_snapshot"`
	PoolTokenBalance          math.Int `json:"pool_token_balance"` // cumulative tokens ever received
	AllTokensClaimedTotal     math.Int `json:"all_tokens_claimed_total"`
	VendorRefunded            bool     `json:"vendor_refunded"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// NewPool creates a pool seeded with the registry's current globals.
func NewPool(identity, name, description, creator string, watermark, feePercent, expectedDiscountPercent, withdrawalFee math.Int, dueDiligenceDuration, now int64) *Pool {
	return &Pool{
		PoolID:                    generateID("pool"),
		Identity:                  identity,
		Name:                      name,
		Description:               description,
		Creator:                   creator,
		Phase:                     PhaseOpen,
		Watermark:                 watermark,
		FeePercent:                feePercent,
		ExpectedDiscountPercent:   expectedDiscountPercent,
		DueDiligenceDuration:      dueDiligenceDuration,
		WithdrawalFee:             withdrawalFee,
		TotalContributed:          math.ZeroInt(),
		Participants:              make(map[string]*Participant),
		ParticipantOrder:          []string{},
		TotalContributedAtRelease: math.ZeroInt(),
		BalanceSnapshot:           math.ZeroInt(),
		PoolTokenBalance:          math.ZeroInt(),
		AllTokensClaimedTotal:     math.ZeroInt(),
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
}

// GetParticipant returns the ledger entry for an address, or nil.
func (p *Pool) GetParticipant(addr string) *Participant {
	return p.Participants[addr]
}

// IsActiveParticipant reports whether the address currently holds a
// contribution in the pool.
func (p *Pool) IsActiveParticipant(addr string) bool {
	part := p.Participants[addr]
	return part != nil && part.IsActive
}

// AddContribution records a contribution. Legal in Open, WatermarkReached
// and DueDiligence; late joiners are allowed up until review starts.
func (p *Pool) AddContribution(addr string, amount math.Int, now int64) error {
	switch p.Phase {
	case PhaseOpen, PhaseWatermarkReached, PhaseDueDiligence:
	default:
		return ErrInvalidPhase
	}
	if amount.LT(MinContribution) {
		return ErrBelowMinimum
	}

	part := p.Participants[addr]
	if part == nil {
		part = &Participant{
			Address:                 addr,
			AmountContributed:       math.ZeroInt(),
			PercentageContribution:  math.ZeroInt(),
			LastAmountTokensClaimed: math.ZeroInt(),
			TotalTokensClaimed:      math.ZeroInt(),
			RefundPaid:              math.ZeroInt(),
		}
		p.Participants[addr] = part
	}
	if !part.IsActive {
		part.IsActive = true
		part.ArrayIndex = len(p.ParticipantOrder)
		part.JoinedAt = now
		p.ParticipantOrder = append(p.ParticipantOrder, addr)
		p.ParticipantCount++
	}
	part.AmountContributed = part.AmountContributed.Add(amount)
	p.TotalContributed = p.TotalContributed.Add(amount)
	p.toggleWatermarkPhase()
	p.UpdatedAt = now
	return nil
}

// Leave removes the caller from the pool and computes the refund owed.
// Leaving in DueDiligence or InReview costs the withdrawal fee; once funds
// have been released nobody may walk away with ether, only claim their
// entitlement.
func (p *Pool) Leave(addr string, now int64) (refund, fee math.Int, err error) {
	switch p.Phase {
	case PhaseOpen, PhaseWatermarkReached, PhaseDueDiligence, PhaseInReview:
	default:
		return math.ZeroInt(), math.ZeroInt(), ErrInvalidPhase
	}
	if p.FundsReleased {
		return math.ZeroInt(), math.ZeroInt(), ErrInvalidPhase
	}
	part := p.Participants[addr]
	if part == nil || !part.IsActive || !part.AmountContributed.IsPositive() {
		return math.ZeroInt(), math.ZeroInt(), ErrNotAParticipant
	}

	amount := part.AmountContributed
	fee = math.ZeroInt()
	if p.Phase == PhaseDueDiligence || p.Phase == PhaseInReview {
		fee = p.WithdrawalFee
		if fee.GT(amount) {
			fee = amount
		}
	}
	refund = amount.Sub(fee)

	p.removeParticipant(part)
	p.toggleWatermarkPhase()
	p.UpdatedAt = now
	return refund, fee, nil
}

// Kick removes a participant who failed compliance checks. Configurator
// authority is enforced by the caller; the ledger effects match Leave.
// Legal only in InReview.
func (p *Pool) Kick(addr string, reason KickReason, now int64) (refund, fee math.Int, err error) {
	if p.Phase != PhaseInReview {
		return math.ZeroInt(), math.ZeroInt(), ErrInvalidPhase
	}
	if p.FundsReleased {
		return math.ZeroInt(), math.ZeroInt(), ErrInvalidPhase
	}
	if reason != KickReasonOther && reason != KickReasonKyc {
		return math.ZeroInt(), math.ZeroInt(), ErrUnknownKickReason
	}
	part := p.Participants[addr]
	if part == nil || !part.IsActive || !part.AmountContributed.IsPositive() {
		return math.ZeroInt(), math.ZeroInt(), ErrNotAParticipant
	}

	amount := part.AmountContributed
	fee = p.WithdrawalFee
	if fee.GT(amount) {
		fee = amount
	}
	refund = amount.Sub(fee)

	p.removeParticipant(part)
	p.UpdatedAt = now
	return refund, fee, nil
}

// removeParticipant zeroes the entry and swap-removes it from the dense
// order array, keeping removal O(1).
func (p *Pool) removeParticipant(part *Participant) {
	idx := part.ArrayIndex
	last := len(p.ParticipantOrder) - 1
	if idx != last {
		moved := p.ParticipantOrder[last]
		p.ParticipantOrder[idx] = moved
		p.Participants[moved].ArrayIndex = idx
	}
	p.ParticipantOrder = p.ParticipantOrder[:last]

	p.TotalContributed = p.TotalContributed.Sub(part.AmountContributed)
	part.AmountContributed = math.ZeroInt()
	part.IsActive = false
	part.ArrayIndex = -1
	p.ParticipantCount--
}

// toggleWatermarkPhase moves between Open and WatermarkReached based on the
// total vs watermark. These are the only two phases that toggle; everything
// else is monotone forward.
func (p *Pool) toggleWatermarkPhase() {
	switch p.Phase {
	case PhaseOpen:
		if p.TotalContributed.GTE(p.Watermark) {
			p.Phase = PhaseWatermarkReached
		}
	case PhaseWatermarkReached:
		if p.TotalContributed.LT(p.Watermark) {
			p.Phase = PhaseOpen
		}
	}
}

// SetConfigurator binds the oracle-resolved owner of the pool's identity as
// the sole account permitted to configure, complete, kick, release and
// claim from the vendor.
func (p *Pool) SetConfigurator(addr string, now int64) error {
	if p.Phase != PhaseWatermarkReached {
		return ErrInvalidPhase
	}
	if p.AuthorizedConfigurator != "" {
		return ErrAlreadySet
	}
	if addr == "" {
		return ErrInvalidArgument
	}
	p.AuthorizedConfigurator = addr
	p.UpdatedAt = now
	return nil
}

// Configure stores the sale-integration configuration. Does not change
// phase.
func (p *Pool) Configure(cfg SaleConfig, now int64) error {
	if p.Phase != PhaseWatermarkReached {
		return ErrInvalidPhase
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.Sale = cfg
	p.SaleConfigured = true
	p.UpdatedAt = now
	return nil
}

// ActualDiscountPercent computes (publicPrice - groupPrice) * 100 /
// publicPrice with truncating division.
func (p *Pool) ActualDiscountPercent() math.Int {
	if !p.Sale.PublicPrice.IsPositive() {
		return math.ZeroInt()
	}
	return p.Sale.PublicPrice.Sub(p.Sale.GroupPrice).MulRaw(100).Quo(p.Sale.PublicPrice)
}

// CompleteConfiguration verifies the negotiated discount against the
// registry-set minimum and starts the due diligence clock.
func (p *Pool) CompleteConfiguration(now int64) error {
	if p.Phase != PhaseWatermarkReached {
		return ErrInvalidPhase
	}
	if !p.SaleConfigured {
		return ErrNotConfigured
	}
	if p.ActualDiscountPercent().LT(p.ExpectedDiscountPercent) {
		return ErrDiscountTooLow
	}
	p.DueDiligenceStartTime = now
	p.Phase = PhaseDueDiligence
	p.UpdatedAt = now
	return nil
}

// StartReview transitions to InReview once the due diligence period has
// elapsed.
func (p *Pool) StartReview(now int64) error {
	if p.Phase != PhaseDueDiligence {
		return ErrInvalidPhase
	}
	if now < p.DueDiligenceStartTime+p.DueDiligenceDuration {
		return ErrTooEarly
	}
	p.Phase = PhaseInReview
	p.UpdatedAt = now
	return nil
}

// CalculateSubsidy returns the extra value needed on top of raw
// contributions to buy at the public rate: total*100/(100-discount) - total.
// Zero when the sale does not require a subsidy.
func (p *Pool) CalculateSubsidy() math.Int {
	if !p.Sale.SubsidyRequired {
		return math.ZeroInt()
	}
	discount := p.ActualDiscountPercent()
	denom := math.NewInt(100).Sub(discount)
	if !denom.IsPositive() {
		return math.ZeroInt()
	}
	return p.TotalContributed.MulRaw(100).Quo(denom).Sub(p.TotalContributed)
}

// CalculateFee returns totalContributed * feePercent / 100, or zero when
// the registry owner has waived the fee.
func (p *Pool) CalculateFee() math.Int {
	if p.FeeWaived {
		return math.ZeroInt()
	}
	return p.TotalContributed.Mul(p.FeePercent).QuoRaw(100)
}

// RequiredReleaseValue is the exact value the configurator must attach to a
// release: subsidy + fee, with no over- or under-payment tolerance.
func (p *Pool) RequiredReleaseValue() math.Int {
	return p.CalculateSubsidy().Add(p.CalculateFee())
}

// BeginRelease validates the release preconditions, freezes the
// contribution total and marks the pool released. The returned subsidy and
// fee drive the caller's transfers; state is committed before any external
// interaction.
func (p *Pool) BeginRelease(attached math.Int, now int64) (subsidy, fee math.Int, err error) {
	if p.Phase != PhaseInReview {
		return math.ZeroInt(), math.ZeroInt(), ErrInvalidPhase
	}
	if p.FundsReleased {
		return math.ZeroInt(), math.ZeroInt(), ErrAlreadyReleased
	}
	subsidy = p.CalculateSubsidy()
	fee = p.CalculateFee()
	if !attached.Equal(subsidy.Add(fee)) {
		return math.ZeroInt(), math.ZeroInt(), ErrIncorrectValue
	}
	p.FundsReleased = true
	p.TotalContributedAtRelease = p.TotalContributed
	p.UpdatedAt = now
	return subsidy, fee, nil
}

// FinishRelease captures the post-release balance snapshot and advances to
// Claim when the buy call delivered tokens synchronously.
func (p *Pool) FinishRelease(tokensDelivered, remainingBalance math.Int, now int64) {
	p.BalanceSnapshot = remainingBalance
	if tokensDelivered.IsPositive() {
		p.PoolTokenBalance = p.PoolTokenBalance.Add(tokensDelivered)
		p.Phase = PhaseClaim
	}
	p.UpdatedAt = now
}

// VendorClaim records the outcome of the external claim call. Receiving
// zero tokens is not an error; the sale may legitimately deliver nothing
// before it concludes, so the pool simply stays InReview.
func (p *Pool) VendorClaim(tokensDelivered math.Int, now int64) error {
	if p.Phase != PhaseInReview {
		return ErrInvalidPhase
	}
	if !p.FundsReleased {
		return ErrInvalidPhase
	}
	if tokensDelivered.IsPositive() {
		p.PoolTokenBalance = p.PoolTokenBalance.Add(tokensDelivered)
		p.Phase = PhaseClaim
	}
	p.UpdatedAt = now
	return nil
}

// VendorRefund records the vendor refund pulled back into the pool and
// moves the pool to Refunding. One-shot, tracked by a pool-level flag.
// Legal only while the pool is still InReview with nothing delivered: once
// tokens arrive the pool is committed to the claim path.
func (p *Pool) VendorRefund(fundsReturned math.Int, now int64) error {
	if p.VendorRefunded {
		return ErrAlreadyClaimed
	}
	if p.Phase != PhaseInReview {
		return ErrInvalidPhase
	}
	if !p.FundsReleased {
		return ErrInvalidPhase
	}
	if p.PoolTokenBalance.IsPositive() {
		return ErrInvalidPhase
	}
	p.VendorRefunded = true
	p.BalanceSnapshot = p.BalanceSnapshot.Add(fundsReturned)
	p.Phase = PhaseRefunding
	p.UpdatedAt = now
	return nil
}

// RecordTokenInflow accounts for tokens that arrived outside a vendor call,
// e.g. bonus drops transferred straight to the pool. PoolTokenBalance is
// cumulative so later inflows raise every participant's tokensDue.
func (p *Pool) RecordTokenInflow(amount math.Int) {
	if amount.IsPositive() {
		p.PoolTokenBalance = p.PoolTokenBalance.Add(amount)
	}
}

// freezePercentage computes and freezes the participant's share on first
// access after release. The denominator is the total at release time, even
// though the live total may shrink afterwards.
func (p *Pool) freezePercentage(part *Participant) {
	if !part.PercentageContribution.IsZero() {
		return
	}
	if !p.TotalContributedAtRelease.IsPositive() {
		return
	}
	part.PercentageContribution = part.AmountContributed.Mul(Precision).Quo(p.TotalContributedAtRelease)
}

// TokensDue returns the participant's unclaimed token entitlement:
// cumulative tokens * frozen share / Precision, minus what was already
// claimed. Truncating division; never negative.
func (p *Pool) TokensDue(part *Participant) math.Int {
	due := p.PoolTokenBalance.Mul(part.PercentageContribution).Quo(Precision).Sub(part.TotalTokensClaimed)
	if due.IsNegative() {
		return math.ZeroInt()
	}
	return due
}

// RefundDue returns the participant's unclaimed refund entitlement against
// the frozen balance snapshot.
func (p *Pool) RefundDue(part *Participant) math.Int {
	due := p.BalanceSnapshot.Mul(part.PercentageContribution).Quo(Precision).Sub(part.RefundPaid)
	if due.IsNegative() {
		return math.ZeroInt()
	}
	return due
}

// ContributionsDue reports the frozen share and outstanding entitlements
// for a participant, freezing the share on first access after release.
func (p *Pool) ContributionsDue(addr string) (percentage, refundDue, tokensDue math.Int, hasClaimedRefund, hasClaimedTokens bool, err error) {
	part := p.Participants[addr]
	if part == nil {
		return math.ZeroInt(), math.ZeroInt(), math.ZeroInt(), false, false, ErrNotAParticipant
	}
	if p.FundsReleased {
		p.freezePercentage(part)
	}
	return part.PercentageContribution, p.RefundDue(part), p.TokensDue(part), part.HasClaimedRefund, part.ClaimCount > 0, nil
}

// ClaimTokens pays out the participant's currently-due tokens. Callable
// repeatedly; each call claims only the newly-due delta, which is what
// makes late bonus-token drops distributable.
func (p *Pool) ClaimTokens(addr string, now int64) (math.Int, error) {
	if p.Phase != PhaseClaim {
		return math.ZeroInt(), ErrInvalidPhase
	}
	part := p.Participants[addr]
	if part == nil {
		return math.ZeroInt(), ErrNotAParticipant
	}
	p.freezePercentage(part)
	due := p.TokensDue(part)
	if !due.IsPositive() {
		return math.ZeroInt(), ErrNothingDue
	}
	part.LastAmountTokensClaimed = due
	part.TotalTokensClaimed = part.TotalTokensClaimed.Add(due)
	part.ClaimCount++
	p.AllTokensClaimedTotal = p.AllTokensClaimedTotal.Add(due)
	p.UpdatedAt = now
	return due, nil
}

// ClaimRefund pays out the participant's refund entitlement. Strictly
// one-shot per participant: the full entitlement goes out in one transfer.
func (p *Pool) ClaimRefund(addr string, now int64) (math.Int, error) {
	if p.Phase != PhaseClaim && p.Phase != PhaseRefunding {
		return math.ZeroInt(), ErrInvalidPhase
	}
	part := p.Participants[addr]
	if part == nil {
		return math.ZeroInt(), ErrNotAParticipant
	}
	if part.HasClaimedRefund {
		return math.ZeroInt(), ErrAlreadyClaimed
	}
	p.freezePercentage(part)
	due := p.RefundDue(part)
	if !due.IsPositive() {
		return math.ZeroInt(), ErrNothingDue
	}
	part.RefundPaid = due
	part.HasClaimedRefund = true
	p.UpdatedAt = now
	return due, nil
}

// WaiveFee marks the pool fee as waived. Registry-owner authority is
// enforced by the caller; waiving after release has no effect.
func (p *Pool) WaiveFee(now int64) error {
	if p.FundsReleased {
		return ErrAlreadyReleased
	}
	p.FeeWaived = true
	p.UpdatedAt = now
	return nil
}

// ActiveContributionSum recomputes the ledger total from scratch. Used by
// invariant checks and stats; the stored total must always match.
func (p *Pool) ActiveContributionSum() math.Int {
	sum := math.ZeroInt()
	for _, addr := range p.ParticipantOrder {
		part := p.Participants[addr]
		if part != nil && part.IsActive {
			sum = sum.Add(part.AmountContributed)
		}
	}
	return sum
}

// generateID generates a unique ID with a prefix
func generateID(prefix string) string {
	b := make([]byte, 8)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}
