package keeper

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/openalpha/poolparty/x/pool/types"
)

// ether converts whole ether to wei
func ether(n int64) math.Int {
	return math.NewIntWithDecimal(n, 18)
}

// newTestPool creates a pool with the registry factory defaults
func newTestPool() *types.Pool {
	return types.NewPool(
		"example.org", "Example Sale", "Collective buy-in for the Example token sale", "creator",
		ether(15),         // watermark
		math.NewInt(6),    // fee percent
		math.NewInt(15),   // expected discount percent
		math.NewIntWithDecimal(15, 14), // withdrawal fee, 0.0015 ether
		7*24*60*60,        // due diligence duration
		1000,
	)
}

func TestNewPool(t *testing.T) {
	pool := newTestPool()

	if pool.Phase != types.PhaseOpen {
		t.Errorf("expected phase open, got %s", pool.Phase)
	}
	if !pool.TotalContributed.IsZero() {
		t.Errorf("expected zero total, got %s", pool.TotalContributed)
	}
	if pool.ParticipantCount != 0 {
		t.Errorf("expected no participants, got %d", pool.ParticipantCount)
	}
	if pool.FundsReleased {
		t.Error("expected funds not released")
	}
	if !pool.Watermark.Equal(ether(15)) {
		t.Errorf("expected watermark 15 ether, got %s", pool.Watermark)
	}
}

func TestAddContribution(t *testing.T) {
	pool := newTestPool()

	if err := pool.AddContribution("alice", ether(4), 1001); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	part := pool.GetParticipant("alice")
	if part == nil {
		t.Fatal("expected participant record")
	}
	if !part.AmountContributed.Equal(ether(4)) {
		t.Errorf("expected 4 ether, got %s", part.AmountContributed)
	}
	if !part.IsActive {
		t.Error("expected participant active")
	}
	if part.ArrayIndex != 0 {
		t.Errorf("expected array index 0, got %d", part.ArrayIndex)
	}
	if !pool.TotalContributed.Equal(ether(4)) {
		t.Errorf("expected total 4 ether, got %s", pool.TotalContributed)
	}

	// Second contribution from the same address accumulates
	if err := pool.AddContribution("alice", ether(2), 1002); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !part.AmountContributed.Equal(ether(6)) {
		t.Errorf("expected 6 ether after second contribution, got %s", part.AmountContributed)
	}
	if pool.ParticipantCount != 1 {
		t.Errorf("expected 1 participant, got %d", pool.ParticipantCount)
	}
}

func TestAddContributionBelowMinimum(t *testing.T) {
	pool := newTestPool()

	// 0.01 ether is the floor; one wei below fails
	below := types.MinContribution.SubRaw(1)
	if err := pool.AddContribution("alice", below, 1001); err != types.ErrBelowMinimum {
		t.Errorf("expected ErrBelowMinimum, got %v", err)
	}
	if err := pool.AddContribution("alice", types.MinContribution, 1001); err != nil {
		t.Errorf("exact minimum should succeed, got %v", err)
	}
}

func TestWatermarkToggle(t *testing.T) {
	pool := newTestPool()

	pool.AddContribution("alice", ether(10), 1001)
	if pool.Phase != types.PhaseOpen {
		t.Errorf("expected open below watermark, got %s", pool.Phase)
	}

	// Crossing 15 ether flips to watermark reached
	pool.AddContribution("bob", ether(5), 1002)
	if pool.Phase != types.PhaseWatermarkReached {
		t.Errorf("expected watermark_reached at 15 ether, got %s", pool.Phase)
	}

	// A leave that drops the total back below the watermark reverts the phase
	if _, _, err := pool.Leave("bob", 1003); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.Phase != types.PhaseOpen {
		t.Errorf("expected open after dropping below watermark, got %s", pool.Phase)
	}
}

func TestLeaveFullRefundBeforeDueDiligence(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("alice", ether(4), 1001)

	refund, fee, err := pool.Leave("alice", 1002)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !refund.Equal(ether(4)) {
		t.Errorf("expected full 4 ether refund, got %s", refund)
	}
	if !fee.IsZero() {
		t.Errorf("expected no fee before due diligence, got %s", fee)
	}
	if !pool.TotalContributed.IsZero() {
		t.Errorf("expected zero total after leave, got %s", pool.TotalContributed)
	}
	if pool.IsActiveParticipant("alice") {
		t.Error("expected alice inactive after leave")
	}

	// Record survives for history
	part := pool.GetParticipant("alice")
	if part == nil {
		t.Fatal("expected retained ledger entry")
	}
	if part.ArrayIndex != -1 {
		t.Errorf("expected array index -1 after leave, got %d", part.ArrayIndex)
	}
}

func TestLeaveNotAParticipant(t *testing.T) {
	pool := newTestPool()
	if _, _, err := pool.Leave("stranger", 1001); err != types.ErrNotAParticipant {
		t.Errorf("expected ErrNotAParticipant, got %v", err)
	}
}

// TestSwapRemoveCompaction walks the documented seven-contributor scenario:
// contributions of 4,3,2,1,3,2,1 ether, then the third contributor leaves.
// The last entry must be swapped into the vacated slot and the total drop to
// 14 ether.
func TestSwapRemoveCompaction(t *testing.T) {
	pool := newTestPool()
	addrs := []string{"p0", "p1", "p2", "p3", "p4", "p5", "p6"}
	amounts := []int64{4, 3, 2, 1, 3, 2, 1}
	for i, addr := range addrs {
		if err := pool.AddContribution(addr, ether(amounts[i]), 1001+int64(i)); err != nil {
			t.Fatalf("contribution %d failed: %v", i, err)
		}
	}

	if !pool.TotalContributed.Equal(ether(16)) {
		t.Fatalf("expected total 16 ether, got %s", pool.TotalContributed)
	}
	if pool.ParticipantCount != 7 {
		t.Fatalf("expected 7 participants, got %d", pool.ParticipantCount)
	}

	refund, _, err := pool.Leave("p2", 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !refund.Equal(ether(2)) {
		t.Errorf("expected 2 ether refund, got %s", refund)
	}
	if !pool.TotalContributed.Equal(ether(14)) {
		t.Errorf("expected total 14 ether, got %s", pool.TotalContributed)
	}
	if pool.ParticipantCount != 6 {
		t.Errorf("expected 6 participants, got %d", pool.ParticipantCount)
	}
	if len(pool.ParticipantOrder) != 6 {
		t.Fatalf("expected order length 6, got %d", len(pool.ParticipantOrder))
	}

	// The last participant was swapped into slot 2
	if pool.ParticipantOrder[2] != "p6" {
		t.Errorf("expected p6 in slot 2, got %s", pool.ParticipantOrder[2])
	}
	if pool.GetParticipant("p6").ArrayIndex != 2 {
		t.Errorf("expected p6 array index 2, got %d", pool.GetParticipant("p6").ArrayIndex)
	}

	// Ledger total matches the recomputed sum
	if !pool.ActiveContributionSum().Equal(pool.TotalContributed) {
		t.Errorf("ledger total %s does not match recomputed sum %s",
			pool.TotalContributed, pool.ActiveContributionSum())
	}
}

func TestRejoinAfterLeave(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("alice", ether(4), 1001)
	pool.AddContribution("bob", ether(3), 1002)
	pool.Leave("alice", 1003)

	// Rejoining reactivates the record at the end of the order
	if err := pool.AddContribution("alice", ether(1), 1004); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	part := pool.GetParticipant("alice")
	if !part.IsActive {
		t.Error("expected alice active after rejoin")
	}
	if part.ArrayIndex != 1 {
		t.Errorf("expected array index 1 after rejoin, got %d", part.ArrayIndex)
	}
	if !part.AmountContributed.Equal(ether(1)) {
		t.Errorf("expected fresh 1 ether balance, got %s", part.AmountContributed)
	}
	if !pool.TotalContributed.Equal(ether(4)) {
		t.Errorf("expected total 4 ether, got %s", pool.TotalContributed)
	}
}

func TestWithdrawalFeeSchedule(t *testing.T) {
	fee := math.NewIntWithDecimal(15, 14)

	testCases := []struct {
		name        string
		toPhase     func(p *types.Pool)
		expectFee   bool
	}{
		{
			name:      "open - free",
			toPhase:   func(p *types.Pool) {},
			expectFee: false,
		},
		{
			name: "watermark reached - free",
			toPhase: func(p *types.Pool) {
				p.AddContribution("whale", ether(15), 1002)
			},
			expectFee: false,
		},
		{
			name: "due diligence - fee charged",
			toPhase: func(p *types.Pool) {
				p.AddContribution("whale", ether(15), 1002)
				advanceToDueDiligence(t, p)
			},
			expectFee: true,
		},
		{
			name: "in review - fee charged",
			toPhase: func(p *types.Pool) {
				p.AddContribution("whale", ether(15), 1002)
				advanceToDueDiligence(t, p)
				if err := p.StartReview(1000 + 8*24*60*60); err != nil {
					t.Fatalf("start review failed: %v", err)
				}
			},
			expectFee: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pool := newTestPool()
			pool.AddContribution("alice", ether(2), 1001)
			tc.toPhase(pool)

			refund, charged, err := pool.Leave("alice", 5000)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.expectFee {
				if !charged.Equal(fee) {
					t.Errorf("expected fee %s, got %s", fee, charged)
				}
				if !refund.Equal(ether(2).Sub(fee)) {
					t.Errorf("expected refund minus fee, got %s", refund)
				}
			} else {
				if !charged.IsZero() {
					t.Errorf("expected no fee, got %s", charged)
				}
				if !refund.Equal(ether(2)) {
					t.Errorf("expected full refund, got %s", refund)
				}
			}
		})
	}
}

func TestKick(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("alice", ether(2), 1001)
	pool.AddContribution("whale", ether(15), 1002)

	// Kick is illegal before review
	if _, _, err := pool.Kick("alice", types.KickReasonKyc, 1003); err != types.ErrInvalidPhase {
		t.Errorf("expected ErrInvalidPhase before review, got %v", err)
	}

	advanceToDueDiligence(t, pool)
	if err := pool.StartReview(1000 + 8*24*60*60); err != nil {
		t.Fatalf("start review failed: %v", err)
	}

	refund, fee, err := pool.Kick("alice", types.KickReasonKyc, 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fee.Equal(pool.WithdrawalFee) {
		t.Errorf("expected withdrawal fee charged, got %s", fee)
	}
	if !refund.Equal(ether(2).Sub(pool.WithdrawalFee)) {
		t.Errorf("expected contribution minus fee, got %s", refund)
	}
	if pool.IsActiveParticipant("alice") {
		t.Error("expected alice removed")
	}
}

func TestKickUnknownReason(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)
	advanceToDueDiligence(t, pool)
	if err := pool.StartReview(1000 + 8*24*60*60); err != nil {
		t.Fatalf("start review failed: %v", err)
	}

	if _, _, err := pool.Kick("whale", types.KickReason(99), 2000); err != types.ErrUnknownKickReason {
		t.Errorf("expected ErrUnknownKickReason, got %v", err)
	}
}

// advanceToDueDiligence configures the pool with a passing discount and
// completes configuration. The pool must already be at the watermark.
func advanceToDueDiligence(t *testing.T, pool *types.Pool) {
	t.Helper()
	if err := pool.SetConfigurator("configurator", 1050); err != nil && err != types.ErrAlreadySet {
		t.Fatalf("set configurator failed: %v", err)
	}
	cfg := types.SaleConfig{
		SaleTarget:      "sale-target",
		TokenDenom:      "example",
		BuySelector:     "buy()",
		ClaimSelector:   types.NoSelector,
		RefundSelector:  types.NoSelector,
		PublicPrice:     math.NewInt(100),
		GroupPrice:      math.NewInt(85),
		SubsidyRequired: true,
	}
	if err := pool.Configure(cfg, 1060); err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	if err := pool.CompleteConfiguration(1070); err != nil {
		t.Fatalf("complete configuration failed: %v", err)
	}
}
