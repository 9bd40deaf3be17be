package keeper

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/openalpha/poolparty/x/pool/types"
)

// advanceToReview pushes a watermark-level pool through configuration and
// due diligence into InReview.
func advanceToReview(t *testing.T, pool *types.Pool) {
	t.Helper()
	advanceToDueDiligence(t, pool)
	if err := pool.StartReview(pool.DueDiligenceStartTime + pool.DueDiligenceDuration); err != nil {
		t.Fatalf("start review failed: %v", err)
	}
}

func TestSubsidyMath(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)
	pool.SetConfigurator("configurator", 1002)
	pool.Configure(saleConfig(100, 85), 1003)

	// total * 100 / (100 - 15) - total, truncating
	expected := ether(15).MulRaw(100).QuoRaw(85).Sub(ether(15))
	if !pool.CalculateSubsidy().Equal(expected) {
		t.Errorf("expected subsidy %s, got %s", expected, pool.CalculateSubsidy())
	}

	// No subsidy when the sale does not require one
	cfg := saleConfig(100, 85)
	cfg.SubsidyRequired = false
	pool.Configure(cfg, 1004)
	if !pool.CalculateSubsidy().IsZero() {
		t.Errorf("expected zero subsidy, got %s", pool.CalculateSubsidy())
	}
}

func TestFeeMath(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)

	// 15 ether * 6%
	expected := ether(15).MulRaw(6).QuoRaw(100)
	if !pool.CalculateFee().Equal(expected) {
		t.Errorf("expected fee %s, got %s", expected, pool.CalculateFee())
	}

	if err := pool.WaiveFee(1002); err != nil {
		t.Fatalf("waive failed: %v", err)
	}
	if !pool.CalculateFee().IsZero() {
		t.Errorf("expected zero fee after waiver, got %s", pool.CalculateFee())
	}
}

// TestReleaseExactValue verifies the attached value must equal subsidy + fee
// to the wei; over- and under-payment both fail.
func TestReleaseExactValue(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)
	advanceToReview(t, pool)

	required := pool.RequiredReleaseValue()

	if _, _, err := pool.BeginRelease(required.SubRaw(1), 2000); err != types.ErrIncorrectValue {
		t.Errorf("expected ErrIncorrectValue one wei under, got %v", err)
	}
	if _, _, err := pool.BeginRelease(required.AddRaw(1), 2000); err != types.ErrIncorrectValue {
		t.Errorf("expected ErrIncorrectValue one wei over, got %v", err)
	}
	if pool.FundsReleased {
		t.Fatal("expected funds not released after failed attempts")
	}

	subsidy, fee, err := pool.BeginRelease(required, 2000)
	if err != nil {
		t.Fatalf("unexpected error at exact value: %v", err)
	}
	if !subsidy.Add(fee).Equal(required) {
		t.Errorf("expected subsidy+fee %s, got %s", required, subsidy.Add(fee))
	}
	if !pool.FundsReleased {
		t.Error("expected funds released")
	}
	if !pool.TotalContributedAtRelease.Equal(ether(15)) {
		t.Errorf("expected frozen total 15 ether, got %s", pool.TotalContributedAtRelease)
	}

	// Release is one-shot
	if _, _, err := pool.BeginRelease(required, 2001); err != types.ErrAlreadyReleased {
		t.Errorf("expected ErrAlreadyReleased, got %v", err)
	}
}

func TestReleaseWrongPhase(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)

	if _, _, err := pool.BeginRelease(math.ZeroInt(), 1002); err != types.ErrInvalidPhase {
		t.Errorf("expected ErrInvalidPhase outside review, got %v", err)
	}
}

// TestReleaseZeroTotal: a pool whose participants all left can still release,
// with zero subsidy, zero fee and zero attached value.
func TestReleaseZeroTotal(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)
	advanceToReview(t, pool)

	if _, _, err := pool.Leave("whale", 2000); err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if !pool.TotalContributed.IsZero() {
		t.Fatalf("expected zero total, got %s", pool.TotalContributed)
	}

	subsidy, fee, err := pool.BeginRelease(math.ZeroInt(), 2001)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !subsidy.IsZero() || !fee.IsZero() {
		t.Errorf("expected zero subsidy and fee, got %s and %s", subsidy, fee)
	}
}

func TestReleaseNonSubsidized(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)
	pool.SetConfigurator("configurator", 1002)
	cfg := saleConfig(100, 85)
	cfg.SubsidyRequired = false
	if err := pool.Configure(cfg, 1003); err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	if err := pool.CompleteConfiguration(1004); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if err := pool.StartReview(1004 + pool.DueDiligenceDuration); err != nil {
		t.Fatalf("start review failed: %v", err)
	}

	// Only the fee is due
	fee := ether(15).MulRaw(6).QuoRaw(100)
	if !pool.RequiredReleaseValue().Equal(fee) {
		t.Errorf("expected required value %s, got %s", fee, pool.RequiredReleaseValue())
	}
}

func TestWaiveFeeAfterRelease(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)
	advanceToReview(t, pool)

	if _, _, err := pool.BeginRelease(pool.RequiredReleaseValue(), 2000); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if err := pool.WaiveFee(2001); err != types.ErrAlreadyReleased {
		t.Errorf("expected ErrAlreadyReleased, got %v", err)
	}
}

func TestFinishReleaseSynchronousDelivery(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)
	advanceToReview(t, pool)
	if _, _, err := pool.BeginRelease(pool.RequiredReleaseValue(), 2000); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	// Tokens delivered by the buy call move the pool straight to Claim
	pool.FinishRelease(math.NewInt(1000), math.ZeroInt(), 2001)
	if pool.Phase != types.PhaseClaim {
		t.Errorf("expected claim phase, got %s", pool.Phase)
	}
	if !pool.PoolTokenBalance.Equal(math.NewInt(1000)) {
		t.Errorf("expected token balance 1000, got %s", pool.PoolTokenBalance)
	}
}

func TestFinishReleaseDeferredDelivery(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)
	advanceToReview(t, pool)
	if _, _, err := pool.BeginRelease(pool.RequiredReleaseValue(), 2000); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	// No synchronous delivery: the pool stays in review awaiting the vendor
	// claim.
	pool.FinishRelease(math.ZeroInt(), math.ZeroInt(), 2001)
	if pool.Phase != types.PhaseInReview {
		t.Errorf("expected in_review, got %s", pool.Phase)
	}

	// The later vendor claim with tokens advances to Claim
	if err := pool.VendorClaim(math.NewInt(500), 2002); err != nil {
		t.Fatalf("vendor claim failed: %v", err)
	}
	if pool.Phase != types.PhaseClaim {
		t.Errorf("expected claim after vendor delivery, got %s", pool.Phase)
	}
}

func TestVendorClaimZeroDelivery(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)
	advanceToReview(t, pool)
	if _, _, err := pool.BeginRelease(pool.RequiredReleaseValue(), 2000); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	pool.FinishRelease(math.ZeroInt(), math.ZeroInt(), 2001)

	// Receiving nothing is not an error; the pool can retry later
	if err := pool.VendorClaim(math.ZeroInt(), 2002); err != nil {
		t.Errorf("expected zero delivery to succeed, got %v", err)
	}
	if pool.Phase != types.PhaseInReview {
		t.Errorf("expected in_review after empty delivery, got %s", pool.Phase)
	}
}

func TestVendorRefundOneShot(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)
	advanceToReview(t, pool)
	if _, _, err := pool.BeginRelease(pool.RequiredReleaseValue(), 2000); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	pool.FinishRelease(math.ZeroInt(), math.ZeroInt(), 2001)

	if err := pool.VendorRefund(ether(15), 2002); err != nil {
		t.Fatalf("vendor refund failed: %v", err)
	}
	if pool.Phase != types.PhaseRefunding {
		t.Errorf("expected refunding, got %s", pool.Phase)
	}
	if !pool.BalanceSnapshot.Equal(ether(15)) {
		t.Errorf("expected snapshot 15 ether, got %s", pool.BalanceSnapshot)
	}

	if err := pool.VendorRefund(ether(1), 2003); err != types.ErrAlreadyClaimed {
		t.Errorf("expected ErrAlreadyClaimed on repeat, got %v", err)
	}
}

func TestVendorRefundRequiresRelease(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)
	advanceToReview(t, pool)

	if err := pool.VendorRefund(ether(15), 2000); err != types.ErrInvalidPhase {
		t.Errorf("expected ErrInvalidPhase before release, got %v", err)
	}
}

func TestVendorRefundRejectedAfterDelivery(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)
	advanceToReview(t, pool)
	if _, _, err := pool.BeginRelease(pool.RequiredReleaseValue(), 2000); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	pool.FinishRelease(math.NewInt(1000), math.ZeroInt(), 2001)
	if pool.Phase != types.PhaseClaim {
		t.Fatalf("expected claim phase, got %s", pool.Phase)
	}

	// The sale delivered: the pool is committed to the claim path and the
	// vendor refund must not flip it to Refunding.
	if err := pool.VendorRefund(ether(15), 2002); err != types.ErrInvalidPhase {
		t.Errorf("expected ErrInvalidPhase after delivery, got %v", err)
	}
	if pool.Phase != types.PhaseClaim {
		t.Errorf("expected pool to stay in claim, got %s", pool.Phase)
	}

	// Token claims keep working
	if _, err := pool.ClaimTokens("whale", 2003); err != nil {
		t.Errorf("expected claim to succeed after rejected refund, got %v", err)
	}
}

func TestVendorRefundRejectedAfterInflow(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)
	advanceToReview(t, pool)
	if _, _, err := pool.BeginRelease(pool.RequiredReleaseValue(), 2000); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	pool.FinishRelease(math.ZeroInt(), math.ZeroInt(), 2001)

	// Tokens that arrived straight at the escrow also count as delivery.
	pool.RecordTokenInflow(math.NewInt(250))
	if err := pool.VendorRefund(ether(15), 2002); err != types.ErrInvalidPhase {
		t.Errorf("expected ErrInvalidPhase after token inflow, got %v", err)
	}
}
