package keeper

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/openalpha/poolparty/x/pool/types"
)

// newClaimPool builds a pool with a 4:1 contribution split, released with
// the given token delivery. Watermark is met by the combined 15 ether.
func newClaimPool(t *testing.T, tokens int64) *types.Pool {
	t.Helper()
	pool := newTestPool()
	pool.AddContribution("alice", ether(12), 1001)
	pool.AddContribution("bob", ether(3), 1002)
	advanceToReview(t, pool)
	if _, _, err := pool.BeginRelease(pool.RequiredReleaseValue(), 2000); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	pool.FinishRelease(math.NewInt(tokens), math.ZeroInt(), 2001)
	return pool
}

// TestClaimTokensProRata verifies the 4:1 split pays out 4:1.
func TestClaimTokensProRata(t *testing.T) {
	pool := newClaimPool(t, 1000)

	got, err := pool.ClaimTokens("alice", 3000)
	if err != nil {
		t.Fatalf("alice claim failed: %v", err)
	}
	if !got.Equal(math.NewInt(800)) {
		t.Errorf("expected alice to claim 800, got %s", got)
	}

	got, err = pool.ClaimTokens("bob", 3001)
	if err != nil {
		t.Fatalf("bob claim failed: %v", err)
	}
	if !got.Equal(math.NewInt(200)) {
		t.Errorf("expected bob to claim 200, got %s", got)
	}

	if !pool.AllTokensClaimedTotal.Equal(math.NewInt(1000)) {
		t.Errorf("expected 1000 claimed in total, got %s", pool.AllTokensClaimedTotal)
	}
}

func TestClaimTokensIdempotent(t *testing.T) {
	pool := newClaimPool(t, 1000)

	if _, err := pool.ClaimTokens("alice", 3000); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}

	// Nothing new arrived, so a repeat claim has nothing due
	if _, err := pool.ClaimTokens("alice", 3001); err != types.ErrNothingDue {
		t.Errorf("expected ErrNothingDue on repeat, got %v", err)
	}

	part := pool.GetParticipant("alice")
	if !part.TotalTokensClaimed.Equal(math.NewInt(800)) {
		t.Errorf("expected total claimed unchanged at 800, got %s", part.TotalTokensClaimed)
	}
	if part.ClaimCount != 1 {
		t.Errorf("expected claim count 1, got %d", part.ClaimCount)
	}
}

// TestClaimTokensBonusDelta: a later token inflow raises everyone's due and
// a repeat claim pays only the delta.
func TestClaimTokensBonusDelta(t *testing.T) {
	pool := newClaimPool(t, 1000)

	if _, err := pool.ClaimTokens("alice", 3000); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}

	// Vendor drops a 500-token bonus straight to the pool
	pool.RecordTokenInflow(math.NewInt(500))

	got, err := pool.ClaimTokens("alice", 3001)
	if err != nil {
		t.Fatalf("bonus claim failed: %v", err)
	}
	if !got.Equal(math.NewInt(400)) {
		t.Errorf("expected bonus delta 400, got %s", got)
	}

	part := pool.GetParticipant("alice")
	if !part.TotalTokensClaimed.Equal(math.NewInt(1200)) {
		t.Errorf("expected cumulative 1200, got %s", part.TotalTokensClaimed)
	}
	if part.ClaimCount != 2 {
		t.Errorf("expected claim count 2, got %d", part.ClaimCount)
	}

	// Bob never claimed; his due covers both deliveries at once
	got, err = pool.ClaimTokens("bob", 3002)
	if err != nil {
		t.Fatalf("bob claim failed: %v", err)
	}
	if !got.Equal(math.NewInt(300)) {
		t.Errorf("expected bob to claim 300, got %s", got)
	}
}

func TestClaimTokensWrongPhase(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("alice", ether(15), 1001)

	if _, err := pool.ClaimTokens("alice", 2000); err != types.ErrInvalidPhase {
		t.Errorf("expected ErrInvalidPhase before claim phase, got %v", err)
	}
}

func TestClaimTokensNotAParticipant(t *testing.T) {
	pool := newClaimPool(t, 1000)
	if _, err := pool.ClaimTokens("stranger", 3000); err != types.ErrNotAParticipant {
		t.Errorf("expected ErrNotAParticipant, got %v", err)
	}
}

// TestLeaveAfterRelease: once funds are released nobody may walk away with
// ether; the ledger only pays entitlements.
func TestLeaveAfterRelease(t *testing.T) {
	pool := newClaimPool(t, 1000)

	if _, _, err := pool.Leave("alice", 3000); err != types.ErrInvalidPhase {
		t.Errorf("expected ErrInvalidPhase in claim phase, got %v", err)
	}
}

func TestClaimRefundProRata(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("alice", ether(12), 1001)
	pool.AddContribution("bob", ether(3), 1002)
	advanceToReview(t, pool)
	if _, _, err := pool.BeginRelease(pool.RequiredReleaseValue(), 2000); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	pool.FinishRelease(math.ZeroInt(), math.ZeroInt(), 2001)

	// Sale failed; full principal comes back
	if err := pool.VendorRefund(ether(15), 2002); err != nil {
		t.Fatalf("vendor refund failed: %v", err)
	}

	got, err := pool.ClaimRefund("alice", 3000)
	if err != nil {
		t.Fatalf("alice refund failed: %v", err)
	}
	if !got.Equal(ether(12)) {
		t.Errorf("expected 12 ether refund, got %s", got)
	}

	got, err = pool.ClaimRefund("bob", 3001)
	if err != nil {
		t.Fatalf("bob refund failed: %v", err)
	}
	if !got.Equal(ether(3)) {
		t.Errorf("expected 3 ether refund, got %s", got)
	}
}

func TestClaimRefundOneShot(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("alice", ether(15), 1001)
	advanceToReview(t, pool)
	if _, _, err := pool.BeginRelease(pool.RequiredReleaseValue(), 2000); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	pool.FinishRelease(math.ZeroInt(), math.ZeroInt(), 2001)
	if err := pool.VendorRefund(ether(15), 2002); err != nil {
		t.Fatalf("vendor refund failed: %v", err)
	}

	if _, err := pool.ClaimRefund("alice", 3000); err != nil {
		t.Fatalf("first refund failed: %v", err)
	}
	if _, err := pool.ClaimRefund("alice", 3001); err != types.ErrAlreadyClaimed {
		t.Errorf("expected ErrAlreadyClaimed on repeat, got %v", err)
	}

	part := pool.GetParticipant("alice")
	if !part.HasClaimedRefund {
		t.Error("expected refund flag set")
	}
}

// TestPercentageDust: a three-way split of a total that does not divide
// evenly truncates each share; the lost dust stays in the pool and the paid
// sum never exceeds the delivery.
func TestPercentageDust(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("a", ether(5), 1001)
	pool.AddContribution("b", ether(5), 1002)
	pool.AddContribution("c", ether(6), 1003)
	advanceToReview(t, pool)
	if _, _, err := pool.BeginRelease(pool.RequiredReleaseValue(), 2000); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	pool.FinishRelease(math.NewInt(1000), math.ZeroInt(), 2001)

	total := math.ZeroInt()
	for _, addr := range []string{"a", "b", "c"} {
		got, err := pool.ClaimTokens(addr, 3000)
		if err != nil {
			t.Fatalf("%s claim failed: %v", addr, err)
		}
		total = total.Add(got)
	}

	if total.GT(math.NewInt(1000)) {
		t.Errorf("paid out %s, more than delivered", total)
	}
	// 5/16 truncates to 312, 6/16 to 375; one token of dust remains
	if !total.Equal(math.NewInt(999)) {
		t.Errorf("expected 999 paid with 1 dust, got %s", total)
	}
}

// TestPercentageFrozenAtRelease: shares are computed against the total
// frozen at release time.
func TestPercentageFrozenAtRelease(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("alice", ether(12), 1001)
	pool.AddContribution("bob", ether(3), 1002)
	advanceToReview(t, pool)

	if _, _, err := pool.BeginRelease(pool.RequiredReleaseValue(), 2000); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	pool.FinishRelease(math.NewInt(1000), math.ZeroInt(), 2001)

	// Alice's share is 12/15 of the frozen total
	got, err := pool.ClaimTokens("alice", 3000)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if !got.Equal(math.NewInt(800)) {
		t.Errorf("expected 800 against frozen total, got %s", got)
	}
}

func TestContributionsDue(t *testing.T) {
	pool := newClaimPool(t, 1000)

	pct, refundDue, tokensDue, claimedRefund, claimedTokens, err := pool.ContributionsDue("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 12/15 of Precision
	expectedPct := ether(12).Mul(types.Precision).Quo(ether(15))
	if !pct.Equal(expectedPct) {
		t.Errorf("expected pct %s, got %s", expectedPct, pct)
	}
	if !tokensDue.Equal(math.NewInt(800)) {
		t.Errorf("expected 800 tokens due, got %s", tokensDue)
	}
	if !refundDue.IsZero() {
		t.Errorf("expected no refund due, got %s", refundDue)
	}
	if claimedRefund || claimedTokens {
		t.Error("expected no claims recorded yet")
	}

	if _, _, _, _, _, err := pool.ContributionsDue("stranger"); err != types.ErrNotAParticipant {
		t.Errorf("expected ErrNotAParticipant, got %v", err)
	}
}
