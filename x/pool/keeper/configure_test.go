package keeper

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/openalpha/poolparty/x/pool/types"
)

func saleConfig(publicPrice, groupPrice int64) types.SaleConfig {
	return types.SaleConfig{
		SaleTarget:      "sale-target",
		TokenDenom:      "example",
		BuySelector:     "buy()",
		ClaimSelector:   types.NoSelector,
		RefundSelector:  types.NoSelector,
		PublicPrice:     math.NewInt(publicPrice),
		GroupPrice:      math.NewInt(groupPrice),
		SubsidyRequired: true,
	}
}

func TestSetConfigurator(t *testing.T) {
	pool := newTestPool()

	// Only legal once the watermark is reached
	if err := pool.SetConfigurator("configurator", 1001); err != types.ErrInvalidPhase {
		t.Errorf("expected ErrInvalidPhase while open, got %v", err)
	}

	pool.AddContribution("whale", ether(15), 1002)
	if err := pool.SetConfigurator("configurator", 1003); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.AuthorizedConfigurator != "configurator" {
		t.Errorf("expected configurator bound, got %q", pool.AuthorizedConfigurator)
	}

	// Binding is one-shot
	if err := pool.SetConfigurator("other", 1004); err != types.ErrAlreadySet {
		t.Errorf("expected ErrAlreadySet, got %v", err)
	}
}

func TestConfigureValidation(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)
	pool.SetConfigurator("configurator", 1002)

	testCases := []struct {
		name   string
		mutate func(c *types.SaleConfig)
	}{
		{"empty sale target", func(c *types.SaleConfig) { c.SaleTarget = "" }},
		{"empty token denom", func(c *types.SaleConfig) { c.TokenDenom = "" }},
		{"empty buy selector", func(c *types.SaleConfig) { c.BuySelector = "" }},
		{"zero public price", func(c *types.SaleConfig) { c.PublicPrice = math.ZeroInt() }},
		{"zero group price", func(c *types.SaleConfig) { c.GroupPrice = math.ZeroInt() }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := saleConfig(100, 85)
			tc.mutate(&cfg)
			if err := pool.Configure(cfg, 1003); err != types.ErrInvalidArgument {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestActualDiscountPercent(t *testing.T) {
	testCases := []struct {
		name        string
		publicPrice int64
		groupPrice  int64
		expected    int64
	}{
		{"15 percent", 100, 85, 15},
		{"10 percent", 100, 90, 10},
		{"truncates", 1000, 851, 14}, // 14.9 truncates to 14
		{"zero discount", 100, 100, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pool := newTestPool()
			pool.AddContribution("whale", ether(15), 1001)
			pool.SetConfigurator("configurator", 1002)
			if err := pool.Configure(saleConfig(tc.publicPrice, tc.groupPrice), 1003); err != nil {
				t.Fatalf("configure failed: %v", err)
			}
			if !pool.ActualDiscountPercent().Equal(math.NewInt(tc.expected)) {
				t.Errorf("expected %d, got %s", tc.expected, pool.ActualDiscountPercent())
			}
		})
	}
}

// TestDiscountGate verifies that configuration completes only when the
// negotiated discount meets the registry-set expectation of 15%.
func TestDiscountGate(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)
	pool.SetConfigurator("configurator", 1002)

	// 10% discount falls short of the expected 15%
	pool.Configure(saleConfig(100, 90), 1003)
	if err := pool.CompleteConfiguration(1004); err != types.ErrDiscountTooLow {
		t.Errorf("expected ErrDiscountTooLow at 10%%, got %v", err)
	}
	if pool.Phase != types.PhaseWatermarkReached {
		t.Errorf("expected phase unchanged, got %s", pool.Phase)
	}

	// Reconfiguring at exactly 15% passes
	pool.Configure(saleConfig(100, 85), 1005)
	if err := pool.CompleteConfiguration(1006); err != nil {
		t.Fatalf("unexpected error at 15%%: %v", err)
	}
	if pool.Phase != types.PhaseDueDiligence {
		t.Errorf("expected due_diligence, got %s", pool.Phase)
	}
	if pool.DueDiligenceStartTime != 1006 {
		t.Errorf("expected due diligence start 1006, got %d", pool.DueDiligenceStartTime)
	}
}

func TestCompleteConfigurationRequiresConfig(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)
	pool.SetConfigurator("configurator", 1002)

	if err := pool.CompleteConfiguration(1003); err != types.ErrNotConfigured {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestStartReviewTiming(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)
	advanceToDueDiligence(t, pool)

	start := pool.DueDiligenceStartTime
	duration := pool.DueDiligenceDuration

	// One second early fails
	if err := pool.StartReview(start + duration - 1); err != types.ErrTooEarly {
		t.Errorf("expected ErrTooEarly one second early, got %v", err)
	}
	if pool.Phase != types.PhaseDueDiligence {
		t.Errorf("expected phase unchanged, got %s", pool.Phase)
	}

	// Exactly at expiry succeeds
	if err := pool.StartReview(start + duration); err != nil {
		t.Fatalf("unexpected error at expiry: %v", err)
	}
	if pool.Phase != types.PhaseInReview {
		t.Errorf("expected in_review, got %s", pool.Phase)
	}

	// Repeat call fails on phase
	if err := pool.StartReview(start + duration + 1); err != types.ErrInvalidPhase {
		t.Errorf("expected ErrInvalidPhase on repeat, got %v", err)
	}
}

func TestContributeDuringDueDiligence(t *testing.T) {
	pool := newTestPool()
	pool.AddContribution("whale", ether(15), 1001)
	advanceToDueDiligence(t, pool)

	// Late joiners remain welcome until review starts
	if err := pool.AddContribution("late", ether(1), 2000); err != nil {
		t.Fatalf("unexpected error in due diligence: %v", err)
	}

	if err := pool.StartReview(1000 + 8*24*60*60); err != nil {
		t.Fatalf("start review failed: %v", err)
	}
	if err := pool.AddContribution("toolate", ether(1), 3000); err != types.ErrInvalidPhase {
		t.Errorf("expected ErrInvalidPhase in review, got %v", err)
	}
}
