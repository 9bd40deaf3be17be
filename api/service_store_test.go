package api

import (
	"testing"

	"cosmossdk.io/log"

	"github.com/openalpha/poolparty/api/types"
)

func newTestService(t *testing.T) (*StoreService, string) {
	t.Helper()
	svc := NewStoreService(log.NewNopLogger())
	resp, err := svc.CreatePool(&types.CreatePoolRequest{
		Identity:    "example.sale",
		Name:        "Example Sale",
		Description: "Collective buy into the Example sale",
		Creator:     "cosmos1creator",
	})
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	return svc, resp.PoolID
}

func TestStoreServiceCreatePool(t *testing.T) {
	svc, poolID := newTestService(t)

	pool, err := svc.GetPool(poolID)
	if err != nil {
		t.Fatalf("get pool: %v", err)
	}
	if pool.Phase != "Open" {
		t.Errorf("expected Open phase, got %s", pool.Phase)
	}
	if pool.Identity != "example.sale" {
		t.Errorf("expected identity example.sale, got %s", pool.Identity)
	}

	// Duplicate identity is rejected
	_, err = svc.CreatePool(&types.CreatePoolRequest{
		Identity:    "example.sale",
		Name:        "Dup",
		Description: "Dup",
		Creator:     "cosmos1creator",
	})
	if err == nil {
		t.Error("expected duplicate identity error")
	}
}

func TestStoreServiceContribute(t *testing.T) {
	svc, poolID := newTestService(t)

	resp, err := svc.Contribute(&types.ContributeRequest{
		PoolID:      poolID,
		Contributor: "cosmos1alice",
		Amount:      "1000000000000000000",
	})
	if err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if resp.TotalContributed != "1000000000000000000" {
		t.Errorf("expected 1 ether total, got %s", resp.TotalContributed)
	}

	participants, err := svc.GetParticipants(poolID)
	if err != nil {
		t.Fatalf("participants: %v", err)
	}
	if len(participants) != 1 || participants[0].Address != "cosmos1alice" {
		t.Errorf("unexpected participants: %+v", participants)
	}
}

func TestStoreServiceContributeBelowMinimum(t *testing.T) {
	svc, poolID := newTestService(t)

	_, err := svc.Contribute(&types.ContributeRequest{
		PoolID:      poolID,
		Contributor: "cosmos1alice",
		Amount:      "1",
	})
	if err == nil {
		t.Error("expected below-minimum error")
	}
}

func TestStoreServiceLeave(t *testing.T) {
	svc, poolID := newTestService(t)

	_, err := svc.Contribute(&types.ContributeRequest{
		PoolID:      poolID,
		Contributor: "cosmos1alice",
		Amount:      "2000000000000000000",
	})
	if err != nil {
		t.Fatalf("contribute: %v", err)
	}

	resp, err := svc.Leave(&types.LeaveRequest{PoolID: poolID, Participant: "cosmos1alice"})
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if resp.RefundAmount != "2000000000000000000" {
		t.Errorf("expected full refund, got %s", resp.RefundAmount)
	}
	if resp.FeeCharged != "0" {
		t.Errorf("expected no fee before due diligence, got %s", resp.FeeCharged)
	}

	participants, _ := svc.GetParticipants(poolID)
	if len(participants) != 0 {
		t.Errorf("expected empty ledger, got %d participants", len(participants))
	}
}

func TestStoreServiceLeaderboard(t *testing.T) {
	svc, poolID := newTestService(t)

	contributions := []struct {
		addr   string
		amount string
	}{
		{"cosmos1alice", "3000000000000000000"},
		{"cosmos1bob", "5000000000000000000"},
		{"cosmos1carol", "1000000000000000000"},
	}
	for _, c := range contributions {
		if _, err := svc.Contribute(&types.ContributeRequest{
			PoolID:      poolID,
			Contributor: c.addr,
			Amount:      c.amount,
		}); err != nil {
			t.Fatalf("contribute %s: %v", c.addr, err)
		}
	}

	entries, err := svc.GetLeaderboard(10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Address != "cosmos1bob" {
		t.Errorf("expected bob first, got %s", entries[0].Address)
	}
	if entries[2].Address != "cosmos1carol" {
		t.Errorf("expected carol last, got %s", entries[2].Address)
	}

	// Leaving removes the contributor from the ranking
	if _, err := svc.Leave(&types.LeaveRequest{PoolID: poolID, Participant: "cosmos1bob"}); err != nil {
		t.Fatalf("leave: %v", err)
	}
	entries, _ = svc.GetLeaderboard(10)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after leave, got %d", len(entries))
	}
	if entries[0].Address != "cosmos1alice" {
		t.Errorf("expected alice first after bob left, got %s", entries[0].Address)
	}
}

func TestStoreServicePhaseFilter(t *testing.T) {
	svc, _ := newTestService(t)

	pools, err := svc.GetPools("Open")
	if err != nil {
		t.Fatalf("get pools: %v", err)
	}
	if len(pools) != 1 {
		t.Errorf("expected 1 open pool, got %d", len(pools))
	}

	pools, _ = svc.GetPools("Claim")
	if len(pools) != 0 {
		t.Errorf("expected no claim-phase pools, got %d", len(pools))
	}
}
