package api

import (
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/google/btree"
	"github.com/google/uuid"
	"github.com/huandu/skiplist"

	"github.com/openalpha/poolparty/api/types"
	pooltypes "github.com/openalpha/poolparty/x/pool/types"
	registrytypes "github.com/openalpha/poolparty/x/registry/types"
)

// StoreService is the standalone in-memory PoolService. It runs the same
// pool state machine as the chain but without consensus or fund custody,
// which makes it suitable for development and API testing only.
type StoreService struct {
	mu sync.RWMutex

	pools      *btree.BTreeG[*poolEntry]
	byIdentity map[string]string // identity -> pool ID

	// Leaderboard ordered by total contributed, descending
	leaders      *skiplist.SkipList
	leaderByAddr map[string]*leaderKey

	logger log.Logger
}

type poolEntry struct {
	pool *pooltypes.Pool
}

// leaderKey orders contributors by total contributed, then address for a
// stable tie-break.
type leaderKey struct {
	Total   math.Int
	Address string
	Pools   map[string]bool
}

func compareLeaderKeys(k1, k2 interface{}) int {
	a := k1.(*leaderKey)
	b := k2.(*leaderKey)
	if c := a.Total.BigInt().Cmp(b.Total.BigInt()); c != 0 {
		return c
	}
	if a.Address < b.Address {
		return -1
	}
	if a.Address > b.Address {
		return 1
	}
	return 0
}

// NewStoreService creates a standalone in-memory pool service
func NewStoreService(logger log.Logger) *StoreService {
	return &StoreService{
		pools: btree.NewG[*poolEntry](2, func(a, b *poolEntry) bool {
			return a.pool.PoolID < b.pool.PoolID
		}),
		byIdentity:   make(map[string]string),
		leaders:      skiplist.New(skiplist.GreaterThanFunc(compareLeaderKeys)),
		leaderByAddr: make(map[string]*leaderKey),
		logger:       logger.With("module", "api/store"),
	}
}

var _ types.PoolService = (*StoreService)(nil)

// CreatePool creates a pool with the registry factory defaults
func (s *StoreService) CreatePool(req *types.CreatePoolRequest) (*types.CreatePoolResponse, error) {
	if req.Identity == "" || req.Name == "" || req.Description == "" {
		return nil, fmt.Errorf("identity, name and description are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byIdentity[req.Identity]; exists {
		return nil, fmt.Errorf("identity %s already has a pool", req.Identity)
	}

	watermark := registrytypes.DefaultWatermark
	if req.Watermark != "" {
		v, ok := math.NewIntFromString(req.Watermark)
		if !ok || !v.IsPositive() {
			return nil, fmt.Errorf("invalid watermark: %s", req.Watermark)
		}
		watermark = v
	}

	pool := pooltypes.NewPool(req.Identity, req.Name, req.Description, req.Creator,
		watermark,
		registrytypes.DefaultFeePercent,
		registrytypes.DefaultExpectedDiscountPercent,
		registrytypes.DefaultWithdrawalFee,
		registrytypes.DefaultDueDiligenceDuration,
		time.Now().Unix())

	s.pools.ReplaceOrInsert(&poolEntry{pool: pool})
	s.byIdentity[req.Identity] = pool.PoolID

	s.logger.Info("Pool created", "pool_id", pool.PoolID, "identity", req.Identity)

	return &types.CreatePoolResponse{
		RequestID: uuid.New().String(),
		PoolID:    pool.PoolID,
		Identity:  req.Identity,
	}, nil
}

// Contribute adds funds to a pool
func (s *StoreService) Contribute(req *types.ContributeRequest) (*types.ContributeResponse, error) {
	amount, ok := math.NewIntFromString(req.Amount)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", req.Amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pool, err := s.getPool(req.PoolID)
	if err != nil {
		return nil, err
	}

	if err := pool.AddContribution(req.Contributor, amount, time.Now().Unix()); err != nil {
		return nil, err
	}
	s.addToLeaderboard(req.Contributor, req.PoolID, amount)

	return &types.ContributeResponse{
		RequestID:        uuid.New().String(),
		PoolID:           pool.PoolID,
		TotalContributed: pool.TotalContributed.String(),
		Phase:            pool.Phase.String(),
	}, nil
}

// Leave withdraws the participant's full contribution
func (s *StoreService) Leave(req *types.LeaveRequest) (*types.LeaveResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool, err := s.getPool(req.PoolID)
	if err != nil {
		return nil, err
	}

	refund, fee, err := pool.Leave(req.Participant, time.Now().Unix())
	if err != nil {
		return nil, err
	}
	s.removeFromLeaderboard(req.Participant, req.PoolID, refund.Add(fee))

	return &types.LeaveResponse{
		RequestID:    uuid.New().String(),
		RefundAmount: refund.String(),
		FeeCharged:   fee.String(),
	}, nil
}

// GetPools lists pools, optionally filtered by phase name
func (s *StoreService) GetPools(phase string) ([]*types.PoolSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]*types.PoolSummary, 0, s.pools.Len())
	s.pools.Ascend(func(entry *poolEntry) bool {
		if phase == "" || entry.pool.Phase.String() == phase {
			summaries = append(summaries, summarize(entry.pool))
		}
		return true
	})
	return summaries, nil
}

// GetPool returns the full pool state
func (s *StoreService) GetPool(poolID string) (*types.PoolDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool, err := s.getPool(poolID)
	if err != nil {
		return nil, err
	}

	detail := &types.PoolDetail{
		PoolSummary:           *summarize(pool),
		Description:           pool.Description,
		Configurator:          pool.AuthorizedConfigurator,
		SubsidyRequired:       pool.Sale.SubsidyRequired,
		FeePercent:            pool.FeePercent.String(),
		FeeWaived:             pool.FeeWaived,
		WithdrawalFee:         pool.WithdrawalFee.String(),
		DueDiligenceStartTime: pool.DueDiligenceStartTime,
		FundsReleased:         pool.FundsReleased,
		PoolTokenBalance:      pool.PoolTokenBalance.String(),
		BalanceSnapshot:       pool.BalanceSnapshot.String(),
	}
	if pool.SaleConfigured {
		detail.SaleTarget = pool.Sale.SaleTarget
		detail.TokenDenom = pool.Sale.TokenDenom
		detail.PublicPrice = pool.Sale.PublicPrice.String()
		detail.GroupPrice = pool.Sale.GroupPrice.String()
	}
	return detail, nil
}

// GetParticipants returns the active participants in ledger order
func (s *StoreService) GetParticipants(poolID string) ([]*types.ParticipantInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool, err := s.getPool(poolID)
	if err != nil {
		return nil, err
	}

	infos := make([]*types.ParticipantInfo, 0, len(pool.ParticipantOrder))
	for _, addr := range pool.ParticipantOrder {
		part := pool.GetParticipant(addr)
		if part == nil || !part.IsActive {
			continue
		}
		infos = append(infos, &types.ParticipantInfo{
			Address:            part.Address,
			AmountContributed:  part.AmountContributed.String(),
			TotalTokensClaimed: part.TotalTokensClaimed.String(),
			ClaimCount:         int(part.ClaimCount),
			HasClaimedRefund:   part.HasClaimedRefund,
			JoinedAt:           part.JoinedAt,
		})
	}
	return infos, nil
}

// GetContributionsDue reports a participant's frozen share and claimable
// amounts
func (s *StoreService) GetContributionsDue(poolID, address string) (*types.ContributionsDue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool, err := s.getPool(poolID)
	if err != nil {
		return nil, err
	}

	percentage, refundDue, tokensDue, _, _, err := pool.ContributionsDue(address)
	if err != nil {
		return nil, err
	}
	part := pool.GetParticipant(address)

	return &types.ContributionsDue{
		PoolID:                 poolID,
		Address:                address,
		AmountContributed:      part.AmountContributed.String(),
		PercentageContribution: percentage.String(),
		TokensDue:              tokensDue.String(),
		RefundDue:              refundDue.String(),
		TotalTokensClaimed:     part.TotalTokensClaimed.String(),
		RefundPaid:             part.RefundPaid.String(),
	}, nil
}

// GetLeaderboard returns the top contributors across all pools
func (s *StoreService) GetLeaderboard(limit int) ([]*types.LeaderboardEntry, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*types.LeaderboardEntry, 0, limit)
	rank := 1
	for elem := s.leaders.Front(); elem != nil && rank <= limit; elem = elem.Next() {
		key := elem.Key().(*leaderKey)
		entries = append(entries, &types.LeaderboardEntry{
			Rank:             rank,
			Address:          key.Address,
			TotalContributed: key.Total.String(),
			PoolCount:        len(key.Pools),
		})
		rank++
	}
	return entries, nil
}

// getPool looks up a pool by ID. Caller holds the lock.
func (s *StoreService) getPool(poolID string) (*pooltypes.Pool, error) {
	probe := &poolEntry{pool: &pooltypes.Pool{PoolID: poolID}}
	entry, ok := s.pools.Get(probe)
	if !ok {
		return nil, fmt.Errorf("pool %s not found", poolID)
	}
	return entry.pool, nil
}

// addToLeaderboard credits a contribution. Caller holds the lock.
func (s *StoreService) addToLeaderboard(addr, poolID string, amount math.Int) {
	key := s.leaderByAddr[addr]
	if key == nil {
		key = &leaderKey{Total: math.ZeroInt(), Address: addr, Pools: make(map[string]bool)}
		s.leaderByAddr[addr] = key
	} else {
		s.leaders.Remove(key)
	}
	key.Total = key.Total.Add(amount)
	key.Pools[poolID] = true
	s.leaders.Set(key, addr)
}

// removeFromLeaderboard debits a full withdrawal. Caller holds the lock.
func (s *StoreService) removeFromLeaderboard(addr, poolID string, amount math.Int) {
	key := s.leaderByAddr[addr]
	if key == nil {
		return
	}
	s.leaders.Remove(key)
	key.Total = key.Total.Sub(amount)
	delete(key.Pools, poolID)
	if !key.Total.IsPositive() {
		delete(s.leaderByAddr, addr)
		return
	}
	s.leaders.Set(key, addr)
}

func summarize(pool *pooltypes.Pool) *types.PoolSummary {
	return &types.PoolSummary{
		PoolID:           pool.PoolID,
		Identity:         pool.Identity,
		Name:             pool.Name,
		Phase:            pool.Phase.String(),
		Watermark:        pool.Watermark.String(),
		TotalContributed: pool.TotalContributed.String(),
		ParticipantCount: int(pool.ParticipantCount),
		CreatedAt:        pool.CreatedAt,
	}
}
