package keeper

import (
	"context"
	"encoding/json"
	"math/big"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/poolparty/metrics"
	"github.com/openalpha/poolparty/x/pool/types"
)

// Store key prefixes
var (
	PoolKeyPrefix         = []byte{0x01}
	IdentityIndexPrefix   = []byte{0x02}
	PoolStatsKeyPrefix    = []byte{0x03}
)

// BankKeeper defines the expected interface for the bank module
type BankKeeper interface {
	SendCoins(ctx context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
}

// RegistryKeeper defines the expected interface for the registry module
type RegistryKeeper interface {
	GetOwnerAddress(ctx sdk.Context) string
}

// Keeper manages the pool module state
type Keeper struct {
	cdc            codec.BinaryCodec
	storeKey       storetypes.StoreKey
	bankKeeper     BankKeeper
	registryKeeper RegistryKeeper
	gateway        SaleGateway
	logger         log.Logger
	authority      string
	collector      *metrics.Collector
}

// NewKeeper creates a new pool keeper
func NewKeeper(
	cdc codec.BinaryCodec,
	storeKey storetypes.StoreKey,
	bankKeeper BankKeeper,
	registryKeeper RegistryKeeper,
	gateway SaleGateway,
	authority string,
	logger log.Logger,
) *Keeper {
	k := &Keeper{
		cdc:            cdc,
		storeKey:       storeKey,
		bankKeeper:     bankKeeper,
		registryKeeper: registryKeeper,
		gateway:        gateway,
		authority:      authority,
		logger:         logger.With("module", "x/pool"),
		collector:      metrics.GetCollector(),
	}
	return k
}

// Logger returns the module logger
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetAuthority returns the governance authority address
func (k *Keeper) GetAuthority() string {
	return k.authority
}

// SetRegistryKeeper wires the registry dependency after construction, which
// breaks the keeper initialization cycle in app wiring.
func (k *Keeper) SetRegistryKeeper(registryKeeper RegistryKeeper) {
	k.registryKeeper = registryKeeper
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

// ============ Pool Operations ============

// SetPool saves a pool to the store and maintains the identity index
func (k *Keeper) SetPool(ctx sdk.Context, pool *types.Pool) {
	store := k.GetStore(ctx)
	key := append(PoolKeyPrefix, []byte(pool.PoolID)...)
	bz, _ := json.Marshal(pool)
	store.Set(key, bz)

	idxKey := append(IdentityIndexPrefix, []byte(pool.Identity)...)
	store.Set(idxKey, []byte(pool.PoolID))
}

// GetPool retrieves a pool from the store
func (k *Keeper) GetPool(ctx sdk.Context, poolID string) *types.Pool {
	store := k.GetStore(ctx)
	key := append(PoolKeyPrefix, []byte(poolID)...)
	bz := store.Get(key)
	if bz == nil {
		return nil
	}
	var pool types.Pool
	if err := json.Unmarshal(bz, &pool); err != nil {
		return nil
	}
	return &pool
}

// GetPoolByIdentity retrieves a pool via the identity index
func (k *Keeper) GetPoolByIdentity(ctx sdk.Context, identity string) *types.Pool {
	store := k.GetStore(ctx)
	idxKey := append(IdentityIndexPrefix, []byte(identity)...)
	bz := store.Get(idxKey)
	if bz == nil {
		return nil
	}
	return k.GetPool(ctx, string(bz))
}

// GetAllPools returns all pools
func (k *Keeper) GetAllPools(ctx sdk.Context) []*types.Pool {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, PoolKeyPrefix)
	defer iterator.Close()

	var pools []*types.Pool
	for ; iterator.Valid(); iterator.Next() {
		var pool types.Pool
		if err := json.Unmarshal(iterator.Value(), &pool); err != nil {
			continue
		}
		pools = append(pools, &pool)
	}
	return pools
}

// GetPoolsByPhase returns pools filtered by lifecycle phase
func (k *Keeper) GetPoolsByPhase(ctx sdk.Context, phase types.Phase) []*types.Pool {
	allPools := k.GetAllPools(ctx)
	var filtered []*types.Pool
	for _, pool := range allPools {
		if pool.Phase == phase {
			filtered = append(filtered, pool)
		}
	}
	return filtered
}

// CreatePool instantiates a pool seeded with registry globals. Called by the
// registry module through the app-level adapter.
func (k *Keeper) CreatePool(ctx sdk.Context, identity, name, description, creator string, watermark, feePercent, expectedDiscountPercent, withdrawalFee math.Int, dueDiligenceDuration int64) (string, error) {
	if identity == "" || name == "" || description == "" {
		return "", types.ErrInvalidArgument
	}
	now := ctx.BlockTime().Unix()
	pool := types.NewPool(identity, name, description, creator, watermark, feePercent, expectedDiscountPercent, withdrawalFee, dueDiligenceDuration, now)
	k.SetPool(ctx, pool)
	k.collector.RecordPoolCreated()

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"pool_created",
			sdk.NewAttribute("pool_id", pool.PoolID),
			sdk.NewAttribute("identity", pool.Identity),
			sdk.NewAttribute("creator", creator),
			sdk.NewAttribute("watermark", watermark.String()),
		),
	)

	k.logger.Info("Pool created",
		"pool_id", pool.PoolID,
		"identity", identity,
		"creator", creator,
		"watermark", watermark.String(),
	)
	return pool.PoolID, nil
}

// WaiveFee marks the pool's release fee as waived. Registry-owner authority
// is checked by the registry module before delegating here.
func (k *Keeper) WaiveFee(ctx sdk.Context, poolID string) error {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return types.ErrPoolNotFound
	}
	if err := pool.WaiveFee(ctx.BlockTime().Unix()); err != nil {
		return err
	}
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"pool_fee_waived",
			sdk.NewAttribute("pool_id", poolID),
		),
	)
	k.logger.Info("Pool fee waived", "pool_id", poolID)
	return nil
}

// registryOwner resolves the registry owner account for fee payouts
func (k *Keeper) registryOwner(ctx sdk.Context) (sdk.AccAddress, error) {
	owner := k.registryKeeper.GetOwnerAddress(ctx)
	return sdk.AccAddressFromBech32(owner)
}

// emitPhaseChange emits the shared phase-transition event when a keeper
// operation moved the pool's phase
func (k *Keeper) emitPhaseChange(ctx sdk.Context, pool *types.Pool, before types.Phase) {
	if pool.Phase == before {
		return
	}
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"pool_phase_changed",
			sdk.NewAttribute("pool_id", pool.PoolID),
			sdk.NewAttribute("from", before.String()),
			sdk.NewAttribute("to", pool.Phase.String()),
		),
	)
	k.logger.Info("Pool phase changed",
		"pool_id", pool.PoolID,
		"from", before.String(),
		"to", pool.Phase.String(),
	)
	k.collector.RecordPhaseTransition(before.String(), pool.Phase.String())
}

// weiFloat converts a wei amount to a float for metrics. Precision loss is
// fine here.
func weiFloat(v math.Int) float64 {
	f, _ := new(big.Float).SetInt(v.BigInt()).Float64()
	return f
}
