package keeper

import (
	"encoding/json"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/openalpha/poolparty/x/registry/types"
)

// Store key prefixes
var (
	ParamsKey         = []byte{0x01}
	PoolRefKeyPrefix  = []byte{0x02}
)

// PoolKeeper defines the expected interface for the pool module
type PoolKeeper interface {
	CreatePool(ctx sdk.Context, identity, name, description, creator string, watermark, feePercent, expectedDiscountPercent, withdrawalFee math.Int, dueDiligenceDuration int64) (string, error)
	WaiveFee(ctx sdk.Context, poolID string) error
}

// Keeper manages the registry module state: the global defaults and the
// identity -> pool index.
type Keeper struct {
	cdc        codec.BinaryCodec
	storeKey   storetypes.StoreKey
	poolKeeper PoolKeeper
	logger     log.Logger
	authority  string
}

// NewKeeper creates a new registry keeper
func NewKeeper(
	cdc codec.BinaryCodec,
	storeKey storetypes.StoreKey,
	poolKeeper PoolKeeper,
	authority string,
	logger log.Logger,
) *Keeper {
	return &Keeper{
		cdc:        cdc,
		storeKey:   storeKey,
		poolKeeper: poolKeeper,
		authority:  authority,
		logger:     logger.With("module", "x/registry"),
	}
}

// Logger returns the module logger
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetAuthority returns the governance authority address
func (k *Keeper) GetAuthority() string {
	return k.authority
}

// SetPoolKeeper wires the pool dependency after construction, which breaks
// the keeper initialization cycle in app wiring.
func (k *Keeper) SetPoolKeeper(poolKeeper PoolKeeper) {
	k.poolKeeper = poolKeeper
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

// ============ Params ============

// SetParams stores the registry globals
func (k *Keeper) SetParams(ctx sdk.Context, params *types.Params) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(params)
	store.Set(ParamsKey, bz)
}

// GetParams returns the registry globals, falling back to factory defaults
// with the module authority as owner when genesis never set them.
func (k *Keeper) GetParams(ctx sdk.Context) *types.Params {
	store := k.GetStore(ctx)
	bz := store.Get(ParamsKey)
	if bz == nil {
		return types.DefaultParams(k.authority)
	}
	var params types.Params
	if err := json.Unmarshal(bz, &params); err != nil {
		return types.DefaultParams(k.authority)
	}
	return &params
}

// GetOwnerAddress returns the registry owner, the recipient of all fees.
func (k *Keeper) GetOwnerAddress(ctx sdk.Context) string {
	return k.GetParams(ctx).OwnerAddress
}

// SetOwner transfers registry ownership
func (k *Keeper) SetOwner(ctx sdk.Context, owner, newOwner string) error {
	params := k.GetParams(ctx)
	if owner != params.OwnerAddress {
		return types.ErrUnauthorized
	}
	if _, err := sdk.AccAddressFromBech32(newOwner); err != nil {
		return types.ErrInvalidArgument.Wrap("invalid new owner address")
	}
	params.OwnerAddress = newOwner
	params.UpdatedAt = ctx.BlockTime().Unix()
	k.SetParams(ctx, params)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"registry_owner_changed",
			sdk.NewAttribute("previous_owner", owner),
			sdk.NewAttribute("new_owner", newOwner),
		),
	)
	k.logger.Info("Registry ownership transferred", "new_owner", newOwner)
	return nil
}

// SetParam updates one registry default by name. Owner-only; bounds are
// enforced per parameter.
func (k *Keeper) SetParam(ctx sdk.Context, owner, name, value string) error {
	params := k.GetParams(ctx)
	if owner != params.OwnerAddress {
		return types.ErrUnauthorized
	}

	if err := params.Set(name, value); err != nil {
		return err
	}
	params.UpdatedAt = ctx.BlockTime().Unix()
	k.SetParams(ctx, params)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"registry_param_changed",
			sdk.NewAttribute("name", name),
			sdk.NewAttribute("value", value),
		),
	)
	k.logger.Info("Registry parameter updated", "name", name, "value", value)
	return nil
}

// ============ Pool references ============

// SetPoolRef saves an identity -> pool reference
func (k *Keeper) SetPoolRef(ctx sdk.Context, ref *types.PoolRef) {
	store := k.GetStore(ctx)
	key := append(PoolRefKeyPrefix, []byte(ref.Identity)...)
	bz, _ := json.Marshal(ref)
	store.Set(key, bz)
}

// GetPoolRef resolves an identity to its pool reference, or nil. Lookup
// misses are not errors.
func (k *Keeper) GetPoolRef(ctx sdk.Context, identity string) *types.PoolRef {
	store := k.GetStore(ctx)
	key := append(PoolRefKeyPrefix, []byte(identity)...)
	bz := store.Get(key)
	if bz == nil {
		return nil
	}
	var ref types.PoolRef
	if err := json.Unmarshal(bz, &ref); err != nil {
		return nil
	}
	return &ref
}

// GetAllPoolRefs returns every registered pool reference
func (k *Keeper) GetAllPoolRefs(ctx sdk.Context) []*types.PoolRef {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, PoolRefKeyPrefix)
	defer iterator.Close()

	var refs []*types.PoolRef
	for ; iterator.Valid(); iterator.Next() {
		var ref types.PoolRef
		if err := json.Unmarshal(iterator.Value(), &ref); err != nil {
			continue
		}
		refs = append(refs, &ref)
	}
	return refs
}

// CreatePool instantiates a pool for a sale identity, seeding it with the
// registry's current globals. One pool per identity.
func (k *Keeper) CreatePool(ctx sdk.Context, creator, identity, name, description string, watermarkOverride string) (string, error) {
	if identity == "" || name == "" || description == "" {
		return "", types.ErrInvalidArgument
	}
	if k.GetPoolRef(ctx, identity) != nil {
		return "", types.ErrDuplicateIdentity
	}

	params := k.GetParams(ctx)
	watermark := params.Watermark
	if watermarkOverride != "" {
		v, ok := math.NewIntFromString(watermarkOverride)
		if !ok || !v.IsPositive() {
			return "", types.ErrInvalidArgument.Wrap("invalid watermark")
		}
		watermark = v
	}

	poolID, err := k.poolKeeper.CreatePool(ctx, identity, name, description, creator,
		watermark, params.FeePercent, params.ExpectedDiscountPercent, params.WithdrawalFee, params.DueDiligenceDuration)
	if err != nil {
		return "", err
	}

	k.SetPoolRef(ctx, &types.PoolRef{
		Identity:  identity,
		PoolID:    poolID,
		Name:      name,
		Creator:   creator,
		CreatedAt: ctx.BlockTime().Unix(),
	})

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"registry_pool_created",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("identity", identity),
			sdk.NewAttribute("creator", creator),
		),
	)

	k.logger.Info("Pool registered",
		"pool_id", poolID,
		"identity", identity,
		"creator", creator,
	)
	return poolID, nil
}

// WaivePoolFee waives the release fee for one pool. Owner-only.
func (k *Keeper) WaivePoolFee(ctx sdk.Context, owner, poolID string) error {
	params := k.GetParams(ctx)
	if owner != params.OwnerAddress {
		return types.ErrUnauthorized
	}
	if err := k.poolKeeper.WaiveFee(ctx, poolID); err != nil {
		return err
	}
	k.logger.Info("Pool fee waived by registry owner", "pool_id", poolID)
	return nil
}
