package app

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	poolkeeper "github.com/openalpha/poolparty/x/pool/keeper"
	registrykeeper "github.com/openalpha/poolparty/x/registry/keeper"
)

// registryPoolAdapter lets the registry module instantiate pools and waive
// fees without importing the pool keeper package directly.
type registryPoolAdapter struct {
	keeper *poolkeeper.Keeper
}

func newRegistryPoolAdapter(keeper *poolkeeper.Keeper) registrykeeper.PoolKeeper {
	return registryPoolAdapter{keeper: keeper}
}

func (a registryPoolAdapter) CreatePool(ctx sdk.Context, identity, name, description, creator string, watermark, feePercent, expectedDiscountPercent, withdrawalFee math.Int, dueDiligenceDuration int64) (string, error) {
	return a.keeper.CreatePool(ctx, identity, name, description, creator, watermark, feePercent, expectedDiscountPercent, withdrawalFee, dueDiligenceDuration)
}

func (a registryPoolAdapter) WaiveFee(ctx sdk.Context, poolID string) error {
	return a.keeper.WaiveFee(ctx, poolID)
}

// poolRegistryAdapter resolves the registry owner for fee payouts.
type poolRegistryAdapter struct {
	keeper *registrykeeper.Keeper
}

func newPoolRegistryAdapter(keeper *registrykeeper.Keeper) poolkeeper.RegistryKeeper {
	return poolRegistryAdapter{keeper: keeper}
}

func (a poolRegistryAdapter) GetOwnerAddress(ctx sdk.Context) string {
	return a.keeper.GetOwnerAddress(ctx)
}
