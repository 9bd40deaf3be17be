package pool

import (
	"encoding/json"

	"cosmossdk.io/core/appmodule"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/codec"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/module"
	"github.com/grpc-ecosystem/grpc-gateway/runtime"

	"github.com/openalpha/poolparty/x/pool/keeper"
	"github.com/openalpha/poolparty/x/pool/types"
)

const (
	ModuleName = types.ModuleName
)

var (
	_ module.AppModuleBasic = AppModuleBasic{}
	_ appmodule.AppModule   = AppModule{}
)

// AppModuleBasic defines the basic application module for pool
type AppModuleBasic struct{}

// Name returns the module's name
func (AppModuleBasic) Name() string {
	return ModuleName
}

// RegisterLegacyAminoCodec registers the module's types on the given LegacyAmino codec
func (AppModuleBasic) RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&types.MsgContribute{}, "pool/MsgContribute", nil)
	cdc.RegisterConcrete(&types.MsgLeave{}, "pool/MsgLeave", nil)
	cdc.RegisterConcrete(&types.MsgKick{}, "pool/MsgKick", nil)
	cdc.RegisterConcrete(&types.MsgSetConfigurator{}, "pool/MsgSetConfigurator", nil)
	cdc.RegisterConcrete(&types.MsgConfigure{}, "pool/MsgConfigure", nil)
	cdc.RegisterConcrete(&types.MsgCompleteConfiguration{}, "pool/MsgCompleteConfiguration", nil)
	cdc.RegisterConcrete(&types.MsgStartReview{}, "pool/MsgStartReview", nil)
	cdc.RegisterConcrete(&types.MsgReleaseFunds{}, "pool/MsgReleaseFunds", nil)
	cdc.RegisterConcrete(&types.MsgClaimFromVendor{}, "pool/MsgClaimFromVendor", nil)
	cdc.RegisterConcrete(&types.MsgClaimRefundFromVendor{}, "pool/MsgClaimRefundFromVendor", nil)
	cdc.RegisterConcrete(&types.MsgClaimTokens{}, "pool/MsgClaimTokens", nil)
	cdc.RegisterConcrete(&types.MsgClaimRefund{}, "pool/MsgClaimRefund", nil)
}

// RegisterInterfaces registers the module's interface types
func (AppModuleBasic) RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	registry.RegisterImplementations((*sdk.Msg)(nil),
		&types.MsgContribute{},
		&types.MsgLeave{},
		&types.MsgKick{},
		&types.MsgSetConfigurator{},
		&types.MsgConfigure{},
		&types.MsgCompleteConfiguration{},
		&types.MsgStartReview{},
		&types.MsgReleaseFunds{},
		&types.MsgClaimFromVendor{},
		&types.MsgClaimRefundFromVendor{},
		&types.MsgClaimTokens{},
		&types.MsgClaimRefund{},
	)
}

// DefaultGenesis returns default genesis state as raw bytes
func (AppModuleBasic) DefaultGenesis(cdc codec.JSONCodec) json.RawMessage {
	return nil
}

// ValidateGenesis performs genesis state validation
func (AppModuleBasic) ValidateGenesis(cdc codec.JSONCodec, config client.TxEncodingConfig, bz json.RawMessage) error {
	return nil
}

// RegisterGRPCGatewayRoutes registers the gRPC Gateway routes for the module
func (AppModuleBasic) RegisterGRPCGatewayRoutes(clientCtx client.Context, mux *runtime.ServeMux) {
}

// AppModule implements an application module for the pool module
type AppModule struct {
	AppModuleBasic
	keeper *keeper.Keeper
}

// NewAppModule creates a new AppModule object
func NewAppModule(k *keeper.Keeper) AppModule {
	return AppModule{
		AppModuleBasic: AppModuleBasic{},
		keeper:         k,
	}
}

// Name returns the module's name
func (am AppModule) Name() string {
	return ModuleName
}

// RegisterServices registers module services
func (am AppModule) RegisterServices(cfg module.Configurator) {
	_ = keeper.NewMsgServerImpl(am.keeper)
}

// IsOnePerModuleType implements the depinject.OnePerModuleType interface
func (am AppModule) IsOnePerModuleType() {}

// IsAppModule implements the appmodule.AppModule interface
func (am AppModule) IsAppModule() {}

// EndBlocker surfaces elapsed due-diligence periods and refreshes the
// aggregate module stats
func (am AppModule) EndBlocker(ctx sdk.Context) error {
	return am.keeper.EndBlocker(ctx)
}
