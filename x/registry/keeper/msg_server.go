package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/openalpha/poolparty/x/registry/types"
)

// MsgServer defines the registry MsgServer
type MsgServer struct {
	keeper *Keeper
}

// NewMsgServerImpl creates a new MsgServer instance
func NewMsgServerImpl(keeper *Keeper) *MsgServer {
	return &MsgServer{keeper: keeper}
}

// CreatePool handles MsgCreatePool
func (m *MsgServer) CreatePool(ctx context.Context, msg *types.MsgCreatePool) (*types.MsgCreatePoolResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	poolID, err := m.keeper.CreatePool(sdkCtx, msg.Creator, msg.Identity, msg.Name, msg.Description, msg.Watermark)
	if err != nil {
		return nil, err
	}

	watermark := msg.Watermark
	if watermark == "" {
		watermark = m.keeper.GetParams(sdkCtx).Watermark.String()
	}

	return &types.MsgCreatePoolResponse{
		PoolID:    poolID,
		Identity:  msg.Identity,
		Watermark: watermark,
	}, nil
}

// SetParam handles MsgSetParam
func (m *MsgServer) SetParam(ctx context.Context, msg *types.MsgSetParam) (*types.MsgSetParamResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := m.keeper.SetParam(sdkCtx, msg.Owner, msg.Name, msg.Value); err != nil {
		return nil, err
	}

	return &types.MsgSetParamResponse{
		Name:  msg.Name,
		Value: msg.Value,
	}, nil
}

// SetOwner handles MsgSetOwner
func (m *MsgServer) SetOwner(ctx context.Context, msg *types.MsgSetOwner) (*types.MsgSetOwnerResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := m.keeper.SetOwner(sdkCtx, msg.Owner, msg.NewOwner); err != nil {
		return nil, err
	}

	return &types.MsgSetOwnerResponse{
		NewOwner: msg.NewOwner,
	}, nil
}

// WaivePoolFee handles MsgWaivePoolFee
func (m *MsgServer) WaivePoolFee(ctx context.Context, msg *types.MsgWaivePoolFee) (*types.MsgWaivePoolFeeResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := m.keeper.WaivePoolFee(sdkCtx, msg.Owner, msg.PoolID); err != nil {
		return nil, err
	}

	return &types.MsgWaivePoolFeeResponse{
		PoolID: msg.PoolID,
	}, nil
}
