package keeper

import (
	"context"

	"cosmossdk.io/math"
	"github.com/openalpha/poolparty/x/pool/types"
)

// MsgServer defines the pool MsgServer
type MsgServer struct {
	keeper *Keeper
}

// NewMsgServerImpl creates a new MsgServer instance
func NewMsgServerImpl(keeper *Keeper) *MsgServer {
	return &MsgServer{keeper: keeper}
}

// parseAmount parses a decimal wei string from the wire.
func parseAmount(s string) (math.Int, error) {
	amount, ok := math.NewIntFromString(s)
	if !ok {
		return math.ZeroInt(), types.ErrInvalidArgument.Wrap("invalid amount")
	}
	return amount, nil
}

// Contribute handles MsgContribute
func (m *MsgServer) Contribute(ctx context.Context, msg *types.MsgContribute) (*types.MsgContributeResponse, error) {
	amount, err := parseAmount(msg.Amount)
	if err != nil {
		return nil, err
	}

	pool, err := m.keeper.Contribute(ctx, msg.Contributor, msg.PoolID, amount)
	if err != nil {
		return nil, err
	}

	return &types.MsgContributeResponse{
		PoolID:           pool.PoolID,
		TotalContributed: pool.TotalContributed.String(),
		Phase:            pool.Phase.String(),
	}, nil
}

// Leave handles MsgLeave
func (m *MsgServer) Leave(ctx context.Context, msg *types.MsgLeave) (*types.MsgLeaveResponse, error) {
	refund, fee, pool, err := m.keeper.Leave(ctx, msg.Participant, msg.PoolID)
	if err != nil {
		return nil, err
	}

	return &types.MsgLeaveResponse{
		RefundAmount: refund.String(),
		FeeCharged:   fee.String(),
		Phase:        pool.Phase.String(),
	}, nil
}

// Kick handles MsgKick
func (m *MsgServer) Kick(ctx context.Context, msg *types.MsgKick) (*types.MsgKickResponse, error) {
	reason, err := types.ParseKickReason(msg.Reason)
	if err != nil {
		return nil, err
	}

	refund, fee, err := m.keeper.Kick(ctx, msg.Configurator, msg.PoolID, msg.Participant, reason)
	if err != nil {
		return nil, err
	}

	return &types.MsgKickResponse{
		RefundAmount: refund.String(),
		FeeCharged:   fee.String(),
	}, nil
}

// SetConfigurator handles MsgSetConfigurator
func (m *MsgServer) SetConfigurator(ctx context.Context, msg *types.MsgSetConfigurator) (*types.MsgSetConfiguratorResponse, error) {
	if err := m.keeper.SetConfigurator(ctx, msg.Sender, msg.PoolID, msg.Configurator); err != nil {
		return nil, err
	}

	return &types.MsgSetConfiguratorResponse{
		Configurator: msg.Configurator,
		FeePaid:      types.AuthorizationFee.String(),
	}, nil
}

// Configure handles MsgConfigure
func (m *MsgServer) Configure(ctx context.Context, msg *types.MsgConfigure) (*types.MsgConfigureResponse, error) {
	publicPrice, err := parseAmount(msg.PublicPrice)
	if err != nil {
		return nil, err
	}
	groupPrice, err := parseAmount(msg.GroupPrice)
	if err != nil {
		return nil, err
	}

	cfg := types.SaleConfig{
		SaleTarget:      msg.SaleTarget,
		TokenDenom:      msg.TokenDenom,
		BuySelector:     msg.BuySelector,
		ClaimSelector:   msg.ClaimSelector,
		RefundSelector:  msg.RefundSelector,
		PublicPrice:     publicPrice,
		GroupPrice:      groupPrice,
		SubsidyRequired: msg.SubsidyRequired,
	}

	pool, err := m.keeper.Configure(ctx, msg.Configurator, msg.PoolID, cfg)
	if err != nil {
		return nil, err
	}

	return &types.MsgConfigureResponse{
		ActualDiscountPercent: pool.ActualDiscountPercent().String(),
	}, nil
}

// CompleteConfiguration handles MsgCompleteConfiguration
func (m *MsgServer) CompleteConfiguration(ctx context.Context, msg *types.MsgCompleteConfiguration) (*types.MsgCompleteConfigurationResponse, error) {
	pool, err := m.keeper.CompleteConfiguration(ctx, msg.Configurator, msg.PoolID)
	if err != nil {
		return nil, err
	}

	return &types.MsgCompleteConfigurationResponse{
		DueDiligenceStartTime: pool.DueDiligenceStartTime,
		Phase:                 pool.Phase.String(),
	}, nil
}

// StartReview handles MsgStartReview
func (m *MsgServer) StartReview(ctx context.Context, msg *types.MsgStartReview) (*types.MsgStartReviewResponse, error) {
	pool, err := m.keeper.StartReview(ctx, msg.Configurator, msg.PoolID)
	if err != nil {
		return nil, err
	}

	return &types.MsgStartReviewResponse{
		Phase: pool.Phase.String(),
	}, nil
}

// ReleaseFunds handles MsgReleaseFunds
func (m *MsgServer) ReleaseFunds(ctx context.Context, msg *types.MsgReleaseFunds) (*types.MsgReleaseFundsResponse, error) {
	attached, err := parseAmount(msg.Attached)
	if err != nil {
		return nil, err
	}

	subsidy, fee, tokensDelivered, pool, err := m.keeper.ReleaseFunds(ctx, msg.Configurator, msg.PoolID, attached)
	if err != nil {
		return nil, err
	}

	return &types.MsgReleaseFundsResponse{
		Subsidy:         subsidy.String(),
		Fee:             fee.String(),
		TokensDelivered: tokensDelivered.String(),
		Phase:           pool.Phase.String(),
	}, nil
}

// ClaimFromVendor handles MsgClaimFromVendor
func (m *MsgServer) ClaimFromVendor(ctx context.Context, msg *types.MsgClaimFromVendor) (*types.MsgClaimFromVendorResponse, error) {
	tokens, pool, err := m.keeper.ClaimFromVendor(ctx, msg.Configurator, msg.PoolID)
	if err != nil {
		return nil, err
	}

	return &types.MsgClaimFromVendorResponse{
		TokensDelivered: tokens.String(),
		Phase:           pool.Phase.String(),
	}, nil
}

// ClaimRefundFromVendor handles MsgClaimRefundFromVendor
func (m *MsgServer) ClaimRefundFromVendor(ctx context.Context, msg *types.MsgClaimRefundFromVendor) (*types.MsgClaimRefundFromVendorResponse, error) {
	funds, pool, err := m.keeper.ClaimRefundFromVendor(ctx, msg.Configurator, msg.PoolID)
	if err != nil {
		return nil, err
	}

	return &types.MsgClaimRefundFromVendorResponse{
		FundsReturned: funds.String(),
		Phase:         pool.Phase.String(),
	}, nil
}

// ClaimTokens handles MsgClaimTokens
func (m *MsgServer) ClaimTokens(ctx context.Context, msg *types.MsgClaimTokens) (*types.MsgClaimTokensResponse, error) {
	amount, pool, err := m.keeper.ClaimTokens(ctx, msg.Participant, msg.PoolID)
	if err != nil {
		return nil, err
	}

	part := pool.GetParticipant(msg.Participant)
	total := amount
	if part != nil {
		total = part.TotalTokensClaimed
	}

	return &types.MsgClaimTokensResponse{
		TokensClaimed:      amount.String(),
		TotalTokensClaimed: total.String(),
	}, nil
}

// ClaimRefund handles MsgClaimRefund
func (m *MsgServer) ClaimRefund(ctx context.Context, msg *types.MsgClaimRefund) (*types.MsgClaimRefundResponse, error) {
	amount, _, err := m.keeper.ClaimRefund(ctx, msg.Participant, msg.PoolID)
	if err != nil {
		return nil, err
	}

	return &types.MsgClaimRefundResponse{
		RefundAmount: amount.String(),
	}, nil
}
