package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Message types
const (
	TypeMsgContribute            = "contribute"
	TypeMsgLeave                 = "leave"
	TypeMsgKick                  = "kick"
	TypeMsgSetConfigurator       = "set_configurator"
	TypeMsgConfigure             = "configure"
	TypeMsgCompleteConfiguration = "complete_configuration"
	TypeMsgStartReview           = "start_review"
	TypeMsgReleaseFunds          = "release_funds"
	TypeMsgClaimFromVendor       = "claim_from_vendor"
	TypeMsgClaimRefundFromVendor = "claim_refund_from_vendor"
	TypeMsgClaimTokens           = "claim_tokens"
	TypeMsgClaimRefund           = "claim_refund"
)

// MsgContribute adds funds to a pool
type MsgContribute struct {
	Contributor string `json:"contributor"`
	PoolID      string `json:"pool_id"`
	Amount      string `json:"amount"`
}

func (msg MsgContribute) Route() string { return ModuleName }
func (msg MsgContribute) Type() string  { return TypeMsgContribute }

func (msg MsgContribute) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Contributor); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	if msg.Amount == "" {
		return ErrInvalidArgument
	}
	return nil
}

func (msg MsgContribute) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Contributor)
	return []sdk.AccAddress{addr}
}

func (*MsgContribute) ProtoMessage()    {}
func (msg *MsgContribute) Reset()       { *msg = MsgContribute{} }
func (msg MsgContribute) String() string {
	return fmt.Sprintf("MsgContribute{Contributor: %s, PoolID: %s, Amount: %s}", msg.Contributor, msg.PoolID, msg.Amount)
}

// MsgContributeResponse is the Contribute response
type MsgContributeResponse struct {
	PoolID           string `json:"pool_id"`
	TotalContributed string `json:"total_contributed"`
	Phase            string `json:"phase"`
}

// MsgLeave withdraws the caller's full contribution before release
type MsgLeave struct {
	Participant string `json:"participant"`
	PoolID      string `json:"pool_id"`
}

func (msg MsgLeave) Route() string { return ModuleName }
func (msg MsgLeave) Type() string  { return TypeMsgLeave }

func (msg MsgLeave) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Participant); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return nil
}

func (msg MsgLeave) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Participant)
	return []sdk.AccAddress{addr}
}

func (*MsgLeave) ProtoMessage()    {}
func (msg *MsgLeave) Reset()       { *msg = MsgLeave{} }
func (msg MsgLeave) String() string {
	return fmt.Sprintf("MsgLeave{Participant: %s, PoolID: %s}", msg.Participant, msg.PoolID)
}

// MsgLeaveResponse is the Leave response
type MsgLeaveResponse struct {
	RefundAmount string `json:"refund_amount"`
	FeeCharged   string `json:"fee_charged"`
	Phase        string `json:"phase"`
}

// MsgKick removes a participant who failed compliance checks
type MsgKick struct {
	Configurator string `json:"configurator"`
	PoolID       string `json:"pool_id"`
	Participant  string `json:"participant"`
	Reason       string `json:"reason"`
}

func (msg MsgKick) Route() string { return ModuleName }
func (msg MsgKick) Type() string  { return TypeMsgKick }

func (msg MsgKick) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Configurator); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(msg.Participant); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return nil
}

func (msg MsgKick) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Configurator)
	return []sdk.AccAddress{addr}
}

func (*MsgKick) ProtoMessage()    {}
func (msg *MsgKick) Reset()       { *msg = MsgKick{} }
func (msg MsgKick) String() string {
	return fmt.Sprintf("MsgKick{Configurator: %s, PoolID: %s, Participant: %s, Reason: %s}", msg.Configurator, msg.PoolID, msg.Participant, msg.Reason)
}

// MsgKickResponse is the Kick response
type MsgKickResponse struct {
	RefundAmount string `json:"refund_amount"`
	FeeCharged   string `json:"fee_charged"`
}

// MsgSetConfigurator binds the oracle-resolved identity owner as the sole
// account allowed to configure the pool. The sender pays the authorization
// fee.
type MsgSetConfigurator struct {
	Sender       string `json:"sender"`
	PoolID       string `json:"pool_id"`
	Configurator string `json:"configurator"`
}

func (msg MsgSetConfigurator) Route() string { return ModuleName }
func (msg MsgSetConfigurator) Type() string  { return TypeMsgSetConfigurator }

func (msg MsgSetConfigurator) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(msg.Configurator); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return nil
}

func (msg MsgSetConfigurator) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Sender)
	return []sdk.AccAddress{addr}
}

func (*MsgSetConfigurator) ProtoMessage()    {}
func (msg *MsgSetConfigurator) Reset()       { *msg = MsgSetConfigurator{} }
func (msg MsgSetConfigurator) String() string {
	return fmt.Sprintf("MsgSetConfigurator{Sender: %s, PoolID: %s, Configurator: %s}", msg.Sender, msg.PoolID, msg.Configurator)
}

// MsgSetConfiguratorResponse is the SetConfigurator response
type MsgSetConfiguratorResponse struct {
	Configurator string `json:"configurator"`
	FeePaid      string `json:"fee_paid"`
}

// MsgConfigure sets the sale-integration configuration
type MsgConfigure struct {
	Configurator    string `json:"configurator"`
	PoolID          string `json:"pool_id"`
	SaleTarget      string `json:"sale_target"`
	TokenDenom      string `json:"token_denom"`
	BuySelector     string `json:"buy_selector"`
	ClaimSelector   string `json:"claim_selector"`
	RefundSelector  string `json:"refund_selector"`
	PublicPrice     string `json:"public_price"`
	GroupPrice      string `json:"group_price"`
	SubsidyRequired bool   `json:"subsidy_required"`
}

func (msg MsgConfigure) Route() string { return ModuleName }
func (msg MsgConfigure) Type() string  { return TypeMsgConfigure }

func (msg MsgConfigure) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Configurator); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	if msg.SaleTarget == "" || msg.TokenDenom == "" {
		return ErrInvalidArgument
	}
	if msg.BuySelector == "" || msg.ClaimSelector == "" || msg.RefundSelector == "" {
		return ErrInvalidArgument
	}
	return nil
}

func (msg MsgConfigure) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Configurator)
	return []sdk.AccAddress{addr}
}

func (*MsgConfigure) ProtoMessage()    {}
func (msg *MsgConfigure) Reset()       { *msg = MsgConfigure{} }
func (msg MsgConfigure) String() string {
	return fmt.Sprintf("MsgConfigure{Configurator: %s, PoolID: %s, SaleTarget: %s}", msg.Configurator, msg.PoolID, msg.SaleTarget)
}

// MsgConfigureResponse is the Configure response
type MsgConfigureResponse struct {
	ActualDiscountPercent string `json:"actual_discount_percent"`
}

// MsgCompleteConfiguration locks configuration and starts due diligence
type MsgCompleteConfiguration struct {
	Configurator string `json:"configurator"`
	PoolID       string `json:"pool_id"`
}

func (msg MsgCompleteConfiguration) Route() string { return ModuleName }
func (msg MsgCompleteConfiguration) Type() string  { return TypeMsgCompleteConfiguration }

func (msg MsgCompleteConfiguration) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Configurator); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return nil
}

func (msg MsgCompleteConfiguration) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Configurator)
	return []sdk.AccAddress{addr}
}

func (*MsgCompleteConfiguration) ProtoMessage()    {}
func (msg *MsgCompleteConfiguration) Reset()       { *msg = MsgCompleteConfiguration{} }
func (msg MsgCompleteConfiguration) String() string {
	return fmt.Sprintf("MsgCompleteConfiguration{Configurator: %s, PoolID: %s}", msg.Configurator, msg.PoolID)
}

// MsgCompleteConfigurationResponse is the CompleteConfiguration response
type MsgCompleteConfigurationResponse struct {
	DueDiligenceStartTime int64  `json:"due_diligence_start_time"`
	Phase                 string `json:"phase"`
}

// MsgStartReview moves the pool to InReview after due diligence elapses
type MsgStartReview struct {
	Configurator string `json:"configurator"`
	PoolID       string `json:"pool_id"`
}

func (msg MsgStartReview) Route() string { return ModuleName }
func (msg MsgStartReview) Type() string  { return TypeMsgStartReview }

func (msg MsgStartReview) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Configurator); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return nil
}

func (msg MsgStartReview) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Configurator)
	return []sdk.AccAddress{addr}
}

func (*MsgStartReview) ProtoMessage()    {}
func (msg *MsgStartReview) Reset()       { *msg = MsgStartReview{} }
func (msg MsgStartReview) String() string {
	return fmt.Sprintf("MsgStartReview{Configurator: %s, PoolID: %s}", msg.Configurator, msg.PoolID)
}

// MsgStartReviewResponse is the StartReview response
type MsgStartReviewResponse struct {
	Phase string `json:"phase"`
}

// MsgReleaseFunds releases pooled funds to the sale. Attached must equal
// subsidy + fee exactly.
type MsgReleaseFunds struct {
	Configurator string `json:"configurator"`
	PoolID       string `json:"pool_id"`
	Attached     string `json:"attached"`
}

func (msg MsgReleaseFunds) Route() string { return ModuleName }
func (msg MsgReleaseFunds) Type() string  { return TypeMsgReleaseFunds }

func (msg MsgReleaseFunds) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Configurator); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	if msg.Attached == "" {
		return ErrInvalidArgument
	}
	return nil
}

func (msg MsgReleaseFunds) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Configurator)
	return []sdk.AccAddress{addr}
}

func (*MsgReleaseFunds) ProtoMessage()    {}
func (msg *MsgReleaseFunds) Reset()       { *msg = MsgReleaseFunds{} }
func (msg MsgReleaseFunds) String() string {
	return fmt.Sprintf("MsgReleaseFunds{Configurator: %s, PoolID: %s, Attached: %s}", msg.Configurator, msg.PoolID, msg.Attached)
}

// MsgReleaseFundsResponse is the ReleaseFunds response
type MsgReleaseFundsResponse struct {
	Subsidy         string `json:"subsidy"`
	Fee             string `json:"fee"`
	TokensDelivered string `json:"tokens_delivered"`
	Phase           string `json:"phase"`
}

// MsgClaimFromVendor invokes the external sale's claim function
type MsgClaimFromVendor struct {
	Configurator string `json:"configurator"`
	PoolID       string `json:"pool_id"`
}

func (msg MsgClaimFromVendor) Route() string { return ModuleName }
func (msg MsgClaimFromVendor) Type() string  { return TypeMsgClaimFromVendor }

func (msg MsgClaimFromVendor) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Configurator); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return nil
}

func (msg MsgClaimFromVendor) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Configurator)
	return []sdk.AccAddress{addr}
}

func (*MsgClaimFromVendor) ProtoMessage()    {}
func (msg *MsgClaimFromVendor) Reset()       { *msg = MsgClaimFromVendor{} }
func (msg MsgClaimFromVendor) String() string {
	return fmt.Sprintf("MsgClaimFromVendor{Configurator: %s, PoolID: %s}", msg.Configurator, msg.PoolID)
}

// MsgClaimFromVendorResponse is the ClaimFromVendor response
type MsgClaimFromVendorResponse struct {
	TokensDelivered string `json:"tokens_delivered"`
	Phase           string `json:"phase"`
}

// MsgClaimRefundFromVendor pulls the pool's contribution back from a
// failed sale
type MsgClaimRefundFromVendor struct {
	Configurator string `json:"configurator"`
	PoolID       string `json:"pool_id"`
}

func (msg MsgClaimRefundFromVendor) Route() string { return ModuleName }
func (msg MsgClaimRefundFromVendor) Type() string  { return TypeMsgClaimRefundFromVendor }

func (msg MsgClaimRefundFromVendor) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Configurator); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return nil
}

func (msg MsgClaimRefundFromVendor) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Configurator)
	return []sdk.AccAddress{addr}
}

func (*MsgClaimRefundFromVendor) ProtoMessage()    {}
func (msg *MsgClaimRefundFromVendor) Reset()       { *msg = MsgClaimRefundFromVendor{} }
func (msg MsgClaimRefundFromVendor) String() string {
	return fmt.Sprintf("MsgClaimRefundFromVendor{Configurator: %s, PoolID: %s}", msg.Configurator, msg.PoolID)
}

// MsgClaimRefundFromVendorResponse is the ClaimRefundFromVendor response
type MsgClaimRefundFromVendorResponse struct {
	FundsReturned string `json:"funds_returned"`
	Phase         string `json:"phase"`
}

// MsgClaimTokens claims the caller's currently-due tokens
type MsgClaimTokens struct {
	Participant string `json:"participant"`
	PoolID      string `json:"pool_id"`
}

func (msg MsgClaimTokens) Route() string { return ModuleName }
func (msg MsgClaimTokens) Type() string  { return TypeMsgClaimTokens }

func (msg MsgClaimTokens) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Participant); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return nil
}

func (msg MsgClaimTokens) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Participant)
	return []sdk.AccAddress{addr}
}

func (*MsgClaimTokens) ProtoMessage()    {}
func (msg *MsgClaimTokens) Reset()       { *msg = MsgClaimTokens{} }
func (msg MsgClaimTokens) String() string {
	return fmt.Sprintf("MsgClaimTokens{Participant: %s, PoolID: %s}", msg.Participant, msg.PoolID)
}

// MsgClaimTokensResponse is the ClaimTokens response
type MsgClaimTokensResponse struct {
	TokensClaimed      string `json:"tokens_claimed"`
	TotalTokensClaimed string `json:"total_tokens_claimed"`
}

// MsgClaimRefund claims the caller's one-shot refund entitlement
type MsgClaimRefund struct {
	Participant string `json:"participant"`
	PoolID      string `json:"pool_id"`
}

func (msg MsgClaimRefund) Route() string { return ModuleName }
func (msg MsgClaimRefund) Type() string  { return TypeMsgClaimRefund }

func (msg MsgClaimRefund) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Participant); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return nil
}

func (msg MsgClaimRefund) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Participant)
	return []sdk.AccAddress{addr}
}

func (*MsgClaimRefund) ProtoMessage()    {}
func (msg *MsgClaimRefund) Reset()       { *msg = MsgClaimRefund{} }
func (msg MsgClaimRefund) String() string {
	return fmt.Sprintf("MsgClaimRefund{Participant: %s, PoolID: %s}", msg.Participant, msg.PoolID)
}

// MsgClaimRefundResponse is the ClaimRefund response
type MsgClaimRefundResponse struct {
	RefundAmount string `json:"refund_amount"`
}

// Ensure all messages implement sdk.Msg interface
var (
	_ sdk.Msg = &MsgContribute{}
	_ sdk.Msg = &MsgLeave{}
	_ sdk.Msg = &MsgKick{}
	_ sdk.Msg = &MsgSetConfigurator{}
	_ sdk.Msg = &MsgConfigure{}
	_ sdk.Msg = &MsgCompleteConfiguration{}
	_ sdk.Msg = &MsgStartReview{}
	_ sdk.Msg = &MsgReleaseFunds{}
	_ sdk.Msg = &MsgClaimFromVendor{}
	_ sdk.Msg = &MsgClaimRefundFromVendor{}
	_ sdk.Msg = &MsgClaimTokens{}
	_ sdk.Msg = &MsgClaimRefund{}
)
