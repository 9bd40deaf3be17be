package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Message types
const (
	TypeMsgCreatePool  = "create_pool"
	TypeMsgSetParam    = "set_param"
	TypeMsgSetOwner    = "set_owner"
	TypeMsgWaivePoolFee = "waive_pool_fee"
)

// Settable parameter names for MsgSetParam
const (
	ParamFeePercent              = "fee_percent"
	ParamExpectedDiscountPercent = "expected_discount_percent"
	ParamWatermark               = "watermark"
	ParamWithdrawalFee           = "withdrawal_fee"
	ParamDueDiligenceDuration    = "due_diligence_duration"
)

// MsgCreatePool creates a new pool for a sale identity
type MsgCreatePool struct {
	Creator     string `json:"creator"`
	Identity    string `json:"identity"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Watermark   string `json:"watermark,omitempty"` // overrides the registry default when set
}

func (msg MsgCreatePool) Route() string { return ModuleName }
func (msg MsgCreatePool) Type() string  { return TypeMsgCreatePool }

func (msg MsgCreatePool) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Creator); err != nil {
		return err
	}
	if msg.Identity == "" || msg.Name == "" || msg.Description == "" {
		return ErrInvalidArgument
	}
	return nil
}

func (msg MsgCreatePool) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Creator)
	return []sdk.AccAddress{addr}
}

func (*MsgCreatePool) ProtoMessage()    {}
func (msg *MsgCreatePool) Reset()       { *msg = MsgCreatePool{} }
func (msg MsgCreatePool) String() string {
	return fmt.Sprintf("MsgCreatePool{Creator: %s, Identity: %s, Name: %s}", msg.Creator, msg.Identity, msg.Name)
}

// MsgCreatePoolResponse is the CreatePool response
type MsgCreatePoolResponse struct {
	PoolID    string `json:"pool_id"`
	Identity  string `json:"identity"`
	Watermark string `json:"watermark"`
}

// MsgSetParam updates one registry default. Owner-only.
type MsgSetParam struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (msg MsgSetParam) Route() string { return ModuleName }
func (msg MsgSetParam) Type() string  { return TypeMsgSetParam }

func (msg MsgSetParam) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Owner); err != nil {
		return err
	}
	switch msg.Name {
	case ParamFeePercent, ParamExpectedDiscountPercent, ParamWatermark, ParamWithdrawalFee, ParamDueDiligenceDuration:
	default:
		return ErrInvalidArgument
	}
	if msg.Value == "" {
		return ErrInvalidArgument
	}
	return nil
}

func (msg MsgSetParam) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Owner)
	return []sdk.AccAddress{addr}
}

func (*MsgSetParam) ProtoMessage()    {}
func (msg *MsgSetParam) Reset()       { *msg = MsgSetParam{} }
func (msg MsgSetParam) String() string {
	return fmt.Sprintf("MsgSetParam{Owner: %s, Name: %s, Value: %s}", msg.Owner, msg.Name, msg.Value)
}

// MsgSetParamResponse is the SetParam response
type MsgSetParamResponse struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MsgSetOwner transfers registry ownership
type MsgSetOwner struct {
	Owner    string `json:"owner"`
	NewOwner string `json:"new_owner"`
}

func (msg MsgSetOwner) Route() string { return ModuleName }
func (msg MsgSetOwner) Type() string  { return TypeMsgSetOwner }

func (msg MsgSetOwner) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Owner); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(msg.NewOwner); err != nil {
		return err
	}
	return nil
}

func (msg MsgSetOwner) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Owner)
	return []sdk.AccAddress{addr}
}

func (*MsgSetOwner) ProtoMessage()    {}
func (msg *MsgSetOwner) Reset()       { *msg = MsgSetOwner{} }
func (msg MsgSetOwner) String() string {
	return fmt.Sprintf("MsgSetOwner{Owner: %s, NewOwner: %s}", msg.Owner, msg.NewOwner)
}

// MsgSetOwnerResponse is the SetOwner response
type MsgSetOwnerResponse struct {
	NewOwner string `json:"new_owner"`
}

// MsgWaivePoolFee waives the release fee for one pool. Owner-only.
type MsgWaivePoolFee struct {
	Owner  string `json:"owner"`
	PoolID string `json:"pool_id"`
}

func (msg MsgWaivePoolFee) Route() string { return ModuleName }
func (msg MsgWaivePoolFee) Type() string  { return TypeMsgWaivePoolFee }

func (msg MsgWaivePoolFee) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Owner); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return nil
}

func (msg MsgWaivePoolFee) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Owner)
	return []sdk.AccAddress{addr}
}

func (*MsgWaivePoolFee) ProtoMessage()    {}
func (msg *MsgWaivePoolFee) Reset()       { *msg = MsgWaivePoolFee{} }
func (msg MsgWaivePoolFee) String() string {
	return fmt.Sprintf("MsgWaivePoolFee{Owner: %s, PoolID: %s}", msg.Owner, msg.PoolID)
}

// MsgWaivePoolFeeResponse is the WaivePoolFee response
type MsgWaivePoolFeeResponse struct {
	PoolID string `json:"pool_id"`
}

// Ensure all messages implement sdk.Msg interface
var (
	_ sdk.Msg = &MsgCreatePool{}
	_ sdk.Msg = &MsgSetParam{}
	_ sdk.Msg = &MsgSetOwner{}
	_ sdk.Msg = &MsgWaivePoolFee{}
)
