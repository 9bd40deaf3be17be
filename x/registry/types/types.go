package types

import (
	"strconv"

	"cosmossdk.io/math"
)

// Module name and store key
const (
	ModuleName = "registry"
	StoreKey   = ModuleName
)

// Factory defaults, in wei and whole percent
var (
	DefaultFeePercent              = math.NewInt(6)
	DefaultExpectedDiscountPercent = math.NewInt(15)
	DefaultWatermark               = math.NewIntWithDecimal(15, 18)  // 15 ether
	DefaultWithdrawalFee           = math.NewIntWithDecimal(15, 14)  // 0.0015 ether
	DefaultDueDiligenceDuration    = int64(7 * 24 * 60 * 60)         // 7 days
)

// Governance bounds
var (
	MaxFeePercent      = math.NewInt(50)
	MaxDiscountPercent = math.NewInt(100)
)

// Params holds the registry's global defaults, seeded into every pool at
// creation time.
type Params struct {
	OwnerAddress            string   `json:"owner_address"`
	FeePercent              math.Int `json:"fee_percent"`
	ExpectedDiscountPercent math.Int `json:"expected_discount_percent"`
	Watermark               math.Int `json:"watermark"`
	WithdrawalFee           math.Int `json:"withdrawal_fee"`
	DueDiligenceDuration    int64    `json:"due_diligence_duration"` // seconds
	UpdatedAt               int64    `json:"updated_at"`
}

// DefaultParams returns the factory defaults with the given owner.
func DefaultParams(owner string) *Params {
	return &Params{
		OwnerAddress:            owner,
		FeePercent:              DefaultFeePercent,
		ExpectedDiscountPercent: DefaultExpectedDiscountPercent,
		Watermark:               DefaultWatermark,
		WithdrawalFee:           DefaultWithdrawalFee,
		DueDiligenceDuration:    DefaultDueDiligenceDuration,
	}
}

// Set updates one parameter by wire name, enforcing the governance bounds.
func (p *Params) Set(name, value string) error {
	switch name {
	case ParamFeePercent:
		v, ok := math.NewIntFromString(value)
		if !ok || v.IsNegative() {
			return ErrInvalidArgument
		}
		if v.GT(MaxFeePercent) {
			return ErrOutOfRange
		}
		p.FeePercent = v
	case ParamExpectedDiscountPercent:
		v, ok := math.NewIntFromString(value)
		if !ok || v.IsNegative() {
			return ErrInvalidArgument
		}
		if v.GT(MaxDiscountPercent) {
			return ErrOutOfRange
		}
		p.ExpectedDiscountPercent = v
	case ParamWatermark:
		v, ok := math.NewIntFromString(value)
		if !ok || !v.IsPositive() {
			return ErrInvalidArgument
		}
		p.Watermark = v
	case ParamWithdrawalFee:
		v, ok := math.NewIntFromString(value)
		if !ok || v.IsNegative() {
			return ErrInvalidArgument
		}
		p.WithdrawalFee = v
	case ParamDueDiligenceDuration:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil || v <= 0 {
			return ErrInvalidArgument
		}
		p.DueDiligenceDuration = v
	default:
		return ErrInvalidArgument
	}
	return nil
}

// PoolRef registers a created pool under its unique identity.
type PoolRef struct {
	Identity  string `json:"identity"`
	PoolID    string `json:"pool_id"`
	Name      string `json:"name"`
	Creator   string `json:"creator"`
	CreatedAt int64  `json:"created_at"`
}
