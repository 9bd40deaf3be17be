package types

import (
	"testing"

	"cosmossdk.io/math"
)

func TestDefaultParams(t *testing.T) {
	params := DefaultParams("owner")

	if params.OwnerAddress != "owner" {
		t.Errorf("expected owner, got %s", params.OwnerAddress)
	}
	if !params.FeePercent.Equal(math.NewInt(6)) {
		t.Errorf("expected fee 6%%, got %s", params.FeePercent)
	}
	if !params.ExpectedDiscountPercent.Equal(math.NewInt(15)) {
		t.Errorf("expected discount 15%%, got %s", params.ExpectedDiscountPercent)
	}
	if !params.Watermark.Equal(math.NewIntWithDecimal(15, 18)) {
		t.Errorf("expected watermark 15 ether, got %s", params.Watermark)
	}
	if !params.WithdrawalFee.Equal(math.NewIntWithDecimal(15, 14)) {
		t.Errorf("expected withdrawal fee 0.0015 ether, got %s", params.WithdrawalFee)
	}
	if params.DueDiligenceDuration != 7*24*60*60 {
		t.Errorf("expected 7 day due diligence, got %d", params.DueDiligenceDuration)
	}
}

func TestParamsSet(t *testing.T) {
	testCases := []struct {
		name    string
		param   string
		value   string
		wantErr error
	}{
		{"fee in range", ParamFeePercent, "10", nil},
		{"fee at cap", ParamFeePercent, "50", nil},
		{"fee above cap", ParamFeePercent, "51", ErrOutOfRange},
		{"fee negative", ParamFeePercent, "-1", ErrInvalidArgument},
		{"fee garbage", ParamFeePercent, "ten", ErrInvalidArgument},
		{"discount in range", ParamExpectedDiscountPercent, "30", nil},
		{"discount at cap", ParamExpectedDiscountPercent, "100", nil},
		{"discount above cap", ParamExpectedDiscountPercent, "101", ErrOutOfRange},
		{"watermark positive", ParamWatermark, "1000000000000000000", nil},
		{"watermark zero", ParamWatermark, "0", ErrInvalidArgument},
		{"withdrawal fee zero ok", ParamWithdrawalFee, "0", nil},
		{"withdrawal fee negative", ParamWithdrawalFee, "-5", ErrInvalidArgument},
		{"duration positive", ParamDueDiligenceDuration, "86400", nil},
		{"duration zero", ParamDueDiligenceDuration, "0", ErrInvalidArgument},
		{"unknown name", "no_such_param", "1", ErrInvalidArgument},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			params := DefaultParams("owner")
			err := params.Set(tc.param, tc.value)
			if err != tc.wantErr {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestParamsSetApplies(t *testing.T) {
	params := DefaultParams("owner")

	if err := params.Set(ParamFeePercent, "12"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !params.FeePercent.Equal(math.NewInt(12)) {
		t.Errorf("expected fee 12, got %s", params.FeePercent)
	}

	if err := params.Set(ParamDueDiligenceDuration, "172800"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.DueDiligenceDuration != 172800 {
		t.Errorf("expected 172800, got %d", params.DueDiligenceDuration)
	}
}
