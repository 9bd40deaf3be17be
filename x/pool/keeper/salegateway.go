package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/openalpha/poolparty/x/pool/types"
)

// SaleGateway is the capability through which a pool interacts with the
// external, untrusted sale target. The string selectors configured on the
// pool are resolved to gateway behavior at call time: the "N/A" sentinel
// turns Buy into a bare value transfer and makes Claim and Refund succeed
// without moving anything. A failed call propagates as an error and leaves
// the pool's phase unchanged.
type SaleGateway interface {
	// Buy sends value to the sale and reports tokens delivered
	// synchronously, if any.
	Buy(ctx sdk.Context, pool *types.Pool, value math.Int) (math.Int, error)

	// Claim invokes the sale's claim function and reports tokens delivered.
	Claim(ctx sdk.Context, pool *types.Pool) (math.Int, error)

	// Refund pulls the pool's funds back from a failed sale and reports the
	// amount returned to the pool's escrow.
	Refund(ctx sdk.Context, pool *types.Pool) (math.Int, error)
}

// EscrowSaleGateway models the sale as a bank account holding the token
// supply. Buy escrows value with the sale; token delivery happens
// synchronously when the pool's claim selector is the "N/A" sentinel
// (the buy call itself delivers), otherwise on the explicit Claim call.
// Refund returns the escrowed value.
type EscrowSaleGateway struct {
	bankKeeper BankKeeper
}

// NewEscrowSaleGateway creates the default sale gateway
func NewEscrowSaleGateway(bankKeeper BankKeeper) *EscrowSaleGateway {
	return &EscrowSaleGateway{bankKeeper: bankKeeper}
}

var _ SaleGateway = (*EscrowSaleGateway)(nil)

// tokenPrice is the wei-per-token rate the sale charges the pool. A
// subsidized purchase is made at the public rate (the subsidy tops the
// value up); an unsubsidized one at the negotiated group rate.
func tokenPrice(pool *types.Pool) math.Int {
	if pool.Sale.SubsidyRequired {
		return pool.Sale.PublicPrice
	}
	return pool.Sale.GroupPrice
}

// tokensForValue converts escrowed value to 18-decimal token units with
// truncating division.
func tokensForValue(value, price math.Int) math.Int {
	if !price.IsPositive() {
		return math.ZeroInt()
	}
	return value.Mul(types.Precision).Quo(price)
}

func (g *EscrowSaleGateway) Buy(ctx sdk.Context, pool *types.Pool, value math.Int) (math.Int, error) {
	saleAddr, err := sdk.AccAddressFromBech32(pool.Sale.SaleTarget)
	if err != nil {
		return math.ZeroInt(), types.ErrInvalidArgument
	}

	if value.IsPositive() {
		coins := sdk.NewCoins(sdk.NewCoin(types.FundsDenom, value))
		if err := g.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, saleAddr, coins); err != nil {
			return math.ZeroInt(), types.ErrSaleCallFailed.Wrap(err.Error())
		}
	}

	// Claim selector set: the sale delivers later, through Claim.
	if pool.Sale.ClaimSelector != types.NoSelector {
		return math.ZeroInt(), nil
	}
	return g.deliver(ctx, pool, saleAddr, tokensForValue(value, tokenPrice(pool)))
}

func (g *EscrowSaleGateway) Claim(ctx sdk.Context, pool *types.Pool) (math.Int, error) {
	if pool.Sale.ClaimSelector == types.NoSelector {
		return math.ZeroInt(), nil
	}
	saleAddr, err := sdk.AccAddressFromBech32(pool.Sale.SaleTarget)
	if err != nil {
		return math.ZeroInt(), types.ErrInvalidArgument
	}
	value := pool.TotalContributedAtRelease.Add(pool.CalculateSubsidy())
	return g.deliver(ctx, pool, saleAddr, tokensForValue(value, tokenPrice(pool)))
}

func (g *EscrowSaleGateway) Refund(ctx sdk.Context, pool *types.Pool) (math.Int, error) {
	if pool.Sale.RefundSelector == types.NoSelector {
		return math.ZeroInt(), nil
	}
	saleAddr, err := sdk.AccAddressFromBech32(pool.Sale.SaleTarget)
	if err != nil {
		return math.ZeroInt(), types.ErrInvalidArgument
	}

	value := pool.TotalContributedAtRelease.Add(pool.CalculateSubsidy())
	held := g.bankKeeper.GetBalance(ctx, saleAddr, types.FundsDenom).Amount
	if held.LT(value) {
		value = held
	}
	if !value.IsPositive() {
		return math.ZeroInt(), nil
	}

	moduleAddr := authtypes.NewModuleAddress(types.ModuleName)
	coins := sdk.NewCoins(sdk.NewCoin(types.FundsDenom, value))
	if err := g.bankKeeper.SendCoins(ctx, saleAddr, moduleAddr, coins); err != nil {
		return math.ZeroInt(), types.ErrSaleCallFailed.Wrap(err.Error())
	}
	return value, nil
}

// deliver moves sale tokens into the pool's escrow, capped by what the sale
// actually holds. Delivering zero is a legitimate outcome before the sale
// concludes.
func (g *EscrowSaleGateway) deliver(ctx sdk.Context, pool *types.Pool, saleAddr sdk.AccAddress, tokens math.Int) (math.Int, error) {
	held := g.bankKeeper.GetBalance(ctx, saleAddr, pool.Sale.TokenDenom).Amount
	if tokens.GT(held) {
		tokens = held
	}
	if !tokens.IsPositive() {
		return math.ZeroInt(), nil
	}

	moduleAddr := authtypes.NewModuleAddress(types.ModuleName)
	coins := sdk.NewCoins(sdk.NewCoin(pool.Sale.TokenDenom, tokens))
	if err := g.bankKeeper.SendCoins(ctx, saleAddr, moduleAddr, coins); err != nil {
		return math.ZeroInt(), types.ErrSaleCallFailed.Wrap(err.Error())
	}
	return tokens, nil
}
