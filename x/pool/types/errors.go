package types

import (
	errorsmod "cosmossdk.io/errors"
)

// Pool module errors
var (
	ErrPoolNotFound      = errorsmod.Register(ModuleName, 1, "pool not found")
	ErrInvalidPhase      = errorsmod.Register(ModuleName, 2, "operation not allowed in current pool phase")
	ErrUnauthorized      = errorsmod.Register(ModuleName, 3, "caller lacks required role")
	ErrInvalidArgument   = errorsmod.Register(ModuleName, 4, "invalid argument")
	ErrBelowMinimum      = errorsmod.Register(ModuleName, 5, "contribution below minimum")
	ErrIncorrectValue    = errorsmod.Register(ModuleName, 6, "attached value does not match required amount")
	ErrAlreadyClaimed    = errorsmod.Register(ModuleName, 7, "already claimed")
	ErrAlreadySet        = errorsmod.Register(ModuleName, 8, "already set")
	ErrNotAParticipant   = errorsmod.Register(ModuleName, 9, "not a pool participant")
	ErrNothingDue        = errorsmod.Register(ModuleName, 10, "nothing due")
	ErrDiscountTooLow    = errorsmod.Register(ModuleName, 11, "actual discount below expected minimum")
	ErrTooEarly          = errorsmod.Register(ModuleName, 12, "due diligence period has not elapsed")
	ErrNotConfigured     = errorsmod.Register(ModuleName, 13, "pool sale configuration incomplete")
	ErrAlreadyReleased   = errorsmod.Register(ModuleName, 14, "funds already released to sale")
	ErrSaleCallFailed    = errorsmod.Register(ModuleName, 15, "external sale call failed")
	ErrUnknownKickReason = errorsmod.Register(ModuleName, 16, "unknown kick reason")
)
