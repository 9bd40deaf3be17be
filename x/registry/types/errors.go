package types

import (
	errorsmod "cosmossdk.io/errors"
)

// Registry module errors
var (
	ErrDuplicateIdentity = errorsmod.Register(ModuleName, 1, "a pool already exists for this identity")
	ErrInvalidArgument   = errorsmod.Register(ModuleName, 2, "invalid argument")
	ErrUnauthorized      = errorsmod.Register(ModuleName, 3, "caller is not the registry owner")
	ErrOutOfRange        = errorsmod.Register(ModuleName, 4, "value out of range")
	ErrPoolNotFound      = errorsmod.Register(ModuleName, 5, "pool not found")
)
