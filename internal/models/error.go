package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Moderation and trust-ledger errors
	ErrTokenExhausted = errors.New("no username change tokens left")
	ErrNameTaken      = errors.New("username already taken")
	ErrNameReserved   = errors.New("username contains a reserved word")
	ErrInvalidLength  = errors.New("value length out of range")
	ErrRoleProtected  = errors.New("built-in roles cannot be modified")
	ErrAdminProtected = errors.New("users holding the Admin role cannot be deleted")

	// Account state errors
	ErrAccountLocked = errors.New("account is temporarily locked")
)
