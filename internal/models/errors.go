package models

import (
	"errors"
)

// The error taxonomy of the finance core. Every error returned by the
// budget ledger and the payment voucher state machine wraps exactly one
// of these sentinels so that callers can map it to a stable code.
var (
	ErrGeneral           = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound  = errors.New("there is no")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("the resource conflicts with an existing one")
	ErrInvalidState      = errors.New("the operation is not allowed in the current state")
	ErrInsufficientFunds = errors.New("insufficient budget")
	ErrInvalidOperation  = errors.New("the operation is not allowed")
)
