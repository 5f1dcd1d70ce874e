package apperrors

import (
	"errors"
)

// The ledger surfaces four kinds of failures. Handlers map them to HTTP
// statuses; everything else is an internal error and never rendered raw.
var (
	ErrValidation          = errors.New("validation failed")
	ErrAuthorization       = errors.New("not allowed")
	ErrStateConflict       = errors.New("state conflict")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

var (
	ErrAllyNotFound       = errors.New("ally not found")
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrWithdrawalNotFound = errors.New("withdrawal request not found")
	ErrSettingNotFound    = errors.New("setting not found")

	ErrNoNights = errors.New("check-out must be after check-in")
)
