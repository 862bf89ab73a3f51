package domain

import "errors"

// Validation failures (bad input or business-rule violation).
var (
	ErrInvalidStore         = errors.New("store is required")
	ErrInvalidCustomer      = errors.New("invalid customer")
	ErrInvalidName          = errors.New("contract name is required")
	ErrInvalidCurrency      = errors.New("currency code is required")
	ErrInvalidStartDate     = errors.New("start date must not be in the past")
	ErrInvalidDateOrder     = errors.New("end date must be after start date")
	ErrInvalidIntervalValue = errors.New("interval value must be positive")
	ErrInvalidIntervalUnit  = errors.New("invalid interval unit")
	ErrInvalidLines         = errors.New("contract requires at least one line")
	ErrInvalidQuantity      = errors.New("line quantity must be positive")
	ErrNextDateBeyondEnd    = errors.New("next order date would not precede the contract end date")
	ErrSkipBeyondEnd        = errors.New("skipping would move the next order past the contract end date")
)

// Lookup and access failures.
var (
	ErrContractNotFound = errors.New("contract not found")
	ErrUnauthorized     = errors.New("caller is not authorized for this contract")
)

// Illegal state transitions surface as bad requests.
var (
	ErrIllegalTransition = errors.New("contract status does not allow this transition")
	ErrNotPending        = errors.New("contract can only be deleted while pending")
	ErrNotActive         = errors.New("contract is not active")
	ErrSkipDatePassed    = errors.New("next order date has already passed")
)

// Persistence failures.
var (
	ErrCreationFailed   = errors.New("contract creation failed")
	ErrUpdateFailed     = errors.New("contract update failed")
	ErrConcurrentUpdate = errors.New("contract was modified concurrently")
)
