package errs

import "errors"

// Domain-specific sentinel errors for CQRS usecase layers
var (
	// Voucher errors
	ErrVoucherValidation = errors.New("voucher validation failed")
	ErrNonceUnavailable  = errors.New("buyer nonce unavailable")

	// History errors
	ErrRecordNotFound = errors.New("record not found")

	// Redemption request errors
	ErrRequestNotFound  = errors.New("redemption request not found")
	ErrRequestForbidden = errors.New("redemption request belongs to another user")

	// Transaction verification errors
	ErrTxNotFound     = errors.New("transaction not found")
	ErrTxNotConfirmed = errors.New("transaction not confirmed")
	ErrTxMismatch     = errors.New("transaction does not touch the contract")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Operation errors
	ErrChainUnavailable        = errors.New("chain endpoint unavailable")
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
