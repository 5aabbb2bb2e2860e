package entity

import "errors"

// Domain errors. Each one aborts only the operation that raised it and the
// handlers map them to distinct HTTP status codes, so callers can tell a
// retryable condition from a permanent one.
var (
	// ErrZeroAmount means the operation carried a zero or negative amount.
	ErrZeroAmount = errors.New("amount must be > 0")

	// ErrInsufficientBalance means the withdrawal asked for more than the
	// account currently holds.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrLimitExceeded means the withdrawal exceeds the per-withdrawal limit.
	ErrLimitExceeded = errors.New("withdrawal exceeds the per-call limit")

	// ErrCapacityExceeded means the deposit would push the total custodied
	// value over the bank cap.
	ErrCapacityExceeded = errors.New("deposit exceeds the bank capacity")

	// ErrTransferFailed means the outbound transfer was refused; the debit
	// has been rolled back in full.
	ErrTransferFailed = errors.New("funds transfer failed")

	// ErrUnauthorized means the caller does not hold the role the operation
	// requires.
	ErrUnauthorized = errors.New("caller does not hold the required role")

	// ErrBadValue means a configuration value was negative.
	ErrBadValue = errors.New("value must be >= 0")
)
