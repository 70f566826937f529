package domain

import "errors"

var (
	// ErrInvalidArgument covers malformed input rejected before any store
	// round-trip: empty identifiers, non-positive amounts, self-transfers.
	ErrInvalidArgument = errors.New("invalid argument")

	ErrCustomerNotFound  = errors.New("customer not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDuplicateAccountNumber is returned by the accounts repository when
	// the unique constraint on accounts.number rejects an insert.
	ErrDuplicateAccountNumber = errors.New("duplicate account number")

	// ErrStoreFailure is the only error surfaced for low-level store faults.
	// The originating error is logged with full context and never crosses
	// the service boundary.
	ErrStoreFailure = errors.New("ledger store failure")
)
