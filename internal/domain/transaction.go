package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionDeposit  TransactionType = "DEPOSIT"
	TransactionWithdraw TransactionType = "WITHDRAW"
)

// Transaction is one append-only ledger entry. A transfer records exactly
// two entries: a WITHDRAW on the source account and a DEPOSIT on the
// destination, sharing a single timestamp. There is no distinct transfer
// type. Entries are never mutated or deleted.
type Transaction struct {
	ID        string
	AccountID string
	Type      TransactionType
	// Amount is the positive magnitude of the movement; the sign is implied
	// by Type and never stored negative.
	Amount  decimal.Decimal
	DateUTC time.Time
}

// SignedAmount returns the entry's effect on the account balance: positive
// for deposits, negative for withdrawals.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionWithdraw {
		return t.Amount.Neg()
	}
	return t.Amount
}
