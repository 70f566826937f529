package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds the current balance for one customer account. The balance
// is maintained redundantly alongside the append-only transaction log: fast
// reads come from here, the audit trail from the log. Every committed
// mutation must keep the two in step — balance equals the sum of signed
// transaction amounts at quiescence, and never drops below zero.
type Account struct {
	ID         string
	CustomerID string
	// Number is the human-facing account number, generated at creation and
	// immutable. Transfers address the destination by number, not id.
	Number    string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
