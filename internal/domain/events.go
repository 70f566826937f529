package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecordedEvent is published after a ledger entry commits. A
// transfer produces two events, one per leg.
type TransactionRecordedEvent struct {
	TransactionID string          `json:"transaction_id"`
	AccountID     string          `json:"account_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Balance       decimal.Decimal `json:"balance"`
	DateUTC       time.Time       `json:"date_utc"`
}
