package domain

import "time"

// Customer owns zero or more accounts. Accounts reference the customer by
// id; the customer record itself carries no balance state.
type Customer struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
}
