package util

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// NewID returns a time-ordered UUIDv7 string, so newer ids sort after older
// ones. Falls back to a random v4 if the v7 source errors.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewAccountNumber derives a human-facing account number from a
// high-resolution clock reading plus a random suffix. This is best-effort
// entropy only: the unique constraint on accounts.number is the actual
// uniqueness guarantee.
func NewAccountNumber(now time.Time) string {
	return fmt.Sprintf("%d%04d", now.UTC().UnixNano(), rand.Intn(10000))
}
