package banking

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"corebanking/internal/domain"
)

// The validation layer is a pure pre-check shared by every operation: it
// rejects malformed requests before any store round-trip and carries no
// side effects. Check order is part of the contract — an empty source id is
// reported before an empty destination, which is reported before a
// non-positive amount.

func validateMovement(accountID string, amount decimal.Decimal) error {
	if isEmptyID(accountID) {
		return fmt.Errorf("%w: account id is required", domain.ErrInvalidArgument)
	}
	return validateAmount(amount)
}

func validateTransfer(sourceAccountID, destinationNumber string, amount decimal.Decimal) error {
	if isEmptyID(sourceAccountID) {
		return fmt.Errorf("%w: source account id is required", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(destinationNumber) == "" {
		return fmt.Errorf("%w: destination account number is required", domain.ErrInvalidArgument)
	}
	return validateAmount(amount)
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", domain.ErrInvalidArgument, amount)
	}
	return nil
}

// isEmptyID treats both a blank string and the all-zero uuid as empty;
// callers commonly send the zero guid for "no account".
func isEmptyID(id string) bool {
	if strings.TrimSpace(id) == "" {
		return true
	}
	if parsed, err := uuid.Parse(id); err == nil && parsed == uuid.Nil {
		return true
	}
	return false
}
