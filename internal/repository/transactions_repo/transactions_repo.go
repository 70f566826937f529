package transactions_repo

import (
	"context"
	"fmt"

	"corebanking/internal/domain"
)

type transactionRepository struct{}

func NewTransactionRepository() *transactionRepository {
	return &transactionRepository{}
}

// CreateTx appends one ledger entry. Entries are append-only; there is no
// update or delete path.
func (r *transactionRepository) CreateTx(ctx context.Context, querier domain.Querier, transaction *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, account_id, type, amount, date_utc)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := querier.ExecContext(ctx, query,
		transaction.ID, transaction.AccountID, transaction.Type, transaction.Amount, transaction.DateUTC)
	if err != nil {
		return fmt.Errorf("failed to create transaction %s for account %s: %w", transaction.ID, transaction.AccountID, err)
	}
	return nil
}

func (r *transactionRepository) ListByAccountTx(ctx context.Context, querier domain.Querier, accountID string, limit, offset int) ([]domain.Transaction, error) {
	query := `
		SELECT id, account_id, type, amount, date_utc
		FROM transactions
		WHERE account_id = $1
		ORDER BY date_utc DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := querier.QueryContext(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var transaction domain.Transaction
		if err := rows.Scan(&transaction.ID, &transaction.AccountID, &transaction.Type, &transaction.Amount, &transaction.DateUTC); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction rows: %w", err)
	}
	return transactions, nil
}
