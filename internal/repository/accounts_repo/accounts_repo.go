package accounts_repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"corebanking/internal/domain"
)

const accountColumns = "id, customer_id, number, balance, created_at, updated_at"

type accountRepository struct{}

func NewAccountRepository() *accountRepository {
	return &accountRepository{}
}

func (r *accountRepository) CreateTx(ctx context.Context, querier domain.Querier, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, customer_id, number, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := querier.ExecContext(ctx, query,
		account.ID, account.CustomerID, account.Number, account.Balance, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return domain.ErrDuplicateAccountNumber
		}
		return fmt.Errorf("failed to create account %s: %w", account.ID, err)
	}
	return nil
}

func (r *accountRepository) GetByIDTx(ctx context.Context, querier domain.Querier, id string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
	`
	return scanAccount(querier.QueryRowContext(ctx, query, id), "id "+id)
}

func (r *accountRepository) GetByNumberTx(ctx context.Context, querier domain.Querier, number string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE number = $1
	`
	return scanAccount(querier.QueryRowContext(ctx, query, number), "number "+number)
}

func (r *accountRepository) LockTx(ctx context.Context, querier domain.Querier, id string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`
	return scanAccount(querier.QueryRowContext(ctx, query, id), "id "+id)
}

func (r *accountRepository) UpdateBalanceTx(ctx context.Context, querier domain.Querier, id string, balance decimal.Decimal, updatedAt time.Time) error {
	query := `
		UPDATE accounts
		SET balance = $1, updated_at = $2
		WHERE id = $3
	`
	res, err := querier.ExecContext(ctx, query, balance, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update balance for account %s: %w", id, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) ListTx(ctx context.Context, querier domain.Querier, limit, offset int) ([]domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY id
		LIMIT $1 OFFSET $2
	`
	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(&account.ID, &account.CustomerID, &account.Number, &account.Balance, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account rows: %w", err)
	}
	return accounts, nil
}

func scanAccount(row *sql.Row, desc string) (*domain.Account, error) {
	account := &domain.Account{}
	err := row.Scan(
		&account.ID,
		&account.CustomerID,
		&account.Number,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by %s: %w", desc, err)
	}
	return account, nil
}
