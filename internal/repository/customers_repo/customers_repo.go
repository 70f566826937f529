package customers_repo

import (
	"context"
	"database/sql"
	"fmt"

	"corebanking/internal/domain"
)

type customerRepository struct{}

func NewCustomerRepository() *customerRepository {
	return &customerRepository{}
}

func (r *customerRepository) CreateTx(ctx context.Context, querier domain.Querier, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, name, address, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := querier.ExecContext(ctx, query,
		customer.ID, customer.Name, customer.Address, customer.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create customer %s: %w", customer.ID, err)
	}
	return nil
}

func (r *customerRepository) GetByIDTx(ctx context.Context, querier domain.Querier, id string) (*domain.Customer, error) {
	query := `
		SELECT id, name, address, created_at
		FROM customers
		WHERE id = $1
	`
	customer := &domain.Customer{}
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Address,
		&customer.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer %s: %w", id, err)
	}
	return customer, nil
}

func (r *customerRepository) ListTx(ctx context.Context, querier domain.Querier, limit, offset int) ([]domain.Customer, error) {
	query := `
		SELECT id, name, address, created_at
		FROM customers
		ORDER BY id
		LIMIT $1 OFFSET $2
	`
	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.Address, &customer.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer row: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customer rows: %w", err)
	}
	return customers, nil
}
