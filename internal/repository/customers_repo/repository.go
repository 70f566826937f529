package customers_repo

import (
	"context"

	"corebanking/internal/domain"
)

type CustomerRepository interface {
	CreateTx(ctx context.Context, querier domain.Querier, customer *domain.Customer) error
	GetByIDTx(ctx context.Context, querier domain.Querier, id string) (*domain.Customer, error)
	ListTx(ctx context.Context, querier domain.Querier, limit, offset int) ([]domain.Customer, error)
}
