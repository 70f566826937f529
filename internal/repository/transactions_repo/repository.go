package transactions_repo

import (
	"context"

	"corebanking/internal/domain"
)

type TransactionRepository interface {
	CreateTx(ctx context.Context, querier domain.Querier, transaction *domain.Transaction) error
	ListByAccountTx(ctx context.Context, querier domain.Querier, accountID string, limit, offset int) ([]domain.Transaction, error)
}
