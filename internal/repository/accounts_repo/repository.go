package accounts_repo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"corebanking/internal/domain"
)

type AccountRepository interface {
	CreateTx(ctx context.Context, querier domain.Querier, account *domain.Account) error
	GetByIDTx(ctx context.Context, querier domain.Querier, id string) (*domain.Account, error)
	GetByNumberTx(ctx context.Context, querier domain.Querier, number string) (*domain.Account, error)
	// LockTx reads the account with a row lock (SELECT ... FOR UPDATE),
	// serializing read-modify-write against concurrent movements.
	LockTx(ctx context.Context, querier domain.Querier, id string) (*domain.Account, error)
	UpdateBalanceTx(ctx context.Context, querier domain.Querier, id string, balance decimal.Decimal, updatedAt time.Time) error
	ListTx(ctx context.Context, querier domain.Querier, limit, offset int) ([]domain.Account, error)
}
