package banking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"corebanking/internal/domain"
	"corebanking/internal/repository/accounts_repo"
	"corebanking/internal/repository/customers_repo"
	"corebanking/internal/repository/outbox_repo"
	"corebanking/internal/repository/transactions_repo"
	"corebanking/internal/util"
)

type Clock func() time.Time

type IDGenerator func() string

// Generators supplies the engine's clock and id sources. Injected so tests
// control time and ids deterministically; zero fields fall back to the
// production implementations.
type Generators struct {
	Now              Clock
	NewID            IDGenerator
	NewAccountNumber func(time.Time) string
}

func DefaultGenerators() Generators {
	return Generators{
		Now:              time.Now,
		NewID:            util.NewID,
		NewAccountNumber: util.NewAccountNumber,
	}
}

// AccountCache caches account views for the read path. Misses and backend
// errors are non-fatal; the store stays authoritative.
type AccountCache interface {
	Get(ctx context.Context, id string) (*domain.Account, bool)
	Set(ctx context.Context, account *domain.Account)
	Delete(ctx context.Context, id string)
}

type BankingService interface {
	CreateCustomer(ctx context.Context, name, address string) (*domain.Customer, error)
	ListCustomers(ctx context.Context, limit, offset int) ([]domain.Customer, error)
	CreateAccount(ctx context.Context, customerID string) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error)
	ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]domain.Transaction, error)
	Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.Account, error)
	Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.Account, error)
	Transfer(ctx context.Context, sourceAccountID, destinationNumber string, amount decimal.Decimal) (*domain.Account, error)
}

type bankingService struct {
	db           domain.DB
	customers    customers_repo.CustomerRepository
	accounts     accounts_repo.AccountRepository
	transactions transactions_repo.TransactionRepository
	outbox       outbox_repo.OutboxRepository
	accountCache AccountCache
	eventsTopic  string
	gen          Generators
	logger       *zap.Logger
}

func NewBankingService(
	db domain.DB,
	customers customers_repo.CustomerRepository,
	accounts accounts_repo.AccountRepository,
	transactions transactions_repo.TransactionRepository,
	outbox outbox_repo.OutboxRepository,
	accountCache AccountCache,
	eventsTopic string,
	gen Generators,
	logger *zap.Logger,
) BankingService {
	defaults := DefaultGenerators()
	if gen.Now == nil {
		gen.Now = defaults.Now
	}
	if gen.NewID == nil {
		gen.NewID = defaults.NewID
	}
	if gen.NewAccountNumber == nil {
		gen.NewAccountNumber = defaults.NewAccountNumber
	}
	return &bankingService{
		db:           db,
		customers:    customers,
		accounts:     accounts,
		transactions: transactions,
		outbox:       outbox,
		accountCache: accountCache,
		eventsTopic:  eventsTopic,
		gen:          gen,
		logger:       logger,
	}
}

func (s *bankingService) CreateCustomer(ctx context.Context, name, address string) (*domain.Customer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: customer name is required", domain.ErrInvalidArgument)
	}
	customer := &domain.Customer{
		ID:        s.gen.NewID(),
		Name:      name,
		Address:   address,
		CreatedAt: s.gen.Now().UTC(),
	}
	if err := s.customers.CreateTx(ctx, s.db, customer); err != nil {
		return nil, s.storeFailure(err,
			zap.String("operation", "create_customer"),
			zap.String("customer_id", customer.ID))
	}
	s.logger.Info("customer created", zap.String("customer_id", customer.ID))
	return customer, nil
}

func (s *bankingService) ListCustomers(ctx context.Context, limit, offset int) ([]domain.Customer, error) {
	limit, offset = normalizePage(limit, offset)
	customers, err := s.customers.ListTx(ctx, s.db, limit, offset)
	if err != nil {
		return nil, s.storeFailure(err, zap.String("operation", "list_customers"))
	}
	return customers, nil
}

// CreateAccount opens a zero-balance account for an existing customer. The
// account number is clock-derived; the unique constraint on accounts.number
// is what actually guarantees uniqueness under concurrent creation.
func (s *bankingService) CreateAccount(ctx context.Context, customerID string) (*domain.Account, error) {
	if isEmptyID(customerID) {
		return nil, fmt.Errorf("%w: customer id is required", domain.ErrInvalidArgument)
	}
	fields := []zap.Field{
		zap.String("operation", "create_account"),
		zap.String("customer_id", customerID),
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.storeFailure(err, fields...)
	}
	if _, err := s.customers.GetByIDTx(ctx, tx, customerID); err != nil {
		tx.Rollback()
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return nil, err
		}
		return nil, s.storeFailure(err, fields...)
	}
	now := s.gen.Now().UTC()
	account := &domain.Account{
		ID:         s.gen.NewID(),
		CustomerID: customerID,
		Number:     s.gen.NewAccountNumber(now),
		Balance:    decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.accounts.CreateTx(ctx, tx, account); err != nil {
		tx.Rollback()
		return nil, s.storeFailure(err, append(fields, zap.String("account_number", account.Number))...)
	}
	if err := tx.Commit(); err != nil {
		return nil, s.storeFailure(err, fields...)
	}
	s.logger.Info("account created",
		zap.String("account_id", account.ID),
		zap.String("account_number", account.Number),
		zap.String("customer_id", customerID))
	return account, nil
}

func (s *bankingService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	if isEmptyID(id) {
		return nil, fmt.Errorf("%w: account id is required", domain.ErrInvalidArgument)
	}
	if s.accountCache != nil {
		if account, ok := s.accountCache.Get(ctx, id); ok {
			return account, nil
		}
	}
	account, err := s.accounts.GetByIDTx(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		return nil, s.storeFailure(err,
			zap.String("operation", "get_account"),
			zap.String("account_id", id))
	}
	if s.accountCache != nil {
		s.accountCache.Set(ctx, account)
	}
	return account, nil
}

func (s *bankingService) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	limit, offset = normalizePage(limit, offset)
	accounts, err := s.accounts.ListTx(ctx, s.db, limit, offset)
	if err != nil {
		return nil, s.storeFailure(err, zap.String("operation", "list_accounts"))
	}
	return accounts, nil
}

func (s *bankingService) ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]domain.Transaction, error) {
	if isEmptyID(accountID) {
		return nil, fmt.Errorf("%w: account id is required", domain.ErrInvalidArgument)
	}
	limit, offset = normalizePage(limit, offset)
	if _, err := s.accounts.GetByIDTx(ctx, s.db, accountID); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		return nil, s.storeFailure(err,
			zap.String("operation", "list_transactions"),
			zap.String("account_id", accountID))
	}
	transactions, err := s.transactions.ListByAccountTx(ctx, s.db, accountID, limit, offset)
	if err != nil {
		return nil, s.storeFailure(err,
			zap.String("operation", "list_transactions"),
			zap.String("account_id", accountID))
	}
	return transactions, nil
}

func (s *bankingService) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.Account, error) {
	return s.movement(ctx, accountID, domain.TransactionDeposit, amount)
}

func (s *bankingService) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.Account, error) {
	return s.movement(ctx, accountID, domain.TransactionWithdraw, amount)
}

// movement applies a single-account deposit or withdrawal: lock row, check
// funds, update balance, append the ledger entry and its outbox row, commit.
// Balance update and log append are one atomic unit.
func (s *bankingService) movement(ctx context.Context, accountID string, txnType domain.TransactionType, amount decimal.Decimal) (*domain.Account, error) {
	if err := validateMovement(accountID, amount); err != nil {
		return nil, err
	}
	fields := []zap.Field{
		zap.String("operation", strings.ToLower(string(txnType))),
		zap.String("account_id", accountID),
		zap.String("amount", amount.String()),
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.storeFailure(err, fields...)
	}
	account, err := s.accounts.LockTx(ctx, tx, accountID)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		return nil, s.storeFailure(err, fields...)
	}
	if txnType == domain.TransactionWithdraw && account.Balance.LessThan(amount) {
		tx.Rollback()
		return nil, domain.ErrInsufficientFunds
	}
	now := s.gen.Now().UTC()
	if err := s.applyMovementTx(ctx, tx, account, txnType, amount, now); err != nil {
		tx.Rollback()
		return nil, s.storeFailure(err, fields...)
	}
	if err := tx.Commit(); err != nil {
		return nil, s.storeFailure(err, fields...)
	}
	s.invalidateAccount(ctx, account.ID)
	s.logger.Info("movement committed", append(fields, zap.String("balance", account.Balance.String()))...)
	return account, nil
}

// Transfer moves amount from the source account (by id) to the destination
// account (by number) as one atomic unit: two balance updates, two ledger
// entries sharing one timestamp, two outbox rows. Only the updated source
// account is returned; the destination's new balance is deliberately not
// surfaced. Collaborators may rely on that shape, so changing it needs
// product sign-off.
func (s *bankingService) Transfer(ctx context.Context, sourceAccountID, destinationNumber string, amount decimal.Decimal) (*domain.Account, error) {
	if err := validateTransfer(sourceAccountID, destinationNumber, amount); err != nil {
		return nil, err
	}
	fields := []zap.Field{
		zap.String("operation", "transfer"),
		zap.String("source_account_id", sourceAccountID),
		zap.String("destination_number", destinationNumber),
		zap.String("amount", amount.String()),
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.storeFailure(err, fields...)
	}

	// Precedence checks run on unlocked reads, in contract order: source
	// existence, source funds, destination existence, self-transfer.
	source, err := s.accounts.GetByIDTx(ctx, tx, sourceAccountID)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		return nil, s.storeFailure(err, fields...)
	}
	if source.Balance.LessThan(amount) {
		tx.Rollback()
		return nil, domain.ErrInsufficientFunds
	}
	destination, err := s.accounts.GetByNumberTx(ctx, tx, destinationNumber)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		return nil, s.storeFailure(err, fields...)
	}
	if source.ID == destination.ID {
		tx.Rollback()
		return nil, fmt.Errorf("%w: source and destination are the same account", domain.ErrInvalidArgument)
	}

	// Lock both rows in ascending id order so opposite-direction transfers
	// cannot deadlock, then re-verify funds under the lock.
	firstID, secondID := source.ID, destination.ID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}
	for _, id := range []string{firstID, secondID} {
		locked, err := s.accounts.LockTx(ctx, tx, id)
		if err != nil {
			tx.Rollback()
			return nil, s.storeFailure(err, fields...)
		}
		if locked.ID == source.ID {
			source = locked
		} else {
			destination = locked
		}
	}
	if source.Balance.LessThan(amount) {
		tx.Rollback()
		return nil, domain.ErrInsufficientFunds
	}

	now := s.gen.Now().UTC()
	if err := s.applyMovementTx(ctx, tx, source, domain.TransactionWithdraw, amount, now); err != nil {
		tx.Rollback()
		return nil, s.storeFailure(err, fields...)
	}
	if err := s.applyMovementTx(ctx, tx, destination, domain.TransactionDeposit, amount, now); err != nil {
		tx.Rollback()
		return nil, s.storeFailure(err, fields...)
	}
	if err := tx.Commit(); err != nil {
		return nil, s.storeFailure(err, fields...)
	}
	s.invalidateAccount(ctx, source.ID)
	s.invalidateAccount(ctx, destination.ID)
	s.logger.Info("transfer committed", append(fields,
		zap.String("destination_account_id", destination.ID),
		zap.String("source_balance", source.Balance.String()))...)
	return source, nil
}

// applyMovementTx mutates one already-locked account inside the caller's
// transaction: balance update, ledger entry, outbox row. The redundant
// balance and the append-only log must move together, always.
func (s *bankingService) applyMovementTx(ctx context.Context, tx domain.Tx, account *domain.Account, txnType domain.TransactionType, amount decimal.Decimal, now time.Time) error {
	if txnType == domain.TransactionWithdraw {
		account.Balance = account.Balance.Sub(amount)
	} else {
		account.Balance = account.Balance.Add(amount)
	}
	account.UpdatedAt = now
	if err := s.accounts.UpdateBalanceTx(ctx, tx, account.ID, account.Balance, now); err != nil {
		return err
	}
	entry := &domain.Transaction{
		ID:        s.gen.NewID(),
		AccountID: account.ID,
		Type:      txnType,
		Amount:    amount,
		DateUTC:   now,
	}
	if err := s.transactions.CreateTx(ctx, tx, entry); err != nil {
		return err
	}
	return s.enqueueEventTx(ctx, tx, entry, account.Balance, now)
}

func (s *bankingService) enqueueEventTx(ctx context.Context, tx domain.Tx, entry *domain.Transaction, balance decimal.Decimal, now time.Time) error {
	payload, err := json.Marshal(domain.TransactionRecordedEvent{
		TransactionID: entry.ID,
		AccountID:     entry.AccountID,
		Type:          string(entry.Type),
		Amount:        entry.Amount,
		Balance:       balance,
		DateUTC:       entry.DateUTC,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal transaction event: %w", err)
	}
	msg := &domain.OutboxMessage{
		ID:            s.gen.NewID(),
		AggregateID:   entry.AccountID,
		AggregateType: "account",
		MessageType:   "transaction.recorded",
		Topic:         s.eventsTopic,
		Key:           entry.AccountID,
		Payload:       payload,
		Status:        domain.OutboxStatusPending,
		CreatedAt:     now,
	}
	return s.outbox.CreateMessageTx(ctx, tx, msg)
}

func (s *bankingService) invalidateAccount(ctx context.Context, id string) {
	if s.accountCache != nil {
		s.accountCache.Delete(ctx, id)
	}
}

// storeFailure logs the underlying fault with full operation context and
// returns the generic store error; driver details never reach the caller.
func (s *bankingService) storeFailure(err error, fields ...zap.Field) error {
	s.logger.Error("ledger store operation failed", append(fields, zap.Error(err))...)
	return domain.ErrStoreFailure
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
