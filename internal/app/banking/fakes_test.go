package banking

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"corebanking/internal/domain"
)

// ledgerState is one snapshot of the fake store. Transactions stage their
// writes in a clone; Commit swaps the clone in as the committed state, so a
// failed or rolled-back transaction leaves nothing behind.
type ledgerState struct {
	customers    map[string]domain.Customer
	accounts     map[string]domain.Account
	numbers      map[string]string
	transactions []domain.Transaction
	outbox       []domain.OutboxMessage
}

func newLedgerState() *ledgerState {
	return &ledgerState{
		customers: map[string]domain.Customer{},
		accounts:  map[string]domain.Account{},
		numbers:   map[string]string{},
	}
}

func (s *ledgerState) clone() *ledgerState {
	c := newLedgerState()
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.numbers {
		c.numbers[k] = v
	}
	c.transactions = append([]domain.Transaction(nil), s.transactions...)
	c.outbox = append([]domain.OutboxMessage(nil), s.outbox...)
	return c
}

type fakeStore struct {
	mu         sync.Mutex
	committed  *ledgerState
	failCommit bool
	beginErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{committed: newLedgerState()}
}

type fakeTx struct {
	store  *fakeStore
	staged *ledgerState
	done   bool
}

// Raw SQL is never issued against the fakes; the repo fakes below resolve
// state through the querier value instead.

func (f *fakeStore) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errors.New("fakeStore: raw sql not supported")
}

func (f *fakeStore) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errors.New("fakeStore: raw sql not supported")
}

func (f *fakeStore) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

func (f *fakeStore) BeginTx(ctx context.Context, _ *sql.TxOptions) (domain.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return &fakeTx{store: f, staged: f.committed.clone()}, nil
}

func (t *fakeTx) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errors.New("fakeTx: raw sql not supported")
}

func (t *fakeTx) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errors.New("fakeTx: raw sql not supported")
}

func (t *fakeTx) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

func (t *fakeTx) Commit() error {
	if t.done {
		return errors.New("fakeTx: already finished")
	}
	t.done = true
	if t.store.failCommit {
		return errors.New("fakeTx: injected commit failure")
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.committed = t.staged
	return nil
}

func (t *fakeTx) Rollback() error {
	t.done = true
	return nil
}

// state resolves which snapshot a querier refers to: the staged clone when
// called inside a fake transaction, committed state otherwise.
func (f *fakeStore) state(q domain.Querier) *ledgerState {
	if tx, ok := q.(*fakeTx); ok {
		return tx.staged
	}
	return f.committed
}

type fakeCustomerRepo struct{ store *fakeStore }

func (r *fakeCustomerRepo) CreateTx(_ context.Context, q domain.Querier, customer *domain.Customer) error {
	r.store.state(q).customers[customer.ID] = *customer
	return nil
}

func (r *fakeCustomerRepo) GetByIDTx(_ context.Context, q domain.Querier, id string) (*domain.Customer, error) {
	customer, ok := r.store.state(q).customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return &customer, nil
}

func (r *fakeCustomerRepo) ListTx(_ context.Context, q domain.Querier, limit, offset int) ([]domain.Customer, error) {
	s := r.store.state(q)
	customers := make([]domain.Customer, 0, len(s.customers))
	for _, customer := range s.customers {
		customers = append(customers, customer)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })
	return page(customers, limit, offset), nil
}

type fakeAccountRepo struct{ store *fakeStore }

func (r *fakeAccountRepo) CreateTx(_ context.Context, q domain.Querier, account *domain.Account) error {
	s := r.store.state(q)
	if _, exists := s.numbers[account.Number]; exists {
		return domain.ErrDuplicateAccountNumber
	}
	s.accounts[account.ID] = *account
	s.numbers[account.Number] = account.ID
	return nil
}

func (r *fakeAccountRepo) GetByIDTx(_ context.Context, q domain.Querier, id string) (*domain.Account, error) {
	account, ok := r.store.state(q).accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &account, nil
}

func (r *fakeAccountRepo) GetByNumberTx(_ context.Context, q domain.Querier, number string) (*domain.Account, error) {
	s := r.store.state(q)
	id, ok := s.numbers[number]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	account := s.accounts[id]
	return &account, nil
}

func (r *fakeAccountRepo) LockTx(ctx context.Context, q domain.Querier, id string) (*domain.Account, error) {
	return r.GetByIDTx(ctx, q, id)
}

func (r *fakeAccountRepo) UpdateBalanceTx(_ context.Context, q domain.Querier, id string, balance decimal.Decimal, updatedAt time.Time) error {
	s := r.store.state(q)
	account, ok := s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.Balance = balance
	account.UpdatedAt = updatedAt
	s.accounts[id] = account
	return nil
}

func (r *fakeAccountRepo) ListTx(_ context.Context, q domain.Querier, limit, offset int) ([]domain.Account, error) {
	s := r.store.state(q)
	accounts := make([]domain.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return page(accounts, limit, offset), nil
}

type fakeTransactionRepo struct{ store *fakeStore }

func (r *fakeTransactionRepo) CreateTx(_ context.Context, q domain.Querier, transaction *domain.Transaction) error {
	s := r.store.state(q)
	s.transactions = append(s.transactions, *transaction)
	return nil
}

func (r *fakeTransactionRepo) ListByAccountTx(_ context.Context, q domain.Querier, accountID string, limit, offset int) ([]domain.Transaction, error) {
	s := r.store.state(q)
	var transactions []domain.Transaction
	for _, transaction := range s.transactions {
		if transaction.AccountID == accountID {
			transactions = append(transactions, transaction)
		}
	}
	sort.Slice(transactions, func(i, j int) bool {
		if !transactions[i].DateUTC.Equal(transactions[j].DateUTC) {
			return transactions[i].DateUTC.After(transactions[j].DateUTC)
		}
		return transactions[i].ID > transactions[j].ID
	})
	return page(transactions, limit, offset), nil
}

type fakeOutboxRepo struct{ store *fakeStore }

func (r *fakeOutboxRepo) CreateMessageTx(_ context.Context, q domain.Querier, msg *domain.OutboxMessage) error {
	s := r.store.state(q)
	s.outbox = append(s.outbox, *msg)
	return nil
}

func (r *fakeOutboxRepo) GetPendingMessages(_ context.Context, q domain.Querier, limit int) ([]domain.OutboxMessage, error) {
	s := r.store.state(q)
	var messages []domain.OutboxMessage
	for _, msg := range s.outbox {
		if msg.Status == domain.OutboxStatusPending {
			messages = append(messages, msg)
		}
		if len(messages) == limit {
			break
		}
	}
	return messages, nil
}

func (r *fakeOutboxRepo) UpdateMessageStatusTx(_ context.Context, q domain.Querier, id string, status domain.OutboxMessageStatus) error {
	s := r.store.state(q)
	for i := range s.outbox {
		if s.outbox[i].ID == id {
			s.outbox[i].Status = status
			return nil
		}
	}
	return errors.New("outbox message not found")
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
