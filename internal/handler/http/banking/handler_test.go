package banking_http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"corebanking/internal/domain"
)

// ---- mock service ----

type mockBankingService struct {
	createCustomerFn   func(ctx context.Context, name, address string) (*domain.Customer, error)
	createAccountFn    func(ctx context.Context, customerID string) (*domain.Account, error)
	getAccountFn       func(ctx context.Context, id string) (*domain.Account, error)
	depositFn          func(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.Account, error)
	withdrawFn         func(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.Account, error)
	transferFn         func(ctx context.Context, sourceID, destNumber string, amount decimal.Decimal) (*domain.Account, error)
	listCustomersFn    func(ctx context.Context, limit, offset int) ([]domain.Customer, error)
	listAccountsFn     func(ctx context.Context, limit, offset int) ([]domain.Account, error)
	listTransactionsFn func(ctx context.Context, accountID string, limit, offset int) ([]domain.Transaction, error)
}

func (m *mockBankingService) CreateCustomer(ctx context.Context, name, address string) (*domain.Customer, error) {
	if m.createCustomerFn != nil {
		return m.createCustomerFn(ctx, name, address)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockBankingService) ListCustomers(ctx context.Context, limit, offset int) ([]domain.Customer, error) {
	if m.listCustomersFn != nil {
		return m.listCustomersFn(ctx, limit, offset)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockBankingService) CreateAccount(ctx context.Context, customerID string) (*domain.Account, error) {
	if m.createAccountFn != nil {
		return m.createAccountFn(ctx, customerID)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockBankingService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	if m.getAccountFn != nil {
		return m.getAccountFn(ctx, id)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockBankingService) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	if m.listAccountsFn != nil {
		return m.listAccountsFn(ctx, limit, offset)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockBankingService) ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]domain.Transaction, error) {
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(ctx, accountID, limit, offset)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockBankingService) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.Account, error) {
	if m.depositFn != nil {
		return m.depositFn(ctx, accountID, amount)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockBankingService) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.Account, error) {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, accountID, amount)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockBankingService) Transfer(ctx context.Context, sourceID, destNumber string, amount decimal.Decimal) (*domain.Account, error) {
	if m.transferFn != nil {
		return m.transferFn(ctx, sourceID, destNumber, amount)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func newTestRouter(svc *mockBankingService) *chi.Mux {
	r := chi.NewRouter()
	RegisterRoutes(r, svc, zap.NewNop())
	return r
}

func testAccount() *domain.Account {
	return &domain.Account{
		ID:         "acc-1",
		CustomerID: "cust-1",
		Number:     "111",
		Balance:    decimal.NewFromInt(70),
		CreatedAt:  time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
}

// ---- tests ----

func TestDepositHandlerSuccess(t *testing.T) {
	svc := &mockBankingService{
		depositFn: func(_ context.Context, accountID string, amount decimal.Decimal) (*domain.Account, error) {
			assert.Equal(t, "acc-1", accountID)
			assert.True(t, amount.Equal(decimal.NewFromInt(50)))
			return testAccount(), nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/corebanking/accounts/acc-1/deposit", strings.NewReader(`{"amount":"50"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "acc-1", resp.ID)
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(70)))
}

func TestDepositHandlerMalformedBody(t *testing.T) {
	router := newTestRouter(&mockBankingService{})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/corebanking/accounts/acc-1/deposit", strings.NewReader(`{`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid argument", domain.ErrInvalidArgument, http.StatusBadRequest},
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound},
		{"customer not found", domain.ErrCustomerNotFound, http.StatusNotFound},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"store failure", domain.ErrStoreFailure, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBankingService{
				withdrawFn: func(context.Context, string, decimal.Decimal) (*domain.Account, error) {
					return nil, tt.err
				},
			}
			router := newTestRouter(svc)

			req := httptest.NewRequest(http.MethodPut, "/api/v1/corebanking/accounts/acc-1/withdraw", strings.NewReader(`{"amount":"10"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestTransferHandlerPassesDestinationNumber(t *testing.T) {
	svc := &mockBankingService{
		transferFn: func(_ context.Context, sourceID, destNumber string, amount decimal.Decimal) (*domain.Account, error) {
			assert.Equal(t, "acc-1", sourceID)
			assert.Equal(t, "222", destNumber)
			assert.True(t, amount.Equal(decimal.NewFromInt(30)))
			return testAccount(), nil
		},
	}
	router := newTestRouter(svc)

	body := `{"destination_number":"222","amount":"30"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/corebanking/accounts/acc-1/transfer", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestListAccountsPagination(t *testing.T) {
	svc := &mockBankingService{
		listAccountsFn: func(_ context.Context, limit, offset int) ([]domain.Account, error) {
			assert.Equal(t, 5, limit)
			assert.Equal(t, 10, offset)
			return []domain.Account{*testAccount()}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/corebanking/accounts?pageIndex=2&pageSize=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
}

func TestCreateCustomerHandler(t *testing.T) {
	svc := &mockBankingService{
		createCustomerFn: func(_ context.Context, name, address string) (*domain.Customer, error) {
			assert.Equal(t, "John Doe", name)
			return &domain.Customer{ID: "cust-1", Name: name, Address: address}, nil
		},
	}
	router := newTestRouter(svc)

	body := `{"name":"John Doe","address":"123 Main St"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/corebanking/customers", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp CustomerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cust-1", resp.ID)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&mockBankingService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
