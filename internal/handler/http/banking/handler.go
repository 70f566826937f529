package banking_http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"corebanking/internal/app/banking"
	"corebanking/internal/domain"
)

type BankingHandler struct {
	service banking.BankingService
	logger  *zap.Logger
}

func NewBankingHandler(s banking.BankingService, l *zap.Logger) *BankingHandler {
	return &BankingHandler{service: s, logger: l}
}

type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type CreateAccountRequest struct {
	CustomerID string `json:"customer_id"`
}

type MovementRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type TransferRequest struct {
	DestinationNumber string          `json:"destination_number"`
	Amount            decimal.Decimal `json:"amount"`
}

type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

type AccountResponse struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Number     string          `json:"number"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type TransactionResponse struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	DateUTC   time.Time       `json:"date_utc"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *BankingHandler) CreateCustomerHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	customer, err := h.service.CreateCustomer(r.Context(), req.Name, req.Address)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, customerToResponse(customer))
}

func (h *BankingHandler) ListCustomersHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	customers, err := h.service.ListCustomers(r.Context(), limit, offset)
	if err != nil {
		h.respondError(w, err)
		return
	}
	resp := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		resp = append(resp, customerToResponse(&customers[i]))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *BankingHandler) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	account, err := h.service.CreateAccount(r.Context(), req.CustomerID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, accountToResponse(account))
}

func (h *BankingHandler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, accountToResponse(account))
}

func (h *BankingHandler) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	accounts, err := h.service.ListAccounts(r.Context(), limit, offset)
	if err != nil {
		h.respondError(w, err)
		return
	}
	resp := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, accountToResponse(&accounts[i]))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *BankingHandler) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	transactions, err := h.service.ListTransactions(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		h.respondError(w, err)
		return
	}
	resp := make([]TransactionResponse, 0, len(transactions))
	for _, transaction := range transactions {
		resp = append(resp, TransactionResponse{
			ID:        transaction.ID,
			AccountID: transaction.AccountID,
			Type:      string(transaction.Type),
			Amount:    transaction.Amount,
			DateUTC:   transaction.DateUTC,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *BankingHandler) DepositHandler(w http.ResponseWriter, r *http.Request) {
	var req MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	account, err := h.service.Deposit(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, accountToResponse(account))
}

func (h *BankingHandler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	var req MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	account, err := h.service.Withdraw(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, accountToResponse(account))
}

func (h *BankingHandler) TransferHandler(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	account, err := h.service.Transfer(r.Context(), chi.URLParam(r, "id"), req.DestinationNumber, req.Amount)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, accountToResponse(account))
}

// respondError maps domain error kinds to transport status codes. Unknown
// errors are logged and reported as a generic 500.
func (h *BankingHandler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrCustomerNotFound):
		respondJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInsufficientFunds):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error("unexpected error handling request", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func customerToResponse(customer *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		Address:   customer.Address,
		CreatedAt: customer.CreatedAt,
	}
}

func accountToResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:         account.ID,
		CustomerID: account.CustomerID,
		Number:     account.Number,
		Balance:    account.Balance,
		CreatedAt:  account.CreatedAt,
		UpdatedAt:  account.UpdatedAt,
	}
}

// parsePagination reads pageIndex/pageSize query params and converts them
// to limit/offset. Defaults: page 0, size 10.
func parsePagination(r *http.Request) (limit, offset int) {
	pageIndex, _ := strconv.Atoi(r.URL.Query().Get("pageIndex"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageIndex < 0 {
		pageIndex = 0
	}
	return pageSize, pageIndex * pageSize
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
