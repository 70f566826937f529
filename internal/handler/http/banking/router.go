package banking_http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"corebanking/internal/app/banking"
)

func RegisterRoutes(r chi.Router, s banking.BankingService, l *zap.Logger) {
	handler := NewBankingHandler(s, l.With(zap.String("component", "BankingHTTPHandler")))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Core banking service is healthy!"))
	})

	r.Route("/api/v1/corebanking", func(r chi.Router) {
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", handler.ListCustomersHandler)
			r.Post("/", handler.CreateCustomerHandler)
		})
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", handler.ListAccountsHandler)
			r.Post("/", handler.CreateAccountHandler)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handler.GetAccountHandler)
				r.Get("/transactions", handler.ListTransactionsHandler)
				r.Put("/deposit", handler.DepositHandler)
				r.Put("/withdraw", handler.WithdrawHandler)
				r.Put("/transfer", handler.TransferHandler)
			})
		})
	})
}
