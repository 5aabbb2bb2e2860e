package handler

import (
	"net/http"

	"github.com/YuriVictoria/KipuBankV2/internal/middleware"

	"github.com/gorilla/mux"
)

// NewRouter wires the full HTTP surface. Anything outside these routes is
// rejected outright, so the deposit operation stays the only path that can
// push value into the bank.
func NewRouter(ledger *LedgerHandler, admin *AdminHandler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/vault/deposit", middleware.IdentityMiddleware(ledger.Deposit)).Methods(http.MethodPost)
	r.HandleFunc("/vault/withdraw", middleware.IdentityMiddleware(ledger.Withdraw)).Methods(http.MethodPost)
	r.HandleFunc("/vault/balance", middleware.IdentityMiddleware(ledger.GetBalance)).Methods(http.MethodGet)
	r.HandleFunc("/vault/counters", middleware.IdentityMiddleware(ledger.GetCounters)).Methods(http.MethodGet)

	r.HandleFunc("/config/bank-cap", admin.GetBankCap).Methods(http.MethodGet)
	r.HandleFunc("/config/withdraw-limit", admin.GetWithdrawLimit).Methods(http.MethodGet)
	r.HandleFunc("/config/bank-cap", middleware.IdentityMiddleware(admin.SetBankCap)).Methods(http.MethodPut)
	r.HandleFunc("/config/withdraw-limit", middleware.IdentityMiddleware(admin.SetWithdrawLimit)).Methods(http.MethodPut)

	r.HandleFunc("/roles/grant", middleware.IdentityMiddleware(admin.GrantRole)).Methods(http.MethodPost)
	r.HandleFunc("/roles/revoke", middleware.IdentityMiddleware(admin.RevokeRole)).Methods(http.MethodPost)
	r.HandleFunc("/roles/{address}", admin.GetRoles).Methods(http.MethodGet)

	r.HandleFunc("/events", middleware.IdentityMiddleware(admin.ListEvents)).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "No such endpoint", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	return r
}
