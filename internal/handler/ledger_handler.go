package handler

import (
	"encoding/json"
	"net/http"

	"github.com/YuriVictoria/KipuBankV2/internal/service"
)

type amountRequest struct {
	Amount int64 `json:"amount"`
}

type LedgerHandler struct {
	ledgerService service.LedgerService
}

func NewLedgerHandler(ledgerService service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService}
}

func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var request amountRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Error occurred while parsing the request body", http.StatusBadRequest)
		return
	}

	account, err := h.ledgerService.Deposit(r.Context(), caller, request.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"address": account.Address,
		"balance": account.Balance,
	})
}

func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var request amountRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Error occurred while parsing the request body", http.StatusBadRequest)
		return
	}

	account, err := h.ledgerService.Withdraw(r.Context(), caller, request.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"address": account.Address,
		"balance": account.Balance,
	})
}

// GetBalance answers only for the caller itself; there is no endpoint to read
// another account's balance.
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	balance, err := h.ledgerService.Balance(caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"address": caller,
		"balance": balance,
	})
}

func (h *LedgerHandler) GetCounters(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	deposits, withdrawals, err := h.ledgerService.Counters(caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"address":          caller,
		"deposit-count":    deposits,
		"withdrawal-count": withdrawals,
	})
}
