package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/YuriVictoria/KipuBankV2/internal/entity"
)

func callerFrom(r *http.Request) (entity.Address, bool) {
	caller, ok := r.Context().Value("caller").(entity.Address)
	return caller, ok
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps domain errors to status codes so a client can tell a
// retryable rejection from a permanent one.
func writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, entity.ErrZeroAmount), errors.Is(err, entity.ErrBadValue):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, entity.ErrInsufficientBalance),
		errors.Is(err, entity.ErrLimitExceeded),
		errors.Is(err, entity.ErrCapacityExceeded):
		status = http.StatusConflict
	case errors.Is(err, entity.ErrTransferFailed):
		status = http.StatusBadGateway
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
