package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/YuriVictoria/KipuBankV2/internal/entity"
)

// Accounts are opaque, externally supplied addresses; the caller presents its
// own in the X-Account header the way a transaction carries its sender.
const AccountHeader = "X-Account"

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ValidAddress reports whether s looks like an account address.
func ValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// IdentityMiddleware extracts the caller address from the request, validates
// its shape and stores it in the request context for the handlers.
func IdentityMiddleware(next func(w http.ResponseWriter, r *http.Request)) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(AccountHeader)
		if raw == "" {
			http.Error(w, "Missing "+AccountHeader+" header", http.StatusUnauthorized)
			return
		}
		if !ValidAddress(raw) {
			http.Error(w, "Account address must be 0x followed by 40 hex digits", http.StatusBadRequest)
			return
		}

		ctx := context.WithValue(r.Context(), "caller", entity.Address(raw))
		r = r.WithContext(ctx)

		next(w, r)
	}
}
