package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/YuriVictoria/KipuBankV2/internal/entity"
)

func TestIdentityMiddlewareMissingHeader(t *testing.T) {
	next := func(w http.ResponseWriter, r *http.Request) {
		t.Error("Called despite the missing header!")
	}

	req := httptest.NewRequest("GET", "/vault/balance", nil)
	rr := httptest.NewRecorder()

	IdentityMiddleware(next)(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rr.Code)
	}
}

func TestIdentityMiddlewareBadAddress(t *testing.T) {
	next := func(w http.ResponseWriter, r *http.Request) {
		t.Error("Called despite the malformed address!")
	}

	for _, bad := range []string{"alice", "0x123", "0xzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaff"} {
		req := httptest.NewRequest("GET", "/vault/balance", nil)
		req.Header.Set(AccountHeader, bad)
		rr := httptest.NewRecorder()

		IdentityMiddleware(next)(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("Address %q: expected 400, got %d", bad, rr.Code)
		}
	}
}

func TestIdentityMiddlewareInjectsCaller(t *testing.T) {
	const addr = "0xAbCdEf0123456789aBcDeF0123456789abcdef01"

	var seen entity.Address
	next := func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value("caller").(entity.Address)
	}

	req := httptest.NewRequest("GET", "/vault/balance", nil)
	req.Header.Set(AccountHeader, addr)
	rr := httptest.NewRecorder()

	IdentityMiddleware(next)(rr, req)

	if seen != entity.Address(addr) {
		t.Errorf("Expected the caller %s in the context, got %q", addr, seen)
	}
}
