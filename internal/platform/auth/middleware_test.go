package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maplemarket/api/internal/platform/requestctx"
)

func TestMiddlewareExtractsIdentity(t *testing.T) {
	authenticator := NewHeaderAuthenticator()

	var gotEmail string
	var gotCtxEmail string
	handler := authenticator.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, ok := IdentityFromContext(r.Context()); ok {
			gotEmail = identity.Email
		}
		gotCtxEmail, _ = requestctx.AccountEmail(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set(DefaultIdentityHeader, "buyer@example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if gotEmail != "buyer@example.com" {
		t.Fatalf("expected identity email, got %q", gotEmail)
	}
	if gotCtxEmail != "buyer@example.com" {
		t.Fatalf("expected request context email, got %q", gotCtxEmail)
	}
}

func TestMiddlewarePassesAnonymousRequests(t *testing.T) {
	authenticator := NewHeaderAuthenticator()

	var sawIdentity bool
	handler := authenticator.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawIdentity = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/catalog/items", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if sawIdentity {
		t.Fatal("expected no identity for anonymous request")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected handler to run, got %d", rec.Code)
	}
}

func TestRequireIdentityRejectsAnonymous(t *testing.T) {
	handler := RequireIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireIdentityAllowsAuthenticated(t *testing.T) {
	authenticator := NewHeaderAuthenticator(WithIdentityHeader("X-Shop-Account"))
	handler := authenticator.Middleware()(RequireIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	req.Header.Set("X-Shop-Account", "buyer@example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
