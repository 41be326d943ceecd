package auth

import (
	"net/http"
	"strings"

	"github.com/maplemarket/api/internal/platform/httpx"
	"github.com/maplemarket/api/internal/platform/requestctx"
)

// DefaultIdentityHeader names the header the edge proxy sets after
// authenticating the shopper.
const DefaultIdentityHeader = "X-Account-Email"

// HeaderAuthenticator extracts the caller identity from a trusted request
// header. The API itself performs no credential verification; the header is
// populated upstream.
type HeaderAuthenticator struct {
	header string
}

// Option customises HeaderAuthenticator behaviour.
type Option func(*HeaderAuthenticator)

// WithIdentityHeader overrides the header carrying the account email.
func WithIdentityHeader(header string) Option {
	return func(a *HeaderAuthenticator) {
		header = strings.TrimSpace(header)
		if header != "" {
			a.header = header
		}
	}
}

// NewHeaderAuthenticator constructs a HeaderAuthenticator.
func NewHeaderAuthenticator(opts ...Option) *HeaderAuthenticator {
	authenticator := &HeaderAuthenticator{header: DefaultIdentityHeader}
	for _, opt := range opts {
		if opt != nil {
			opt(authenticator)
		}
	}
	return authenticator
}

// Middleware stores the identity on the request context when the header is
// present. Requests without the header pass through anonymously.
func (a *HeaderAuthenticator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := strings.TrimSpace(r.Header.Get(a.header))
			if email == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithIdentity(r.Context(), &Identity{Email: email})
			ctx = requestctx.WithAccountEmail(ctx, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity rejects anonymous requests with a 401 JSON error.
func RequireIdentity(next http.Handler) http.Handler {
	if next == nil {
		next = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			httpx.WriteError(r.Context(), w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
			return
		}
		next.ServeHTTP(w, r)
	})
}
