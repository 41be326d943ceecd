package auth

import (
	"context"
	"strings"
)

// Identity captures the authenticated principal details extracted from the
// trusted identity header set by the edge proxy.
type Identity struct {
	Email string
}

type contextKey string

const identityContextKey contextKey = "github.com/maplemarket/api/internal/platform/auth/identity"

// WithIdentity stores the identity within the context for downstream handlers.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext retrieves the identity previously stored in context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok || identity == nil || strings.TrimSpace(identity.Email) == "" {
		return nil, false
	}
	return identity, true
}
