package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/school-directory/internal/domain"
	jwtinfra "github.com/school-directory/internal/infrastructure/jwt"
)

// ErrUnauthenticated is the only failure Authorize reports. Missing header,
// malformed header, bad signature and expiry are not told apart.
var ErrUnauthenticated = errors.New("authentication required")

// TokenVerifier validates a session token and returns the identity it carries.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// ProtectedFunc is an operation that runs only for an authenticated caller.
// The identity is trusted as given.
type ProtectedFunc func(w http.ResponseWriter, r *http.Request, id domain.Identity)

type contextKey struct{}

// Gate is the authorization boundary in front of mutating endpoints.
type Gate struct {
	verifier TokenVerifier
}

func NewGate(verifier TokenVerifier) *Gate {
	return &Gate{verifier: verifier}
}

// Authorize extracts the bearer token from an Authorization header value and verifies it.
func (g *Gate) Authorize(header string) (domain.Identity, error) {
	token, ok := jwtinfra.ExtractBearer(header)
	if !ok {
		return domain.Identity{}, ErrUnauthenticated
	}
	id, err := g.verifier.Verify(token)
	if err != nil || id.Email == "" {
		return domain.Identity{}, ErrUnauthenticated
	}
	return id, nil
}

// Wrap returns a handler that invokes op with the caller's identity, or
// responds 401 without invoking it.
func (g *Gate) Wrap(op ProtectedFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.Authorize(r.Header.Get("Authorization"))
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		op(w, r, id)
	})
}

// Require is Wrap in middleware form. The identity is stored in the request
// context for IdentityFromContext.
func (g *Gate) Require(next http.Handler) http.Handler {
	return g.Wrap(func(w http.ResponseWriter, r *http.Request, id domain.Identity) {
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFromContext returns the identity stored by Require.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(domain.Identity)
	return id, ok
}
