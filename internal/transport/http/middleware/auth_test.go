package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/school-directory/internal/domain"
	jwtinfra "github.com/school-directory/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newTestProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	p, err := jwtinfra.NewProvider("middleware-secret", 24*time.Hour, nil)
	require.NoError(t, err)
	return p
}

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestAuthorize_ValidToken(t *testing.T) {
	p := newTestProvider(t)
	token, err := p.Mint("user@example.com")
	require.NoError(t, err)

	id, err := NewGate(p).Authorize("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{Email: "user@example.com"}, id)
}

func TestAuthorize_Failures(t *testing.T) {
	p := newTestProvider(t)
	token, err := p.Mint("user@example.com")
	require.NoError(t, err)

	expiredProvider, err := jwtinfra.NewProvider("middleware-secret", 24*time.Hour, fixedClock{now: time.Now().Add(-72 * time.Hour)})
	require.NoError(t, err)
	expired, err := expiredProvider.Mint("user@example.com")
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtinfra.Claims{
		Email:            "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("someone-else"))
	require.NoError(t, err)

	headers := map[string]string{
		"missing":       "",
		"wrong scheme":  "Token " + token,
		"no value":      "Bearer",
		"too many":      "Bearer " + token + " extra",
		"garbage":       "Bearer not-a-real-token",
		"expired":       "Bearer " + expired,
		"bad signature": "Bearer " + foreign,
	}
	gate := NewGate(p)
	for name, h := range headers {
		_, err := gate.Authorize(h)
		assert.ErrorIs(t, err, ErrUnauthenticated, name)
	}
}

func TestWrap_InvokesOperationWithIdentity(t *testing.T) {
	p := newTestProvider(t)
	token, err := p.Mint("user@example.com")
	require.NoError(t, err)

	var got domain.Identity
	calls := 0
	h := NewGate(p).Wrap(func(w http.ResponseWriter, _ *http.Request, id domain.Identity) {
		calls++
		got = id
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "user@example.com", got.Email)
}

func TestWrap_RejectsWithGenericBody(t *testing.T) {
	p := newTestProvider(t)
	calls := 0
	h := NewGate(p).Wrap(func(http.ResponseWriter, *http.Request, domain.Identity) { calls++ })

	var bodies []string
	for _, header := range []string{"", "Token abc", "Bearer abc", "Bearer a b"} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		bodies = append(bodies, rr.Body.String())
	}

	assert.Equal(t, 0, calls)
	for _, b := range bodies {
		assert.JSONEq(t, `{"error":"Authentication required"}`, b)
	}
}

func TestRequire_InjectsIdentity(t *testing.T) {
	p := newTestProvider(t)
	token, err := p.Mint("user@example.com")
	require.NoError(t, err)

	var got domain.Identity
	var ok bool
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	NewGate(p).Require(capture).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.True(t, ok)
	assert.Equal(t, "user@example.com", got.Email)
}

func TestRequire_MissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	NewGate(newTestProvider(t)).Require(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestIdentityFromContext_Empty(t *testing.T) {
	_, ok := IdentityFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
