package jwtinfra

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/school-directory/internal/domain"
	"github.com/school-directory/internal/pkg/clock"
)

const DefaultExpiry = 24 * time.Hour

var (
	// ErrMissingSecret is returned by NewProvider when no signing secret is configured.
	ErrMissingSecret = errors.New("jwt signing secret is not configured")
	// ErrInvalidToken covers every verification failure: malformed, bad signature, expired, missing claim.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims holds the JWT payload fields.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 session tokens with a shared secret.
type Provider struct {
	secret []byte
	expiry time.Duration
	clock  clock.Clocker
}

// NewProvider builds a Provider. A nil clock uses system time, a non-positive expiry uses DefaultExpiry.
func NewProvider(secret string, expiry time.Duration, clk clock.Clocker) (*Provider, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Provider{secret: []byte(secret), expiry: expiry, clock: clk}, nil
}

// Mint returns a signed token whose only custom claim is email.
func (p *Provider) Mint(email string) (string, error) {
	now := p.clock.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the identity carried by the token.
func (p *Provider) Verify(tokenStr string) (domain.Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return p.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.clock.Now),
	)
	if err != nil {
		slog.Debug("token verification failed", "err", err)
		return domain.Identity{}, ErrInvalidToken
	}
	if !token.Valid || claims.Email == "" {
		return domain.Identity{}, ErrInvalidToken
	}
	return domain.Identity{Email: claims.Email}, nil
}

// ExtractBearer returns the token from an Authorization header of the exact
// form "Bearer <token>". Splitting is on single spaces, so doubled or
// trailing spaces produce the wrong number of parts and are rejected.
func ExtractBearer(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
