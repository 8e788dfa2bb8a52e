package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/school-directory/internal/domain"
	"github.com/school-directory/internal/infrastructure/smtp"
	"github.com/school-directory/internal/pkg/validate"
)

var (
	// ErrInvalidEmail is returned when the email does not have an address shape.
	ErrInvalidEmail = fmt.Errorf("invalid email format: %w", domain.ErrBadRequest)
	// ErrInvalidOTP is returned when the code is not exactly six digits.
	ErrInvalidOTP = fmt.Errorf("otp must be 6 digits: %w", domain.ErrBadRequest)
	// ErrDeliveryFailed is returned when the code could not be emailed. The code stays valid.
	ErrDeliveryFailed = fmt.Errorf("send otp email: %w", domain.ErrDeliveryFailed)
	// ErrLoginFailed covers wrong, expired and unknown codes alike.
	ErrLoginFailed = fmt.Errorf("invalid or expired otp: %w", domain.ErrUnauthorized)
)

// CodeStore issues and consumes pending login codes.
type CodeStore interface {
	Issue(email string) (string, error)
	Verify(email, code string) bool
}

// TokenMinter creates session tokens for a verified email.
type TokenMinter interface {
	Mint(email string) (string, error)
}

// LoginResult is returned after a successful code exchange.
type LoginResult struct {
	Token string
	User  domain.Identity
}

type Service interface {
	RequestLogin(ctx context.Context, email string) error
	VerifyLogin(ctx context.Context, email, code string) (*LoginResult, error)
}

// ServiceDeps groups the collaborators of the auth service.
type ServiceDeps struct {
	Codes  CodeStore
	Mailer smtp.Mailer
	Tokens TokenMinter
	// CodeTTL is quoted in the email body. Defaults to 10 minutes.
	CodeTTL time.Duration
}

type service struct {
	codes   CodeStore
	mailer  smtp.Mailer
	tokens  TokenMinter
	codeTTL time.Duration
}

func NewService(deps ServiceDeps) Service {
	ttl := deps.CodeTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &service{
		codes:   deps.Codes,
		mailer:  deps.Mailer,
		tokens:  deps.Tokens,
		codeTTL: ttl,
	}
}

// RequestLogin issues a code for email and emails it. A failed send is
// reported but the issued code is not rolled back.
func (s *service) RequestLogin(ctx context.Context, email string) error {
	if !validate.Email(email) {
		return ErrInvalidEmail
	}
	code, err := s.codes.Issue(email)
	if err != nil {
		return err
	}
	msg, err := otpMessage(email, code, s.codeTTL)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "otp email delivery failed", "email", email, "err", err)
		return errors.Join(ErrDeliveryFailed, err)
	}
	slog.InfoContext(ctx, "otp email sent", "email", email)
	return nil
}

// VerifyLogin exchanges a valid code for a session token.
func (s *service) VerifyLogin(ctx context.Context, email, code string) (*LoginResult, error) {
	if !validate.Email(email) {
		return nil, ErrInvalidEmail
	}
	if !validate.OTP(code) {
		return nil, ErrInvalidOTP
	}
	if !s.codes.Verify(email, code) {
		slog.InfoContext(ctx, "otp verification rejected", "email", email)
		return nil, ErrLoginFailed
	}
	token, err := s.tokens.Mint(email)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: domain.Identity{Email: email}}, nil
}
