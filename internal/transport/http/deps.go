package http

import (
	"time"

	"github.com/school-directory/internal/application/auth"
	"github.com/school-directory/internal/application/school"
	"github.com/school-directory/internal/infrastructure/smtp"
	appmiddleware "github.com/school-directory/internal/transport/http/middleware"
)

// TokenService mints and verifies session tokens.
type TokenService interface {
	auth.TokenMinter
	appmiddleware.TokenVerifier
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	SchoolRepo school.Repository
	ImageStore school.ObjectStore
	OTPStore   auth.CodeStore
	Mailer     smtp.Mailer
	Tokens     TokenService
	OTPTTL     time.Duration
}
