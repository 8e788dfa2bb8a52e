package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/school-directory/internal/application/auth"
	"github.com/school-directory/internal/application/school"
	"github.com/school-directory/internal/config"
	"github.com/school-directory/internal/transport/http/handler"
	appmiddleware "github.com/school-directory/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(appmiddleware.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	gate := appmiddleware.NewGate(deps.Tokens)

	authSvc := auth.NewService(auth.ServiceDeps{
		Codes:   deps.OTPStore,
		Mailer:  deps.Mailer,
		Tokens:  deps.Tokens,
		CodeTTL: deps.OTPTTL,
	})
	schoolSvc := school.NewService(deps.SchoolRepo, deps.ImageStore)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	schoolH := handler.NewSchoolHandler(schoolSvc)

	// ── Public routes (no auth) ──────────────────────────────────────────
	r.Get("/health-check/{action}", healthH.Ping)
	r.Post("/auth/send-otp", authH.SendOTP)
	r.Post("/auth/verify-otp", authH.VerifyOTP)
	r.Get("/schools", schoolH.List)
	r.Get("/schools/{id}", schoolH.Get)

	// ── Authenticated routes ─────────────────────────────────────────────
	r.Method(http.MethodGet, "/auth/me", gate.Wrap(authH.Me))
	r.Method(http.MethodGet, "/schools/mine", gate.Wrap(schoolH.ListMine))
	r.Method(http.MethodPost, "/schools", gate.Wrap(schoolH.Create))

	return r
}
