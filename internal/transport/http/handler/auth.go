package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/school-directory/internal/application/auth"
	"github.com/school-directory/internal/domain"
	"github.com/school-directory/internal/pkg/validate"
)

type sendOTPRequest struct {
	Email string `json:"email" validate:"required,emailshape"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,emailshape"`
	OTP   string `json:"otp" validate:"required,otpcode"`
}

// AuthHandler handles the email OTP login flow.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, fieldMessage(err, "Email is required"))
		return
	}
	if err := h.svc.RequestLogin(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, domain.ErrBadRequest):
			writeError(w, http.StatusBadRequest, "Invalid email format")
		case errors.Is(err, domain.ErrDeliveryFailed):
			writeError(w, http.StatusInternalServerError, "Failed to send OTP email. Please try again.")
		default:
			slog.ErrorContext(r.Context(), "send otp failed", "err", err)
			httpError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, SendOTPEnvelope{
		Message: "OTP sent successfully to your email",
		Email:   req.Email,
	})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.OTP == "" {
		writeError(w, http.StatusBadRequest, "Email and OTP are required")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, fieldMessage(err, "Email and OTP are required"))
		return
	}
	res, err := h.svc.VerifyLogin(r.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "Invalid or expired OTP")
		case errors.Is(err, domain.ErrBadRequest):
			writeError(w, http.StatusBadRequest, "bad request")
		default:
			slog.ErrorContext(r.Context(), "verify otp failed", "err", err)
			httpError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, LoginEnvelope{
		Message: "Login successful",
		Token:   res.Token,
		User:    res.User,
	})
}

// Me reports the identity carried by the caller's token.
func (h *AuthHandler) Me(w http.ResponseWriter, _ *http.Request, id domain.Identity) {
	writeJSON(w, http.StatusOK, UserEnvelope{User: id})
}

// fieldMessage turns a validation failure into the client-facing message.
func fieldMessage(err error, requiredMsg string) string {
	var fe *validate.FieldError
	if !errors.As(err, &fe) {
		return "invalid request body"
	}
	switch fe.Tag {
	case "required":
		return requiredMsg
	case "emailshape":
		return "Invalid email format"
	case "otpcode":
		return "OTP must be 6 digits"
	case "contact":
		return "Contact must be 10 digits"
	}
	return fe.Error()
}
