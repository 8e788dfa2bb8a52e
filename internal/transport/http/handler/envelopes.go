package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/school-directory/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SendOTPEnvelope wraps the send-otp response.
type SendOTPEnvelope struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// LoginEnvelope wraps a successful verify-otp response.
type LoginEnvelope struct {
	Message string          `json:"message"`
	Token   string          `json:"token"`
	User    domain.Identity `json:"user"`
}

// UserEnvelope wraps the current-identity response.
type UserEnvelope struct {
	User domain.Identity `json:"user"`
}

// SchoolsEnvelope wraps school list responses.
type SchoolsEnvelope struct {
	Schools []domain.School `json:"schools"`
}

// SchoolCreatedEnvelope wraps the create-school response.
type SchoolCreatedEnvelope struct {
	Message  string         `json:"message"`
	ImageURL string         `json:"imageUrl"`
	School   *domain.School `json:"school"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinel errors to a status code and a message that
// does not leak infrastructure details.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad request")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
