package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dtroode/confreg-server/internal/model"
)

// Response messages.
const (
	MessageHealth             = "Conference Registration API is running"
	MessageRegistered         = "Registration successful"
	MessageRegisterFailed     = "Server error while registering user"
	MessageStatsFailed        = "Failed to fetch dashboard statistics"
	MessageListFailed         = "Failed to fetch registrations"
	MessageInvalidRequestBody = "Invalid request body"
	MessageRouteNotFound      = "Route not found"
	MessageUnauthorized       = "Unauthorized"
	MessageCORSRejected       = "Not allowed by CORS"
)

// Envelope is the body of every API response except the health check.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// RegistrationResponse is the JSON form of a stored registration.
type RegistrationResponse struct {
	ID               string    `json:"id" yaml:"id"`
	Name             string    `json:"name" yaml:"name"`
	Email            string    `json:"email" yaml:"email"`
	RegistrationType string    `json:"registration_type" yaml:"registration_type"`
	Company          *string   `json:"company,omitempty" yaml:"company,omitempty"`
	Phone            *string   `json:"phone,omitempty" yaml:"phone,omitempty"`
	CreatedAt        time.Time `json:"created_at" yaml:"created_at"`
}

// StatsResponse is the JSON form of dashboard statistics.
type StatsResponse struct {
	Total         int64 `json:"total" yaml:"total"`
	Students      int64 `json:"students" yaml:"students"`
	Professionals int64 `json:"professionals" yaml:"professionals"`
}

func toRegistrationResponse(r model.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:               r.ID.String(),
		Name:             r.Name,
		Email:            r.Email,
		RegistrationType: string(r.RegistrationType),
		Company:          r.Company,
		Phone:            r.Phone,
		CreatedAt:        r.CreatedAt.UTC(),
	}
}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteFailure writes a {success:false} envelope.
func WriteFailure(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Success: false, Message: message})
}

// writeError maps err to a response. Validation errors are client errors with their own message;
// everything else is a server error reported with the generic message.
func writeError(w http.ResponseWriter, err error, generic string) {
	var vErr *model.ValidationError
	if errors.As(err, &vErr) {
		WriteFailure(w, http.StatusBadRequest, vErr.Message)
		return
	}
	WriteFailure(w, http.StatusInternalServerError, generic)
}
