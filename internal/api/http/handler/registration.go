package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dtroode/confreg-server/internal/logger"
	"github.com/dtroode/confreg-server/internal/model"
)

// RegistrationService defines the registration intake operation.
type RegistrationService interface {
	Submit(ctx context.Context, params model.SubmitParams) (model.Registration, error)
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	RegistrationType string `json:"registration_type"`
	Company          string `json:"company,omitempty"`
	Phone            string `json:"phone,omitempty"`
}

// Registration handles public registration endpoints.
type Registration struct {
	registrationService RegistrationService
	logger              *logger.Logger
}

// NewRegistration creates a new Registration handler.
func NewRegistration(registrationService RegistrationService, logger *logger.Logger) *Registration {
	return &Registration{
		registrationService: registrationService,
		logger:              logger.With("component", "registration_handler"),
	}
}

// Register validates and stores a submission.
func (h *Registration) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("invalid request body", "error", err)
		WriteFailure(w, http.StatusBadRequest, MessageInvalidRequestBody)
		return
	}

	created, err := h.registrationService.Submit(r.Context(), model.SubmitParams{
		Name:             req.Name,
		Email:            req.Email,
		RegistrationType: req.RegistrationType,
		Company:          req.Company,
		Phone:            req.Phone,
	})
	if err != nil {
		var vErr *model.ValidationError
		if !errors.As(err, &vErr) {
			h.logger.Error("failed to register", "error", err)
		}
		writeError(w, err, MessageRegisterFailed)
		return
	}

	h.logger.Debug("registration stored", "registration_id", created.ID)
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Message: MessageRegistered})
}

// Health reports that the API is up.
func Health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"message": MessageHealth})
}
