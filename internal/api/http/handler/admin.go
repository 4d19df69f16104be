package handler

import (
	"context"
	"net/http"

	"github.com/dtroode/confreg-server/internal/logger"
	"github.com/dtroode/confreg-server/internal/model"
)

// QueryService defines dashboard read operations.
type QueryService interface {
	Stats(ctx context.Context) (model.Stats, error)
	List(ctx context.Context, rawType, rawSort string) ([]model.Registration, error)
}

// Admin handles dashboard endpoints.
type Admin struct {
	queryService QueryService
	logger       *logger.Logger
}

// NewAdmin creates a new Admin handler.
func NewAdmin(queryService QueryService, logger *logger.Logger) *Admin {
	return &Admin{
		queryService: queryService,
		logger:       logger.With("component", "admin_handler"),
	}
}

// Stats returns total, student and professional counts.
func (h *Admin) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queryService.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch stats", "error", err)
		writeError(w, err, MessageStatsFailed)
		return
	}

	WriteJSON(w, http.StatusOK, Envelope{
		Success: true,
		Data: StatsResponse{
			Total:         stats.Total,
			Students:      stats.Students,
			Professionals: stats.Professionals,
		},
	})
}

// Registrations lists registrations filtered by ?type= and ordered by ?sort=.
func (h *Admin) Registrations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	registrations, err := h.queryService.List(r.Context(), query.Get("type"), query.Get("sort"))
	if err != nil {
		h.logger.Error("failed to list registrations", "error", err)
		writeError(w, err, MessageListFailed)
		return
	}

	data := make([]RegistrationResponse, 0, len(registrations))
	for _, reg := range registrations {
		data = append(data, toRegistrationResponse(reg))
	}

	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}
