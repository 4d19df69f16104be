package middleware

import (
	"net/http"
	"strings"

	"github.com/dtroode/confreg-server/internal/api/http/handler"
	"github.com/dtroode/confreg-server/internal/logger"
)

const (
	corsAllowedMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsAllowedHeaders = "Content-Type, Authorization"
)

// CORS admits cross-origin requests from a fixed set of origins.
// Requests without an Origin header always pass.
type CORS struct {
	allowed map[string]struct{}
	logger  *logger.Logger
}

// NewCORS creates a CORS middleware. Blank entries are ignored.
func NewCORS(origins []string, logger *logger.Logger) *CORS {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = struct{}{}
		}
	}
	return &CORS{allowed: allowed, logger: logger.With("component", "cors")}
}

func (c *CORS) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		if _, ok := c.allowed[origin]; !ok {
			c.logger.Warn("origin rejected", "origin", origin)
			handler.WriteFailure(w, http.StatusForbidden, handler.MessageCORSRejected)
			return
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
