package middleware

import (
	"net/http"
	"strings"

	"github.com/dtroode/confreg-server/internal/api/http/handler"
	"github.com/dtroode/confreg-server/internal/logger"
	"github.com/dtroode/confreg-server/internal/model"
)

// Authenticate validates admin bearer tokens and puts the subject into the request context.
type Authenticate struct {
	tokenManager   model.TokenManager
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenManager model.TokenManager, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenManager: tokenManager, contextManager: contextManager, logger: logger.With("component", "authenticate")}
}

func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			m.logger.Info("missing admin token", "path", r.URL.Path)
			handler.WriteFailure(w, http.StatusUnauthorized, handler.MessageUnauthorized)
			return
		}

		subject, err := m.tokenManager.ParseAdminToken(tokenString)
		if err != nil {
			m.logger.Info("invalid admin token", "path", r.URL.Path, "error", err)
			handler.WriteFailure(w, http.StatusUnauthorized, handler.MessageUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(m.contextManager.SetAdminSubject(r.Context(), subject)))
	})
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
