// Package reqctx stores request-scoped values in a context.Context.
package reqctx

import (
	"context"

	"github.com/dtroode/confreg-server/internal/model"
)

type contextKey string

const adminSubjectKey contextKey = "admin_subject"

var _ model.ContextManager = (*Manager)(nil)

// Manager sets and reads the authenticated admin subject of a request.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetAdminSubject returns a copy of ctx carrying subject.
func (m *Manager) SetAdminSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, adminSubjectKey, subject)
}

// GetAdminSubject returns the admin subject stored in ctx, if any.
func (m *Manager) GetAdminSubject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(adminSubjectKey).(string)
	if !ok || subject == "" {
		return "", false
	}
	return subject, true
}
