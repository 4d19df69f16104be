package model

import "context"

type ContextManager interface {
	SetAdminSubject(ctx context.Context, subject string) context.Context
	GetAdminSubject(ctx context.Context) (string, bool)
}
