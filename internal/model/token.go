package model

import "time"

// TokenManager issues and validates admin bearer tokens.
type TokenManager interface {
	GenerateAdminToken(subject string, ttl time.Duration) (string, error)
	ParseAdminToken(token string) (subject string, err error)
}
