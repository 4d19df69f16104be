// Package memory keeps registrations in process memory. Data is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dtroode/confreg-server/internal/model"
)

var _ model.RegistrationStore = (*RegistrationRepository)(nil)

// RegistrationRepository stores registrations in insertion order.
type RegistrationRepository struct {
	mu            sync.RWMutex
	registrations []model.Registration
}

func NewRegistrationRepository() *RegistrationRepository {
	return &RegistrationRepository{}
}

func (r *RegistrationRepository) Create(_ context.Context, registration model.Registration) (model.Registration, error) {
	registration.ID = uuid.New()
	registration.Company = clone(registration.Company)
	registration.Phone = clone(registration.Phone)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrations = append(r.registrations, registration)

	return copyOf(registration), nil
}

func (r *RegistrationRepository) Count(_ context.Context, filter model.TypeFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, reg := range r.registrations {
		if matches(reg, filter) {
			n++
		}
	}
	return n, nil
}

func (r *RegistrationRepository) List(_ context.Context, q model.ListQuery) ([]model.Registration, error) {
	r.mu.RLock()
	out := make([]model.Registration, 0, len(r.registrations))
	for _, reg := range r.registrations {
		if matches(reg, q.Type) {
			out = append(out, copyOf(reg))
		}
	}
	r.mu.RUnlock()

	// out is in insertion order; a stable sort keeps it for equal timestamps.
	if q.Sort == model.SortAsc {
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	} else {
		reverse(out)
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}

	return out, nil
}

func matches(reg model.Registration, filter model.TypeFilter) bool {
	t, ok := filter.Type()
	return !ok || reg.RegistrationType == t
}

func reverse(s []model.Registration) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func clone(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyOf(reg model.Registration) model.Registration {
	reg.Company = clone(reg.Company)
	reg.Phone = clone(reg.Phone)
	return reg
}
