package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RegistrationStore defines persistence operations for registrations.
type RegistrationStore interface {
	Create(ctx context.Context, registration Registration) (Registration, error)
	Count(ctx context.Context, filter TypeFilter) (int64, error)
	List(ctx context.Context, query ListQuery) ([]Registration, error)
}

// Registration represents a stored conference sign-up.
type Registration struct {
	ID               uuid.UUID
	Name             string
	Email            string
	RegistrationType RegistrationType
	Company          *string
	Phone            *string
	CreatedAt        time.Time
}

// RegistrationType enumerates attendee kinds.
type RegistrationType string

const (
	// RegistrationTypeStudent is a student attendee.
	RegistrationTypeStudent RegistrationType = "student"
	// RegistrationTypeProfessional is a professional attendee; requires a company.
	RegistrationTypeProfessional RegistrationType = "professional"
)

// Valid reports whether t is one of the known registration types.
func (t RegistrationType) Valid() bool {
	return t == RegistrationTypeStudent || t == RegistrationTypeProfessional
}

// TypeFilter restricts queries to one registration type or to all of them.
type TypeFilter string

// TypeFilterAll matches every registration.
const TypeFilterAll TypeFilter = "all"

// FilterFor returns the filter matching exactly the given type.
func FilterFor(t RegistrationType) TypeFilter {
	return TypeFilter(t)
}

// ParseTypeFilter maps a raw query value to a filter. Unknown values fall back to TypeFilterAll.
func ParseTypeFilter(raw string) TypeFilter {
	switch RegistrationType(raw) {
	case RegistrationTypeStudent, RegistrationTypeProfessional:
		return TypeFilter(raw)
	default:
		return TypeFilterAll
	}
}

// Type returns the registration type the filter matches and false for TypeFilterAll.
func (f TypeFilter) Type() (RegistrationType, bool) {
	t := RegistrationType(f)
	if !t.Valid() {
		return "", false
	}
	return t, true
}

// SortOrder is the direction in which registrations are ordered by creation time.
type SortOrder string

const (
	// SortAsc lists oldest registrations first.
	SortAsc SortOrder = "asc"
	// SortDesc lists newest registrations first.
	SortDesc SortOrder = "desc"
)

// ParseSortOrder maps a raw query value to a sort order. Anything but "asc" is SortDesc.
func ParseSortOrder(raw string) SortOrder {
	if SortOrder(raw) == SortAsc {
		return SortAsc
	}
	return SortDesc
}

// ListQuery holds the filter and ordering of a registration listing.
type ListQuery struct {
	Type TypeFilter
	Sort SortOrder
}

// Stats holds dashboard counters. The three values come from independent reads.
type Stats struct {
	Total         int64
	Students      int64
	Professionals int64
}

// SubmitParams contains raw registration input as received from a client.
type SubmitParams struct {
	Name             string
	Email            string
	RegistrationType string
	Company          string
	Phone            string
}
