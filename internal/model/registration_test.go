package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTypeFilter(t *testing.T) {
	tests := []struct {
		raw  string
		want TypeFilter
	}{
		{raw: "all", want: TypeFilterAll},
		{raw: "", want: TypeFilterAll},
		{raw: "student", want: TypeFilter("student")},
		{raw: "professional", want: TypeFilter("professional")},
		{raw: "Student", want: TypeFilterAll},
		{raw: "bogus-type", want: TypeFilterAll},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTypeFilter(tt.raw))
		})
	}
}

func TestTypeFilter_Type(t *testing.T) {
	rt, ok := FilterFor(RegistrationTypeStudent).Type()
	assert.True(t, ok)
	assert.Equal(t, RegistrationTypeStudent, rt)

	_, ok = TypeFilterAll.Type()
	assert.False(t, ok)
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, SortAsc, ParseSortOrder("asc"))
	assert.Equal(t, SortDesc, ParseSortOrder("desc"))
	assert.Equal(t, SortDesc, ParseSortOrder(""))
	assert.Equal(t, SortDesc, ParseSortOrder("ASC"))
	assert.Equal(t, SortDesc, ParseSortOrder("bogus-sort"))
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection refused")
	err := StoreError("failed to count registrations", cause)

	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to count registrations")
}

func TestValidationError(t *testing.T) {
	var err error = NewErrMissingCompany()

	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, KindMissingCompany, vErr.Kind)
	assert.Equal(t, "Company is required for professional registration", vErr.Message)
}
