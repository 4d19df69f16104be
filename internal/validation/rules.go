// Package validation holds the per-field rules applied to registration form input.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/dtroode/confreg-server/internal/model"
)

// Field names a form input.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldCompany Field = "company"
	FieldPhone   Field = "phone"
)

// Fields lists every validated field in form order.
var Fields = []Field{FieldName, FieldEmail, FieldCompany, FieldPhone}

// ParseField maps a raw field name to a Field.
func ParseField(raw string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == raw {
			return f, true
		}
	}
	return "", false
}

// Rule kinds.
const (
	ErrNameTooShort    = "NameTooShort"
	ErrInvalidEmail    = "InvalidEmail"
	ErrCompanyRequired = "CompanyRequired"
	ErrInvalidPhone    = "InvalidPhone"
)

// Messages shown for each rule kind.
var Messages = map[string]string{
	ErrNameTooShort:    "Name must be at least 2 characters",
	ErrInvalidEmail:    "Invalid email address",
	ErrCompanyRequired: "Company name is required",
	ErrInvalidPhone:    "Invalid phone number",
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
)

// Rule checks one field value and returns the violated rule kind, or "" when the value passes.
type Rule func(value string, regType model.RegistrationType) string

// Rules is the field to rule table.
var Rules = map[Field]Rule{
	FieldName: func(value string, _ model.RegistrationType) string {
		if textLength(strings.TrimSpace(value)) < 2 {
			return ErrNameTooShort
		}
		return ""
	},
	FieldEmail: func(value string, _ model.RegistrationType) string {
		if !emailPattern.MatchString(value) {
			return ErrInvalidEmail
		}
		return ""
	},
	FieldCompany: func(value string, regType model.RegistrationType) string {
		if regType != model.RegistrationTypeProfessional {
			return ""
		}
		if textLength(strings.TrimSpace(value)) < 2 {
			return ErrCompanyRequired
		}
		return ""
	},
	FieldPhone: func(value string, _ model.RegistrationType) string {
		if value != "" && !phonePattern.MatchString(value) {
			return ErrInvalidPhone
		}
		return ""
	},
}

// textLength counts UTF-16 code units, the length a browser form reports.
func textLength(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// Result is the outcome of validating one field.
type Result struct {
	// Kind is the violated rule, empty when the value passes.
	Kind    string
	Message string
	// Valid is set only when the value is non-empty and passes its rule.
	Valid bool
}

// Check validates value for field under the given registration type.
func Check(field Field, value string, regType model.RegistrationType) Result {
	rule, ok := Rules[field]
	if !ok {
		return Result{}
	}

	if kind := rule(value, regType); kind != "" {
		return Result{Kind: kind, Message: Messages[kind]}
	}

	return Result{Valid: strings.TrimSpace(value) != ""}
}
