package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/confreg-server/internal/model"
)

var _ model.RegistrationStore = (*RegistrationRepository)(nil)

// RegistrationRepository implements model.RegistrationStore on SQLite.
// created_at is stored as unix nanoseconds so that ordering is numeric.
type RegistrationRepository struct {
	db *sql.DB
}

func NewRegistrationRepository(db *sql.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = `id, name, email, registration_type, company, phone, created_at`

func (r *RegistrationRepository) Create(ctx context.Context, registration model.Registration) (model.Registration, error) {
	registration.ID = uuid.New()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO registrations (`+registrationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		registration.ID.String(), registration.Name, registration.Email, string(registration.RegistrationType),
		nullable(registration.Company), nullable(registration.Phone), registration.CreatedAt.UnixNano(),
	)
	if err != nil {
		return model.Registration{}, model.StoreError("failed to insert registration", err)
	}

	registration.CreatedAt = time.Unix(0, registration.CreatedAt.UnixNano()).UTC()
	return registration, nil
}

func (r *RegistrationRepository) Count(ctx context.Context, filter model.TypeFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM registrations`
	var args []any
	if t, ok := filter.Type(); ok {
		query += ` WHERE registration_type = ?`
		args = append(args, string(t))
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, model.StoreError("failed to count registrations", err)
	}

	return n, nil
}

func (r *RegistrationRepository) List(ctx context.Context, q model.ListQuery) ([]model.Registration, error) {
	dir := "DESC"
	if q.Sort == model.SortAsc {
		dir = "ASC"
	}

	query := `SELECT ` + registrationColumns + ` FROM registrations`
	var args []any
	if t, ok := q.Type.Type(); ok {
		query += ` WHERE registration_type = ?`
		args = append(args, string(t))
	}
	query += fmt.Sprintf(` ORDER BY created_at %s, seq %s`, dir, dir)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, model.StoreError("failed to list registrations", err)
	}
	defer rows.Close()

	registrations := []model.Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, model.StoreError("failed to scan registration", err)
		}
		registrations = append(registrations, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, model.StoreError("failed to iterate registrations", err)
	}

	return registrations, nil
}

func scanRegistration(scanner interface{ Scan(...any) error }) (model.Registration, error) {
	var (
		reg       model.Registration
		id        string
		regType   string
		company   sql.NullString
		phone     sql.NullString
		createdAt int64
	)

	if err := scanner.Scan(&id, &reg.Name, &reg.Email, &regType, &company, &phone, &createdAt); err != nil {
		return model.Registration{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return model.Registration{}, fmt.Errorf("invalid registration id %q: %w", id, err)
	}

	reg.ID = parsed
	reg.RegistrationType = model.RegistrationType(regType)
	reg.Company = fromNullable(company)
	reg.Phone = fromNullable(phone)
	reg.CreatedAt = time.Unix(0, createdAt).UTC()

	return reg, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func fromNullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
