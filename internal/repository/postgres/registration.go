package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/confreg-server/internal/model"
)

var _ model.RegistrationStore = (*RegistrationRepository)(nil)

type RegistrationRepository struct {
	db *Connection
}

func NewRegistrationRepository(db *Connection) *RegistrationRepository {
	return &RegistrationRepository{
		db: db,
	}
}

// Create inserts a registration. The ID is assigned here and created_at is kept as given.
func (r *RegistrationRepository) Create(ctx context.Context, registration model.Registration) (model.Registration, error) {
	query := `
		INSERT INTO registrations (id, name, email, registration_type, company, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, name, email, registration_type, company, phone, created_at`

	registration.ID = uuid.New()

	var saved model.Registration
	err := r.db.QueryRow(ctx, query,
		registration.ID, registration.Name, registration.Email, string(registration.RegistrationType),
		registration.Company, registration.Phone, registration.CreatedAt,
	).Scan(
		&saved.ID, &saved.Name, &saved.Email, &saved.RegistrationType,
		&saved.Company, &saved.Phone, &saved.CreatedAt,
	)
	if err != nil {
		return model.Registration{}, model.StoreError("failed to insert registration", err)
	}

	return saved, nil
}

func (r *RegistrationRepository) Count(ctx context.Context, filter model.TypeFilter) (int64, error) {
	query, args := countQuery(filter)

	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, model.StoreError("failed to count registrations", err)
	}

	return n, nil
}

func (r *RegistrationRepository) List(ctx context.Context, q model.ListQuery) ([]model.Registration, error) {
	query, args := listQuery(q)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, model.StoreError("failed to list registrations", err)
	}
	defer rows.Close()

	registrations := []model.Registration{}
	for rows.Next() {
		var reg model.Registration
		err := rows.Scan(
			&reg.ID, &reg.Name, &reg.Email, &reg.RegistrationType,
			&reg.Company, &reg.Phone, &reg.CreatedAt,
		)
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

func countQuery(filter model.TypeFilter) (string, []any) {
	if t, ok := filter.Type(); ok {
		return `SELECT COUNT(*) FROM registrations WHERE registration_type = $1`, []any{string(t)}
	}
	return `SELECT COUNT(*) FROM registrations`, nil
}

func listQuery(q model.ListQuery) (string, []any) {
	dir := "DESC"
	if q.Sort == model.SortAsc {
		dir = "ASC"
	}

	base := `
		SELECT id, name, email, registration_type, company, phone, created_at
		FROM registrations`
	order := fmt.Sprintf(`
		ORDER BY created_at %s, seq %s`, dir, dir)

	if t, ok := q.Type.Type(); ok {
		return base + `
		WHERE registration_type = $1` + order, []any{string(t)}
	}

	return base + order, nil
}
