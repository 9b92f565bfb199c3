package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/covenantconf/registration-api/internal/domain"
)

type RegistrationRepository interface {
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, filter domain.ListFilter) ([]domain.Registration, error)
	ExistsDuplicate(ctx context.Context, fullName, contactNumber string) (bool, error)
	Insert(ctx context.Context, payload domain.RegistrationPayload, maxCapacity *int) (*domain.Registration, error)
	UpdateByID(ctx context.Context, id string, payload domain.RegistrationPayload) (*domain.Registration, error)
	SetAttendance(ctx context.Context, id string, confirmed bool) (*domain.Registration, error)
}

type registrationRepository struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) RegistrationRepository {
	return &registrationRepository{pool: pool}
}

const registrationCols = `id, full_name, contact_number, email, church, role,
has_vehicle, plate_number, confirmed_attendance, created_at`

func scanRegistration(row pgx.Row) (*domain.Registration, error) {
	var reg domain.Registration
	err := row.Scan(
		&reg.ID, &reg.FullName, &reg.ContactNumber, &reg.Email, &reg.Church, &reg.Role,
		&reg.HasVehicle, &reg.PlateNumber, &reg.ConfirmedAttendance, &reg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepository) Count(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM registrations`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var count int
	if err := r.pool.QueryRow(ctx, q).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *registrationRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Registration, error) {
	q := `SELECT ` + registrationCols + ` FROM registrations`
	var args []any
	var where []string

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where = append(where, fmt.Sprintf("(full_name ILIKE $%d OR contact_number ILIKE $%d)", len(args), len(args)))
	}
	if filter.Vehicle != domain.VehicleAny {
		args = append(args, filter.Vehicle == domain.VehicleYes)
		where = append(where, fmt.Sprintf("has_vehicle = $%d", len(args)))
	}
	if filter.Attendance != domain.AttendanceAny {
		args = append(args, filter.Attendance == domain.AttendanceConfirmed)
		where = append(where, fmt.Sprintf("confirmed_attendance = $%d", len(args)))
	}

	for i, cond := range where {
		if i == 0 {
			q += " WHERE " + cond
		} else {
			q += " AND " + cond
		}
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var registrations []domain.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		registrations = append(registrations, *reg)
	}
	return registrations, rows.Err()
}

func (r *registrationRepository) ExistsDuplicate(ctx context.Context, fullName, contactNumber string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM registrations WHERE full_name = $1 AND contact_number = $2)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	if err := r.pool.QueryRow(ctx, q, fullName, contactNumber).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Insert creates a registration, refusing when the row count has
// already reached maxCapacity. A nil maxCapacity means unlimited.
// Under read committed, two concurrent inserts can each observe a
// count just below the cap, so a slight overshoot remains possible.
func (r *registrationRepository) Insert(ctx context.Context, payload domain.RegistrationPayload, maxCapacity *int) (*domain.Registration, error) {
	const q = `INSERT INTO registrations (
		full_name, contact_number, email, church, role, has_vehicle, plate_number
	)
	SELECT $1, $2, $3, $4, $5, $6, $7
	WHERE $8::int IS NULL OR (SELECT COUNT(*) FROM registrations) < $8::int
	RETURNING ` + registrationCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	reg, err := scanRegistration(r.pool.QueryRow(ctx, q,
		payload.FullName, payload.ContactNumber, payload.Email, payload.Church,
		payload.Role, payload.HasVehicle, payload.PlateNumber, maxCapacity,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCapacityReached
	}
	if isUniqueViolation(err) {
		return nil, domain.ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) UpdateByID(ctx context.Context, id string, payload domain.RegistrationPayload) (*domain.Registration, error) {
	const q = `UPDATE registrations SET
		full_name = $2,
		contact_number = $3,
		email = $4,
		church = $5,
		role = $6,
		has_vehicle = $7,
		plate_number = $8
	WHERE id = $1
	RETURNING ` + registrationCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	reg, err := scanRegistration(r.pool.QueryRow(ctx, q, id,
		payload.FullName, payload.ContactNumber, payload.Email, payload.Church,
		payload.Role, payload.HasVehicle, payload.PlateNumber,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if isUniqueViolation(err) {
		return nil, domain.ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) SetAttendance(ctx context.Context, id string, confirmed bool) (*domain.Registration, error) {
	const q = `UPDATE registrations SET confirmed_attendance = $2 WHERE id = $1 RETURNING ` + registrationCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	reg, err := scanRegistration(r.pool.QueryRow(ctx, q, id, confirmed))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
