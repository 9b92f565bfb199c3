package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/covenantconf/registration-api/internal/domain"
)

type SettingsRepository interface {
	Get(ctx context.Context) (domain.Settings, error)
	Update(ctx context.Context, settings domain.Settings) (domain.Settings, error)
}

type settingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepository{pool: pool}
}

// settingsID pins the singleton row.
const settingsID = 1

// Get reads the admission-control record, materializing the defaults
// (enabled, no window, unlimited capacity) on first read.
func (r *settingsRepository) Get(ctx context.Context) (domain.Settings, error) {
	const q = `INSERT INTO registration_settings (id, enabled, starts_at, ends_at, max_capacity)
	VALUES ($1, true, NULL, NULL, NULL)
	ON CONFLICT (id) DO UPDATE SET id = registration_settings.id
	RETURNING enabled, starts_at, ends_at, max_capacity`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.Settings
	err := r.pool.QueryRow(ctx, q, settingsID).Scan(&s.Enabled, &s.StartsAt, &s.EndsAt, &s.MaxCapacity)
	if err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}

func (r *settingsRepository) Update(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	const q = `INSERT INTO registration_settings (id, enabled, starts_at, ends_at, max_capacity)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE SET
		enabled = EXCLUDED.enabled,
		starts_at = EXCLUDED.starts_at,
		ends_at = EXCLUDED.ends_at,
		max_capacity = EXCLUDED.max_capacity
	RETURNING enabled, starts_at, ends_at, max_capacity`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.Settings
	err := r.pool.QueryRow(ctx, q, settingsID,
		settings.Enabled, settings.StartsAt, settings.EndsAt, settings.MaxCapacity,
	).Scan(&s.Enabled, &s.StartsAt, &s.EndsAt, &s.MaxCapacity)
	if err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}
