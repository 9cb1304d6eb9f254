package device

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL device repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetByDeviceID retrieves a device by its identifier.
func (r *PostgresRepository) GetByDeviceID(ctx context.Context, deviceID string) (*Device, error) {
	query := `
		SELECT device_id, token, plan, created_at
		FROM devices
		WHERE device_id = $1
	`
	return r.scanDevice(r.pool.QueryRow(ctx, query, deviceID))
}

// GetByToken retrieves a device by its bearer token.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*Device, error) {
	query := `
		SELECT device_id, token, plan, created_at
		FROM devices
		WHERE token = $1
	`
	return r.scanDevice(r.pool.QueryRow(ctx, query, token))
}

// Create inserts a new device. A concurrent registration for the same
// deviceId is resolved by the uniqueness constraint: the loser observes zero
// rows affected and reports created=false so the caller can re-read the
// original record.
func (r *PostgresRepository) Create(ctx context.Context, d *Device) (bool, error) {
	query := `
		INSERT INTO devices (device_id, token, plan, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (device_id) DO NOTHING
	`
	result, err := r.pool.Exec(ctx, query, d.DeviceID, d.Token, d.Plan, d.CreatedAt)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// UpdatePlan overwrites the plan for an existing device.
func (r *PostgresRepository) UpdatePlan(ctx context.Context, deviceID string, plan Plan) (*Device, error) {
	query := `
		UPDATE devices
		SET plan = $2
		WHERE device_id = $1
		RETURNING device_id, token, plan, created_at
	`
	return r.scanDevice(r.pool.QueryRow(ctx, query, deviceID, plan))
}

func (r *PostgresRepository) scanDevice(row pgx.Row) (*Device, error) {
	var (
		deviceID  string
		token     string
		plan      string
		createdAt time.Time
	)
	if err := row.Scan(&deviceID, &token, &plan, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}
	return &Device{
		DeviceID:  deviceID,
		Token:     token,
		Plan:      Plan(plan),
		CreatedAt: createdAt,
	}, nil
}

// Ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)
