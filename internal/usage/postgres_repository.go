package usage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger is a PostgreSQL implementation of Ledger. Both operations are
// expressed as single statements against the (device_id, period_key)
// uniqueness constraint, so concurrent callers never lose updates and never
// create duplicate rows.
type PostgresLedger struct {
	pool *pgxpool.Pool
}

// NewPostgresLedger creates a new PostgreSQL-backed ledger.
func NewPostgresLedger(pool *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{pool: pool}
}

// GetOrCreate returns the period row, creating a zeroed one if absent.
// Insert-or-ignore followed by a read; a concurrent insert of the same key
// hits the constraint and both callers read the surviving row.
func (l *PostgresLedger) GetOrCreate(ctx context.Context, deviceID string, periodKey time.Time) (*Period, error) {
	insert := `
		INSERT INTO usage_periods (device_id, period_key, actions_used)
		VALUES ($1, $2, 0)
		ON CONFLICT (device_id, period_key) DO NOTHING
	`
	if _, err := l.pool.Exec(ctx, insert, deviceID, periodKey); err != nil {
		return nil, err
	}

	query := `
		SELECT actions_used
		FROM usage_periods
		WHERE device_id = $1 AND period_key = $2
	`
	var used int
	if err := l.pool.QueryRow(ctx, query, deviceID, periodKey).Scan(&used); err != nil {
		return nil, err
	}

	return &Period{DeviceID: deviceID, PeriodKey: periodKey.UTC(), ActionsUsed: used}, nil
}

// Increment atomically adds one action via a single upsert-increment and
// returns the post-increment state.
func (l *PostgresLedger) Increment(ctx context.Context, deviceID string, periodKey time.Time) (*Period, error) {
	query := `
		INSERT INTO usage_periods (device_id, period_key, actions_used)
		VALUES ($1, $2, 1)
		ON CONFLICT (device_id, period_key)
		DO UPDATE SET actions_used = usage_periods.actions_used + 1
		RETURNING actions_used
	`
	var used int
	if err := l.pool.QueryRow(ctx, query, deviceID, periodKey).Scan(&used); err != nil {
		return nil, err
	}

	return &Period{DeviceID: deviceID, PeriodKey: periodKey.UTC(), ActionsUsed: used}, nil
}

// Ensure PostgresLedger implements Ledger.
var _ Ledger = (*PostgresLedger)(nil)
