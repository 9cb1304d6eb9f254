package usage

import (
	"context"
	"sync"
	"time"
)

// Ledger defines the interface for usage period persistence. Implementations
// must make Increment a single atomic read-modify-write: N concurrent
// increments for the same device and period always land as N.
type Ledger interface {
	// GetOrCreate returns the period row for (deviceID, periodKey), creating
	// a zeroed one if absent. Safe for concurrent callers on the same key.
	GetOrCreate(ctx context.Context, deviceID string, periodKey time.Time) (*Period, error)

	// Increment atomically adds one action to (deviceID, periodKey), creating
	// the row first if absent, and returns the post-increment state.
	Increment(ctx context.Context, deviceID string, periodKey time.Time) (*Period, error)
}

// InMemoryLedger is an in-memory implementation of Ledger used in tests and
// local development. All mutations happen under one mutex, which gives the
// same no-lost-updates guarantee the SQL upsert-increment provides.
type InMemoryLedger struct {
	mu      sync.Mutex
	periods map[string]*Period
}

// NewInMemoryLedger creates a new in-memory ledger.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{periods: make(map[string]*Period)}
}

// GetOrCreate returns the period row, creating a zeroed one if absent.
func (l *InMemoryLedger) GetOrCreate(_ context.Context, deviceID string, periodKey time.Time) (*Period, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.locked(deviceID, periodKey)
	c := *p
	return &c, nil
}

// Increment atomically adds one action and returns the post-increment state.
func (l *InMemoryLedger) Increment(_ context.Context, deviceID string, periodKey time.Time) (*Period, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.locked(deviceID, periodKey)
	p.ActionsUsed++
	c := *p
	return &c, nil
}

func (l *InMemoryLedger) locked(deviceID string, periodKey time.Time) *Period {
	key := deviceID + "|" + periodKey.UTC().Format("2006-01-02")
	p, ok := l.periods[key]
	if !ok {
		p = &Period{DeviceID: deviceID, PeriodKey: periodKey.UTC()}
		l.periods[key] = p
	}
	return p
}

// Ensure InMemoryLedger implements Ledger.
var _ Ledger = (*InMemoryLedger)(nil)
