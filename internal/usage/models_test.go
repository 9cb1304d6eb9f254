package usage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/papertrail/papertrail-api/internal/usage"
)

func TestPeriodKey(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "mid month",
			now:  time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC),
			want: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "first instant of month",
			now:  time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "last instant of month",
			now:  time.Date(2026, time.March, 31, 23, 59, 59, 999999999, time.UTC),
			want: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "non-UTC input normalized",
			now:  time.Date(2026, time.April, 1, 5, 0, 0, 0, time.FixedZone("UTC+9", 9*3600)),
			want: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := usage.PeriodKey(tt.now)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestNextReset(t *testing.T) {
	got := usage.NextReset(time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestNextReset_DecemberRollsToJanuary(t *testing.T) {
	got := usage.NextReset(time.Date(2026, time.December, 31, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), got)
}
