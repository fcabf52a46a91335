package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
		ok   bool
	}{
		{"plain decimal", "2.1", 2.1, true},
		{"integer", "42", 42, true},
		{"negative", "-0.5", -0.5, true},
		{"comma decimal", "2,1", 2.1, true},
		{"padded", "  3.5 ", 3.5, true},
		{"scientific", "1e3", 1000, true},
		{"empty", "", 0, false},
		{"null marker", "N/A", 0, false},
		{"text", "sensor fault", 0, false},
		{"dash", "-", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseTime_Layouts(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-01 10:15:00", time.Date(2025, 3, 1, 10, 15, 0, 0, time.UTC)},
		{"2025-03-01 10:15", time.Date(2025, 3, 1, 10, 15, 0, 0, time.UTC)},
		{"2025-03-01", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"01/03/2025 10:15", time.Date(2025, 3, 1, 10, 15, 0, 0, time.UTC)},
		{"01.03.2025", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		ts, ok := ParseTime(tt.in)
		require.True(t, ok, "input %q", tt.in)
		assert.True(t, tt.want.Equal(ts), "input %q parsed to %v", tt.in, ts)
	}
}

func TestParseTime_ExcelSerial(t *testing.T) {
	// 45658 is 2025-01-01 in the 1900 date system
	ts, ok := ParseTime("45658")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), ts)

	// fractional part carries the time of day
	ts, ok = ParseTime("45658.5")
	require.True(t, ok)
	assert.Equal(t, 12, ts.Hour())
}

func TestParseTime_Unparseable(t *testing.T) {
	for _, in := range []string{"", "N/A", "soon", "99", "123456789"} {
		_, ok := ParseTime(in)
		assert.False(t, ok, "input %q", in)
	}
}
