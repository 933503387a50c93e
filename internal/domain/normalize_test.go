package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parisLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	return loc
}

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected *float64
	}{
		{"float", 12.5, f64(12.5)},
		{"numeric string", "12.5", f64(12.5)},
		{"padded string", "  7 ", f64(7)},
		{"non-breaking space", " 12 ", f64(12)},
		{"empty string", "", nil},
		{"garbage", "n/a", nil},
		{"nil", nil, nil},
		{"bool", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := coerceNumber(tt.value)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.expected, *got, 1e-9)
		})
	}
}

func TestCleanNumeric(t *testing.T) {
	t.Run("strips unit and scales", func(t *testing.T) {
		got := cleanNumeric("4.5 mph", "mph", mphToKmh, 1)
		require.NotNil(t, got)
		assert.Equal(t, 7.2, *got)
	})

	t.Run("non-breaking space between value and unit", func(t *testing.T) {
		got := cleanNumeric("29.92 in", "in", inHgToHPa, 1)
		require.NotNil(t, got)
		assert.Equal(t, 1013.2, *got)
	})

	t.Run("unparseable becomes absent", func(t *testing.T) {
		assert.Nil(t, cleanNumeric("--", "mph", mphToKmh, 1))
	})

	t.Run("no rounding when decimals negative", func(t *testing.T) {
		got := cleanNumeric("312.55 w/m²", "w/m²", 1, -1)
		require.NotNil(t, got)
		assert.Equal(t, 312.55, *got)
	})
}

func TestFahrenheitToCelsius(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected *float64
	}{
		{"freezing", "32.0 °F", f64(0)},
		{"room temperature", "68.0 °F", f64(20)},
		{"no suffix", "68.0", f64(20)},
		{"negative", "-40 °F", f64(-40)},
		{"unparseable", "cold", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fahrenheitToCelsius(tt.value)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.expected, *got)
		})
	}
}

// TestFahrenheitRoundTrip verifies the documented conversion recovers the
// source value within rounding tolerance.
func TestFahrenheitRoundTrip(t *testing.T) {
	got := fahrenheitToCelsius("68.0 °F")
	require.NotNil(t, got)
	back := *got*9/5 + 32
	assert.InDelta(t, 68.0, back, 0.1)
}

// TestCompassMappingTotality checks every defined label maps into [0,360)
// and anything else maps to absent.
func TestCompassMappingTotality(t *testing.T) {
	labels := []string{
		"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
		"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
		"North", "East", "South", "West",
	}
	for _, label := range labels {
		t.Run(label, func(t *testing.T) {
			got := compassToDegrees(label)
			require.NotNil(t, got)
			assert.GreaterOrEqual(t, *got, 0.0)
			assert.Less(t, *got, 360.0)
		})
	}

	t.Run("NE is 45 degrees", func(t *testing.T) {
		got := compassToDegrees("NE")
		require.NotNil(t, got)
		assert.Equal(t, 45.0, *got)
	})

	t.Run("unrecognized label", func(t *testing.T) {
		assert.Nil(t, compassToDegrees("XX"))
	})

	t.Run("non-string", func(t *testing.T) {
		assert.Nil(t, compassToDegrees(45.0))
	})
}

func TestParseUTCInstant(t *testing.T) {
	loc := parisLocation(t)

	t.Run("splits into local date and clock time", func(t *testing.T) {
		// 23:30 UTC on Jan 4 is 00:30 Paris time on Jan 5.
		date, clock := parseUTCInstant("2025-01-04 23:30:00", loc)
		assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, loc), date)
		assert.Equal(t, "00:30:00", clock)
	})

	t.Run("rfc3339 instant", func(t *testing.T) {
		date, clock := parseUTCInstant("2025-06-15T10:00:00Z", loc)
		assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, loc), date)
		assert.Equal(t, "12:00:00", clock) // CEST is UTC+2
	})

	t.Run("unparseable", func(t *testing.T) {
		date, clock := parseUTCInstant("not a time", loc)
		assert.True(t, date.IsZero())
		assert.Empty(t, clock)
	})
}

func TestParseTabularDate(t *testing.T) {
	loc := parisLocation(t)

	tests := []struct {
		name     string
		value    any
		expected time.Time
	}{
		{"current century", "050125", time.Date(2025, 1, 5, 0, 0, 0, 0, loc)},
		{"pivot low side", "010169", time.Date(2069, 1, 1, 0, 0, 0, 0, loc)},
		{"pivot high side", "010170", time.Date(1970, 1, 1, 0, 0, 0, 0, loc)},
		{"bad month", "051325", time.Time{}},
		{"too short", "0501", time.Time{}},
		{"not a string", 50125.0, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseTabularDate(tt.value, loc))
		})
	}
}

func TestParseClockTime(t *testing.T) {
	assert.Equal(t, "14:05:00", parseClockTime("14:05:00"))
	assert.Empty(t, parseClockTime("25:00:00"))
	assert.Empty(t, parseClockTime(nil))
}

func f64(v float64) *float64 { return &v }
