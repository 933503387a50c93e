package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Canonical unit conversion factors. Every conversion in the pipeline is an
// explicit named rule; nothing is inferred from the data.
const (
	mphToKmh  = 1.60934
	inHgToHPa = 33.8639
	inToMm    = 25.4
)

// compassDegrees maps the sixteen-point compass rose (plus the full-word
// cardinal synonyms the export uses) to degrees on a 22.5° grid. Labels
// outside this map normalize to absent, never to zero.
var compassDegrees = map[string]float64{
	"N": 0, "North": 0,
	"NNE": 22.5,
	"NE":  45,
	"ENE": 67.5,
	"E":   90, "East": 90,
	"ESE": 112.5,
	"SE":  135,
	"SSE": 157.5,
	"S":   180, "South": 180,
	"SSW": 202.5,
	"SW":  225,
	"WSW": 247.5,
	"W":   270, "West": 270,
	"WNW": 292.5,
	"NW":  315,
	"NNW": 337.5,
}

// nbsp shows up between value and unit in the export's formatted cells.
const nbsp = "\u00a0"

// utcInstantLayouts are the accepted renderings of the telemetry feed's
// dh_utc field.
var utcInstantLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// coerceNumber best-effort converts a raw JSON value to a float64. Strings
// are trimmed (including non-breaking spaces) before parsing. Anything that
// fails numeric coercion yields nil rather than an error; the row is kept.
func coerceNumber(v any) *float64 {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(x) {
			return nil
		}
		return &x
	case int:
		f := float64(x)
		return &f
	case int64:
		f := float64(x)
		return &f
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(x, nbsp, " "))
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// cleanNumeric strips an optional unit suffix and non-breaking spaces,
// coerces to a number, applies a scale factor, and rounds to the given
// number of decimals (decimals < 0 leaves the value unrounded). Coercion
// failure yields nil.
func cleanNumeric(v any, unit string, factor float64, decimals int) *float64 {
	s, ok := v.(string)
	if ok {
		s = strings.ReplaceAll(s, nbsp, " ")
		s = strings.TrimSpace(s)
		if unit != "" {
			s = strings.TrimSpace(strings.ReplaceAll(s, unit, ""))
		}
		v = s
	}
	n := coerceNumber(v)
	if n == nil {
		return nil
	}
	f := *n * factor
	if decimals >= 0 {
		f = roundTo(f, decimals)
	}
	return &f
}

// fahrenheitToCelsius converts a °F reading (optionally suffixed) to °C
// rounded to one decimal.
func fahrenheitToCelsius(v any) *float64 {
	n := cleanNumeric(v, "°F", 1, -1)
	if n == nil {
		return nil
	}
	c := roundTo((*n-32)*5/9, 1)
	return &c
}

// compassToDegrees maps a compass label to degrees. Unrecognized labels map
// to absent, not zero.
func compassToDegrees(v any) *float64 {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	deg, ok := compassDegrees[strings.TrimSpace(s)]
	if !ok {
		return nil
	}
	return &deg
}

// parseUTCInstant parses the telemetry feed's UTC timestamp and splits it
// into local midnight plus a clock-time string in the reference timezone.
// An unparseable instant yields a zero date and empty time; the row is kept.
func parseUTCInstant(v any, loc *time.Location) (time.Time, string) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, ""
	}
	s = strings.TrimSpace(s)
	for _, layout := range utcInstantLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err != nil {
			continue
		}
		local := t.In(loc)
		date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		return date, local.Format("15:04:05")
	}
	return time.Time{}, ""
}

// parseTabularDate parses the export's two-digit-year date label (ddmmyy)
// and localizes it to midnight in the reference timezone. The two-digit
// year pivots at 70: 00–69 map to 2000–2069, 70–99 to 1970–1999. The pivot
// is deliberate and explicit; do not fall back to stdlib parsing here.
func parseTabularDate(v any, loc *time.Location) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	s = strings.TrimSpace(s)
	if len(s) != 6 {
		return time.Time{}
	}
	day, errD := strconv.Atoi(s[0:2])
	month, errM := strconv.Atoi(s[2:4])
	year, errY := strconv.Atoi(s[4:6])
	if errD != nil || errM != nil || errY != nil {
		return time.Time{}
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return time.Time{}
	}
	if year < 70 {
		year += 2000
	} else {
		year += 1900
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}

// parseClockTime validates an "HH:MM:SS" string; invalid input yields "".
func parseClockTime(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if _, err := time.Parse("15:04:05", s); err != nil {
		return ""
	}
	return s
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
