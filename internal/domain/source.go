package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// paramsKey is the reserved parameter-metadata entry in the telemetry
// feed's hourly map. It describes units, not readings, and is skipped.
const paramsKey = "_params"

// airbyteEnvelope is the per-line wrapper the ingestion tool puts around
// staged records.
type airbyteEnvelope struct {
	Data json.RawMessage `json:"_airbyte_data"`
}

// telemetryPayload is the nested shape of the station-network feed: a
// station directory plus per-station lists of timestamped readings.
type telemetryPayload struct {
	Stations []map[string]any           `json:"stations"`
	Hourly   map[string]json.RawMessage `json:"hourly"`
}

// TelemetryBatch is the raw station-network variant: per-station time
// series keyed by station id, plus the embedded station directory.
type TelemetryBatch struct {
	Stations []StationMeta
	Hourly   map[string][]map[string]any
}

// StationMeta holds the static per-station attributes carried by the
// telemetry feed's station directory. Loaded once per run, read-only.
type StationMeta struct {
	ID        string
	Name      *string
	Latitude  *float64
	Longitude *float64
	Elevation *float64
}

// TabularBatch is the raw personal-weather-station variant: flat rows with
// imperial units and US-style formatting, staged from spreadsheet exports.
// Keys are lowercased at parse time. Key records which object the rows came
// from.
type TabularBatch struct {
	Key  string
	Rows []map[string]any
}

// ParseTelemetry decodes a staged telemetry object (one JSON envelope per
// line; the feed snapshot lives in the first line) into its raw batch form.
func ParseTelemetry(lines [][]byte) (TelemetryBatch, error) {
	if len(lines) == 0 {
		return TelemetryBatch{}, fmt.Errorf("telemetry object is empty")
	}

	var env airbyteEnvelope
	if err := json.Unmarshal(lines[0], &env); err != nil {
		return TelemetryBatch{}, fmt.Errorf("decode telemetry envelope: %w", err)
	}
	var payload telemetryPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return TelemetryBatch{}, fmt.Errorf("decode telemetry payload: %w", err)
	}

	batch := TelemetryBatch{
		Stations: make([]StationMeta, 0, len(payload.Stations)),
		Hourly:   make(map[string][]map[string]any, len(payload.Hourly)),
	}
	for _, s := range payload.Stations {
		batch.Stations = append(batch.Stations, StationMeta{
			ID:        stringValue(s["id"]),
			Name:      stringField(s["name"]),
			Latitude:  coerceNumber(s["latitude"]),
			Longitude: coerceNumber(s["longitude"]),
			Elevation: coerceNumber(s["elevation"]),
		})
	}
	for sid, raw := range payload.Hourly {
		if sid == paramsKey {
			continue
		}
		var readings []map[string]any
		if err := json.Unmarshal(raw, &readings); err != nil {
			return TelemetryBatch{}, fmt.Errorf("decode readings for station %s: %w", sid, err)
		}
		batch.Hourly[sid] = readings
	}
	return batch, nil
}

// ParseTabular decodes a staged tabular object (one JSON envelope per line,
// one flat record each) into its raw batch form with lowercased keys.
func ParseTabular(lines [][]byte, key string) (TabularBatch, error) {
	rows := make([]map[string]any, 0, len(lines))
	for i, line := range lines {
		var env airbyteEnvelope
		if err := json.Unmarshal(line, &env); err != nil {
			return TabularBatch{}, fmt.Errorf("decode tabular envelope line %d: %w", i+1, err)
		}
		var row map[string]any
		if err := json.Unmarshal(env.Data, &row); err != nil {
			return TabularBatch{}, fmt.Errorf("decode tabular record line %d: %w", i+1, err)
		}
		lowered := make(map[string]any, len(row))
		for k, v := range row {
			lowered[strings.ToLower(k)] = v
		}
		rows = append(rows, lowered)
	}
	return TabularBatch{Key: key, Rows: rows}, nil
}

// Normalize flattens the per-station time series into canonical
// observations: one row per reading, station directory left-joined by id.
// Rows whose station has no directory entry are kept with absent metadata;
// the returned count reports those join misses. Stations are visited in
// sorted id order so output is deterministic; within-station order is
// preserved.
func (b TelemetryBatch) Normalize(loc *time.Location) ([]Observation, int) {
	directory := make(map[string]StationMeta, len(b.Stations))
	for _, s := range b.Stations {
		directory[s.ID] = s
	}

	ids := make([]string, 0, len(b.Hourly))
	for sid := range b.Hourly {
		ids = append(ids, sid)
	}
	sort.Strings(ids)

	var obs []Observation
	var joinMisses int
	for _, sid := range ids {
		meta, found := directory[sid]
		for _, reading := range b.Hourly[sid] {
			if !found {
				joinMisses++
			}
			date, clock := parseUTCInstant(reading["dh_utc"], loc)
			obs = append(obs, Observation{
				StationID:     sid,
				StationName:   meta.Name,
				Latitude:      meta.Latitude,
				Longitude:     meta.Longitude,
				Elevation:     meta.Elevation,
				Date:          date,
				Time:          clock,
				Type:          stringField(reading["type"]),
				License:       stringField(reading["license"]),
				Temperature:   coerceNumber(reading["temperature"]),
				DewPoint:      coerceNumber(reading["point_de_rosee"]),
				Visibility:    coerceNumber(reading["visibilite"]),
				Humidity:      coerceNumber(reading["humidite"]),
				WindDirection: coerceNumber(reading["vent_direction"]),
				WindSpeed:     coerceNumber(reading["vent_moyen"]),
				WindGust:      coerceNumber(reading["vent_rafales"]),
				Pressure:      coerceNumber(reading["pression"]),
				Rain1h:        coerceNumber(reading["pluie_1h"]),
				Rain3h:        coerceNumber(reading["pluie_3h"]),
				SnowDepth:     coerceNumber(reading["neige_au_sol"]),
				CloudCover:    coerceNumber(reading["nebulosite"]),
				WeatherCode:   coerceNumber(reading["temps_omm"]),
			})
		}
	}
	return obs, joinMisses
}

// Normalize converts the flat imperial rows to canonical units: °F→°C,
// mph→km/h, inHg→hPa, in→mm, compass labels→degrees, two-digit-year dates
// localized to the reference timezone. Values that fail coercion become
// absent; rows are never dropped here.
func (b TabularBatch) Normalize(loc *time.Location) []Observation {
	obs := make([]Observation, 0, len(b.Rows))
	for _, row := range b.Rows {
		obs = append(obs, Observation{
			StationID:     stringValue(row["station_id"]),
			StationName:   stringField(row["station_name"]),
			City:          stringField(row["city"]),
			Latitude:      coerceNumber(row["latitude"]),
			Longitude:     coerceNumber(row["longitude"]),
			Elevation:     coerceNumber(row["elevation"]),
			Software:      stringField(row["software"]),
			Date:          parseTabularDate(row["date"], loc),
			Time:          parseClockTime(row["time"]),
			Temperature:   fahrenheitToCelsius(row["temperature"]),
			DewPoint:      fahrenheitToCelsius(row["dew point"]),
			Humidity:      cleanNumeric(row["humidity"], "%", 1, 0),
			WindDirection: compassToDegrees(row["wind"]),
			WindSpeed:     cleanNumeric(row["speed"], "mph", mphToKmh, 1),
			WindGust:      cleanNumeric(row["gust"], "mph", mphToKmh, 1),
			Pressure:      cleanNumeric(row["pressure"], "in", inHgToHPa, 1),
			PrecipRate:    cleanNumeric(row["precip. rate."], "in", inToMm, 1),
			PrecipAccum:   cleanNumeric(row["precip. accum."], "in", inToMm, 1),
			UV:            coerceNumber(row["uv"]),
			SolarFlux:     cleanNumeric(row["solar"], "w/m²", 1, -1),
		})
	}
	return obs
}

// stringValue renders a raw JSON scalar as a string (numbers included, for
// feeds that encode station ids numerically).
func stringValue(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", x)
	}
}

// stringField returns a trimmed non-empty string as an optional field.
func stringField(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
