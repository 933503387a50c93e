package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTelemetry(t *testing.T) {
	line := []byte(`{"_airbyte_data":{"stations":[{"id":"07015","name":"Lille-Lesquin","latitude":"50.57","longitude":"3.0975","elevation":"47"}],"hourly":{"_params":[{"temperature":"°C"}],"07015":[{"dh_utc":"2025-01-04 23:00:00","temperature":"3.4","humidite":"92"},{"dh_utc":"2025-01-05 00:00:00","temperature":"3.1","humidite":"93"}]}}}`)

	batch, err := ParseTelemetry([][]byte{line})
	require.NoError(t, err)

	require.Len(t, batch.Stations, 1)
	assert.Equal(t, "07015", batch.Stations[0].ID)
	require.NotNil(t, batch.Stations[0].Name)
	assert.Equal(t, "Lille-Lesquin", *batch.Stations[0].Name)
	require.NotNil(t, batch.Stations[0].Latitude)
	assert.Equal(t, 50.57, *batch.Stations[0].Latitude)

	// The parameter-metadata key must not surface as a station.
	assert.NotContains(t, batch.Hourly, "_params")
	assert.Len(t, batch.Hourly["07015"], 2)
}

func TestParseTelemetry_Empty(t *testing.T) {
	_, err := ParseTelemetry(nil)
	require.Error(t, err)
}

func TestTelemetryNormalize(t *testing.T) {
	loc := parisLocation(t)

	name := "Lille-Lesquin"
	lat := 50.57
	batch := TelemetryBatch{
		Stations: []StationMeta{{ID: "07015", Name: &name, Latitude: &lat}},
		Hourly: map[string][]map[string]any{
			"07015": {
				{"dh_utc": "2025-01-04 23:00:00", "temperature": "3.4", "vent_direction": 220.0, "pluie_1h": "0"},
			},
			"99999": {
				{"dh_utc": "2025-01-04 23:00:00", "temperature": "bad"},
			},
		},
	}

	obs, joinMisses := batch.Normalize(loc)
	require.Len(t, obs, 2)
	assert.Equal(t, 1, joinMisses)

	// Sorted station order: 07015 first.
	first := obs[0]
	assert.Equal(t, "07015", first.StationID)
	require.NotNil(t, first.StationName)
	assert.Equal(t, "Lille-Lesquin", *first.StationName)
	require.NotNil(t, first.Temperature)
	assert.Equal(t, 3.4, *first.Temperature)
	require.NotNil(t, first.WindDirection)
	assert.Equal(t, 220.0, *first.WindDirection)
	require.NotNil(t, first.Rain1h)
	assert.Equal(t, 0.0, *first.Rain1h)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, loc), first.Date)
	assert.Equal(t, "00:00:00", first.Time)

	// Join miss keeps the row with absent metadata and absent unparseable fields.
	miss := obs[1]
	assert.Equal(t, "99999", miss.StationID)
	assert.Nil(t, miss.StationName)
	assert.Nil(t, miss.Latitude)
	assert.Nil(t, miss.Temperature)
}

func TestParseTabular(t *testing.T) {
	lines := [][]byte{
		[]byte(`{"_airbyte_data":{"Temperature":"68.0 °F","Humidity":"54 %","Wind":"NE","Date":"050125","Time":"14:05:00","Station_ID":"ILAMAD25"}}`),
	}

	batch, err := ParseTabular(lines, "staged/LaMadeleine_050125.csv")
	require.NoError(t, err)
	require.Len(t, batch.Rows, 1)

	// Keys are lowercased on ingest.
	assert.Equal(t, "68.0 °F", batch.Rows[0]["temperature"])
	assert.Equal(t, "ILAMAD25", batch.Rows[0]["station_id"])
}

// TestTabularNormalize covers the imperial-to-canonical conversions end to
// end on one export row.
func TestTabularNormalize(t *testing.T) {
	loc := parisLocation(t)

	batch := TabularBatch{
		Key: "staged/LaMadeleine_050125.csv",
		Rows: []map[string]any{{
			"station_id":    "ILAMAD25",
			"station_name":  "La Madeleine",
			"city":          "LaMadeleine",
			"latitude":      "50.659",
			"longitude":     "3.07",
			"elevation":     "23",
			"software":      "EasyWeatherPro_V5.1.6",
			"date":          "050125",
			"time":          "14:05:00",
			"temperature":   "68.0 °F",
			"dew point":     "50.0 °F",
			"humidity":      "54 %",
			"wind":          "NE",
			"speed":         "4.5 mph",
			"gust":          "6.9 mph",
			"pressure":      "29.92 in",
			"precip. rate.": "0.12 in",
			"precip. accum.": "1.00 in",
			"uv":            "3",
			"solar":         "312.5 w/m²",
		}},
	}

	obs := batch.Normalize(loc)
	require.Len(t, obs, 1)
	o := obs[0]

	assert.Equal(t, "ILAMAD25", o.StationID)
	require.NotNil(t, o.Temperature)
	assert.Equal(t, 20.0, *o.Temperature)
	require.NotNil(t, o.DewPoint)
	assert.Equal(t, 10.0, *o.DewPoint)
	require.NotNil(t, o.Humidity)
	assert.Equal(t, 54.0, *o.Humidity)
	require.NotNil(t, o.WindDirection)
	assert.Equal(t, 45.0, *o.WindDirection)
	require.NotNil(t, o.WindSpeed)
	assert.Equal(t, 7.2, *o.WindSpeed)
	require.NotNil(t, o.Pressure)
	assert.Equal(t, 1013.2, *o.Pressure)
	require.NotNil(t, o.PrecipRate)
	assert.Equal(t, 3.0, *o.PrecipRate)
	require.NotNil(t, o.PrecipAccum)
	assert.Equal(t, 25.4, *o.PrecipAccum)
	require.NotNil(t, o.UV)
	assert.Equal(t, 3.0, *o.UV)
	require.NotNil(t, o.SolarFlux)
	assert.Equal(t, 312.5, *o.SolarFlux)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, loc), o.Date)
	assert.Equal(t, "14:05:00", o.Time)

	// Fields the export never reports stay absent.
	assert.Nil(t, o.Rain1h)
	assert.Nil(t, o.CloudCover)
	assert.Nil(t, o.Type)
}

func TestTabularNormalize_BadValuesKeepRow(t *testing.T) {
	loc := parisLocation(t)

	batch := TabularBatch{Rows: []map[string]any{{
		"station_id":  "IICHTE19",
		"date":        "050125",
		"time":        "09:00:00",
		"temperature": "--",
		"wind":        "XX",
	}}}

	obs := batch.Normalize(loc)
	require.Len(t, obs, 1)
	assert.Equal(t, "IICHTE19", obs[0].StationID)
	assert.Nil(t, obs[0].Temperature)
	assert.Nil(t, obs[0].WindDirection) // unmappable direction is absent, not 0
}

func TestMatchStation(t *testing.T) {
	info, ok := MatchStation("uploads/LaMadeleine_export_jan.xlsx")
	require.True(t, ok)
	assert.Equal(t, "ILAMAD25", info.ID)

	_, ok = MatchStation("uploads/UnknownPlace_export.xlsx")
	assert.False(t, ok)
}
