package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialize(t *testing.T) {
	loc := parisLocation(t)

	temp := 20.0
	name := "La Madeleine"
	o := Observation{
		StationID:   "ILAMAD25",
		StationName: &name,
		Date:        time.Date(2025, 1, 5, 0, 0, 0, 0, loc),
		Time:        "14:05:00",
		Temperature: &temp,
	}

	rec := Serialize(o)

	// Every canonical field is present, absent ones as explicit nulls.
	require.Len(t, rec, len(Schema))
	for _, field := range Schema {
		_, ok := rec[field]
		assert.True(t, ok, "missing field %q", field)
	}

	assert.Equal(t, "ILAMAD25", rec["station_id"])
	assert.Equal(t, "La Madeleine", rec["station_name"])
	assert.Equal(t, 20.0, rec["temperature"])
	assert.Equal(t, "2025-01-05 00:00:00+01:00", rec["date"])
	assert.Equal(t, "14:05:00", rec["time"])
	assert.Nil(t, rec["humidity"])
	assert.Nil(t, rec["city"])
}

func TestSerialize_UnparsedTimestamp(t *testing.T) {
	rec := Serialize(Observation{StationID: "X"})
	assert.Nil(t, rec["date"])
	assert.Nil(t, rec["time"])
}

// TestReindexIdempotent verifies that reindexing already-canonical records
// is a no-op.
func TestReindexIdempotent(t *testing.T) {
	rec := Serialize(Observation{StationID: "ILAMAD25", Time: "10:00:00"})

	once := Reindex(rec)
	twice := Reindex(once)

	assert.Empty(t, cmp.Diff(once, twice))
	assert.Empty(t, cmp.Diff(rec, once))
}

func TestReindex_DropsExtrasFillsMissing(t *testing.T) {
	rec := Record{"station_id": "X", "_id": "mongo-oid", "temperature": 3.4}

	out := Reindex(rec)

	require.Len(t, out, len(Schema))
	assert.NotContains(t, out, "_id")
	assert.Equal(t, "X", out["station_id"])
	assert.Equal(t, 3.4, out["temperature"])
	assert.Nil(t, out["pressure"])
}

func TestConcat(t *testing.T) {
	a := []Observation{{StationID: "A1"}, {StationID: "A2"}}
	b := []Observation{{StationID: "B1"}}

	out := Concat(a, b)

	require.Len(t, out, 3)
	assert.Equal(t, "A1", out[0].StationID)
	assert.Equal(t, "A2", out[1].StationID)
	assert.Equal(t, "B1", out[2].StationID)
}
