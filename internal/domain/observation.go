package domain

import "time"

// Schema is the canonical observation field list. Field names and order are
// the wire contract for load-ready records: both sources are reindexed onto
// exactly this list before serialization, and the reconciler scores drift
// per canonical field.
var Schema = []string{
	"station_id",
	"station_name",
	"city",
	"latitude",
	"longitude",
	"elevation",
	"software",
	"date",
	"time",
	"type",
	"license",
	"temperature",
	"dew_point",
	"visibility",
	"humidity",
	"wind_direction",
	"wind_speed",
	"wind_gust",
	"pressure",
	"rain_1h",
	"rain_3h",
	"precip_rate",
	"precip_accum",
	"uv",
	"solar_flux",
	"snow_depth",
	"cloud_cover",
	"weather_code",
}

// dateLayout renders observation dates the way the load-ready files have
// always carried them: local midnight with a numeric zone offset.
const dateLayout = "2006-01-02 15:04:05-07:00"

// Observation is one physical measurement at one station at one timestamp,
// already normalized to canonical units (°C, km/h, hPa, mm, degrees).
// Nil pointer fields are the single representation of "no value" from the
// normalizer onward; a field that failed coercion or was absent from the
// origin schema is nil here and an explicit null in the serialized record,
// never a zero.
type Observation struct {
	StationID   string
	StationName *string
	City        *string
	Latitude    *float64
	Longitude   *float64
	Elevation   *float64
	Software    *string

	// Date is local midnight in the reference timezone; Time is the local
	// clock time as "HH:MM:SS". A zero Date or empty Time means the source
	// timestamp could not be parsed.
	Date time.Time
	Time string

	Type    *string
	License *string

	Temperature   *float64 // °C
	DewPoint      *float64 // °C
	Visibility    *float64
	Humidity      *float64 // %
	WindDirection *float64 // degrees [0,360)
	WindSpeed     *float64 // km/h
	WindGust      *float64 // km/h
	Pressure      *float64 // hPa
	Rain1h        *float64 // mm
	Rain3h        *float64 // mm
	PrecipRate    *float64 // mm
	PrecipAccum   *float64 // mm
	UV            *float64
	SolarFlux     *float64 // W/m²
	SnowDepth     *float64
	CloudCover    *float64
	WeatherCode   *float64
}

// Record is the storage-ready document form of an observation. Every
// canonical field is present; absent values are explicit nils (JSON null).
type Record map[string]any

// Serialize converts an observation into its storage-ready record. All 28
// canonical fields are emitted; nil pointers become explicit nulls and the
// date becomes its canonical string form. Downstream consumers never see a
// source-specific missing-value sentinel.
func Serialize(o Observation) Record {
	rec := Record{
		"station_id":     o.StationID,
		"station_name":   ptrValue(o.StationName),
		"city":           ptrValue(o.City),
		"latitude":       ptrValue(o.Latitude),
		"longitude":      ptrValue(o.Longitude),
		"elevation":      ptrValue(o.Elevation),
		"software":       ptrValue(o.Software),
		"date":           nil,
		"time":           nil,
		"type":           ptrValue(o.Type),
		"license":        ptrValue(o.License),
		"temperature":    ptrValue(o.Temperature),
		"dew_point":      ptrValue(o.DewPoint),
		"visibility":     ptrValue(o.Visibility),
		"humidity":       ptrValue(o.Humidity),
		"wind_direction": ptrValue(o.WindDirection),
		"wind_speed":     ptrValue(o.WindSpeed),
		"wind_gust":      ptrValue(o.WindGust),
		"pressure":       ptrValue(o.Pressure),
		"rain_1h":        ptrValue(o.Rain1h),
		"rain_3h":        ptrValue(o.Rain3h),
		"precip_rate":    ptrValue(o.PrecipRate),
		"precip_accum":   ptrValue(o.PrecipAccum),
		"uv":             ptrValue(o.UV),
		"solar_flux":     ptrValue(o.SolarFlux),
		"snow_depth":     ptrValue(o.SnowDepth),
		"cloud_cover":    ptrValue(o.CloudCover),
		"weather_code":   ptrValue(o.WeatherCode),
	}
	if !o.Date.IsZero() {
		rec["date"] = o.Date.Format(dateLayout)
	}
	if o.Time != "" {
		rec["time"] = o.Time
	}
	return rec
}

// SerializeAll serializes a batch in order.
func SerializeAll(obs []Observation) []Record {
	recs := make([]Record, len(obs))
	for i, o := range obs {
		recs[i] = Serialize(o)
	}
	return recs
}

// Reindex projects a record onto exactly the canonical field list: fields
// missing from the input become explicit nulls, fields outside the schema
// are dropped. Reindexing an already-canonical record is a no-op, so the
// operation is idempotent.
func Reindex(rec Record) Record {
	out := make(Record, len(Schema))
	for _, field := range Schema {
		v, ok := rec[field]
		if !ok {
			v = nil
		}
		out[field] = v
	}
	return out
}

// ReindexAll reindexes every record in a batch, preserving row order.
func ReindexAll(recs []Record) []Record {
	out := make([]Record, len(recs))
	for i, rec := range recs {
		out[i] = Reindex(rec)
	}
	return out
}

// Concat appends the source batches row-wise. Order within each batch is
// preserved; telemetry rows conventionally come first, though the relative
// order between sources carries no meaning.
func Concat(batches ...[]Observation) []Observation {
	var n int
	for _, b := range batches {
		n += len(b)
	}
	out := make([]Observation, 0, n)
	for _, b := range batches {
		out = append(out, b...)
	}
	return out
}

func ptrValue[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
