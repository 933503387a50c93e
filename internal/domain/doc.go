// Package domain models the cooperative's canonical weather observation
// and the two raw source shapes it is normalized from.
//
// # Sources
//
// Station-network telemetry: a nested per-station time series plus an
// embedded station directory, staged as gzip NDJSON. Readings arrive in
// metric units with a UTC instant (dh_utc) per row. The hourly map carries
// a reserved "_params" entry describing units; it is metadata, not data,
// and is skipped during flattening.
//
// Personal-weather-station export: flat tabular rows staged from
// spreadsheet workbooks, in imperial units with US-style formatting:
//
//	Temperature / Dew Point   "68.0 °F"        → °C, (v−32)×5/9, 1 decimal
//	Humidity                  "54 %"           → %, 0 decimals
//	Wind                      compass labels   → degrees on a 22.5° grid
//	Speed / Gust              "4.5 mph"        → km/h, ×1.60934, 1 decimal
//	Pressure                  "29.92 in"       → hPa, ×33.8639, 1 decimal
//	Precip rate / accum       "0.12 in"        → mm, ×25.4, 1 decimal
//	Solar                     "312 w/m²"       → W/m², suffix stripped only
//	Date                      sheet label ddmmyy, two-digit year, pivot 70
//	Time                      "HH:MM:SS" already in the reference timezone
//
// Values sometimes carry non-breaking spaces between number and unit;
// those are stripped before parsing.
//
// # Missing values
//
// Any value that fails numeric coercion becomes absent (a nil pointer on
// Observation, an explicit null on Record). Rows are never dropped for a
// bad field, and absent is never encoded as zero. This is the only
// missing-value representation downstream of normalization.
//
// # Reconciliation
//
// Reconcile compares an expected canonical batch against the persisted
// dataset: row loss, per-field null-rate drift, and per-numeric-field mean
// drift, combined into a deliberately crude additive score. See
// QualityReport.
package domain
