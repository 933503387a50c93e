package domain

import (
	"math"
	"sort"
	"time"
)

// FieldDrift compares the null rate of one field between the expected
// dataset and what the store actually holds. A field present on only one
// side counts as 100% null on the other.
type FieldDrift struct {
	Field            string
	ExpectedNullRate float64
	ObservedNullRate float64
	Delta            float64 // |observed - expected|
}

// MeanDrift compares the mean of a numeric field between the two datasets.
// Comparable is false when either side has no numeric values to average;
// such fields are reported and skipped, never scored as zero drift.
type MeanDrift struct {
	Field        string
	ExpectedMean float64
	ObservedMean float64
	Delta        float64
	Comparable   bool
}

// QualityReport quantifies divergence between an expected canonical batch
// and the persisted dataset. TotalErrorRate is the crude additive
// row-error + field-error score: a coarse drift signal with no upper bound
// or calibration, not a normalized metric.
type QualityReport struct {
	ExpectedCount int
	ObservedCount int
	RowErrorRate  float64

	FieldDrifts    []FieldDrift
	FieldErrorRate float64

	MeanDrifts []MeanDrift

	TotalErrorRate float64
	GeneratedAt    time.Time
}

// Reconcile measures row loss, per-field completeness drift, and
// per-numeric-field mean drift between the expected batch and the observed
// (persisted) one. A field whose mean cannot be computed on one side is
// reported as non-comparable; reconciliation always completes.
func Reconcile(expected, observed []Record) QualityReport {
	report := QualityReport{
		ExpectedCount: len(expected),
		ObservedCount: len(observed),
		GeneratedAt:   clock.Now(),
	}

	if report.ExpectedCount > 0 {
		report.RowErrorRate = float64(report.ExpectedCount-report.ObservedCount) / float64(report.ExpectedCount)
	}

	expectedFields := fieldSet(expected)
	fields := unionFields(expectedFields, fieldSet(observed))

	var driftSum float64
	for _, field := range fields {
		d := FieldDrift{
			Field:            field,
			ExpectedNullRate: nullRate(expected, field),
			ObservedNullRate: nullRate(observed, field),
		}
		d.Delta = math.Abs(d.ObservedNullRate - d.ExpectedNullRate)
		driftSum += d.Delta
		report.FieldDrifts = append(report.FieldDrifts, d)

		if expMean, ok := mean(expected, field); ok {
			m := MeanDrift{Field: field, ExpectedMean: expMean}
			if obsMean, ok := mean(observed, field); ok {
				m.ObservedMean = obsMean
				m.Delta = math.Abs(expMean - obsMean)
				m.Comparable = true
			}
			report.MeanDrifts = append(report.MeanDrifts, m)
		}
	}
	if len(expectedFields) > 0 {
		report.FieldErrorRate = driftSum / float64(len(expectedFields))
	}

	report.TotalErrorRate = report.RowErrorRate + report.FieldErrorRate
	return report
}

// nullRate is the fraction of rows where the field is absent or null. An
// empty table has every field fully null by definition, so fields present
// on only one side score a rate of 1 on the other.
func nullRate(rows []Record, field string) float64 {
	if len(rows) == 0 {
		return 1
	}
	var nulls int
	for _, row := range rows {
		if isNull(row[field]) {
			nulls++
		}
	}
	return float64(nulls) / float64(len(rows))
}

// mean averages the numeric values of a field, ignoring nulls and
// non-numeric values. ok is false when no numeric value exists.
func mean(rows []Record, field string) (float64, bool) {
	var sum float64
	var n int
	for _, row := range rows {
		if f, ok := numericValue(row[field]); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func isNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	default:
		return false
	}
}

// numericValue widens the numeric types JSON and BSON decoding produce.
func numericValue(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return 0, false
		}
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

func fieldSet(rows []Record) map[string]struct{} {
	set := make(map[string]struct{})
	for _, row := range rows {
		for k := range row {
			set[k] = struct{}{}
		}
	}
	return set
}

// unionFields lists every field seen on either side, canonical fields
// first in schema order, extras sorted after.
func unionFields(a, b map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}

	var fields []string
	for _, f := range Schema {
		if _, ok := seen[f]; ok {
			fields = append(fields, f)
			delete(seen, f)
		}
	}
	extras := make([]string, 0, len(seen))
	for f := range seen {
		extras = append(extras, f)
	}
	sort.Strings(extras)
	return append(fields, extras...)
}
