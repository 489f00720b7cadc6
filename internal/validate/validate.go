// Package validate reconciles simulation output against an external
// reference-equilibrium result for the same nominal operating point.
// Comparison is pure: nothing here mutates the simulation result.
package validate

import "math"

// Band is the qualitative agreement bucket for one metric.
type Band int

const (
	Excellent Band = iota
	Good
	Acceptable
	Poor
)

func (b Band) String() string {
	switch b {
	case Excellent:
		return "excellent"
	case Good:
		return "good"
	case Acceptable:
		return "acceptable"
	default:
		return "poor"
	}
}

// Bands holds the relative-deviation thresholds, as fractions.
type Bands struct {
	Excellent  float64
	Good       float64
	Acceptable float64
}

// DefaultBands matches the reference tolerance scheme: 0.1% / 0.5% / 2.0%.
func DefaultBands() Bands {
	return Bands{Excellent: 0.001, Good: 0.005, Acceptable: 0.02}
}

// Record is one metric's comparison outcome.
type Record struct {
	Metric    string
	Reference float64
	Computed  float64
	AbsDev    float64
	RelDev    float64
	Band      Band
}

// Compare classifies the deviation of computed from reference. A zero
// reference with a nonzero computed value is Poor by definition.
func Compare(metric string, reference, computed float64, bands Bands) Record {
	rec := Record{
		Metric:    metric,
		Reference: reference,
		Computed:  computed,
		AbsDev:    math.Abs(computed - reference),
	}
	if reference == 0 {
		if computed == 0 {
			rec.Band = Excellent
			return rec
		}
		rec.RelDev = math.Inf(1)
		rec.Band = Poor
		return rec
	}
	rec.RelDev = rec.AbsDev / math.Abs(reference)
	switch {
	case rec.RelDev <= bands.Excellent:
		rec.Band = Excellent
	case rec.RelDev <= bands.Good:
		rec.Band = Good
	case rec.RelDev <= bands.Acceptable:
		rec.Band = Acceptable
	default:
		rec.Band = Poor
	}
	return rec
}

// Reference is the canonical operating-point result supplied by the caller
// (typically from the equilibrium property provider). Zero fields are
// treated as unavailable and skipped.
type Reference struct {
	CStar       float64 // m/s
	Isp         float64 // s
	ChamberTemp float64 // K
}

// Computed mirrors Reference with values taken from the driver output.
type Computed struct {
	CStar       float64
	Isp         float64
	ChamberTemp float64
}

// CompareAll produces a record per available metric.
func CompareAll(ref Reference, got Computed, bands Bands) []Record {
	var recs []Record
	if ref.CStar != 0 {
		recs = append(recs, Compare("c_star", ref.CStar, got.CStar, bands))
	}
	if ref.Isp != 0 {
		recs = append(recs, Compare("isp", ref.Isp, got.Isp, bands))
	}
	if ref.ChamberTemp != 0 {
		recs = append(recs, Compare("chamber_temperature", ref.ChamberTemp, got.ChamberTemp, bands))
	}
	return recs
}

// Worst returns the poorest band across records, Excellent when empty.
func Worst(recs []Record) Band {
	worst := Excellent
	for _, r := range recs {
		if r.Band > worst {
			worst = r.Band
		}
	}
	return worst
}
