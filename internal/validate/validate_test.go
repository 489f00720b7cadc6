package validate

import (
	"math"
	"testing"
)

func TestCompareBands(t *testing.T) {
	bands := DefaultBands()

	tests := []struct {
		name      string
		reference float64
		computed  float64
		want      Band
	}{
		{"exact", 1520, 1520, Excellent},
		{"within 0.1%", 1520, 1521, Excellent},
		{"within 0.5%", 1520, 1526, Good},
		{"within 2%", 1520, 1545, Acceptable},
		{"beyond 2%", 1520, 1600, Poor},
		{"low side", 1520, 1490, Acceptable},
	}

	for _, tt := range tests {
		rec := Compare("c_star", tt.reference, tt.computed, bands)
		if rec.Band != tt.want {
			t.Errorf("%s: band %v, want %v (rel dev %g)", tt.name, rec.Band, tt.want, rec.RelDev)
		}
	}
}

func TestCompareDeviations(t *testing.T) {
	rec := Compare("isp", 200, 198, DefaultBands())

	if math.Abs(rec.AbsDev-2) > 1e-12 {
		t.Errorf("abs dev %g, want 2", rec.AbsDev)
	}
	if math.Abs(rec.RelDev-0.01) > 1e-12 {
		t.Errorf("rel dev %g, want 0.01", rec.RelDev)
	}
}

func TestCompareZeroReference(t *testing.T) {
	rec := Compare("isp", 0, 10, DefaultBands())
	if rec.Band != Poor || !math.IsInf(rec.RelDev, 1) {
		t.Errorf("nonzero against zero reference must be poor: %+v", rec)
	}

	rec = Compare("isp", 0, 0, DefaultBands())
	if rec.Band != Excellent {
		t.Errorf("zero against zero should be excellent: %+v", rec)
	}
}

func TestCompareAllSkipsUnavailable(t *testing.T) {
	recs := CompareAll(
		Reference{CStar: 1520, Isp: 210},
		Computed{CStar: 1515, Isp: 205, ChamberTemp: 3100},
		DefaultBands(),
	)

	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	for _, r := range recs {
		if r.Metric == "chamber_temperature" {
			t.Error("unavailable reference metric must be skipped")
		}
	}
}

func TestWorst(t *testing.T) {
	recs := []Record{
		{Band: Excellent},
		{Band: Acceptable},
		{Band: Good},
	}
	if Worst(recs) != Acceptable {
		t.Errorf("worst = %v, want acceptable", Worst(recs))
	}
	if Worst(nil) != Excellent {
		t.Error("empty records should be excellent")
	}
}
