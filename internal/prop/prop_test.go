package prop

import (
	"errors"
	"math"
	"testing"
)

func testProps() Properties {
	return Properties{
		Name:        "test-apcp",
		Density:     1800,
		BurnCoeff:   5.0e-8,
		PressureExp: 0.35,
		TempSens:    0.002,
		RefTemp:     293.15,
		MinTemp:     233.15,
		MaxTemp:     333.15,
		CStar:       1520,
		Gamma:       1.2,
		MolWeight:   24.0,
	}
}

func TestSolidRateAtReference(t *testing.T) {
	p := testProps()

	r, err := SolidRate(5e6, p.RefTemp, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := p.BurnCoeff * math.Pow(5e6, p.PressureExp)
	if math.Abs(r-expected) > 1e-12 {
		t.Errorf("expected rate %g, got %g", expected, r)
	}
}

func TestSolidRateTemperatureSensitivity(t *testing.T) {
	p := testProps()

	cold, err := SolidRate(5e6, 253.15, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hot, err := SolidRate(5e6, 323.15, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cold >= hot {
		t.Errorf("cold grain should burn slower: cold=%g hot=%g", cold, hot)
	}
}

func TestSolidRateInvalidInputs(t *testing.T) {
	p := testProps()

	tests := []struct {
		name     string
		pressure float64
		temp     float64
	}{
		{"zero pressure", 0, p.RefTemp},
		{"negative pressure", -1e5, p.RefTemp},
		{"nan pressure", math.NaN(), p.RefTemp},
		{"temp below range", 5e6, 100},
		{"temp above range", 5e6, 500},
	}

	for _, tt := range tests {
		_, err := SolidRate(tt.pressure, tt.temp, p)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		var ise *InvalidStateError
		if !errors.As(err, &ise) {
			t.Errorf("%s: expected InvalidStateError, got %T", tt.name, err)
		}
	}
}

func TestHybridRate(t *testing.T) {
	law := NewHybridLaw(2.0e-5, 0.6)

	r, err := law.Rate(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := 2.0e-5 * math.Pow(100, 0.6)
	if math.Abs(r.Value-expected) > 1e-15 {
		t.Errorf("expected %g, got %g", expected, r.Value)
	}
	if r.Factor != 1 {
		t.Errorf("identity enhancement should be 1, got %g", r.Factor)
	}
	if r.Base != r.Value {
		t.Errorf("unenhanced base %g should equal value %g", r.Base, r.Value)
	}
}

func TestHybridEnhancementMultiplicative(t *testing.T) {
	law := NewHybridLaw(2.0e-5, 0.6)
	law.Enhancement = Enhancement{Vortex: 1.5, Catalytic: 1.2, Roughness: 1.1}

	r, err := law.Rate(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := 1.5 * 1.2 * 1.1
	if math.Abs(r.Factor-want) > 1e-12 {
		t.Errorf("expected combined factor %g, got %g", want, r.Factor)
	}
	if math.Abs(r.Value-r.Base*want) > 1e-15 {
		t.Errorf("value %g should be base %g times factor %g", r.Value, r.Base, want)
	}
}

func TestHybridRateRejectsNegativeFactor(t *testing.T) {
	law := NewHybridLaw(2.0e-5, 0.6)
	law.Enhancement = Enhancement{Vortex: -0.5, Catalytic: 1, Roughness: 1}

	if _, err := law.Rate(100); err == nil {
		t.Error("expected error for negative enhancement factor")
	}
}

func TestHybridRateInvalidFlux(t *testing.T) {
	law := NewHybridLaw(2.0e-5, 0.6)

	for _, flux := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		if _, err := law.Rate(flux); err == nil {
			t.Errorf("flux %g: expected error", flux)
		}
	}
}
