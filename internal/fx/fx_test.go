package fx

import (
	"math"
	"testing"

	"github.com/nmaxcom/smartpad-go/internal/ncerrors"
)

func TestConvert(t *testing.T) {
	s := &Snapshot{Base: "USD", Rates: map[string]float64{"EUR": 0.9, "GBP": 0.8}}

	got, err := s.Convert(100, "$", "EUR")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-90) > 1e-9 {
		t.Errorf("Convert(100, $, EUR) = %v, want 90", got)
	}

	got, err = s.Convert(90, "EUR", "GBP")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-80) > 1e-9 {
		t.Errorf("Convert(90, EUR, GBP) = %v, want 80", got)
	}
}

func TestConvertSameCurrency(t *testing.T) {
	var s *Snapshot // nil snapshot: same-currency conversion still works
	got, err := s.Convert(42, "$", "USD")
	if err != nil || got != 42 {
		t.Errorf("Convert(42, $, USD) = %v, %v", got, err)
	}
}

func TestRateUnavailable(t *testing.T) {
	s := &Snapshot{Base: "USD", Rates: map[string]float64{"EUR": 0.9}}
	_, err := s.Convert(1, "USD", "CHF")
	e, ok := ncerrors.As(err)
	if !ok || e.Kind != ncerrors.KindRateUnavailable {
		t.Fatalf("err = %v, want RateUnavailable", err)
	}

	var missing *Snapshot
	_, err = missing.Convert(1, "USD", "EUR")
	if e, ok := ncerrors.As(err); !ok || e.Kind != ncerrors.KindRateUnavailable {
		t.Fatalf("nil snapshot err = %v, want RateUnavailable", err)
	}
}

func TestCodeAndSymbol(t *testing.T) {
	if Code("$") != "USD" || Code("EUR") != "EUR" {
		t.Error("Code mapping broken")
	}
	if Symbol("USD") != "$" || !IsGlyph("€") || IsGlyph("USD") {
		t.Error("Symbol mapping broken")
	}
}
