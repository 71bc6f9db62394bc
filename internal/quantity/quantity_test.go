package quantity

import (
	"math"
	"testing"

	"github.com/nmaxcom/smartpad-go/internal/units"
)

func almostEqual(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}

func TestConvertRoundTrip(t *testing.T) {
	reg := units.NewRegistry()
	q := New(100, units.Single("ft"))
	m, err := Convert(reg, q, units.Single("m"))
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(m.Value, 30.48) {
		t.Errorf("100 ft -> m = %v, want 30.48", m.Value)
	}
	back, err := Convert(reg, m, units.Single("ft"))
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(back.Value, 100) {
		t.Errorf("round-trip = %v, want 100", back.Value)
	}
}

func TestAddMixedUnits(t *testing.T) {
	reg := units.NewRegistry()
	km := New(1, units.Single("km"))
	m := New(500, units.Single("m"))
	sum, err := Add(reg, km, m)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(sum.Value, 1.5) || sum.Unit.String() != "km" {
		t.Errorf("1km+500m = %v %s, want 1.5 km", sum.Value, sum.Unit.String())
	}
}

func TestAddIncompatible(t *testing.T) {
	reg := units.NewRegistry()
	a := New(1, units.Single("m"))
	b := New(1, units.Single("s"))
	if _, err := Add(reg, a, b); err == nil {
		t.Fatal("expected incompatible units error")
	}
}

func TestMulDivAndSimplify(t *testing.T) {
	reg := units.NewRegistry()
	force := New(10, units.Single("N"))
	dist := New(2, units.Single("m"))
	energy, err := Mul(reg, force, dist)
	if err != nil {
		t.Fatal(err)
	}
	energy = Simplify(energy)
	if energy.Unit.String() != "J" || !almostEqual(energy.Value, 20) {
		t.Errorf("10N*2m = %v %s, want 20 J", energy.Value, energy.Unit.String())
	}
}

func TestDivByZero(t *testing.T) {
	reg := units.NewRegistry()
	a := New(1, units.Single("m"))
	b := New(0, units.Single("s"))
	if _, err := Div(reg, a, b); err == nil {
		t.Fatal("expected division by zero error")
	}
}

func TestPowRoundTrip(t *testing.T) {
	reg := units.NewRegistry()
	a := New(3, units.Single("m"))
	sq, err := Pow(reg, a, 2)
	if err != nil {
		t.Fatal(err)
	}
	if sq.Unit.String() != "m^2" || !almostEqual(sq.Value, 9) {
		t.Errorf("3m^2 = %v %s", sq.Value, sq.Unit.String())
	}
}

func TestTemperatureAddDelta(t *testing.T) {
	reg := units.NewRegistry()
	c := New(20, units.Single("C"))
	k := New(5, units.Single("K"))
	got, err := Add(reg, c, k)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(got.Value, 25) || got.Unit.String() != "C" {
		t.Errorf("20C + 5K = %v %s, want 25 C", got.Value, got.Unit.String())
	}
}

func TestTemperatureAbsoluteSumErrors(t *testing.T) {
	reg := units.NewRegistry()
	a := New(20, units.Single("C"))
	b := New(15, units.Single("C"))
	if _, err := Add(reg, a, b); err == nil {
		t.Fatal("expected error adding two absolute temperatures")
	}
}

func TestTemperatureSubDisplaysLeftUnit(t *testing.T) {
	reg := units.NewRegistry()
	a := New(50, units.Single("C"))
	b := New(20, units.Single("C"))
	got, err := Sub(reg, a, b)
	if err != nil {
		t.Fatal(err)
	}
	// The difference is a Kelvin delta numerically but reads in the left
	// operand's unit.
	if !almostEqual(got.Value, 30) || got.Unit.String() != "C" {
		t.Errorf("50C - 20C = %v %s, want 30 C", got.Value, got.Unit.String())
	}
}

func TestTemperatureAffineConvert(t *testing.T) {
	reg := units.NewRegistry()
	c := New(0, units.Single("C"))
	f, err := Convert(reg, c, units.Single("F"))
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(f.Value, 32) {
		t.Errorf("0C -> F = %v, want 32", f.Value)
	}
}
