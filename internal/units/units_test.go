package units

import (
	"math"
	"testing"

	"github.com/nmaxcom/smartpad-go/internal/dimension"
)

func almostEqual(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}

func TestLookupPluralAndAlias(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup("meters"); !ok {
		t.Fatal("expected plural 'meters' to resolve")
	}
	if _, ok := r.Lookup("foot"); !ok {
		t.Fatal("expected alias 'foot' to resolve")
	}
}

func TestResolvePrefix(t *testing.T) {
	r := NewRegistry()
	factor, u, err := r.Resolve("km")
	if err != nil {
		t.Fatal(err)
	}
	if u.Symbol != "m" || factor != 1000 {
		t.Errorf("km -> factor=%v unit=%v, want 1000 m", factor, u.Symbol)
	}
}

func TestResolveUnknown(t *testing.T) {
	r := NewRegistry()
	if _, _, err := r.Resolve("zzz"); err == nil {
		t.Fatal("expected error for unknown unit")
	}
}

func TestCompositeParserAndToBaseFactor(t *testing.T) {
	r := NewRegistry()
	c, err := ParseComposite("km/h")
	if err != nil {
		t.Fatal(err)
	}
	factor, err := r.ToBaseFactor(c)
	if err != nil {
		t.Fatal(err)
	}
	want := 1000.0 / 3600.0
	if !almostEqual(factor, want) {
		t.Errorf("km/h base factor = %v, want %v", factor, want)
	}
	dim, err := r.DimensionOf(c)
	if err != nil {
		t.Fatal(err)
	}
	if dim != dimension.Velocity {
		t.Errorf("km/h dimension = %v, want velocity", dim)
	}
}

func TestCompositeProductAndPower(t *testing.T) {
	c, err := ParseComposite("kg*m/s^2")
	if err != nil {
		t.Fatal(err)
	}
	if c.String() != "kg*m/s^2" {
		t.Errorf("got %s", c.String())
	}
}

func TestDefineUnitAndNumericAlias(t *testing.T) {
	r := NewRegistry()
	if err := r.DefineAlias("workweek", 40, Single("h")); err != nil {
		t.Fatal(err)
	}
	factor, u, err := r.Resolve("workweek")
	if err != nil {
		t.Fatal(err)
	}
	if u.Symbol != "h" || !almostEqual(factor, 40*3600) {
		t.Errorf("workweek resolve = %v %v, want 40h in seconds", factor, u.Symbol)
	}

	if err := r.DefineAlias("dozen", 12, Composite{}); err != nil {
		t.Fatal(err)
	}
	factor, u, err = r.Resolve("dozen")
	if err != nil {
		t.Fatal(err)
	}
	if u.Category != "count" || factor != 12 {
		t.Errorf("dozen resolve = %v %v, want count 12", factor, u.Category)
	}
}

func TestCircularAliasRejected(t *testing.T) {
	r := NewRegistry()
	// a depends on b, b depends on a: must be rejected at definition time
	// of the second alias, which is where the cycle first becomes detectable.
	if err := r.DefineAlias("a", 1, Single("b")); err != nil {
		t.Fatal(err)
	}
	if err := r.DefineAlias("b", 1, Single("a")); err == nil {
		t.Fatal("expected circular alias error")
	}
	// First alias must not have been corrupted by the failed second define.
	if !r.IsAlias("a") {
		t.Fatal("expected alias 'a' to remain defined")
	}
}

func TestCompositeMulDivPow(t *testing.T) {
	m := Single("m")
	s := Single("s")
	mps := Div(m, s)
	if mps.String() != "m/s" {
		t.Errorf("m/s got %s", mps.String())
	}
	mps2 := Div(mps, s)
	if mps2.String() != "m/s^2" {
		t.Errorf("m/s^2 got %s", mps2.String())
	}
	sq := Pow(m, 2)
	if sq.String() != "m^2" {
		t.Errorf("m^2 got %s", sq.String())
	}
	if !Equal(Mul(m, Invert(m)), Composite{}) {
		t.Errorf("m * 1/m should cancel to dimensionless")
	}
}
