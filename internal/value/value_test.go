package value

import (
	"testing"

	"github.com/nmaxcom/smartpad-go/internal/quantity"
	"github.com/nmaxcom/smartpad-go/internal/units"
)

func law() Law {
	return Law{Reg: units.NewRegistry()}
}

func TestAddCurrencyAndPercentage(t *testing.T) {
	l := law()
	cost := Currency{Symbol: "$", V: 100}
	bonus := Percentage{V: 5}
	got, err := l.Add(cost, bonus)
	if err != nil {
		t.Fatal(err)
	}
	c, ok := got.(Currency)
	if !ok || !AlmostEqual(c.V, 105) {
		t.Errorf("100 + 5%% = %v, want $105", got)
	}
}

func TestCurrencyMismatchErrors(t *testing.T) {
	l := law()
	a := Currency{Symbol: "$", V: 10}
	b := Currency{Symbol: "€", V: 10}
	if _, err := l.Add(a, b); err == nil {
		t.Fatal("expected incompatible currency error")
	}
}

func TestPercentOnOffIdentity(t *testing.T) {
	l := law()
	y := Number{V: 200}
	p := Percentage{V: 10}
	on, err := l.percentOn(y, p)
	if err != nil {
		t.Fatal(err)
	}
	off, err := l.percentOff(y, p)
	if err != nil {
		t.Fatal(err)
	}
	// p on y - p off y ≈ (2p/100)*y (spec.md §8 invariant)
	diff := on.(Number).V - off.(Number).V
	want := (2 * p.Fraction()) * y.V
	if !AlmostEqual(diff, want) {
		t.Errorf("on-off = %v, want %v", diff, want)
	}
}

func TestUnitRateMultiply(t *testing.T) {
	l := law()
	rate := CurrencyUnit{Symbol: "$", V: 8, PerUnit: units.Single("ft"), IsRate: true}
	qty := UnitValue{Q: quantity.New(4, units.Single("m"))}
	got, err := l.Mul(qty, rate)
	if err != nil {
		t.Fatal(err)
	}
	c, ok := got.(Currency)
	if !ok {
		t.Fatalf("expected Currency, got %T", got)
	}
	// 4m = 13.123... ft, * $8 = $104.98...
	if c.V < 104 || c.V > 106 {
		t.Errorf("4m * $8/ft = %v, want ~$104.99", c.V)
	}
}

func TestQuantityTimesCurrencyChain(t *testing.T) {
	// "4 m * $8 / ft" associates left: the product is an intermediate
	// currency-per-unit, the division cancels the dimension to a Currency.
	l := law()
	qty := UnitValue{Q: quantity.New(4, units.Single("m"))}
	price := Currency{Symbol: "$", V: 8}
	partial, err := l.Mul(qty, price)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := partial.(CurrencyUnit); !ok {
		t.Fatalf("4m * $8 = %T, want CurrencyUnit", partial)
	}
	got, err := l.Div(partial, UnitValue{Q: quantity.New(1, units.Single("ft"))})
	if err != nil {
		t.Fatal(err)
	}
	c, ok := got.(Currency)
	if !ok || c.V < 104 || c.V > 106 {
		t.Errorf("4m * $8 / ft = %v, want ~$104.99", got)
	}
}

func TestRateAddition(t *testing.T) {
	l := law()
	a := CurrencyUnit{Symbol: "$", V: 8, PerUnit: units.Single("ft"), IsRate: true}
	b := CurrencyUnit{Symbol: "$", V: 1, PerUnit: units.Single("m"), IsRate: true}
	got, err := l.Add(a, b)
	if err != nil {
		t.Fatal(err)
	}
	cu, ok := got.(CurrencyUnit)
	if !ok || !AlmostEqual(cu.V, 8+0.3048) || cu.PerUnit.String() != "ft" {
		t.Errorf("$8/ft + $1/m = %v, want $8.3048/ft", got)
	}
}

func TestDateMinusDate(t *testing.T) {
	l := law()
	a := Date{Year: 2026, Month: 1, Day: 10}
	b := Date{Year: 2026, Month: 1, Day: 1}
	got, err := l.Sub(a, b)
	if err != nil {
		t.Fatal(err)
	}
	d, ok := got.(Duration)
	if !ok || d.Seconds != 9*86400 {
		t.Errorf("date diff = %v, want 9 days", got)
	}
}

func TestTimePlusTimeErrors(t *testing.T) {
	l := law()
	a := Time{Hour: 1}
	b := Time{Hour: 2}
	if _, err := l.Add(a, b); err == nil {
		t.Fatal("expected error for time+time")
	}
}

func TestErrorShortCircuits(t *testing.T) {
	l := law()
	e := NewError("DivisionByZero", "division by zero")
	got, err := l.Add(e, Number{V: 1})
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind() != KindError {
		t.Errorf("expected error to propagate, got %v", got)
	}
}

func TestDivDimensionlessSimplifiesToNumber(t *testing.T) {
	l := law()
	a := UnitValue{Q: quantity.New(10, units.Single("m"))}
	b := UnitValue{Q: quantity.New(2, units.Single("m"))}
	got, err := l.Div(a, b)
	if err != nil {
		t.Fatal(err)
	}
	n, ok := got.(Number)
	if !ok || n.V != 5 {
		t.Errorf("10m/2m = %v, want Number 5", got)
	}
}
