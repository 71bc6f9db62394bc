// Package quantity implements the numeric value + composite-unit pair and
// its arithmetic: add/sub/mul/div/pow, compatibility checks, conversion,
// and display simplification. Grounded on spec.md §3.3/§4.5 and the unit
// arithmetic shape in imhotep-nb-units.
package quantity

import (
	"fmt"
	"math"

	"github.com/nmaxcom/smartpad-go/internal/ncerrors"
	"github.com/nmaxcom/smartpad-go/internal/units"
)

// Quantity is a numeric value paired with a composite unit, always kept in
// simplified canonical form (per-symbol powers combined, zero powers
// dropped -- Composite.Mul/Div/Pow already guarantee this).
type Quantity struct {
	Value float64
	Unit  units.Composite
}

// New builds a Quantity, most commonly from a single unit symbol.
func New(value float64, unit units.Composite) Quantity {
	return Quantity{Value: value, Unit: unit}
}

func (q Quantity) String() string {
	if q.Unit.Dimensionless() {
		return fmt.Sprintf("%g", q.Value)
	}
	return fmt.Sprintf("%g %s", q.Value, q.Unit.String())
}

// compatible reports whether a and b share the same physical dimension.
func compatible(reg *units.Registry, a, b units.Composite) (bool, error) {
	da, err := reg.DimensionOf(a)
	if err != nil {
		return false, err
	}
	db, err := reg.DimensionOf(b)
	if err != nil {
		return false, err
	}
	return da == db, nil
}

// Add returns a+b, converting b into a's unit. Per spec.md §4.5, the left
// operand's unit is preserved (SI wins only if policy says so at the
// display layer, not here).
func Add(reg *units.Registry, a, b Quantity) (Quantity, error) {
	if ua, ub, isTemp := temperaturePair(reg, a, b); isTemp {
		return addTemperature(a, ua, b, ub)
	}
	ok, err := compatible(reg, a.Unit, b.Unit)
	if err != nil {
		return Quantity{}, err
	}
	if !ok {
		return Quantity{}, ncerrors.New(ncerrors.KindIncompatibleUnits, ncerrors.MsgIncompatibleUnits, a.Unit.String(), b.Unit.String())
	}
	bv, err := convertValue(reg, b.Value, b.Unit, a.Unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: a.Value + bv, Unit: a.Unit}, nil
}

// Sub returns a-b, converting b into a's unit.
func Sub(reg *units.Registry, a, b Quantity) (Quantity, error) {
	if ua, ub, isTemp := temperaturePair(reg, a, b); isTemp {
		return subTemperature(a, ua, b, ub)
	}
	neg := Quantity{Value: -b.Value, Unit: b.Unit}
	return Add(reg, a, neg)
}

// temperaturePair resolves both operands to single power-1 temperature
// units, the only composite shape with affine (absolute vs delta) rules.
func temperaturePair(reg *units.Registry, a, b Quantity) (*units.Unit, *units.Unit, bool) {
	ua, ok := singleTemperature(reg, a.Unit)
	if !ok {
		return nil, nil, false
	}
	ub, ok := singleTemperature(reg, b.Unit)
	if !ok {
		return nil, nil, false
	}
	return ua, ub, true
}

func singleTemperature(reg *units.Registry, c units.Composite) (*units.Unit, bool) {
	if len(c.Factors) != 1 || c.Factors[0].Power != 1 {
		return nil, false
	}
	_, u, err := reg.Resolve(c.Factors[0].Symbol)
	if err != nil || u.Category != "temperature" {
		return nil, false
	}
	return u, true
}

// addTemperature applies the absolute-plus-relative rules of spec.md §4.5:
// an offset unit (C, F) is an absolute temperature, a zero-offset unit (K)
// is a delta. Absolute + delta stays absolute; absolute + absolute has no
// physical meaning and is rejected.
func addTemperature(a Quantity, ua *units.Unit, b Quantity, ub *units.Unit) (Quantity, error) {
	switch {
	case ua.Offset != 0 && ub.Offset != 0:
		return Quantity{}, ncerrors.New(ncerrors.KindIncompatibleUnits, ncerrors.MsgAbsoluteTempSum, ua.Symbol, ub.Symbol)
	case ub.Offset != 0:
		// delta + absolute keeps the absolute unit
		return Quantity{Value: b.Value + a.Value*ua.ToBase/ub.ToBase, Unit: b.Unit}, nil
	default:
		return Quantity{Value: a.Value + b.Value*ub.ToBase/ua.ToBase, Unit: a.Unit}, nil
	}
}

// subTemperature: absolute - absolute is a delta, displayed in the left
// operand's unit (the documented quirk: 20 C - 15 C reads "5 C");
// absolute - delta stays absolute.
func subTemperature(a Quantity, ua *units.Unit, b Quantity, ub *units.Unit) (Quantity, error) {
	if ub.Offset != 0 {
		diff := ua.ToBaseValue(a.Value) - ub.ToBaseValue(b.Value)
		return Quantity{Value: diff / ua.ToBase, Unit: a.Unit}, nil
	}
	return Quantity{Value: a.Value - b.Value*ub.ToBase/ua.ToBase, Unit: a.Unit}, nil
}

// Mul returns a*b, combining their composite units.
func Mul(reg *units.Registry, a, b Quantity) (Quantity, error) {
	fa, err := reg.ToBaseFactor(a.Unit)
	if err != nil {
		return Quantity{}, err
	}
	fb, err := reg.ToBaseFactor(b.Unit)
	if err != nil {
		return Quantity{}, err
	}
	unit := units.Mul(a.Unit, b.Unit)
	baseValue := (a.Value * fa) * (b.Value * fb)
	unitFactor, err := reg.ToBaseFactor(unit)
	if err != nil {
		return Quantity{}, err
	}
	if unitFactor == 0 {
		return Quantity{}, ncerrors.New(ncerrors.KindOverflow, ncerrors.MsgOverflow)
	}
	return Quantity{Value: baseValue / unitFactor, Unit: unit}, nil
}

// Div returns a/b, combining their composite units.
func Div(reg *units.Registry, a, b Quantity) (Quantity, error) {
	if b.Value == 0 {
		return Quantity{}, ncerrors.New(ncerrors.KindDivisionByZero, ncerrors.MsgDivisionByZero)
	}
	inv := Quantity{Value: 1 / b.Value, Unit: units.Invert(b.Unit)}
	return Mul(reg, a, inv)
}

// Pow raises a to an integer power n.
func Pow(reg *units.Registry, a Quantity, n int) (Quantity, error) {
	v := math.Pow(a.Value, float64(n))
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Quantity{}, ncerrors.New(ncerrors.KindOverflow, ncerrors.MsgOverflow)
	}
	return Quantity{Value: v, Unit: units.Pow(a.Unit, n)}, nil
}

// Convert re-expresses q in the target composite unit.
func Convert(reg *units.Registry, q Quantity, target units.Composite) (Quantity, error) {
	ok, err := compatible(reg, q.Unit, target)
	if err != nil {
		return Quantity{}, err
	}
	if !ok {
		return Quantity{}, ncerrors.New(ncerrors.KindIncompatibleUnits, ncerrors.MsgIncompatibleUnits, q.Unit.String(), target.String())
	}
	v, err := convertValue(reg, q.Value, q.Unit, target)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: v, Unit: target}, nil
}

// convertValue converts a bare numeric value between two compatible
// composite units, honoring temperature's affine offset when the composite
// is a single temperature factor.
func convertValue(reg *units.Registry, v float64, from, to units.Composite) (float64, error) {
	if isSingleAffine(reg, from) && isSingleAffine(reg, to) {
		_, fu, err := reg.Resolve(from.Factors[0].Symbol)
		if err != nil {
			return 0, err
		}
		_, tu, err := reg.Resolve(to.Factors[0].Symbol)
		if err != nil {
			return 0, err
		}
		base := fu.ToBaseValue(v)
		return tu.FromBaseValue(base), nil
	}

	ff, err := reg.ToBaseFactor(from)
	if err != nil {
		return 0, err
	}
	tf, err := reg.ToBaseFactor(to)
	if err != nil {
		return 0, err
	}
	if tf == 0 {
		return 0, ncerrors.New(ncerrors.KindOverflow, ncerrors.MsgOverflow)
	}
	return v * ff / tf, nil
}

func isSingleAffine(reg *units.Registry, c units.Composite) bool {
	_, ok := singleTemperature(reg, c)
	return ok
}

// Simplify looks up a preferred named unit for q's composite signature
// (e.g. Pa*m^3 -> J), returning q unchanged if no simplification is known.
func Simplify(q Quantity) Quantity {
	sig := q.Unit.String()
	if name, ok := units.NamedProductUnits[sig]; ok && name != sig {
		return Quantity{Value: q.Value, Unit: units.Single(name)}
	}
	return q
}
