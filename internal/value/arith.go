package value

import (
	"math"

	"github.com/nmaxcom/smartpad-go/internal/dimension"
	"github.com/nmaxcom/smartpad-go/internal/ncerrors"
	"github.com/nmaxcom/smartpad-go/internal/quantity"
	"github.com/nmaxcom/smartpad-go/internal/units"
)

// Law is the centralized arithmetic dispatch table described in spec.md §9
// ("centralize the law tables to keep arithmetic invariants auditable").
// All binary operators for the value taxonomy funnel through this type so
// the variant-pair coercion rules live in exactly one place.
type Law struct {
	Reg *units.Registry
}

// normalizeDurationUnit bridges Duration and unit-quantity arithmetic:
// when one operand is a Duration and the other a unit quantity, the
// duration is re-expressed as a quantity in its authored unit so
// dimensional analysis applies ("100 km / 2 h" is a velocity).
func normalizeDurationUnit(a, b Value) (Value, Value) {
	ad, aok := a.(Duration)
	bd, bok := b.(Duration)
	_, au := a.(UnitValue)
	_, bu := b.(UnitValue)
	if aok && bu {
		a = ad.asQuantity()
	}
	if bok && au {
		b = bd.asQuantity()
	}
	return a, b
}

// asQuantity re-expresses a Duration as a unit quantity in its authored
// unit (falling back to seconds).
func (d Duration) asQuantity() UnitValue {
	unit := d.AuthoredUnit
	switch unit {
	case "", "business day":
		unit = "s"
	}
	if v, err := (Duration{Seconds: d.Seconds}).To(unit); err == nil {
		return UnitValue{Q: quantity.Quantity{Value: v, Unit: units.Single(unit)}}
	}
	return UnitValue{Q: quantity.Quantity{Value: d.Seconds, Unit: units.Single("s")}}
}

// Add implements spec.md invariant (i): arithmetic preserves the most
// specific common variant (Currency+Number stays Currency, Unit+Number
// errors unless the unit is dimensionless).
func (l Law) Add(a, b Value) (Value, error) {
	if e, ok := errOperand(a, b); ok {
		return e, nil
	}
	a, b = normalizeDurationUnit(a, b)
	// Implicit percentage binding: "base + p%" == "p% on base" (spec.md §4.6).
	if pb, ok := b.(Percentage); ok {
		return l.percentOn(a, pb)
	}
	if pa, ok := a.(Percentage); ok {
		return l.percentOn(b, pa)
	}

	switch av := a.(type) {
	case Number:
		if bv, ok := b.(Number); ok {
			return Number{av.V + bv.V}, nil
		}
	case Currency:
		bv, err := l.asCurrency(b, av.Symbol)
		if err != nil {
			return nil, err
		}
		return Currency{Symbol: av.Symbol, V: av.V + bv.V}, nil
	case UnitValue:
		bv, err := l.asUnit(b)
		if err != nil {
			return nil, err
		}
		q, err := quantity.Add(l.Reg, av.Q, bv.Q)
		if err != nil {
			return nil, err
		}
		return UnitValue{Q: q}, nil
	case CurrencyUnit:
		bv, err := l.asCurrencyUnit(b, av)
		if err != nil {
			return nil, err
		}
		return CurrencyUnit{Symbol: av.Symbol, V: av.V + bv, PerUnit: av.PerUnit, IsRate: av.IsRate}, nil
	case Duration:
		switch bv := b.(type) {
		case Duration:
			return Duration{Seconds: av.Seconds + bv.Seconds}, nil
		case Date:
			return bv.AddDuration(av), nil
		case Time:
			return bv.AddDuration(av), nil
		}
	case Date:
		if bv, ok := b.(Duration); ok {
			return av.AddDuration(bv), nil
		}
	case Time:
		switch b.(type) {
		case Duration:
			return av.AddDuration(b.(Duration)), nil
		case Time:
			return nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgTimePlusTime)
		}
	}
	return nil, incompatible(a, b)
}

// Sub mirrors Add with the right operand negated where that makes sense,
// plus the Date-Date=Duration and Time-Time=Duration cases (spec.md §4.7).
func (l Law) Sub(a, b Value) (Value, error) {
	if e, ok := errOperand(a, b); ok {
		return e, nil
	}
	a, b = normalizeDurationUnit(a, b)
	if pb, ok := b.(Percentage); ok {
		return l.percentOff(a, pb)
	}

	switch av := a.(type) {
	case Number:
		if bv, ok := b.(Number); ok {
			return Number{av.V - bv.V}, nil
		}
	case Currency:
		bv, err := l.asCurrency(b, av.Symbol)
		if err != nil {
			return nil, err
		}
		return Currency{Symbol: av.Symbol, V: av.V - bv.V}, nil
	case UnitValue:
		bv, err := l.asUnit(b)
		if err != nil {
			return nil, err
		}
		q, err := quantity.Sub(l.Reg, av.Q, bv.Q)
		if err != nil {
			return nil, err
		}
		return UnitValue{Q: q}, nil
	case CurrencyUnit:
		bv, err := l.asCurrencyUnit(b, av)
		if err != nil {
			return nil, err
		}
		return CurrencyUnit{Symbol: av.Symbol, V: av.V - bv, PerUnit: av.PerUnit, IsRate: av.IsRate}, nil
	case Duration:
		if bv, ok := b.(Duration); ok {
			return Duration{Seconds: av.Seconds - bv.Seconds}, nil
		}
	case Date:
		switch bv := b.(type) {
		case Date:
			return DiffDays(av, bv), nil
		case Duration:
			return av.AddDuration(Duration{Seconds: -bv.Seconds, AuthoredUnit: bv.AuthoredUnit}), nil
		}
	case Time:
		switch bv := b.(type) {
		case Time:
			return av.SubTime(bv), nil
		case Duration:
			return av.AddDuration(Duration{Seconds: -bv.Seconds}), nil
		}
	}
	return nil, incompatible(a, b)
}

// Mul implements spec.md §4.5/§4.6: Unit*Number stays Unit, p% of y
// preserves y's variant, and CurrencyUnit*Unit collapses a rate into a
// plain Currency (spec.md §8 scenario 4).
func (l Law) Mul(a, b Value) (Value, error) {
	if e, ok := errOperand(a, b); ok {
		return e, nil
	}
	a, b = normalizeDurationUnit(a, b)
	if pa, ok := a.(Percentage); ok {
		return l.percentOf(pa, b)
	}
	if pb, ok := b.(Percentage); ok {
		return l.percentOf(pb, a)
	}

	switch av := a.(type) {
	case Number:
		switch bv := b.(type) {
		case Number:
			return Number{av.V * bv.V}, nil
		case Currency:
			return Currency{Symbol: bv.Symbol, V: av.V * bv.V}, nil
		case UnitValue:
			return UnitValue{Q: quantity.Quantity{Value: av.V * bv.Q.Value, Unit: bv.Q.Unit}}, nil
		case CurrencyUnit:
			return CurrencyUnit{Symbol: bv.Symbol, V: av.V * bv.V, PerUnit: bv.PerUnit, IsRate: bv.IsRate}, nil
		}
	case Currency:
		switch bv := b.(type) {
		case Number:
			return Currency{Symbol: av.Symbol, V: av.V * bv.V}, nil
		case UnitValue:
			return l.currencyPer(av.Symbol, av.V*bv.Q.Value, units.Invert(bv.Q.Unit))
		}
	case UnitValue:
		switch bv := b.(type) {
		case Number:
			return UnitValue{Q: quantity.Quantity{Value: av.Q.Value * bv.V, Unit: av.Q.Unit}}, nil
		case Currency:
			return l.currencyPer(bv.Symbol, bv.V*av.Q.Value, units.Invert(av.Q.Unit))
		case UnitValue:
			q, err := quantity.Mul(l.Reg, av.Q, bv.Q)
			if err != nil {
				return nil, err
			}
			return UnitValue{Q: quantity.Simplify(q)}, nil
		case CurrencyUnit:
			return l.mulUnitByRate(av, bv)
		}
	case CurrencyUnit:
		switch bv := b.(type) {
		case Number:
			return CurrencyUnit{Symbol: av.Symbol, V: av.V * bv.V, PerUnit: av.PerUnit, IsRate: av.IsRate}, nil
		case UnitValue:
			return l.mulUnitByRate(bv, av)
		}
	case Duration:
		if bv, ok := b.(Number); ok {
			return Duration{Seconds: av.Seconds * bv.V, AuthoredUnit: av.AuthoredUnit}, nil
		}
	}
	if av, ok := a.(Number); ok {
		if bv, ok := b.(Duration); ok {
			return Duration{Seconds: av.V * bv.Seconds, AuthoredUnit: bv.AuthoredUnit}, nil
		}
	}
	return nil, incompatible(a, b)
}

// mulUnitByRate implements `qty * rate` / `rate * qty` where rate is a
// CurrencyUnit like "$8/ft": the quantity cancels against the rate's
// per-unit denominator, producing a plain Currency when the dimensions
// cancel exactly and a narrower rate otherwise.
func (l Law) mulUnitByRate(qty UnitValue, rate CurrencyUnit) (Value, error) {
	return l.currencyPer(rate.Symbol, rate.V*qty.Q.Value, units.Div(rate.PerUnit, qty.Q.Unit))
}

// currencyPer builds the canonical value for "v symbol per denominator":
// an empty or dimension-canceled denominator folds into a plain Currency
// (converting through base units), anything else stays a CurrencyUnit rate.
func (l Law) currencyPer(symbol string, v float64, per units.Composite) (Value, error) {
	if per.Dimensionless() {
		return Currency{Symbol: symbol, V: v}, nil
	}
	dim, err := l.Reg.DimensionOf(per)
	if err != nil {
		return nil, err
	}
	if dimension.IsDimensionless(dim) {
		factor, err := l.Reg.ToBaseFactor(per)
		if err != nil {
			return nil, err
		}
		if factor == 0 {
			return nil, ncerrors.New(ncerrors.KindOverflow, ncerrors.MsgOverflow)
		}
		return Currency{Symbol: symbol, V: v / factor}, nil
	}
	return CurrencyUnit{Symbol: symbol, V: v, PerUnit: per, IsRate: true}, nil
}

// Div implements division, including dimensionless simplification to Number
// (spec.md §4.5) and Unit/Unit -> Number when dimensions cancel.
func (l Law) Div(a, b Value) (Value, error) {
	if e, ok := errOperand(a, b); ok {
		return e, nil
	}
	a, b = normalizeDurationUnit(a, b)
	switch av := a.(type) {
	case Number:
		switch bv := b.(type) {
		case Number:
			if bv.V == 0 {
				return nil, ncerrors.New(ncerrors.KindDivisionByZero, ncerrors.MsgDivisionByZero)
			}
			return Number{av.V / bv.V}, nil
		case UnitValue:
			q, err := quantity.Div(l.Reg, quantity.Quantity{Value: av.V}, bv.Q)
			if err != nil {
				return nil, err
			}
			return unitOrNumber(q), nil
		}
	case Currency:
		switch bv := b.(type) {
		case Number:
			if bv.V == 0 {
				return nil, ncerrors.New(ncerrors.KindDivisionByZero, ncerrors.MsgDivisionByZero)
			}
			return Currency{Symbol: av.Symbol, V: av.V / bv.V}, nil
		case Currency:
			if av.Symbol != bv.Symbol {
				return nil, ncerrors.New(ncerrors.KindIncompatibleCurrency, ncerrors.MsgIncompatibleCurrency, av.Symbol, bv.Symbol)
			}
			if bv.V == 0 {
				return nil, ncerrors.New(ncerrors.KindDivisionByZero, ncerrors.MsgDivisionByZero)
			}
			return Number{av.V / bv.V}, nil
		case UnitValue:
			if bv.Q.Value == 0 {
				return nil, ncerrors.New(ncerrors.KindDivisionByZero, ncerrors.MsgDivisionByZero)
			}
			return l.currencyPer(av.Symbol, av.V/bv.Q.Value, bv.Q.Unit)
		}
	case CurrencyUnit:
		switch bv := b.(type) {
		case Number:
			if bv.V == 0 {
				return nil, ncerrors.New(ncerrors.KindDivisionByZero, ncerrors.MsgDivisionByZero)
			}
			return CurrencyUnit{Symbol: av.Symbol, V: av.V / bv.V, PerUnit: av.PerUnit, IsRate: av.IsRate}, nil
		case UnitValue:
			if bv.Q.Value == 0 {
				return nil, ncerrors.New(ncerrors.KindDivisionByZero, ncerrors.MsgDivisionByZero)
			}
			return l.currencyPer(av.Symbol, av.V/bv.Q.Value, units.Mul(av.PerUnit, bv.Q.Unit))
		case CurrencyUnit:
			if av.Symbol != bv.Symbol {
				return nil, ncerrors.New(ncerrors.KindIncompatibleCurrency, ncerrors.MsgIncompatibleCurrency, av.Symbol, bv.Symbol)
			}
			if !units.Equal(av.PerUnit, bv.PerUnit) {
				return nil, ncerrors.New(ncerrors.KindIncompatibleUnits, ncerrors.MsgIncompatibleUnits, av.PerUnit.String(), bv.PerUnit.String())
			}
			if bv.V == 0 {
				return nil, ncerrors.New(ncerrors.KindDivisionByZero, ncerrors.MsgDivisionByZero)
			}
			return Number{av.V / bv.V}, nil
		}
	case UnitValue:
		switch bv := b.(type) {
		case Number:
			if bv.V == 0 {
				return nil, ncerrors.New(ncerrors.KindDivisionByZero, ncerrors.MsgDivisionByZero)
			}
			return UnitValue{Q: quantity.Quantity{Value: av.Q.Value / bv.V, Unit: av.Q.Unit}}, nil
		case UnitValue:
			q, err := quantity.Div(l.Reg, av.Q, bv.Q)
			if err != nil {
				return nil, err
			}
			return unitOrNumber(q), nil
		}
	case Duration:
		if bv, ok := b.(Number); ok {
			if bv.V == 0 {
				return nil, ncerrors.New(ncerrors.KindDivisionByZero, ncerrors.MsgDivisionByZero)
			}
			return Duration{Seconds: av.Seconds / bv.V}, nil
		}
		if bv, ok := b.(Duration); ok {
			if bv.Seconds == 0 {
				return nil, ncerrors.New(ncerrors.KindDivisionByZero, ncerrors.MsgDivisionByZero)
			}
			return Number{av.Seconds / bv.Seconds}, nil
		}
	}
	return nil, incompatible(a, b)
}

func unitOrNumber(q quantity.Quantity) Value {
	if q.Unit.Dimensionless() {
		return Number{q.Value}
	}
	return UnitValue{Q: q}
}

// Pow implements integer powers; fractional exponents beyond a dimensionless
// base are rejected by the evaluator before reaching here (spec.md §4.5).
func (l Law) Pow(a Value, n int) (Value, error) {
	switch av := a.(type) {
	case Number:
		v := math.Pow(av.V, float64(n))
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ncerrors.New(ncerrors.KindOverflow, ncerrors.MsgOverflow)
		}
		return Number{v}, nil
	case UnitValue:
		q, err := quantity.Pow(l.Reg, av.Q, n)
		if err != nil {
			return nil, err
		}
		return UnitValue{Q: q}, nil
	}
	return nil, incompatible(a, nil)
}

// Neg implements unary negation.
func (l Law) Neg(a Value) (Value, error) {
	switch av := a.(type) {
	case Number:
		return Number{-av.V}, nil
	case Currency:
		return Currency{Symbol: av.Symbol, V: -av.V}, nil
	case UnitValue:
		return UnitValue{Q: quantity.Quantity{Value: -av.Q.Value, Unit: av.Q.Unit}}, nil
	case CurrencyUnit:
		return CurrencyUnit{Symbol: av.Symbol, V: -av.V, PerUnit: av.PerUnit, IsRate: av.IsRate}, nil
	case Duration:
		return Duration{Seconds: -av.Seconds, AuthoredUnit: av.AuthoredUnit}, nil
	case Percentage:
		return Percentage{-av.V}, nil
	}
	return nil, incompatible(a, nil)
}

// percentOn implements "p% on y" = y*(1+p/100), preserving y's variant.
func (l Law) percentOn(base Value, p Percentage) (Value, error) {
	return l.scale(base, 1+p.Fraction())
}

// percentOff implements "p% off y" = y*(1-p/100).
func (l Law) percentOff(base Value, p Percentage) (Value, error) {
	return l.scale(base, 1-p.Fraction())
}

// percentOf implements "p% of y" = y*p/100, preserving y's variant.
func (l Law) percentOf(p Percentage, base Value) (Value, error) {
	return l.scale(base, p.Fraction())
}

func (l Law) scale(base Value, factor float64) (Value, error) {
	switch bv := base.(type) {
	case Number:
		return Number{bv.V * factor}, nil
	case Currency:
		return Currency{Symbol: bv.Symbol, V: bv.V * factor}, nil
	case UnitValue:
		return UnitValue{Q: quantity.Quantity{Value: bv.Q.Value * factor, Unit: bv.Q.Unit}}, nil
	case CurrencyUnit:
		return CurrencyUnit{Symbol: bv.Symbol, V: bv.V * factor, PerUnit: bv.PerUnit, IsRate: bv.IsRate}, nil
	case Percentage:
		return Percentage{bv.V * factor}, nil
	case ErrorValue:
		return bv, nil
	}
	return nil, incompatible(base, nil)
}

func (l Law) asCurrency(v Value, wantSymbol string) (Currency, error) {
	switch cv := v.(type) {
	case Currency:
		if cv.Symbol != wantSymbol {
			return Currency{}, ncerrors.New(ncerrors.KindIncompatibleCurrency, ncerrors.MsgIncompatibleCurrency, wantSymbol, cv.Symbol)
		}
		return cv, nil
	case Number:
		return Currency{Symbol: wantSymbol, V: cv.V}, nil
	}
	return Currency{}, incompatibleErr(v)
}

// asCurrencyUnit re-expresses v in want's per-unit denominator, returning
// the converted scalar. Symbol and denominator dimension must both match.
func (l Law) asCurrencyUnit(v Value, want CurrencyUnit) (float64, error) {
	cu, ok := v.(CurrencyUnit)
	if !ok {
		return 0, incompatibleErr(v)
	}
	if cu.Symbol != want.Symbol {
		return 0, ncerrors.New(ncerrors.KindIncompatibleCurrency, ncerrors.MsgIncompatibleCurrency, want.Symbol, cu.Symbol)
	}
	if units.Equal(cu.PerUnit, want.PerUnit) {
		return cu.V, nil
	}
	da, err := l.Reg.DimensionOf(want.PerUnit)
	if err != nil {
		return 0, err
	}
	db, err := l.Reg.DimensionOf(cu.PerUnit)
	if err != nil {
		return 0, err
	}
	if !dimension.Equal(da, db) {
		return 0, ncerrors.New(ncerrors.KindIncompatibleUnits, ncerrors.MsgIncompatibleUnits, want.PerUnit.String(), cu.PerUnit.String())
	}
	fa, err := l.Reg.ToBaseFactor(want.PerUnit)
	if err != nil {
		return 0, err
	}
	fb, err := l.Reg.ToBaseFactor(cu.PerUnit)
	if err != nil {
		return 0, err
	}
	if fb == 0 {
		return 0, ncerrors.New(ncerrors.KindOverflow, ncerrors.MsgOverflow)
	}
	return cu.V * fa / fb, nil
}

func (l Law) asUnit(v Value) (UnitValue, error) {
	switch uv := v.(type) {
	case UnitValue:
		return uv, nil
	case Number:
		return UnitValue{Q: quantity.Quantity{Value: uv.V}}, nil
	}
	return UnitValue{}, incompatibleErr(v)
}

func incompatible(a, b Value) error {
	var bs string
	if b != nil {
		bs = string(b.Kind())
	}
	return ncerrors.New(ncerrors.KindIncompatibleUnits, ncerrors.MsgIncompatibleUnits, string(a.Kind()), bs)
}

func incompatibleErr(v Value) error {
	return ncerrors.New(ncerrors.KindIncompatibleUnits, ncerrors.MsgIncompatibleUnits, string(v.Kind()), "")
}

// errOperand returns (the error value, true) if either operand is already
// an Error, short-circuiting further arithmetic (spec.md §7).
func errOperand(a, b Value) (Value, bool) {
	if ev, ok := a.(ErrorValue); ok {
		return ev, true
	}
	if ev, ok := b.(ErrorValue); ok {
		return ev, true
	}
	return nil, false
}
