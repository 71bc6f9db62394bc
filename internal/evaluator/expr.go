package evaluator

import (
	"math"
	"strings"

	"github.com/nmaxcom/smartpad-go/internal/ast"
	"github.com/nmaxcom/smartpad-go/internal/ncerrors"
	"github.com/nmaxcom/smartpad-go/internal/quantity"
	"github.com/nmaxcom/smartpad-go/internal/units"
	"github.com/nmaxcom/smartpad-go/internal/value"
)

// Eval walks an expression into a Value. Domain dispatch (units, currency,
// percentages, dates, lists, calls) happens per node type here and in the
// sibling files; the variant-pair coercion laws live in value.Law.
func (c *Context) Eval(e ast.Expression) (value.Value, error) {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		return value.Number{V: n.Value}, nil

	case *ast.PercentageLiteral:
		return value.Percentage{V: n.Value}, nil

	case *ast.CurrencyLiteral:
		return value.Currency{Symbol: n.Symbol, V: n.Value}, nil

	case *ast.StringLiteral:
		// Strings are opaque: they pass through list aggregation as
		// non-numeric items (spec.md §4.1 point 2).
		return value.Symbolic{Expr: "\"" + n.Value + "\""}, nil

	case *ast.QuantityLiteral:
		return c.evalQuantityLiteral(n)

	case *ast.DateLiteral:
		return c.evalDateLiteral(n.Text)

	case *ast.TimeLiteral:
		return evalTimeLiteral(n.Text)

	case *ast.RefLiteral:
		if v, ok := c.lookup(n.Text); ok {
			return v, nil
		}
		return nil, ncerrors.New(ncerrors.KindUndefinedVariable, ncerrors.MsgUndefinedVariable, "result")

	case *ast.Identifier:
		return c.evalIdentifier(n)

	case *ast.GroupedExpression:
		return c.Eval(n.Inner)

	case *ast.UnaryExpression:
		v, err := c.Eval(n.Right)
		if err != nil {
			return nil, err
		}
		if n.Operator == "-" {
			return c.Law.Neg(v)
		}
		return v, nil

	case *ast.BinaryExpression:
		return c.evalBinary(n)

	case *ast.UnitConvertExpression:
		return c.evalConvert(n)

	case *ast.ListLiteral:
		return c.evalListLiteral(n)

	case *ast.RangeExpression:
		return c.evalRange(n)

	case *ast.IndexExpression:
		return c.evalIndex(n)

	case *ast.WhereExpression:
		return c.evalWhere(n)

	case *ast.CallExpression:
		return c.evalCall(n)

	case *ast.ComparisonExpression:
		return nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgUnsupportedWherePred, n.Operator)

	case *ast.NamedArgument:
		return nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgUnexpectedToken, ":")
	}
	return nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgUnexpectedToken, e.TokenLiteral())
}

// evalIdentifier resolves a name: call-frame locals, then sheet variables,
// then bare unit symbols ("$8/ft" divides by the unit ft), then undefined.
func (c *Context) evalIdentifier(n *ast.Identifier) (value.Value, error) {
	if v, ok := c.lookup(n.Value); ok {
		return v, nil
	}
	if factor, u, err := c.Reg.Resolve(n.Value); err == nil {
		if u.Category == "count" {
			return value.Number{V: factor}, nil
		}
		if u.Category == "time" && factor == 1 {
			if d, derr := value.NewDuration(1, u.Symbol); derr == nil {
				return d, nil
			}
		}
		return value.UnitValue{Q: quantity.Quantity{Value: 1, Unit: units.Single(n.Value)}}, nil
	}
	return nil, ncerrors.New(ncerrors.KindUndefinedVariable, ncerrors.MsgUndefinedVariable, n.Value)
}

// evalQuantityLiteral turns "12 km" / "2 h" / "3 business days" into a
// value: time-family single units become Durations so date arithmetic and
// "2 h 1 min" display work; everything else is a unit quantity.
func (c *Context) evalQuantityLiteral(n *ast.QuantityLiteral) (value.Value, error) {
	if n.UnitExpr == "business day" {
		return value.Duration{Seconds: n.Value * 86400, AuthoredUnit: "business day"}, nil
	}

	if c.Reg.IsAlias(n.UnitExpr) || c.Reg.IsAlias(strings.TrimSuffix(n.UnitExpr, "s")) {
		name := n.UnitExpr
		if !c.Reg.IsAlias(name) {
			name = strings.TrimSuffix(name, "s")
		}
		factor, composite, err := c.Reg.ExpandAlias(name)
		if err != nil {
			return nil, ncerrors.New(ncerrors.KindCircularUnitAlias, ncerrors.MsgCircularUnitAlias, name)
		}
		if composite.Dimensionless() {
			return value.Number{V: n.Value * factor}, nil
		}
		return value.UnitValue{Q: quantity.Quantity{Value: n.Value * factor, Unit: composite}}, nil
	}

	// Unprefixed time units become Durations; prefixed ones ("5 ms") stay
	// unit quantities so the prefix factor is not lost.
	if factor, u, err := c.Reg.Resolve(n.UnitExpr); err == nil && u.Category == "time" && factor == 1 {
		if d, derr := value.NewDuration(n.Value, u.Symbol); derr == nil {
			return d, nil
		}
	}
	if _, _, err := c.Reg.Resolve(n.UnitExpr); err != nil {
		return nil, ncerrors.New(ncerrors.KindUnknownUnit, ncerrors.MsgUnknownUnit, n.UnitExpr)
	}
	return value.UnitValue{Q: quantity.Quantity{Value: n.Value, Unit: units.Single(n.UnitExpr)}}, nil
}

// evalBinary applies a binary operator, handling list broadcasting and the
// Duration<->Unit seam before delegating to the law table.
func (c *Context) evalBinary(n *ast.BinaryExpression) (value.Value, error) {
	l, err := c.Eval(n.Left)
	if err != nil {
		return nil, err
	}
	r, err := c.Eval(n.Right)
	if err != nil {
		return nil, err
	}
	return c.applyBinary(n.Operator, l, r)
}

func (c *Context) applyBinary(op string, l, r value.Value) (value.Value, error) {
	if lv, ok := l.(value.List); ok {
		return c.broadcast(op, lv, r, true)
	}
	if rv, ok := r.(value.List); ok {
		return c.broadcast(op, rv, l, false)
	}

	switch op {
	case "+":
		return c.Law.Add(l, r)
	case "-":
		return c.Law.Sub(l, r)
	case "*":
		return c.Law.Mul(l, r)
	case "/", "per":
		return c.Law.Div(l, r)
	case "mod":
		return evalMod(l, r)
	case "^":
		return c.evalPow(l, r)
	case "of":
		return c.Law.Mul(l, r)
	case "on":
		return c.Law.Add(r, l)
	case "off":
		return c.Law.Sub(r, l)
	}
	return nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgUnexpectedToken, op)
}

// broadcast maps a binary operator element-wise over a list operand.
// listOnLeft records which side the list was on, preserving operand order
// for non-commutative operators.
func (c *Context) broadcast(op string, list value.List, other value.Value, listOnLeft bool) (value.Value, error) {
	if otherList, ok := other.(value.List); ok {
		if len(otherList.Items) != len(list.Items) {
			return nil, ncerrors.New(ncerrors.KindListLengthMismatch, ncerrors.MsgListLengthMismatch, len(list.Items), len(otherList.Items))
		}
		out := make([]value.Value, len(list.Items))
		for i := range list.Items {
			var err error
			if listOnLeft {
				out[i], err = c.applyBinary(op, list.Items[i], otherList.Items[i])
			} else {
				out[i], err = c.applyBinary(op, otherList.Items[i], list.Items[i])
			}
			if err != nil {
				return nil, err
			}
		}
		return value.List{Items: out}, nil
	}

	out := make([]value.Value, len(list.Items))
	for i, item := range list.Items {
		var err error
		if listOnLeft {
			out[i], err = c.applyBinary(op, item, other)
		} else {
			out[i], err = c.applyBinary(op, other, item)
		}
		if err != nil {
			return nil, err
		}
	}
	return value.List{Items: out}, nil
}

func evalMod(l, r value.Value) (value.Value, error) {
	ln, lok := l.(value.Number)
	rn, rok := r.(value.Number)
	if !lok || !rok {
		return nil, ncerrors.New(ncerrors.KindIncompatibleUnits, ncerrors.MsgIncompatibleUnits, string(l.Kind()), string(r.Kind()))
	}
	if rn.V == 0 {
		return nil, ncerrors.New(ncerrors.KindDivisionByZero, ncerrors.MsgModByZero)
	}
	return value.Number{V: math.Mod(ln.V, rn.V)}, nil
}

// evalPow implements '^': integer exponents run through the law table;
// fractional exponents are allowed for dimensionless bases, and for unit
// quantities only when every component power divides evenly (spec.md §4.5).
func (c *Context) evalPow(l, r value.Value) (value.Value, error) {
	exp, ok := r.(value.Number)
	if !ok {
		return nil, ncerrors.New(ncerrors.KindNonNumericExponent, ncerrors.MsgNonNumericExponent, r.String())
	}
	if exp.V == math.Trunc(exp.V) {
		return c.Law.Pow(l, int(exp.V))
	}
	switch base := l.(type) {
	case value.Number:
		v := math.Pow(base.V, exp.V)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ncerrors.New(ncerrors.KindOverflow, ncerrors.MsgOverflow)
		}
		return value.Number{V: v}, nil
	case value.UnitValue:
		factors := make([]units.Factor, len(base.Q.Unit.Factors))
		for i, f := range base.Q.Unit.Factors {
			scaled := float64(f.Power) * exp.V
			if scaled != math.Trunc(scaled) {
				return nil, ncerrors.New(ncerrors.KindNonNumericExponent, ncerrors.MsgNonNumericExponent, l.String())
			}
			factors[i] = units.Factor{Symbol: f.Symbol, Power: int(scaled)}
		}
		v := math.Pow(base.Q.Value, exp.V)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ncerrors.New(ncerrors.KindOverflow, ncerrors.MsgOverflow)
		}
		return value.UnitValue{Q: quantity.Quantity{Value: v, Unit: units.Composite{Factors: factors}}}, nil
	}
	return nil, ncerrors.New(ncerrors.KindNonNumericExponent, ncerrors.MsgNonNumericExponent, l.String())
}

// compare orders two values by canonical magnitude through the law table
// (so "1 km > 900 m" holds), returning -1/0/1. Equality uses the relative
// tolerance of spec.md §4.8.
func (c *Context) compare(a, b value.Value) (int, error) {
	diff, err := c.Law.Sub(a, b)
	if err != nil {
		return 0, err
	}
	dn, ok := diff.(value.Numeric)
	if !ok {
		return 0, ncerrors.New(ncerrors.KindIncompatibleUnits, ncerrors.MsgIncompatibleUnits, string(a.Kind()), string(b.Kind()))
	}
	an, _ := a.(value.Numeric)
	scale := 1.0
	if an != nil {
		scale = math.Max(math.Abs(an.Numeric()), 1)
	}
	switch {
	case math.Abs(dn.Numeric()) <= 1e-9*scale:
		return 0, nil
	case dn.Numeric() < 0:
		return -1, nil
	default:
		return 1, nil
	}
}
