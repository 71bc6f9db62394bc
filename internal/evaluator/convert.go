package evaluator

import (
	"strings"

	"github.com/nmaxcom/smartpad-go/internal/ast"
	"github.com/nmaxcom/smartpad-go/internal/fx"
	"github.com/nmaxcom/smartpad-go/internal/ncerrors"
	"github.com/nmaxcom/smartpad-go/internal/quantity"
	"github.com/nmaxcom/smartpad-go/internal/units"
	"github.com/nmaxcom/smartpad-go/internal/value"
)

// isoCurrencyCodes gates which three-letter identifiers read as currency
// codes in conversion targets.
var isoCurrencyCodes = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "CHF": true,
	"CAD": true, "AUD": true, "CNY": true, "INR": true, "BRL": true, "MXN": true,
}

// evalConvert implements "x to/in/as <target>" (spec.md §4.3): unit
// conversion, currency conversion through the FX snapshot, percentage
// re-expression, and element-wise annotation over lists.
func (c *Context) evalConvert(n *ast.UnitConvertExpression) (value.Value, error) {
	src, err := c.Eval(n.Source)
	if err != nil {
		return nil, err
	}
	return c.convertValue(src, n.Target)
}

func (c *Context) convertValue(src value.Value, target string) (value.Value, error) {
	if list, ok := src.(value.List); ok {
		out := make([]value.Value, len(list.Items))
		for i, item := range list.Items {
			conv, err := c.convertValue(item, target)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return value.List{Items: out}, nil
	}

	// "a / b as %".
	if target == "%" {
		switch v := src.(type) {
		case value.Number:
			return value.Percentage{V: v.V * 100}, nil
		case value.Percentage:
			return v, nil
		}
		return nil, ncerrors.New(ncerrors.KindIncompatibleUnits, ncerrors.MsgIncompatibleUnits, string(src.Kind()), "%")
	}

	// Currency targets: a glyph ("$") or an ISO code ("EUR").
	if fx.IsGlyph(target) || isoCurrencyCodes[strings.ToUpper(target)] {
		sym := target
		if !fx.IsGlyph(target) {
			sym = strings.ToUpper(target)
		}
		switch v := src.(type) {
		case value.Currency:
			amount, err := c.FX.Convert(v.V, v.Symbol, sym)
			if err != nil {
				return nil, err
			}
			return value.Currency{Symbol: sym, V: amount}, nil
		case value.Number:
			// Annotation: "list to $" stamps plain numbers as amounts.
			return value.Currency{Symbol: sym, V: v.V}, nil
		}
		return nil, ncerrors.New(ncerrors.KindIncompatibleCurrency, ncerrors.MsgIncompatibleCurrency, string(src.Kind()), sym)
	}

	// Duration word targets keep the duration taxonomy ("to min", "to weeks").
	if unitWord, ok := durationTarget(target); ok {
		if d, isDur := src.(value.Duration); isDur {
			v, err := d.To(unitWord)
			if err != nil {
				return nil, ncerrors.New(ncerrors.KindUnknownUnit, ncerrors.MsgUnknownUnit, target)
			}
			return value.UnitValue{Q: quantity.Quantity{Value: v, Unit: units.Single(unitWord)}}, nil
		}
	}

	composite, err := c.parseTargetUnit(target)
	if err != nil {
		return nil, err
	}

	switch v := src.(type) {
	case value.UnitValue:
		q, err := quantity.Convert(c.Reg, v.Q, composite)
		if err != nil {
			return nil, err
		}
		return value.UnitValue{Q: q}, nil
	case value.Duration:
		q, err := quantity.Convert(c.Reg, quantity.Quantity{Value: v.Seconds, Unit: units.Single("s")}, composite)
		if err != nil {
			return nil, err
		}
		return value.UnitValue{Q: q}, nil
	case value.Number:
		// Annotation: "list to m/s" stamps plain numbers with a unit.
		return value.UnitValue{Q: quantity.Quantity{Value: v.V, Unit: composite}}, nil
	}
	return nil, ncerrors.New(ncerrors.KindIncompatibleUnits, ncerrors.MsgIncompatibleUnits, string(src.Kind()), target)
}

// durationTarget maps duration keywords (including plurals) to the
// canonical duration unit word.
func durationTarget(target string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(target))
	t = strings.TrimSuffix(t, "s")
	switch t {
	case "", "se", "second":
		t = "s"
	case "minute":
		t = "min"
	case "hour", "hr":
		t = "h"
	}
	switch t {
	case "s", "sec", "min", "h", "day", "week", "month", "year":
		return t, true
	}
	return "", false
}

// parseTargetUnit parses a conversion target into a composite unit,
// expanding user aliases and validating every factor against the registry.
func (c *Context) parseTargetUnit(target string) (units.Composite, error) {
	if c.Reg.IsAlias(target) {
		_, composite, err := c.Reg.ExpandAlias(target)
		if err != nil {
			return units.Composite{}, ncerrors.New(ncerrors.KindCircularUnitAlias, ncerrors.MsgCircularUnitAlias, target)
		}
		return composite, nil
	}
	composite, err := units.ParseComposite(target)
	if err != nil {
		return units.Composite{}, ncerrors.New(ncerrors.KindUnknownUnit, ncerrors.MsgUnknownUnit, target)
	}
	for _, f := range composite.Factors {
		if _, _, err := c.Reg.Resolve(f.Symbol); err != nil {
			return units.Composite{}, ncerrors.New(ncerrors.KindUnknownUnit, ncerrors.MsgUnknownUnit, f.Symbol)
		}
	}
	return composite, nil
}
