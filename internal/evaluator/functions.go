package evaluator

import (
	"math"

	"github.com/nmaxcom/smartpad-go/internal/ast"
	"github.com/nmaxcom/smartpad-go/internal/ncerrors"
	"github.com/nmaxcom/smartpad-go/internal/quantity"
	"github.com/nmaxcom/smartpad-go/internal/value"
)

// evalCall dispatches a call: list aggregators, numeric built-ins, then
// user-defined functions (spec.md §4.9).
func (c *Context) evalCall(n *ast.CallExpression) (value.Value, error) {
	name := n.Callee.Value
	if aggregators[name] {
		return c.evalAggregate(name, n)
	}
	if fn, ok := numericBuiltins[name]; ok {
		return c.evalNumericBuiltin(name, fn, n)
	}
	if def, ok := c.Funcs.Get(name); ok {
		return c.evalUserCall(def, n)
	}
	return nil, ncerrors.New(ncerrors.KindUnknownFunction, ncerrors.MsgUnknownFunction, name)
}

// numericBuiltins are the scalar transforms available without definition.
var numericBuiltins = map[string]func(float64) (float64, error){
	"sqrt": func(v float64) (float64, error) {
		if v < 0 {
			return 0, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgSqrtNegative)
		}
		return math.Sqrt(v), nil
	},
	"abs":   func(v float64) (float64, error) { return math.Abs(v), nil },
	"round": func(v float64) (float64, error) { return math.Round(v), nil },
	"floor": func(v float64) (float64, error) { return math.Floor(v), nil },
	"ceil":  func(v float64) (float64, error) { return math.Ceil(v), nil },
}

func (c *Context) evalNumericBuiltin(name string, fn func(float64) (float64, error), n *ast.CallExpression) (value.Value, error) {
	if len(n.Args) != 1 {
		return nil, ncerrors.New(ncerrors.KindMissingArgument, ncerrors.MsgMissingArgument, name)
	}
	arg, err := c.Eval(n.Args[0])
	if err != nil {
		return nil, err
	}
	switch v := arg.(type) {
	case value.Number:
		out, err := fn(v.V)
		if err != nil {
			return nil, err
		}
		return value.Number{V: out}, nil
	case value.Currency:
		out, err := fn(v.V)
		if err != nil {
			return nil, err
		}
		return value.Currency{Symbol: v.Symbol, V: out}, nil
	case value.UnitValue:
		out, err := fn(v.Q.Value)
		if err != nil {
			return nil, err
		}
		return value.UnitValue{Q: quantity.Quantity{Value: out, Unit: v.Q.Unit}}, nil
	}
	return nil, ncerrors.New(ncerrors.KindIncompatibleUnits, ncerrors.MsgIncompatibleUnits, string(arg.Kind()), name)
}

// evalUserCall binds arguments (positional and named), fills defaults from
// the caller's context, and evaluates the body under dynamic scope with a
// call-depth guard (spec.md §4.9).
func (c *Context) evalUserCall(def *ast.FunctionDefinitionLine, n *ast.CallExpression) (value.Value, error) {
	if c.depth >= c.MaxRecursionDepth {
		return nil, ncerrors.New(ncerrors.KindOverflow, ncerrors.MsgRecursionLimit)
	}

	paramIndex := map[string]int{}
	for i, p := range def.Params {
		paramIndex[p.Name.Value] = i
	}
	bound := make([]value.Value, len(def.Params))
	seen := make([]bool, len(def.Params))

	positional := 0
	for _, arg := range n.Args {
		if named, ok := arg.(*ast.NamedArgument); ok {
			idx, exists := paramIndex[named.Name.Value]
			if !exists {
				return nil, ncerrors.New(ncerrors.KindUnknownNamedArgument, ncerrors.MsgUnknownNamedArgument, named.Name.Value)
			}
			v, err := c.Eval(named.Value)
			if err != nil {
				return nil, err
			}
			bound[idx], seen[idx] = v, true
			continue
		}
		if positional >= len(def.Params) {
			return nil, ncerrors.New(ncerrors.KindUnknownNamedArgument, ncerrors.MsgUnknownNamedArgument, arg.String())
		}
		v, err := c.Eval(arg)
		if err != nil {
			return nil, err
		}
		bound[positional], seen[positional] = v, true
		positional++
	}

	// Defaults resolve against the caller's context at call time.
	for i, p := range def.Params {
		if seen[i] {
			continue
		}
		if p.Default == nil {
			return nil, ncerrors.New(ncerrors.KindMissingArgument, ncerrors.MsgMissingArgument, p.Name.Value)
		}
		v, err := c.Eval(p.Default)
		if err != nil {
			return nil, err
		}
		bound[i] = v
	}

	frame := make(map[string]value.Value, len(def.Params))
	for i, p := range def.Params {
		frame[p.Name.Value] = bound[i]
	}

	c.depth++
	c.pushScope(frame)
	out, err := c.Eval(def.Body)
	c.popScope()
	c.depth--
	return out, err
}
