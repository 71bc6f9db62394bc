package equation

import (
	"math"

	"github.com/nmaxcom/smartpad-go/internal/ast"
	"github.com/nmaxcom/smartpad-go/internal/ncerrors"
	"github.com/nmaxcom/smartpad-go/internal/value"
)

// EvalFunc evaluates a target-free subexpression against the caller's
// variable context. The solver owns the symbolic transformations; all
// numeric work (including unit and currency coercion) flows back through
// the evaluator via this callback.
type EvalFunc func(ast.Expression) (value.Value, error)

// Solver isolates a single free variable in a recorded equation.
type Solver struct {
	Law  value.Law
	Eval EvalFunc
}

// Solve isolates target in rec and returns its value. Both sides
// containing the target, non-numeric exponents, and grammar outside the
// tiny isolator (add, sub, mul, div, integer pow, sqrt-when-safe, negate)
// are refused with the spec.md §4.11 failure kinds.
func (s Solver) Solve(target string, rec Record) (value.Value, error) {
	lhs, rhs := rec.LHS, rec.RHS
	inL, inR := Contains(lhs, target), Contains(rhs, target)
	switch {
	case inL && inR:
		return nil, ncerrors.New(ncerrors.KindVariableOnBothSides, ncerrors.MsgVariableOnBothSides, target)
	case !inL && !inR:
		return nil, ncerrors.New(ncerrors.KindNoEquation, ncerrors.MsgNoEquation, target)
	case inR:
		lhs, rhs = rhs, lhs
	}

	other, err := s.Eval(rhs)
	if err != nil {
		return nil, err
	}
	return s.isolate(target, lhs, other)
}

// isolate peels operations off side until only the bare target remains,
// applying the inverse operation to acc each step.
func (s Solver) isolate(target string, side ast.Expression, acc value.Value) (value.Value, error) {
	for {
		switch e := side.(type) {
		case *ast.Identifier:
			if e.Value == target {
				return acc, nil
			}
			return nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgUnexpectedToken, e.Value)

		case *ast.GroupedExpression:
			side = e.Inner

		case *ast.UnaryExpression:
			if e.Operator != "-" && e.Operator != "+" {
				return nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgUnexpectedToken, e.Operator)
			}
			if e.Operator == "-" {
				neg, err := s.Law.Neg(acc)
				if err != nil {
					return nil, err
				}
				acc = neg
			}
			side = e.Right

		case *ast.BinaryExpression:
			next, nextAcc, err := s.peelBinary(target, e, acc)
			if err != nil {
				return nil, err
			}
			side, acc = next, nextAcc

		default:
			return nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgUnexpectedToken, side.TokenLiteral())
		}
	}
}

// peelBinary inverts one binary operation around the target-bearing child.
func (s Solver) peelBinary(target string, e *ast.BinaryExpression, acc value.Value) (ast.Expression, value.Value, error) {
	inLeft := Contains(e.Left, target)
	inRight := Contains(e.Right, target)
	if inLeft && inRight {
		return nil, nil, ncerrors.New(ncerrors.KindVariableOnBothSides, ncerrors.MsgVariableOnBothSides, target)
	}

	switch e.Operator {
	case "+":
		if inLeft {
			v, err := s.Eval(e.Right)
			if err != nil {
				return nil, nil, err
			}
			acc, err = s.Law.Sub(acc, v)
			return e.Left, acc, err
		}
		v, err := s.Eval(e.Left)
		if err != nil {
			return nil, nil, err
		}
		acc, err = s.Law.Sub(acc, v)
		return e.Right, acc, err

	case "-":
		if inLeft {
			// x - B = acc  =>  x = acc + B
			v, err := s.Eval(e.Right)
			if err != nil {
				return nil, nil, err
			}
			acc, err = s.Law.Add(acc, v)
			return e.Left, acc, err
		}
		// A - x = acc  =>  x = A - acc
		v, err := s.Eval(e.Left)
		if err != nil {
			return nil, nil, err
		}
		acc, err = s.Law.Sub(v, acc)
		return e.Right, acc, err

	case "*":
		var other ast.Expression
		var keep ast.Expression
		if inLeft {
			keep, other = e.Left, e.Right
		} else {
			keep, other = e.Right, e.Left
		}
		v, err := s.Eval(other)
		if err != nil {
			return nil, nil, err
		}
		acc, err = s.Law.Div(acc, v)
		return keep, acc, err

	case "/":
		if inLeft {
			// x / B = acc  =>  x = acc * B
			v, err := s.Eval(e.Right)
			if err != nil {
				return nil, nil, err
			}
			acc, err = s.Law.Mul(acc, v)
			return e.Left, acc, err
		}
		// A / x = acc  =>  x = A / acc
		v, err := s.Eval(e.Left)
		if err != nil {
			return nil, nil, err
		}
		acc, err = s.Law.Div(v, acc)
		return e.Right, acc, err

	case "^":
		if inRight {
			return nil, nil, ncerrors.New(ncerrors.KindNonNumericExponent, ncerrors.MsgNonNumericExponent, target)
		}
		n, ok := integerExponent(e.Right)
		if !ok {
			return nil, nil, ncerrors.New(ncerrors.KindNonNumericExponent, ncerrors.MsgNonNumericExponent, target)
		}
		switch n {
		case 1:
			return e.Left, acc, nil
		case 2:
			num, ok := acc.(value.Number)
			if !ok {
				return nil, nil, ncerrors.New(ncerrors.KindNonNumericExponent, ncerrors.MsgNonNumericExponent, target)
			}
			if num.V < 0 {
				return nil, nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgSqrtNegative)
			}
			return e.Left, value.Number{V: math.Sqrt(num.V)}, nil
		case -1:
			one := value.Number{V: 1}
			inv, err := s.Law.Div(one, acc)
			if err != nil {
				return nil, nil, err
			}
			return e.Left, inv, nil
		default:
			return nil, nil, ncerrors.New(ncerrors.KindNonNumericExponent, ncerrors.MsgNonNumericExponent, target)
		}

	default:
		return nil, nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgUnexpectedToken, e.Operator)
	}
}

// integerExponent extracts a literal integer exponent from an expression.
func integerExponent(e ast.Expression) (int, bool) {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		if n.Value == math.Trunc(n.Value) {
			return int(n.Value), true
		}
	case *ast.UnaryExpression:
		if n.Operator == "-" {
			if inner, ok := integerExponent(n.Right); ok {
				return -inner, true
			}
		}
	case *ast.GroupedExpression:
		return integerExponent(n.Inner)
	}
	return 0, false
}
