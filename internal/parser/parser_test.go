package parser

import (
	"testing"

	"github.com/nmaxcom/smartpad-go/internal/ast"
	"github.com/nmaxcom/smartpad-go/internal/units"
)

func reg() *units.Registry { return units.NewRegistry() }

func TestParseVariableAssignment(t *testing.T) {
	line := ParseLine("total = 12 + 4", 1, reg())
	va, ok := line.(*ast.VariableAssignmentLine)
	if !ok {
		t.Fatalf("got %T, want *ast.VariableAssignmentLine", line)
	}
	if va.Name.Value != "total" {
		t.Errorf("Name = %q", va.Name.Value)
	}
	bin, ok := va.Value.(*ast.BinaryExpression)
	if !ok || bin.Operator != "+" {
		t.Errorf("Value = %#v", va.Value)
	}
}

func TestParseBareExpression(t *testing.T) {
	line := ParseLine("12 + 4 * 2", 1, reg())
	el, ok := line.(*ast.ExpressionLine)
	if !ok {
		t.Fatalf("got %T, want *ast.ExpressionLine", line)
	}
	bin, ok := el.Value.(*ast.BinaryExpression)
	if !ok || bin.Operator != "+" {
		t.Fatalf("expected top-level '+', got %#v", el.Value)
	}
	right, ok := bin.Right.(*ast.BinaryExpression)
	if !ok || right.Operator != "*" {
		t.Errorf("expected precedence to bind * tighter, got %#v", bin.Right)
	}
}

func TestParseCombinedAssignment(t *testing.T) {
	line := ParseLine("result = 3 * 4 =>", 1, reg())
	ca, ok := line.(*ast.CombinedAssignmentLine)
	if !ok {
		t.Fatalf("got %T, want *ast.CombinedAssignmentLine", line)
	}
	if ca.Name.Value != "result" {
		t.Errorf("Name = %q", ca.Name.Value)
	}
	if ca.Raw != "3 * 4" {
		t.Errorf("Raw = %q", ca.Raw)
	}
}

func TestParseArrowOnBareExpression(t *testing.T) {
	// The expression sits left of '=>'; the arrow only requests the live
	// result, and the first '=>' wins.
	line := ParseLine("3 * 4 => 99 =>", 1, reg())
	el, ok := line.(*ast.ExpressionLine)
	if !ok {
		t.Fatalf("got %T, want *ast.ExpressionLine", line)
	}
	if el.Raw != "3 * 4" {
		t.Errorf("Raw = %q", el.Raw)
	}
}

func TestParseMissingVariableName(t *testing.T) {
	line := ParseLine("= 3 * 4 =>", 1, reg())
	if _, ok := line.(*ast.ErrorLine); !ok {
		t.Fatalf("got %T, want *ast.ErrorLine", line)
	}
}

func TestParsePhraseAssignment(t *testing.T) {
	line := ParseLine("base plan = 40", 1, reg())
	va, ok := line.(*ast.VariableAssignmentLine)
	if !ok || va.Name.Value != "base plan" {
		t.Fatalf("got %#v", line)
	}
}

func TestParseNamedArguments(t *testing.T) {
	line := ParseLine("tip(rate: 20%, bill: 50)", 1, reg())
	el, ok := line.(*ast.ExpressionLine)
	if !ok {
		t.Fatalf("got %T", line)
	}
	call := el.Value.(*ast.CallExpression)
	if len(call.Args) != 2 {
		t.Fatalf("args = %d", len(call.Args))
	}
	named, ok := call.Args[0].(*ast.NamedArgument)
	if !ok || named.Name.Value != "rate" {
		t.Fatalf("arg[0] = %#v", call.Args[0])
	}
}

func TestParseDefaultParams(t *testing.T) {
	line := ParseLine("tip(bill, rate = 20%) = bill * rate", 1, reg())
	fn, ok := line.(*ast.FunctionDefinitionLine)
	if !ok {
		t.Fatalf("got %T", line)
	}
	if len(fn.Params) != 2 || fn.Params[1].Default == nil {
		t.Fatalf("params = %#v", fn.Params)
	}
}

func TestParseGroupingRejected(t *testing.T) {
	line := ParseLine("x = 1,000", 1, reg())
	if _, ok := line.(*ast.ErrorLine); !ok {
		t.Fatalf("got %T, want *ast.ErrorLine", line)
	}
}

func TestParseFunctionDefinition(t *testing.T) {
	line := ParseLine("tip(amount) = amount * 0.2", 1, reg())
	fn, ok := line.(*ast.FunctionDefinitionLine)
	if !ok {
		t.Fatalf("got %T, want *ast.FunctionDefinitionLine", line)
	}
	if fn.Name.Value != "tip" || len(fn.Params) != 1 || fn.Params[0].Name.Value != "amount" {
		t.Errorf("fn = %#v", fn)
	}
}

func TestParseSolveLine(t *testing.T) {
	line := ParseLine("solve for x", 1, reg())
	sl, ok := line.(*ast.SolveLine)
	if !ok || sl.Variable != "x" {
		t.Fatalf("got %#v", line)
	}
}

func TestParseEquationLine(t *testing.T) {
	line := ParseLine("2 * x + 3 = 11", 1, reg())
	eq, ok := line.(*ast.EquationLine)
	if !ok {
		t.Fatalf("got %T, want *ast.EquationLine", line)
	}
	if _, ok := eq.Left.(*ast.BinaryExpression); !ok {
		t.Errorf("Left = %#v", eq.Left)
	}
}

func TestParseQuantityLiteral(t *testing.T) {
	line := ParseLine("distance = 12km", 1, reg())
	va := line.(*ast.VariableAssignmentLine)
	q, ok := va.Value.(*ast.QuantityLiteral)
	if !ok || q.Value != 12 || q.UnitExpr != "km" {
		t.Fatalf("got %#v", va.Value)
	}
}

func TestParseCurrencyLiteral(t *testing.T) {
	line := ParseLine("price = $19.99", 1, reg())
	va := line.(*ast.VariableAssignmentLine)
	c, ok := va.Value.(*ast.CurrencyLiteral)
	if !ok || c.Symbol != "$" || c.Value != 19.99 {
		t.Fatalf("got %#v", va.Value)
	}
}

func TestParseTrailingCurrencySymbol(t *testing.T) {
	line := ParseLine("price = 100$", 1, reg())
	va := line.(*ast.VariableAssignmentLine)
	c, ok := va.Value.(*ast.CurrencyLiteral)
	if !ok || c.Symbol != "$" || c.Value != 100 {
		t.Fatalf("got %#v", va.Value)
	}
}

func TestParseISOPrefixCurrency(t *testing.T) {
	line := ParseLine("cost = USD 12", 1, reg())
	va := line.(*ast.VariableAssignmentLine)
	c, ok := va.Value.(*ast.CurrencyLiteral)
	if !ok || c.Symbol != "USD" || c.Value != 12 {
		t.Fatalf("got %#v", va.Value)
	}
}

func TestParseISOSuffixCurrency(t *testing.T) {
	line := ParseLine("cost = 12 EUR", 1, reg())
	va := line.(*ast.VariableAssignmentLine)
	c, ok := va.Value.(*ast.CurrencyLiteral)
	if !ok || c.Symbol != "EUR" || c.Value != 12 {
		t.Fatalf("got %#v", va.Value)
	}
}

func TestParsePercentageLiteral(t *testing.T) {
	line := ParseLine("discount = 15%", 1, reg())
	va := line.(*ast.VariableAssignmentLine)
	p, ok := va.Value.(*ast.PercentageLiteral)
	if !ok || p.Value != 15 {
		t.Fatalf("got %#v", va.Value)
	}
}

func TestParseUnitConversion(t *testing.T) {
	line := ParseLine("5 km in miles", 1, reg())
	el := line.(*ast.ExpressionLine)
	uc, ok := el.Value.(*ast.UnitConvertExpression)
	if !ok || uc.Target != "miles" {
		t.Fatalf("got %#v", el.Value)
	}
}

func TestParseWhereFilter(t *testing.T) {
	line := ParseLine("expenses where amount > 100", 1, reg())
	el := line.(*ast.ExpressionLine)
	w, ok := el.Value.(*ast.WhereExpression)
	if !ok {
		t.Fatalf("got %T, want *ast.WhereExpression", el.Value)
	}
	if _, ok := w.Predicate.(*ast.ComparisonExpression); !ok {
		t.Errorf("Predicate = %#v", w.Predicate)
	}
}

func TestParseRange(t *testing.T) {
	line := ParseLine("1..10", 1, reg())
	el := line.(*ast.ExpressionLine)
	r, ok := el.Value.(*ast.RangeExpression)
	if !ok {
		t.Fatalf("got %T, want *ast.RangeExpression", el.Value)
	}
	if r.Start.TokenLiteral() != "1" || r.End.TokenLiteral() != "10" {
		t.Errorf("range = %#v", r)
	}
}

func TestParseFunctionCall(t *testing.T) {
	line := ParseLine("sum(1, 2, 3)", 1, reg())
	el := line.(*ast.ExpressionLine)
	c, ok := el.Value.(*ast.CallExpression)
	if !ok || c.Callee.Value != "sum" || len(c.Args) != 3 {
		t.Fatalf("got %#v", el.Value)
	}
}

func TestParsePlainTextFallback(t *testing.T) {
	line := ParseLine("Notes for the quarter:", 1, reg())
	if _, ok := line.(*ast.PlainTextLine); !ok {
		t.Fatalf("got %T, want *ast.PlainTextLine", line)
	}
}

func TestParseBlankLine(t *testing.T) {
	line := ParseLine("", 1, reg())
	if _, ok := line.(*ast.PlainTextLine); !ok {
		t.Fatalf("got %T, want *ast.PlainTextLine", line)
	}
}
