package ast

import "testing"

func TestBinaryExpressionString(t *testing.T) {
	expr := &BinaryExpression{
		Operator: "+",
		Left:     &NumberLiteral{Token: "1", Value: 1},
		Right:    &NumberLiteral{Token: "2", Value: 2},
	}
	if got, want := expr.String(), "(1 + 2)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestVariableAssignmentLineString(t *testing.T) {
	line := &VariableAssignmentLine{
		Name:  &Identifier{Value: "total"},
		Value: &NumberLiteral{Token: "5", Value: 5},
	}
	if got, want := line.String(), "total = 5"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestProgramString(t *testing.T) {
	p := &Program{Lines: []Line{
		&PlainTextLine{Text: "hello"},
		&ExpressionLine{Value: &NumberLiteral{Token: "1", Value: 1}},
	}}
	if got, want := p.String(), "hello\n1"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestFunctionDefinitionLineString(t *testing.T) {
	fn := &FunctionDefinitionLine{
		Name:   &Identifier{Value: "tip"},
		Params: []*FunctionParam{{Name: &Identifier{Value: "amount"}}},
		Body: &BinaryExpression{
			Operator: "*",
			Left:     &Identifier{Value: "amount"},
			Right:    &NumberLiteral{Token: "0.2", Value: 0.2},
		},
	}
	if got, want := fn.String(), "tip(amount) = (amount * 0.2)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
