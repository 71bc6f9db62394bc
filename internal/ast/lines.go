package ast

import "bytes"

// PlainTextLine is a line with no recognizable expression content — echoed
// back verbatim as notebook prose (spec.md §4.2 classification, lowest
// priority fallback).
type PlainTextLine struct {
	Text   string
	Line   int
	Column int
}

func (p *PlainTextLine) lineNode()            {}
func (p *PlainTextLine) TokenLiteral() string { return p.Text }
func (p *PlainTextLine) String() string       { return p.Text }
func (p *PlainTextLine) Pos() Position        { return Position{Line: p.Line, Column: p.Column} }

// VariableAssignmentLine binds an identifier to an expression's result:
// "name = expr".
type VariableAssignmentLine struct {
	Name   *Identifier
	Value  Expression
	Raw    string // source text of the right-hand side, for re-rendering
	Line   int
	Column int
}

func (v *VariableAssignmentLine) lineNode()            {}
func (v *VariableAssignmentLine) TokenLiteral() string { return v.Name.Value }
func (v *VariableAssignmentLine) Pos() Position        { return Position{Line: v.Line, Column: v.Column} }
func (v *VariableAssignmentLine) String() string {
	return v.Name.String() + " = " + v.Value.String()
}

// ExpressionLine is a bare expression evaluated for its own result without
// being bound to a name, e.g. "12 + 4" or a single-unknown "solve" query.
type ExpressionLine struct {
	Value  Expression
	Raw    string // source text of the expression, for re-rendering
	Line   int
	Column int
}

func (e *ExpressionLine) lineNode()            {}
func (e *ExpressionLine) TokenLiteral() string { return e.Value.TokenLiteral() }
func (e *ExpressionLine) Pos() Position        { return Position{Line: e.Line, Column: e.Column} }
func (e *ExpressionLine) String() string       { return e.Value.String() }

// CombinedAssignmentLine both binds a name and displays the result inline,
// e.g. "total = x + y =>" (spec.md §4.2 point 3).
type CombinedAssignmentLine struct {
	Name   *Identifier
	Value  Expression
	Raw    string // source text of the expression, for re-rendering
	Line   int
	Column int
}

func (c *CombinedAssignmentLine) lineNode()            {}
func (c *CombinedAssignmentLine) TokenLiteral() string { return c.Name.Value }
func (c *CombinedAssignmentLine) Pos() Position        { return Position{Line: c.Line, Column: c.Column} }
func (c *CombinedAssignmentLine) String() string {
	return c.Name.String() + " => " + c.Value.String()
}

// FunctionParam is one parameter of a user function definition, with an
// optional default expression: "tip(bill, rate = 20%) = ...".
type FunctionParam struct {
	Name    *Identifier
	Default Expression
}

func (p *FunctionParam) String() string {
	if p.Default != nil {
		return p.Name.String() + " = " + p.Default.String()
	}
	return p.Name.String()
}

// FunctionDefinitionLine defines a user function: "f(x, y) = x + y".
type FunctionDefinitionLine struct {
	Name   *Identifier
	Params []*FunctionParam
	Body   Expression
	Line   int
	Column int
}

func (f *FunctionDefinitionLine) lineNode()            {}
func (f *FunctionDefinitionLine) TokenLiteral() string { return f.Name.Value }
func (f *FunctionDefinitionLine) Pos() Position        { return Position{Line: f.Line, Column: f.Column} }
func (f *FunctionDefinitionLine) String() string {
	var out bytes.Buffer
	out.WriteString(f.Name.String())
	out.WriteString("(")
	for i, p := range f.Params {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(p.String())
	}
	out.WriteString(") = ")
	out.WriteString(f.Body.String())
	return out.String()
}

// EquationLine is a single-unknown equation awaiting `solve` (spec.md
// §4.9), e.g. "2x + 3 = 11". Distinct from CombinedAssignmentLine because
// its left side is itself an expression, not a bare name, and it carries
// no displayed value until solved.
type EquationLine struct {
	Left   Expression
	Right  Expression
	Line   int
	Column int
}

func (e *EquationLine) lineNode()            {}
func (e *EquationLine) TokenLiteral() string { return "=" }
func (e *EquationLine) Pos() Position        { return Position{Line: e.Line, Column: e.Column} }
func (e *EquationLine) String() string {
	return e.Left.String() + " = " + e.Right.String()
}

// SolveLine requests the engine resolve a free variable: "solve for x"
// searches the equation store, while the explicit form
// "solve x in <equation>[, <assumption>...] [where x > 0]" carries its
// own equation and inline assumption bindings.
type SolveLine struct {
	Variable    string
	Equation    *EquationLine   // nil: search the equation store
	Assumptions []*EquationLine // inline "name = expr" bindings
	Positive    bool            // "where x > 0" root selection
	Line        int
	Column      int
}

func (s *SolveLine) lineNode()            {}
func (s *SolveLine) TokenLiteral() string { return "solve" }
func (s *SolveLine) Pos() Position        { return Position{Line: s.Line, Column: s.Column} }
func (s *SolveLine) String() string       { return "solve for " + s.Variable }

// ErrorLine wraps a line the parser could not classify or parse at all,
// carrying a human-readable message for direct display (spec.md §7).
type ErrorLine struct {
	Text    string
	Message string
	Line    int
	Column  int
}

func (e *ErrorLine) lineNode()            {}
func (e *ErrorLine) TokenLiteral() string { return e.Text }
func (e *ErrorLine) Pos() Position        { return Position{Line: e.Line, Column: e.Column} }
func (e *ErrorLine) String() string       { return e.Text }
