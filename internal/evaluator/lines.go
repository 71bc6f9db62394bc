package evaluator

import (
	"fmt"
	"strings"

	"github.com/nmaxcom/smartpad-go/internal/ast"
	"github.com/nmaxcom/smartpad-go/internal/equation"
	"github.com/nmaxcom/smartpad-go/internal/ncerrors"
	"github.com/nmaxcom/smartpad-go/internal/parser"
	"github.com/nmaxcom/smartpad-go/internal/units"
	"github.com/nmaxcom/smartpad-go/internal/value"
)

// ---- function definitions ----

type functionDefinitionEvaluator struct{}

func (functionDefinitionEvaluator) Name() string { return "functionDefinition" }

func (functionDefinitionEvaluator) CanHandle(line ast.Line) bool {
	_, ok := line.(*ast.FunctionDefinitionLine)
	return ok
}

func (functionDefinitionEvaluator) Evaluate(line ast.Line, ctx *Context) RenderNode {
	def := line.(*ast.FunctionDefinitionLine)
	ctx.Funcs.Define(def)
	return RenderNode{
		Kind:        RenderPlainText,
		Name:        def.Name.Value,
		DisplayText: def.String(),
	}
}

// ---- variable assignment ----

type variableAssignmentEvaluator struct{}

func (variableAssignmentEvaluator) Name() string { return "variableAssignment" }

func (variableAssignmentEvaluator) CanHandle(line ast.Line) bool {
	_, ok := line.(*ast.VariableAssignmentLine)
	return ok
}

func (variableAssignmentEvaluator) Evaluate(line ast.Line, ctx *Context) RenderNode {
	va := line.(*ast.VariableAssignmentLine)
	v, node := assign(ctx, va.Name.Value, va.Value, va.Raw, va.Line)
	if node != nil {
		return *node
	}
	display := va.Name.Value + " = " + DisplayExpression(va.Raw)
	if _, symbolic := v.(value.Symbolic); !symbolic {
		display = va.Name.Value + " = " + ctx.Fmt.Value(v)
	}
	return RenderNode{
		Kind:        RenderVariable,
		Name:        va.Name.Value,
		Expression:  DisplayExpression(va.Raw),
		Result:      v,
		DisplayText: display,
	}
}

// assign evaluates the right-hand side, registers unit aliases, writes the
// store, records the equation fact, and propagates to dependents. A
// non-nil RenderNode is the error rendering to return as-is.
func assign(ctx *Context, name string, expr ast.Expression, raw string, lineNo int) (value.Value, *RenderNode) {
	v, err := ctx.Eval(expr)
	if err != nil {
		if e, ok := ncerrors.As(err); ok && e.Kind == ncerrors.KindUndefinedVariable {
			// Deferred: keep the expression symbolic until its
			// dependencies are defined.
			v = value.Symbolic{Expr: DisplayExpression(raw), FreeVars: equation.FreeVariables(expr)}
		} else {
			ctx.Vars.Set(name, raw, value.NewError(errKind(err), err.Error()), equation.FreeVariables(expr))
			node := errorRender(raw, err)
			node.Name = name
			return nil, &node
		}
	}

	if rerr := registerAlias(ctx, name, expr); rerr != nil {
		node := errorRender(raw, rerr)
		node.Name = name
		return nil, &node
	}

	deps := equation.FreeVariables(expr)
	if serr := ctx.Vars.Set(name, raw, v, deps); serr != nil {
		node := errorRender(raw, ncerrors.New(ncerrors.KindCircularDependency, ncerrors.MsgCircularDependency, name))
		node.Name = name
		propagate(ctx, name)
		return nil, &node
	}

	free := append([]string{name}, deps...)
	ctx.Equations.Add(equation.Record{
		LineNumber: lineNo,
		LHS:        &ast.Identifier{Token: name, Value: name, Line: lineNo},
		RHS:        expr,
		FreeVars:   free,
	})

	propagate(ctx, name)
	return v, nil
}

// registerAlias records "name = N unit" and "name = N" assignments as
// user-defined units (spec.md §4.4); the shadowing rule lets them win over
// built-in symbols at resolution time.
func registerAlias(ctx *Context, name string, expr ast.Expression) error {
	switch n := expr.(type) {
	case *ast.QuantityLiteral:
		if n.UnitExpr == "business day" {
			return nil
		}
		if err := ctx.Reg.DefineAlias(name, n.Value, units.Single(n.UnitExpr)); err != nil {
			return ncerrors.New(ncerrors.KindCircularUnitAlias, ncerrors.MsgCircularUnitAlias, name)
		}
	case *ast.NumberLiteral:
		// Numeric-only alias: a countable unit ("dozen = 12").
		if err := ctx.Reg.DefineAlias(name, n.Value, units.Composite{}); err != nil {
			return ncerrors.New(ncerrors.KindCircularUnitAlias, ncerrors.MsgCircularUnitAlias, name)
		}
	}
	return nil
}

// propagate re-evaluates every dependent of name in topological order
// (spec.md §4.10), reading each dependent's raw source back through the
// parser so phrase names and literals resolve exactly as first authored.
// Dependents on a closed cycle are stamped with CircularDependency rather
// than re-evaluated, so a cycle never resolves to a numeric value; their
// own dependents then re-evaluate against that error and surface it.
func propagate(ctx *Context, name string) {
	for _, dep := range ctx.Vars.DependentsOf(name) {
		if ctx.Vars.IsCircular(dep) {
			ctx.Vars.SetValue(dep, value.NewError(
				string(ncerrors.KindCircularDependency),
				fmt.Sprintf(ncerrors.MsgCircularDependency, dep)))
			continue
		}
		rec, ok := ctx.Vars.Record(dep)
		if !ok {
			continue
		}
		parsed := parser.ParseLineInContext(fmt.Sprintf("%s = %s", dep, rec.RawSource), 0, ctx.Reg, ctx.KnownName)
		va, ok := parsed.(*ast.VariableAssignmentLine)
		if !ok {
			continue
		}
		v, err := ctx.Eval(va.Value)
		if err != nil {
			v = value.NewError(errKind(err), err.Error())
		}
		ctx.Vars.SetValue(dep, v)
	}
}

func errKind(err error) string {
	if e, ok := ncerrors.As(err); ok {
		return string(e.Kind)
	}
	return string(ncerrors.KindSyntax)
}

// ---- combined assignment ----

type combinedAssignmentEvaluator struct{}

func (combinedAssignmentEvaluator) Name() string { return "combinedAssignment" }

func (combinedAssignmentEvaluator) CanHandle(line ast.Line) bool {
	_, ok := line.(*ast.CombinedAssignmentLine)
	return ok
}

func (combinedAssignmentEvaluator) Evaluate(line ast.Line, ctx *Context) RenderNode {
	ca := line.(*ast.CombinedAssignmentLine)
	v, node := assign(ctx, ca.Name.Value, ca.Value, ca.Raw, ca.Line)
	if node != nil {
		return *node
	}
	expr := DisplayExpression(ca.Raw)
	return RenderNode{
		Kind:        RenderCombined,
		Name:        ca.Name.Value,
		Expression:  expr,
		Result:      v,
		DisplayText: ca.Name.Value + " = " + expr + " => " + ctx.Fmt.Value(v),
	}
}

// ---- equation recording ----

type equationEvaluator struct{}

func (equationEvaluator) Name() string { return "equation" }

func (equationEvaluator) CanHandle(line ast.Line) bool {
	_, ok := line.(*ast.EquationLine)
	return ok
}

func (equationEvaluator) Evaluate(line ast.Line, ctx *Context) RenderNode {
	eq := line.(*ast.EquationLine)
	free := append(equation.FreeVariables(eq.Left), equation.FreeVariables(eq.Right)...)
	ctx.Equations.Add(equation.Record{
		LineNumber: eq.Line,
		LHS:        eq.Left,
		RHS:        eq.Right,
		FreeVars:   free,
	})
	return RenderNode{Kind: RenderPlainText, DisplayText: eq.String()}
}

// ---- solve ----

type solveEvaluator struct{}

func (solveEvaluator) Name() string { return "solve" }

func (solveEvaluator) CanHandle(line ast.Line) bool {
	if _, ok := line.(*ast.SolveLine); ok {
		return true
	}
	// Every bare identifier line is claimed here: Evaluate renders a
	// variable that has a concrete value and treats any other as an
	// implicit solve request.
	el, ok := line.(*ast.ExpressionLine)
	if !ok {
		return false
	}
	_, isIdent := el.Value.(*ast.Identifier)
	return isIdent
}

func (solveEvaluator) Evaluate(line ast.Line, ctx *Context) RenderNode {
	switch n := line.(type) {
	case *ast.SolveLine:
		return solveExplicit(n, ctx)
	case *ast.ExpressionLine:
		ident := n.Value.(*ast.Identifier)
		// A concretely-valued variable renders directly.
		if v, ok := ctx.lookup(ident.Value); ok {
			if _, symbolic := v.(value.Symbolic); !symbolic {
				return RenderNode{
					Kind:        RenderMathResult,
					Expression:  DisplayExpression(n.Raw),
					Result:      v,
					DisplayText: DisplayExpression(n.Raw) + " => " + ctx.Fmt.Value(v),
				}
			}
		}
		v, err := ctx.solveVariable(ident.Value, n.Line, map[string]bool{})
		if err != nil {
			return errorRender(n.Raw, err)
		}
		return RenderNode{
			Kind:        RenderMathResult,
			Expression:  DisplayExpression(n.Raw),
			Result:      v,
			DisplayText: DisplayExpression(n.Raw) + " => " + ctx.Fmt.Value(v),
		}
	}
	return RenderNode{Kind: RenderPlainText, DisplayText: line.String()}
}

func solveExplicit(sl *ast.SolveLine, ctx *Context) RenderNode {
	var rec equation.Record
	var err error
	if sl.Equation != nil {
		free := append(equation.FreeVariables(sl.Equation.Left), equation.FreeVariables(sl.Equation.Right)...)
		rec = equation.Record{LineNumber: sl.Line, LHS: sl.Equation.Left, RHS: sl.Equation.Right, FreeVars: free}
	} else {
		rec, err = ctx.Equations.Unique(sl.Variable)
		if err != nil {
			return errorRender(sl.String(), err)
		}
	}

	bindings := map[string]value.Value{}
	for _, assumption := range sl.Assumptions {
		ident, ok := assumption.Left.(*ast.Identifier)
		if !ok {
			return errorRender(sl.String(), ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgUnexpectedToken, assumption.Left.String()))
		}
		v, aerr := ctx.Eval(assumption.Right)
		if aerr != nil {
			return errorRender(sl.String(), aerr)
		}
		bindings[ident.Value] = v
	}
	if len(bindings) > 0 {
		ctx.pushScope(bindings)
		defer ctx.popScope()
	}

	v, err := ctx.solveRecord(sl.Variable, sl.Line, rec, map[string]bool{})
	if err != nil {
		return errorRender(sl.String(), err)
	}
	return RenderNode{
		Kind:        RenderMathResult,
		Name:        sl.Variable,
		Expression:  sl.String(),
		Result:      v,
		DisplayText: sl.String() + " => " + ctx.Fmt.Value(v),
	}
}

// solveVariable isolates target from the nearest equation above lineNo,
// recursively solving other unknowns by substitution. visiting guards
// against mutually-defined targets.
func (c *Context) solveVariable(target string, lineNo int, visiting map[string]bool) (value.Value, error) {
	if visiting[target] {
		return nil, ncerrors.New(ncerrors.KindCircularDependency, ncerrors.MsgCircularDependency, target)
	}
	visiting[target] = true
	defer delete(visiting, target)

	rec, err := c.Equations.NearestAbove(target, lineNo)
	if err != nil {
		return nil, err
	}
	return c.solveRecord(target, lineNo, rec, visiting)
}

func (c *Context) solveRecord(target string, lineNo int, rec equation.Record, visiting map[string]bool) (value.Value, error) {
	solver := equation.Solver{
		Law: c.Law,
		Eval: func(e ast.Expression) (value.Value, error) {
			return c.evalSubstituting(e, lineNo, visiting)
		},
	}
	return solver.Solve(target, rec)
}

// evalSubstituting evaluates a target-free subexpression, solving any
// still-unknown free variables from the equation store first.
func (c *Context) evalSubstituting(e ast.Expression, lineNo int, visiting map[string]bool) (value.Value, error) {
	bindings := map[string]value.Value{}
	for _, name := range equation.FreeVariables(e) {
		if v, ok := c.lookup(name); ok {
			if _, symbolic := v.(value.Symbolic); !symbolic {
				continue
			}
		}
		if _, _, err := c.Reg.Resolve(name); err == nil {
			continue // a unit symbol, not a variable
		}
		v, err := c.solveVariable(name, lineNo, visiting)
		if err != nil {
			return nil, err
		}
		bindings[name] = v
	}
	if len(bindings) > 0 {
		c.pushScope(bindings)
		defer c.popScope()
	}
	return c.Eval(e)
}

// ---- bare expression ----

type expressionEvaluator struct{}

func (expressionEvaluator) Name() string { return "expression" }

func (expressionEvaluator) CanHandle(line ast.Line) bool {
	_, ok := line.(*ast.ExpressionLine)
	return ok
}

func (expressionEvaluator) Evaluate(line ast.Line, ctx *Context) RenderNode {
	el := line.(*ast.ExpressionLine)
	v, err := ctx.Eval(el.Value)
	if err != nil {
		return errorRender(el.Raw, err)
	}
	expr := DisplayExpression(el.Raw)
	return RenderNode{
		Kind:        RenderMathResult,
		Expression:  expr,
		Result:      v,
		DisplayText: expr + " => " + ctx.Fmt.Value(v),
	}
}

// ---- parser-reported errors ----

type errorLineEvaluator struct{}

func (errorLineEvaluator) Name() string { return "errorLine" }

func (errorLineEvaluator) CanHandle(line ast.Line) bool {
	_, ok := line.(*ast.ErrorLine)
	return ok
}

func (errorLineEvaluator) Evaluate(line ast.Line, ctx *Context) RenderNode {
	el := line.(*ast.ErrorLine)
	kind := ncerrors.KindSyntax
	if strings.Contains(el.Message, "thousands separators") {
		kind = ncerrors.KindGroupingInInput
	}
	return RenderNode{
		Kind:        RenderError,
		Expression:  DisplayExpression(el.Text),
		ErrKind:     string(kind),
		DisplayText: "⚠️ " + el.Message,
	}
}

// ---- plain text ----

type plainTextEvaluator struct{}

func (plainTextEvaluator) Name() string { return "plainText" }

func (plainTextEvaluator) CanHandle(line ast.Line) bool {
	_, ok := line.(*ast.PlainTextLine)
	return ok
}

func (plainTextEvaluator) Evaluate(line ast.Line, ctx *Context) RenderNode {
	pt := line.(*ast.PlainTextLine)
	return RenderNode{Kind: RenderPlainText, DisplayText: pt.Text}
}
