package evaluator

import (
	"strings"
	"testing"
	"time"

	"github.com/nmaxcom/smartpad-go/internal/ast"
	"github.com/nmaxcom/smartpad-go/internal/equation"
	"github.com/nmaxcom/smartpad-go/internal/format"
	"github.com/nmaxcom/smartpad-go/internal/parser"
	"github.com/nmaxcom/smartpad-go/internal/store"
	"github.com/nmaxcom/smartpad-go/internal/units"
	"github.com/nmaxcom/smartpad-go/internal/value"
)

type sheet struct {
	ctx      *Context
	registry *Registry
	lineNo   int
}

func newSheet() *sheet {
	reg := units.NewRegistry()
	vars := store.New()
	vars.SetClock(func() time.Time { return time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC) })
	ctx := NewContext(reg, vars, NewFunctionStore(), equation.NewStore(), format.New(format.DefaultOptions(), reg))
	ctx.Clock = func() time.Time { return time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC) }
	return &sheet{ctx: ctx, registry: NewRegistry()}
}

// run evaluates one line and returns its render node.
func (s *sheet) run(t *testing.T, text string) RenderNode {
	t.Helper()
	s.lineNo++
	line := parser.ParseLineInContext(text, s.lineNo, s.ctx.Reg, s.ctx.KnownName)
	return s.registry.Dispatch(line, s.ctx)
}

// runAt re-evaluates a line at an explicit line number (reactive updates).
func (s *sheet) runAt(t *testing.T, text string, lineNo int) RenderNode {
	t.Helper()
	line := parser.ParseLineInContext(text, lineNo, s.ctx.Reg, s.ctx.KnownName)
	return s.registry.Dispatch(line, s.ctx)
}

func wantDisplay(t *testing.T, node RenderNode, want string) {
	t.Helper()
	if node.DisplayText != want {
		t.Errorf("DisplayText = %q, want %q", node.DisplayText, want)
	}
}

func wantContains(t *testing.T, node RenderNode, want string) {
	t.Helper()
	if !strings.Contains(node.DisplayText, want) {
		t.Errorf("DisplayText = %q, want contains %q", node.DisplayText, want)
	}
}

// Scenario 1 (spec.md §8): reactive propagation.
func TestReactivePropagation(t *testing.T) {
	s := newSheet()
	s.run(t, "price = 3")
	s.run(t, "qty = 2")
	node := s.run(t, "total = price * qty =>")
	wantDisplay(t, node, "total = price * qty => 6")

	s.runAt(t, "price = 4", 1)
	if v, _ := s.ctx.Vars.Get("total"); v.(value.Number).V != 8 {
		t.Fatalf("total = %v after price change, want 8", v)
	}
	node = s.runAt(t, "total = price * qty =>", 3)
	wantDisplay(t, node, "total = price * qty => 8")
}

// Scenario 2: currency and percentage.
func TestCurrencyAndPercentage(t *testing.T) {
	s := newSheet()
	s.run(t, "HrsPerMonth = 160")
	s.run(t, "RatePerHour = $4")
	s.run(t, "Cost = HrsPerMonth * RatePerHour")
	node := s.run(t, "Total = Cost + Cost * 5% =>")
	wantDisplay(t, node, "Total = Cost + Cost * 5% => $672")
}

// Scenario 3: unit conversion.
func TestUnitConversion(t *testing.T) {
	s := newSheet()
	wantContains(t, s.run(t, "100 ft to m =>"), "30.48 m")
	wantContains(t, s.run(t, "1 km + 500 m =>"), "1.5 km")
}

// Scenario 4: alias and scaled rate.
func TestAliasAndRate(t *testing.T) {
	s := newSheet()
	s.run(t, "workweek = 40 h")
	wantContains(t, s.run(t, "2 workweeks to h =>"), "80 h")

	s2 := newSheet()
	wantContains(t, s2.run(t, "4 m * $8/ft =>"), "$104.986")
}

// Scenario 5: list aggregation with where.
func TestListWhereAndSum(t *testing.T) {
	s := newSheet()
	s.run(t, "costs = $12, $15, $9, $100")
	wantContains(t, s.run(t, "sum(costs where > $10) =>"), "$127")
	wantContains(t, s.run(t, "costs where > $10 =>"), "$12, $15, $100")
}

// Scenario 6: implicit solve.
func TestImplicitSolve(t *testing.T) {
	s := newSheet()
	s.run(t, "distance = v * time")
	s.run(t, "distance = 40 m")
	s.run(t, "time = 2 s")
	wantContains(t, s.run(t, "v =>"), "20 m/s")

	s2 := newSheet()
	s2.run(t, "distance = v * time")
	s2.run(t, "distance = 40 m")
	s2.run(t, "time = 0 s")
	node := s2.run(t, "v =>")
	if node.Kind != RenderError {
		t.Fatalf("node = %+v, want error", node)
	}
	wantContains(t, node, "ivision by zero")
}

func TestExplicitSolve(t *testing.T) {
	s := newSheet()
	s.run(t, "2 * x + 3 = 11")
	node := s.run(t, "solve for x")
	wantContains(t, node, "4")
	if node.Kind != RenderMathResult {
		t.Fatalf("kind = %v", node.Kind)
	}
}

func TestSolveInlineEquation(t *testing.T) {
	s := newSheet()
	node := s.run(t, "solve x in x ^ 2 = 9, y = 1 where x > 0 =>")
	wantContains(t, node, "3")
}

func TestPercentForms(t *testing.T) {
	s := newSheet()
	wantContains(t, s.run(t, "15% of 200 =>"), "30")
	wantContains(t, s.run(t, "10% on 500 =>"), "550")
	wantContains(t, s.run(t, "10% off 500 =>"), "450")
	wantContains(t, s.run(t, "500 - 10% - 5% =>"), "427.5")
	wantContains(t, s.run(t, "50 / 200 as % =>"), "25%")
}

// of/on/off bind at the precedence of '*', tighter than '+'/'-'.
func TestPercentBindersBindTighterThanSum(t *testing.T) {
	s := newSheet()
	wantContains(t, s.run(t, "50 + 10% of 200 =>"), "70")
	wantContains(t, s.run(t, "100 - 50% of 100 =>"), "50")
	wantContains(t, s.run(t, "10 + 10% on 100 =>"), "120")
	wantContains(t, s.run(t, "10 + 10% off 100 =>"), "100")
}

func TestDates(t *testing.T) {
	s := newSheet()
	wantContains(t, s.run(t, "2026-08-02 + 3 days =>"), "2026-08-05")
	wantContains(t, s.run(t, "2026-08-31 + 1 month =>"), "2026-09-30")
	// 2026-08-07 is a Friday; 3 business days later is Wednesday.
	wantContains(t, s.run(t, "2026-08-07 + 3 business days =>"), "2026-08-12")
	wantContains(t, s.run(t, "2026-08-10 - 2026-08-02 =>"), "8 days")
	wantContains(t, s.run(t, "today =>"), "2026-08-02")
}

func TestTimes(t *testing.T) {
	s := newSheet()
	wantContains(t, s.run(t, "23:00 + 2 h =>"), "01:00 (+1 day)")
	node := s.run(t, "12:00 + 13:00 =>")
	if node.Kind != RenderError {
		t.Fatalf("Time + Time should error, got %+v", node)
	}
}

func TestTemperatures(t *testing.T) {
	s := newSheet()
	wantContains(t, s.run(t, "30 C to F =>"), "86 F")
	wantContains(t, s.run(t, "20 C + 5 K =>"), "25 C")
	wantContains(t, s.run(t, "50 C - 20 C =>"), "30 C")
	if node := s.run(t, "20 C + 15 C =>"); node.Kind != RenderError {
		t.Error("adding two absolute temperatures must error")
	}
}

func TestDurations(t *testing.T) {
	s := newSheet()
	wantContains(t, s.run(t, "1 h + 61 min =>"), "2 h 1 min")
	wantContains(t, s.run(t, "90 min to h =>"), "1.5 h")
}

func TestRangesAndIndexing(t *testing.T) {
	s := newSheet()
	s.run(t, "xs = 1..5")
	wantContains(t, s.run(t, "sum(xs) =>"), "15")
	wantContains(t, s.run(t, "xs[2] =>"), "2")
	wantContains(t, s.run(t, "xs[-1] =>"), "5")
	wantContains(t, s.run(t, "xs[2..4] =>"), "2, 3, 4")

	if node := s.run(t, "xs[0] =>"); node.Kind != RenderError {
		t.Error("index 0 must error")
	}
	if node := s.run(t, "xs[9] =>"); node.Kind != RenderError {
		t.Error("out-of-range index must error")
	}
	if node := s.run(t, "1..10 step -1 =>"); node.Kind != RenderError {
		t.Error("step sign mismatch must error")
	}
}

func TestAggregators(t *testing.T) {
	s := newSheet()
	s.run(t, "xs = 3, 1, 2")
	wantContains(t, s.run(t, "min(xs) =>"), "1")
	wantContains(t, s.run(t, "max(xs) =>"), "3")
	wantContains(t, s.run(t, "avg(xs) =>"), "2")
	wantContains(t, s.run(t, "median(xs) =>"), "2")
	wantContains(t, s.run(t, "sort(xs) =>"), "1, 2, 3")
	wantContains(t, s.run(t, "sort(xs, desc) =>"), "3, 2, 1")
	wantContains(t, s.run(t, "count(xs) =>"), "3")

	if node := s.run(t, "avg(5) =>"); node.Kind != RenderError {
		t.Error("avg on a scalar must error")
	}
}

func TestListEqualityTolerance(t *testing.T) {
	s := newSheet()
	s.run(t, "xs = 0.1 + 0.2, 1")
	wantContains(t, s.run(t, "xs where == 0.3 =>"), "0.3")
}

func TestUserFunctions(t *testing.T) {
	s := newSheet()
	s.run(t, "tip(bill, rate = 20%) = bill * rate")
	wantContains(t, s.run(t, "tip(50) =>"), "10")
	wantContains(t, s.run(t, "tip(rate: 10%, bill: 50) =>"), "5")

	if node := s.run(t, "tip(rate: 10%) =>"); node.Kind != RenderError {
		t.Error("missing required argument must error")
	}
	if node := s.run(t, "tip(50, bogus: 1) =>"); node.Kind != RenderError {
		t.Error("unknown named argument must error")
	}
}

func TestDynamicScope(t *testing.T) {
	s := newSheet()
	s.run(t, "rate = 10%")
	s.run(t, "fee(bill) = bill * rate")
	wantContains(t, s.run(t, "fee(100) =>"), "10")
	s.runAt(t, "rate = 20%", 1)
	wantContains(t, s.run(t, "fee(100) =>"), "20")
}

func TestGroupingRejectedInInput(t *testing.T) {
	s := newSheet()
	node := s.run(t, "x = 1,000")
	if node.Kind != RenderError || node.ErrKind != "GroupingInInput" {
		t.Fatalf("node = %+v, want GroupingInInput error", node)
	}
}

func TestCircularDependency(t *testing.T) {
	s := newSheet()
	s.run(t, "a = 1")
	s.run(t, "b = a + 1")
	s.run(t, "c = b + 1")
	node := s.runAt(t, "a = b + 1", 1)
	if node.Kind != RenderError || node.ErrKind != "CircularDependency" {
		t.Fatalf("node = %+v, want CircularDependency", node)
	}
	if !s.ctx.Vars.IsCircular("a") || !s.ctx.Vars.IsCircular("b") {
		t.Error("both cycle members must be flagged")
	}
	// No node on the cycle may keep a numeric value, and dependents that
	// transitively required the errored value surface errors too.
	if v, _ := s.ctx.Vars.Get("b"); v.Kind() != value.KindError {
		t.Errorf("b = %v, want error value on the cycle", v)
	}
	if v, _ := s.ctx.Vars.Get("c"); v.Kind() != value.KindError {
		t.Errorf("c = %v, want error surfaced to the downstream dependent", v)
	}
}

func TestSymbolicUntilDefined(t *testing.T) {
	s := newSheet()
	node := s.run(t, "net = gross - costs2")
	if node.Kind != RenderVariable {
		t.Fatalf("node = %+v", node)
	}
	if _, ok := node.Result.(value.Symbolic); !ok {
		t.Fatalf("Result = %T, want Symbolic", node.Result)
	}
}

func TestReferencePlaceholder(t *testing.T) {
	s := newSheet()
	s.ctx.Vars.Set("__sp_ref_ab12__", "", value.Number{V: 7}, nil)
	node := s.run(t, "__sp_ref_ab12__ * 2 =>")
	wantDisplay(t, node, "result * 2 => 14")
	if strings.Contains(node.DisplayText, "__sp_ref_") {
		t.Error("placeholder leaked to display")
	}
}

func TestPhraseVariables(t *testing.T) {
	s := newSheet()
	s.run(t, "base plan = 40")
	wantContains(t, s.run(t, "base plan * 2 =>"), "80")
}

func TestDivisionAndOverflowGuards(t *testing.T) {
	s := newSheet()
	if node := s.run(t, "5 / 0 =>"); node.Kind != RenderError || node.ErrKind != "DivisionByZero" {
		t.Error("5 / 0 must error")
	}
	if node := s.run(t, "5 mod 0 =>"); node.Kind != RenderError {
		t.Error("mod 0 must error")
	}
	if node := s.run(t, "sqrt(0 - 1) =>"); node.Kind != RenderError {
		t.Error("sqrt(-1) must error")
	}
}

func TestImplicitMultiplication(t *testing.T) {
	s := newSheet()
	wantContains(t, s.run(t, "2(3+4) =>"), "14")
	s.run(t, "x2 = 5")
	wantContains(t, s.run(t, "2 x2 + 1 =>"), "11")
}

func TestEvaluatorRegistryOrder(t *testing.T) {
	// A function definition must win over assignment classification.
	s := newSheet()
	line := parser.ParseLine("f(x) = x * 2", 1, s.ctx.Reg)
	if _, ok := line.(*ast.FunctionDefinitionLine); !ok {
		t.Fatalf("parse = %T", line)
	}
	node := s.registry.Dispatch(line, s.ctx)
	if node.Kind != RenderPlainText || !s.ctx.Funcs.Has("f") {
		t.Fatalf("dispatch = %+v", node)
	}
}
