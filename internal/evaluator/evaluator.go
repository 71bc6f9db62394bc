// Package evaluator dispatches parsed lines to domain evaluators and
// walks expressions into values (spec.md §4.12): an ordered registry where
// the first evaluator whose canHandle accepts a node wins, over a shared
// Context carrying the stores, registries, and guard limits.
//
// Grounded on the teacher repo's internal/interp evaluator dispatch
// (node-type switch over a shared interpreter context) and its
// builtins.Registry ordering pattern; the line-level reactive loop follows
// ZaninAndrea-calc_engine's per-line evaluation over an execution graph.
package evaluator

import (
	"time"

	"github.com/nmaxcom/smartpad-go/internal/ast"
	"github.com/nmaxcom/smartpad-go/internal/equation"
	"github.com/nmaxcom/smartpad-go/internal/format"
	"github.com/nmaxcom/smartpad-go/internal/fx"
	"github.com/nmaxcom/smartpad-go/internal/ncerrors"
	"github.com/nmaxcom/smartpad-go/internal/store"
	"github.com/nmaxcom/smartpad-go/internal/units"
	"github.com/nmaxcom/smartpad-go/internal/value"
)

// Context is the per-sheet evaluation context (spec.md §6.1): injected
// stores, display formatter, the optional FX snapshot, and the hard
// guards. All evaluation is synchronous and single-threaded per sheet.
type Context struct {
	Reg       *units.Registry
	Law       value.Law
	Vars      *store.Store
	Funcs     *FunctionStore
	Equations *equation.Store
	FX        *fx.Snapshot
	Fmt       *format.Formatter

	ListMaxLength     int
	MaxRecursionDepth int
	RangeMaxSize      int
	DateLocale        string
	Clock             func() time.Time

	depth  int
	locals []map[string]value.Value
}

// NewContext wires a Context with the documented defaults.
func NewContext(reg *units.Registry, vars *store.Store, funcs *FunctionStore, eqs *equation.Store, f *format.Formatter) *Context {
	return &Context{
		Reg:               reg,
		Law:               value.Law{Reg: reg},
		Vars:              vars,
		Funcs:             funcs,
		Equations:         eqs,
		Fmt:               f,
		ListMaxLength:     100,
		MaxRecursionDepth: 64,
		RangeMaxSize:      10000,
		Clock:             time.Now,
	}
}

// KnownName reports whether name is a defined variable or function; the
// parser consults this to gate phrase-identifier recognition.
func (c *Context) KnownName(name string) bool {
	return c.Vars.Has(name) || c.Funcs.Has(name)
}

func (c *Context) pushScope(bindings map[string]value.Value) {
	c.locals = append(c.locals, bindings)
}

func (c *Context) popScope() {
	c.locals = c.locals[:len(c.locals)-1]
}

// lookup resolves a name through the dynamic scope chain: innermost call
// frame first, then the sheet's variable store.
func (c *Context) lookup(name string) (value.Value, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if v, ok := c.locals[i][name]; ok {
			return v, true
		}
	}
	return c.Vars.Get(name)
}

// FunctionStore holds user-defined function definitions by name
// (spec.md §3.8). Redefinition replaces.
type FunctionStore struct {
	defs  map[string]*ast.FunctionDefinitionLine
	order []string
}

func NewFunctionStore() *FunctionStore {
	return &FunctionStore{defs: map[string]*ast.FunctionDefinitionLine{}}
}

func (fs *FunctionStore) Define(def *ast.FunctionDefinitionLine) {
	if _, ok := fs.defs[def.Name.Value]; !ok {
		fs.order = append(fs.order, def.Name.Value)
	}
	fs.defs[def.Name.Value] = def
}

func (fs *FunctionStore) Get(name string) (*ast.FunctionDefinitionLine, bool) {
	def, ok := fs.defs[name]
	return def, ok
}

func (fs *FunctionStore) Has(name string) bool {
	_, ok := fs.defs[name]
	return ok
}

func (fs *FunctionStore) Names() []string {
	return append([]string{}, fs.order...)
}

// Evaluator is one entry of the ordered dispatch registry (spec.md §4.12).
type Evaluator interface {
	Name() string
	CanHandle(line ast.Line) bool
	Evaluate(line ast.Line, ctx *Context) RenderNode
}

// Registry is the ordered evaluator list; the first CanHandle wins.
type Registry struct {
	evaluators []Evaluator
}

// NewRegistry builds the registry in dispatch order. Function definitions
// and solve requests outrank assignments, which outrank the plain-math
// fallback; the unit/currency, percentage, date, and list concerns of
// spec.md §4.12 are dispatched inside the shared expression walker, which
// every line evaluator funnels through.
func NewRegistry() *Registry {
	return &Registry{evaluators: []Evaluator{
		functionDefinitionEvaluator{},
		solveEvaluator{},
		combinedAssignmentEvaluator{},
		variableAssignmentEvaluator{},
		equationEvaluator{},
		expressionEvaluator{},
		errorLineEvaluator{},
		plainTextEvaluator{},
	}}
}

// Dispatch evaluates one line through the first matching evaluator.
func (r *Registry) Dispatch(line ast.Line, ctx *Context) RenderNode {
	for _, ev := range r.evaluators {
		if ev.CanHandle(line) {
			return ev.Evaluate(line, ctx)
		}
	}
	return RenderNode{Kind: RenderPlainText, DisplayText: line.String()}
}

// errorRender builds an error render node from an evaluation failure.
func errorRender(raw string, err error) RenderNode {
	kind := string(ncerrors.KindSyntax)
	if e, ok := ncerrors.As(err); ok {
		kind = string(e.Kind)
	}
	return RenderNode{
		Kind:        RenderError,
		Expression:  DisplayExpression(raw),
		ErrKind:     kind,
		DisplayText: "⚠️ " + err.Error(),
	}
}
