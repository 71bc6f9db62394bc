// Package engine is the embeddable public surface of the notebook
// calculator (spec.md §6.1): line/content parsing, evaluation against a
// per-sheet reactive context, and the documented context options.
//
// Grounded on the teacher repo's pkg/dwscript embeddable engine
// (New(opts...) constructor over an internal interpreter, functional
// options, pure Eval methods) and internal/interp/runner's wiring
// constructor that keeps the lower packages decoupled.
package engine

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nmaxcom/smartpad-go/internal/ast"
	"github.com/nmaxcom/smartpad-go/internal/equation"
	"github.com/nmaxcom/smartpad-go/internal/evaluator"
	"github.com/nmaxcom/smartpad-go/internal/format"
	"github.com/nmaxcom/smartpad-go/internal/fx"
	"github.com/nmaxcom/smartpad-go/internal/parser"
	"github.com/nmaxcom/smartpad-go/internal/store"
	"github.com/nmaxcom/smartpad-go/internal/units"
)

// RenderNode is re-exported for engine consumers.
type RenderNode = evaluator.RenderNode

// Options are the spec.md §6.1 context options with their defaults.
type Options struct {
	DecimalPlaces            int
	GroupThousands           bool
	ScientificUpperThreshold float64
	ScientificLowerThreshold float64
	DateLocale               string
	DateDisplayFormat        string // "iso" or "locale"
	ListMaxLength            int
	FXSnapshot               *fx.Snapshot
	Clock                    func() time.Time
	// Trace, when set, receives one line per evaluated node. The engine
	// never logs anywhere else (teacher convention: output goes to an
	// injected writer, failures go to structured errors).
	Trace io.Writer
}

func defaultOptions() Options {
	return Options{
		DecimalPlaces:            6,
		ScientificUpperThreshold: 1e12,
		ScientificLowerThreshold: 1e-4,
		DateDisplayFormat:        "iso",
		ListMaxLength:            100,
		Clock:                    time.Now,
	}
}

// Option mutates engine Options, teacher-style functional configuration.
type Option func(*Options)

func WithDecimalPlaces(n int) Option        { return func(o *Options) { o.DecimalPlaces = n } }
func WithGroupThousands(on bool) Option     { return func(o *Options) { o.GroupThousands = on } }
func WithDateLocale(locale string) Option   { return func(o *Options) { o.DateLocale = locale } }
func WithDateDisplayFormat(f string) Option { return func(o *Options) { o.DateDisplayFormat = f } }
func WithListMaxLength(n int) Option        { return func(o *Options) { o.ListMaxLength = n } }
func WithFXSnapshot(s *fx.Snapshot) Option  { return func(o *Options) { o.FXSnapshot = s } }
func WithClock(clock func() time.Time) Option {
	return func(o *Options) { o.Clock = clock }
}
func WithTrace(w io.Writer) Option { return func(o *Options) { o.Trace = w } }
func WithScientificThresholds(lower, upper float64) Option {
	return func(o *Options) {
		o.ScientificLowerThreshold = lower
		o.ScientificUpperThreshold = upper
	}
}

// Engine owns one sheet's stores and evaluation context. Engines share no
// mutable state with each other; callers linearize mutations per engine
// (spec.md §5).
type Engine struct {
	opts     Options
	reg      *units.Registry
	vars     *store.Store
	funcs    *evaluator.FunctionStore
	eqs      *equation.Store
	ctx      *evaluator.Context
	registry *evaluator.Registry
}

// New builds an Engine with fresh stores and the given options.
func New(opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	reg := units.NewRegistry()
	vars := store.New()
	vars.SetClock(o.Clock)
	funcs := evaluator.NewFunctionStore()
	eqs := equation.NewStore()

	f := format.New(format.Options{
		DecimalPlaces:     o.DecimalPlaces,
		GroupThousands:    o.GroupThousands,
		ScientificUpper:   o.ScientificUpperThreshold,
		ScientificLower:   o.ScientificLowerThreshold,
		DateLocale:        o.DateLocale,
		DateDisplayFormat: o.DateDisplayFormat,
	}, reg)

	ctx := evaluator.NewContext(reg, vars, funcs, eqs, f)
	ctx.FX = o.FXSnapshot
	ctx.ListMaxLength = o.ListMaxLength
	ctx.DateLocale = o.DateLocale
	ctx.Clock = o.Clock

	return &Engine{
		opts:     o,
		reg:      reg,
		vars:     vars,
		funcs:    funcs,
		eqs:      eqs,
		ctx:      ctx,
		registry: evaluator.NewRegistry(),
	}
}

// ParseLine classifies one line against the current sheet state.
func (e *Engine) ParseLine(text string, lineNumber int) ast.Line {
	return parser.ParseLineInContext(text, lineNumber, e.reg, e.ctx.KnownName)
}

// ParseContent parses a whole sheet body into ordered line nodes.
func (e *Engine) ParseContent(text string) *ast.Program {
	prog := &ast.Program{}
	for i, line := range strings.Split(text, "\n") {
		prog.Lines = append(prog.Lines, e.ParseLine(line, i+1))
	}
	return prog
}

// Evaluate runs one parsed line through the evaluator registry, writing
// any assignment side effects into the sheet stores.
func (e *Engine) Evaluate(line ast.Line) RenderNode {
	node := e.registry.Dispatch(line, e.ctx)
	if e.opts.Trace != nil {
		fmt.Fprintf(e.opts.Trace, "%3d %-12s %s\n", line.Pos().Line, node.Kind, node.DisplayText)
	}
	return node
}

// EvaluateLine parses and evaluates in one step.
func (e *Engine) EvaluateLine(text string, lineNumber int) RenderNode {
	return e.Evaluate(e.ParseLine(text, lineNumber))
}

// EvaluateSheet evaluates a full sheet: an optional YAML front-matter
// block configures display and aliases, then each line renders in order.
func (e *Engine) EvaluateSheet(text string) ([]RenderNode, error) {
	meta, body, err := ExtractFrontMatter(text)
	if err != nil {
		return nil, err
	}
	if meta != nil {
		if err := e.applyMeta(meta); err != nil {
			return nil, err
		}
	}

	var nodes []RenderNode
	for i, line := range strings.Split(body, "\n") {
		nodes = append(nodes, e.EvaluateLine(line, i+1))
	}
	return nodes, nil
}

// Variables exposes the sheet's variable store.
func (e *Engine) Variables() *store.Store {
	return e.vars
}

// Functions exposes the sheet's user-function store.
func (e *Engine) Functions() *evaluator.FunctionStore {
	return e.funcs
}

// DependencyDOT renders the variable dependency graph in Graphviz form.
func (e *Engine) DependencyDOT() string {
	return e.vars.Graph().DOT()
}
