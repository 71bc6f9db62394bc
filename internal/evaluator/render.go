package evaluator

import (
	"regexp"

	"github.com/nmaxcom/smartpad-go/internal/value"
)

// RenderKind identifies a render node variant (spec.md §6.2).
type RenderKind string

const (
	RenderPlainText  RenderKind = "plainText"
	RenderVariable   RenderKind = "variable"
	RenderMathResult RenderKind = "mathResult"
	RenderCombined   RenderKind = "combined"
	RenderError      RenderKind = "error"
	RenderPlotView   RenderKind = "plotView"
)

// RenderNode is the engine's output for one evaluated line: the typed
// result (when any) plus the display string the UI shows verbatim.
type RenderNode struct {
	Kind        RenderKind
	Name        string // variable/combined: the bound name
	Expression  string // source expression text, placeholders resolved
	Result      value.Value
	ErrKind     string // error nodes: the spec.md §7 error kind
	DisplayText string
}

var refDisplayPattern = regexp.MustCompile(`__sp_ref_[a-z0-9]+__`)

// DisplayExpression rewrites reference placeholders to the literal
// "result" so the opaque lexeme never reaches the user (spec.md §6.3).
func DisplayExpression(raw string) string {
	return refDisplayPattern.ReplaceAllString(raw, "result")
}
