// Package equation implements the ordered equation store and the
// single-unknown symbolic solver (spec.md §4.11): every recorded
// "lhs = rhs" fact is searchable by line number, and the solver isolates
// one free variable over a deliberately tiny expression grammar
// (add, sub, mul, div, integer pow, sqrt-when-safe, negate), refusing
// anything outside it rather than guessing.
package equation

import (
	"sort"

	"github.com/nmaxcom/smartpad-go/internal/ast"
	"github.com/nmaxcom/smartpad-go/internal/ncerrors"
)

// Record is one stored equation fact (spec.md §3.7).
type Record struct {
	LineNumber int
	LHS        ast.Expression
	RHS        ast.Expression
	FreeVars   []string
}

// Store keeps equation records ordered by line number.
type Store struct {
	records []Record
}

func NewStore() *Store {
	return &Store{}
}

// Add records an equation, replacing any previous record for the same
// line (re-evaluated lines overwrite, they don't accumulate).
func (s *Store) Add(rec Record) {
	for i, r := range s.records {
		if r.LineNumber == rec.LineNumber {
			s.records[i] = rec
			return
		}
	}
	s.records = append(s.records, rec)
	sort.SliceStable(s.records, func(i, j int) bool {
		return s.records[i].LineNumber < s.records[j].LineNumber
	})
}

// Len returns the number of stored equations.
func (s *Store) Len() int {
	return len(s.records)
}

// All returns the records in line order.
func (s *Store) All() []Record {
	return append([]Record{}, s.records...)
}

// mentions reports whether rec's free variables include target.
func (rec Record) mentions(target string) bool {
	for _, v := range rec.FreeVars {
		if v == target {
			return true
		}
	}
	return false
}

// NearestAbove finds the nearest equation mentioning target at or above
// the given line, the search order for an implicit "x =>" solve.
func (s *Store) NearestAbove(target string, line int) (Record, error) {
	for i := len(s.records) - 1; i >= 0; i-- {
		rec := s.records[i]
		if rec.LineNumber <= line && rec.mentions(target) {
			return rec, nil
		}
	}
	return Record{}, ncerrors.New(ncerrors.KindNoEquation, ncerrors.MsgNoEquation, target)
}

// Unique finds the single equation mentioning target anywhere in the
// sheet, the search used by an explicit "solve for x": more than one
// candidate is ambiguous and refused.
func (s *Store) Unique(target string) (Record, error) {
	var found []Record
	for _, rec := range s.records {
		if rec.mentions(target) {
			found = append(found, rec)
		}
	}
	switch len(found) {
	case 0:
		return Record{}, ncerrors.New(ncerrors.KindNoEquation, ncerrors.MsgNoEquation, target)
	case 1:
		return found[0], nil
	default:
		return Record{}, ncerrors.New(ncerrors.KindMultipleEquationsTarget, ncerrors.MsgMultipleEquationsTgt, target)
	}
}

// FreeVariables collects the distinct identifier names referenced by an
// expression, in first-appearance order. Function callees are not free
// variables; named-argument names are labels, not references.
func FreeVariables(expr ast.Expression) []string {
	var out []string
	seen := map[string]bool{}
	var walk func(e ast.Expression)
	walk = func(e ast.Expression) {
		switch n := e.(type) {
		case *ast.Identifier:
			if !seen[n.Value] {
				seen[n.Value] = true
				out = append(out, n.Value)
			}
		case *ast.BinaryExpression:
			walk(n.Left)
			walk(n.Right)
		case *ast.UnaryExpression:
			walk(n.Right)
		case *ast.GroupedExpression:
			walk(n.Inner)
		case *ast.RangeExpression:
			walk(n.Start)
			walk(n.End)
			if n.Step != nil {
				walk(n.Step)
			}
		case *ast.ListLiteral:
			for _, it := range n.Items {
				walk(it)
			}
		case *ast.CallExpression:
			for _, a := range n.Args {
				walk(a)
			}
		case *ast.NamedArgument:
			walk(n.Value)
		case *ast.IndexExpression:
			walk(n.List)
			walk(n.Index)
		case *ast.WhereExpression:
			walk(n.Source)
			walk(n.Predicate)
		case *ast.ComparisonExpression:
			if n.Left != nil {
				walk(n.Left)
			}
			if n.Right != nil {
				walk(n.Right)
			}
			if n.Upper != nil {
				walk(n.Upper)
			}
		case *ast.UnitConvertExpression:
			walk(n.Source)
		case *ast.RefLiteral:
			if !seen[n.Text] {
				seen[n.Text] = true
				out = append(out, n.Text)
			}
		}
	}
	if expr != nil {
		walk(expr)
	}
	return out
}

// Contains reports whether expr references target as a free variable.
func Contains(expr ast.Expression, target string) bool {
	for _, v := range FreeVariables(expr) {
		if v == target {
			return true
		}
	}
	return false
}
