// Package value implements the semantic value taxonomy (spec.md §3.4): a
// tagged-variant Value carrying numeric arithmetic, unit/currency info, and
// display rendering, with a centralized arithmetic law table (spec.md §9:
// "centralize the law tables to keep arithmetic invariants auditable").
//
// Grounded directly on the teacher's internal/interp/value.go Value
// interface (Type()/String() per variant struct), generalized from
// DWScript's Integer/Float/String/Boolean variants to the notebook
// calculator's Number/Percentage/Currency/Unit/CurrencyUnit/Duration/Date/
// Time/List/Symbolic/Error variants.
package value

import (
	"fmt"
	"strings"

	"github.com/nmaxcom/smartpad-go/internal/quantity"
	"github.com/nmaxcom/smartpad-go/internal/units"
)

// Kind tags a Value's variant.
type Kind string

const (
	KindNumber       Kind = "Number"
	KindPercentage   Kind = "Percentage"
	KindCurrency     Kind = "Currency"
	KindUnit         Kind = "Unit"
	KindCurrencyUnit Kind = "CurrencyUnit"
	KindDuration     Kind = "Duration"
	KindDate         Kind = "Date"
	KindTime         Kind = "Time"
	KindList         Kind = "List"
	KindSymbolic     Kind = "Symbolic"
	KindError        Kind = "Error"
)

// Value is the interface every variant implements (spec.md §3.4): its
// Kind tag and its display string. Arithmetic lives in Law.
type Value interface {
	Kind() Kind
	String() string
}

// Numeric is implemented by variants with a single scalar numeric value,
// used by list aggregation and comparisons to extract a float64
// irrespective of variant.
type Numeric interface {
	Value
	Numeric() float64
}

// ---- Number ----

type Number struct{ V float64 }

func (n Number) Kind() Kind       { return KindNumber }
func (n Number) Numeric() float64 { return n.V }
func (n Number) String() string   { return formatFloat(n.V) }

// ---- Percentage ----

// Percentage carries the percent value itself (15 means "15%"), not the
// 0.15 fraction -- spec.md §3.4.
type Percentage struct{ V float64 }

func (p Percentage) Kind() Kind        { return KindPercentage }
func (p Percentage) Numeric() float64  { return p.V }
func (p Percentage) String() string    { return formatFloat(p.V) + "%" }
func (p Percentage) Fraction() float64 { return p.V / 100 }

// ---- Currency ----

type Currency struct {
	Symbol string
	V      float64
}

func (c Currency) Kind() Kind       { return KindCurrency }
func (c Currency) Numeric() float64 { return c.V }
func (c Currency) String() string   { return c.Symbol + formatFloat(c.V) }

// ---- Unit (Quantity) ----

type UnitValue struct {
	Q quantity.Quantity
}

func (u UnitValue) Kind() Kind       { return KindUnit }
func (u UnitValue) Numeric() float64 { return u.Q.Value }
func (u UnitValue) String() string {
	if u.Q.Unit.Dimensionless() {
		return formatFloat(u.Q.Value)
	}
	return formatFloat(u.Q.Value) + " " + u.Q.Unit.String()
}

// ---- CurrencyUnit ----

// CurrencyUnit represents a scaled currency rate, e.g. "$8/m^2" (spec.md
// §3.4). IsRate distinguishes a rate ($/unit) from a simple scaled amount.
type CurrencyUnit struct {
	Symbol  string
	V       float64
	PerUnit units.Composite
	IsRate  bool
}

func (c CurrencyUnit) Kind() Kind       { return KindCurrencyUnit }
func (c CurrencyUnit) Numeric() float64 { return c.V }
func (c CurrencyUnit) String() string {
	if c.PerUnit.Dimensionless() {
		return c.Symbol + formatFloat(c.V)
	}
	return fmt.Sprintf("%s%s/%s", c.Symbol, formatFloat(c.V), c.PerUnit.String())
}

// ---- Duration ----

// Duration stores normalized seconds; sign is preserved (spec.md §3.4).
type Duration struct {
	Seconds float64
	// AuthoredUnit is the largest unit the user originally wrote, honored
	// by the formatter when set (spec.md §4.13).
	AuthoredUnit string
}

func (d Duration) Kind() Kind       { return KindDuration }
func (d Duration) Numeric() float64 { return d.Seconds }
func (d Duration) String() string   { return formatDuration(d.Seconds) }

// ---- Date ----

// Date is a civil date with an optional time-of-day and zone. DateOnly
// forbids time arithmetic (spec.md §3.4).
type Date struct {
	Year, Month, Day int
	HasTime          bool
	Hour, Min, Sec   int
	Zone             string // "", "UTC", or "+HH:MM"/"-HH:MM"
}

func (d Date) Kind() Kind { return KindDate }
func (d Date) String() string {
	s := fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	if d.HasTime {
		s += fmt.Sprintf(" %02d:%02d", d.Hour, d.Min)
		if d.Zone != "" {
			s += " " + d.Zone
		}
	}
	return s
}

// ---- Time ----

// Time is a time-of-day value; DayCarry records rollover from Time+Duration
// arithmetic (spec.md §4.7).
type Time struct {
	Hour, Min, Sec int
	DayCarry       int
}

func (t Time) Kind() Kind { return KindTime }

// ---- List ----

type List struct {
	Items []Value
}

func (l List) Kind() Kind { return KindList }
func (l List) String() string {
	if len(l.Items) == 0 {
		return "()"
	}
	parts := make([]string, len(l.Items))
	for i, v := range l.Items {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

// ---- Symbolic ----

// Symbolic is produced when a dependency is undefined: a deferred
// expression plus the free variable names it still needs (spec.md §3.4).
type Symbolic struct {
	Expr     string
	FreeVars []string
}

func (s Symbolic) Kind() Kind     { return KindSymbolic }
func (s Symbolic) String() string { return s.Expr }

// ---- Error ----

type ErrorValue struct {
	ErrKind string
	Message string
}

func (e ErrorValue) Kind() Kind     { return KindError }
func (e ErrorValue) String() string { return "⚠️ " + e.Message }

// NewError builds an ErrorValue, the Value-level representation of a
// failure (spec.md §7: "errors in a value short-circuit arithmetic").
func NewError(kind, message string) ErrorValue {
	return ErrorValue{ErrKind: kind, Message: message}
}

func formatFloat(v float64) string {
	s := fmt.Sprintf("%g", v)
	return s
}
