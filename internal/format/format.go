// Package format renders engine values for display (spec.md §4.13):
// numeric precision and scientific thresholds, optional thousands
// grouping, currency glyph-vs-code placement, SI prefix selection for
// unit scalars, locale dates, and compact datetime-list collapsing.
package format

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/nmaxcom/smartpad-go/internal/fx"
	"github.com/nmaxcom/smartpad-go/internal/units"
	"github.com/nmaxcom/smartpad-go/internal/value"
)

// Options are the display settings of spec.md §6.1, with their defaults.
type Options struct {
	DecimalPlaces   int
	GroupThousands  bool
	ScientificUpper float64
	ScientificLower float64
	// DateLocale selects the numeric day/month order ("en-US" puts the
	// month first, anything else the day). Empty means ISO only.
	DateLocale        string
	DateDisplayFormat string // "iso" (default) or "locale"
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		DecimalPlaces:     6,
		GroupThousands:    false,
		ScientificUpper:   1e12,
		ScientificLower:   1e-4,
		DateDisplayFormat: "iso",
	}
}

// Formatter renders Values under a fixed set of Options. The unit
// registry, when present, drives readable-SI-prefix selection for unit
// scalars that were not explicitly converted.
type Formatter struct {
	Opts Options
	Reg  *units.Registry
}

func New(opts Options, reg *units.Registry) *Formatter {
	return &Formatter{Opts: opts, Reg: reg}
}

// Number renders a dimensionless scalar: fixed-point with trailing zeros
// trimmed, switching to scientific notation outside the thresholds.
func (f *Formatter) Number(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	if abs >= f.Opts.ScientificUpper || abs < f.Opts.ScientificLower {
		s := strconv.FormatFloat(v, 'e', f.Opts.DecimalPlaces, 64)
		return trimScientificZeros(s)
	}
	s := strconv.FormatFloat(v, 'f', f.Opts.DecimalPlaces, 64)
	s = trimFractionZeros(s)
	if f.Opts.GroupThousands {
		s = groupThousands(s)
	}
	return s
}

// Currency renders an amount with a glyph prefix ("$672") or an ISO code
// suffix ("672 USD").
func (f *Formatter) Currency(symbol string, v float64) string {
	amount := f.Number(v)
	if fx.IsGlyph(symbol) {
		if v < 0 {
			return "-" + symbol + f.Number(-v)
		}
		return symbol + amount
	}
	return amount + " " + strings.ToUpper(symbol)
}

// Unit renders a quantity scalar. Single-factor units with no explicit
// conversion target are rescaled to a readable SI prefix when the value
// falls outside [0.01, 1000).
func (f *Formatter) Unit(v float64, unit units.Composite) string {
	if unit.Dimensionless() {
		return f.Number(v)
	}
	if len(unit.Factors) == 1 && unit.Factors[0].Power == 1 {
		sym, scaled := f.rescalePrefix(unit.Factors[0].Symbol, v)
		return f.Number(scaled) + " " + sym
	}
	return f.Number(v) + " " + unit.String()
}

// prefixLadder is the subset of SI prefixes the display policy walks when
// choosing a readable magnitude.
var prefixLadder = []struct {
	Symbol string
	Factor float64
}{
	{"n", 1e-9}, {"u", 1e-6}, {"m", 1e-3}, {"", 1}, {"k", 1e3}, {"M", 1e6}, {"G", 1e9}, {"T", 1e12},
}

// rescalePrefix picks an SI prefix keeping |value| within [0.01, 1000),
// staying put when the unit is unknown, affine, or already readable.
func (f *Formatter) rescalePrefix(symbol string, v float64) (string, float64) {
	abs := math.Abs(v)
	if f.Reg == nil || v == 0 || (abs >= 0.01 && abs < 1000) {
		return symbol, v
	}
	factor, base, err := f.Reg.Resolve(symbol)
	if err != nil || base.Offset != 0 || base.Category == "temperature" || base.Category == "time" {
		return symbol, v
	}
	// Only rescale within a prefix family anchored on the base symbol.
	baseValue := v * factor * base.ToBase
	for _, p := range prefixLadder {
		scaled := baseValue / (p.Factor * base.ToBase)
		a := math.Abs(scaled)
		if a >= 0.01 && a < 1000 {
			return p.Symbol + base.Symbol, scaled
		}
	}
	return symbol, v
}

// Percentage renders the percent value, not the fraction.
func (f *Formatter) Percentage(v float64) string {
	return f.Number(v) + "%"
}

// Duration renders a duration honoring the largest authored unit:
// calendar-flavored durations read in that unit ("3 days"), clock-flavored
// ones break down into "2 h 1 min" with the sign preserved.
func (f *Formatter) Duration(d value.Duration) string {
	switch d.AuthoredUnit {
	case "day", "days", "business day", "week", "weeks", "month", "months", "year", "years":
		unit := strings.TrimSuffix(d.AuthoredUnit, "s")
		if unit == "business day" {
			unit = "day"
		}
		n, err := value.Duration{Seconds: d.Seconds}.To(unit)
		if err == nil {
			word := unit
			if math.Abs(n) != 1 {
				word += "s"
			}
			return f.Number(n) + " " + word
		}
	}

	sign := ""
	s := d.Seconds
	if s < 0 {
		sign = "-"
		s = -s
	}
	h := int(s) / 3600
	m := (int(s) % 3600) / 60
	sec := int(s) % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%s%d h %d min", sign, h, m)
	case h > 0:
		return fmt.Sprintf("%s%d h", sign, h)
	case m > 0:
		return fmt.Sprintf("%s%d min", sign, m)
	default:
		return fmt.Sprintf("%s%d s", sign, sec)
	}
}

// Date renders a civil date, ISO by default, in the locale numeric form
// when requested. A datetime always carries its zone.
func (f *Formatter) Date(d value.Date) string {
	var s string
	if f.Opts.DateDisplayFormat == "locale" && f.Opts.DateLocale != "" {
		if f.Opts.DateLocale == "en-US" {
			s = fmt.Sprintf("%02d/%02d/%04d", d.Month, d.Day, d.Year)
		} else {
			s = fmt.Sprintf("%02d/%02d/%04d", d.Day, d.Month, d.Year)
		}
	} else {
		s = fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
	if d.HasTime {
		s += fmt.Sprintf(" %02d:%02d", d.Hour, d.Min)
		zone := d.Zone
		if zone == "" {
			zone = "UTC"
		}
		s += " " + zone
	}
	return s
}

// List renders list elements joined by ", "; the empty list is "()".
func (f *Formatter) List(l value.List) string {
	if len(l.Items) == 0 {
		return "()"
	}
	if dates, ok := allDateTimes(l.Items); ok {
		return f.CompactDateTimes(dates)
	}
	parts := make([]string, len(l.Items))
	for i, item := range l.Items {
		parts[i] = f.Value(item)
	}
	return strings.Join(parts, ", ")
}

func allDateTimes(items []value.Value) ([]value.Date, bool) {
	if len(items) == 0 {
		return nil, false
	}
	out := make([]value.Date, len(items))
	for i, it := range items {
		d, ok := it.(value.Date)
		if !ok || !d.HasTime {
			return nil, false
		}
		out[i] = d
	}
	return out, true
}

// CompactDateTimes collapses a datetime list by date: times of one day
// are comma-joined after "YYYY-MM-DD: ", distinct days join with "; ".
func (f *Formatter) CompactDateTimes(dates []value.Date) string {
	type dayKey struct{ y, m, d int }
	order := []dayKey{}
	byDay := map[dayKey][]string{}
	for _, d := range dates {
		k := dayKey{d.Year, d.Month, d.Day}
		if _, ok := byDay[k]; !ok {
			order = append(order, k)
		}
		byDay[k] = append(byDay[k], fmt.Sprintf("%02d:%02d", d.Hour, d.Min))
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.y != b.y {
			return a.y < b.y
		}
		if a.m != b.m {
			return a.m < b.m
		}
		return a.d < b.d
	})
	parts := make([]string, len(order))
	for i, k := range order {
		parts[i] = fmt.Sprintf("%04d-%02d-%02d: %s", k.y, k.m, k.d, strings.Join(byDay[k], ", "))
	}
	return strings.Join(parts, "; ")
}

// Value dispatches a display rendering for any engine value.
func (f *Formatter) Value(v value.Value) string {
	switch n := v.(type) {
	case value.Number:
		return f.Number(n.V)
	case value.Percentage:
		return f.Percentage(n.V)
	case value.Currency:
		return f.Currency(n.Symbol, n.V)
	case value.UnitValue:
		return f.Unit(n.Q.Value, n.Q.Unit)
	case value.CurrencyUnit:
		if n.PerUnit.Dimensionless() {
			return f.Currency(n.Symbol, n.V)
		}
		return f.Currency(n.Symbol, n.V) + "/" + n.PerUnit.String()
	case value.Duration:
		return f.Duration(n)
	case value.Date:
		return f.Date(n)
	case value.Time:
		return n.String()
	case value.List:
		return f.List(n)
	case value.Symbolic:
		return n.Expr
	case value.ErrorValue:
		return "⚠️ " + n.Message
	default:
		return v.String()
	}
}

// trimFractionZeros drops trailing zeros (and a trailing dot) from a
// fixed-point rendering.
func trimFractionZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// trimScientificZeros drops trailing mantissa zeros: 1.500000e+12 -> 1.5e+12.
func trimScientificZeros(s string) string {
	i := strings.IndexAny(s, "eE")
	if i < 0 {
		return s
	}
	mantissa, exp := s[:i], s[i:]
	mantissa = trimFractionZeros(mantissa)
	return mantissa + exp
}

// groupThousands inserts comma separators into the integer part.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.Index(s, "."); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + fracPart
	}
	var sb strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		sb.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if sb.Len() > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(intPart[i : i+3])
	}
	return sign + sb.String() + fracPart
}
