// Package units implements the unit registry: named units with their
// physical dimension and SI base conversion factor, prefix expansion,
// composite-unit arithmetic, and user-defined aliases.
//
// Grounded on imhotep-nb-units' dimension-vector unit type (prefix
// constants, composite combination via exponent-vector addition) and the
// teacher repo's builtins.Registry pattern (case-insensitive name lookup,
// category grouping, concurrency-safe registration).
package units

import (
	"fmt"

	"github.com/nmaxcom/smartpad-go/internal/dimension"
)

// Unit is a single named unit of measure.
type Unit struct {
	Symbol   string
	Name     string
	Dim      dimension.Vector
	ToBase   float64 // multiplicative factor to the SI base unit
	Offset   float64 // additive offset to the SI base unit (temperature only)
	Category string
	Aliases  []string
}

// ToBaseValue converts a value expressed in u to the SI base unit for u's dimension.
func (u Unit) ToBaseValue(v float64) float64 {
	return v*u.ToBase + u.Offset
}

// FromBaseValue converts a value expressed in the SI base unit back into u.
func (u Unit) FromBaseValue(v float64) float64 {
	return (v - u.Offset) / u.ToBase
}

// Factor is one (unit symbol, integer power) term of a composite unit.
type Factor struct {
	Symbol string
	Power  int
}

// Composite is a canonical multiset of unit factors, e.g. {m:1, s:-2} for m/s^2.
// Invariant: factors are combined per distinct symbol and zero powers are dropped.
type Composite struct {
	Factors []Factor
}

// Dimensionless reports whether the composite has no factors.
func (c Composite) Dimensionless() bool {
	return len(c.Factors) == 0
}

func (c Composite) String() string {
	if len(c.Factors) == 0 {
		return ""
	}
	var num, den []string
	for _, f := range c.Factors {
		switch {
		case f.Power == 1:
			num = append(num, f.Symbol)
		case f.Power > 1:
			num = append(num, fmt.Sprintf("%s^%d", f.Symbol, f.Power))
		case f.Power == -1:
			den = append(den, f.Symbol)
		case f.Power < 0:
			den = append(den, fmt.Sprintf("%s^%d", f.Symbol, -f.Power))
		}
	}
	out := ""
	for i, s := range num {
		if i > 0 {
			out += "*"
		}
		out += s
	}
	if out == "" {
		out = "1"
	}
	if len(den) > 0 {
		out += "/"
		for i, s := range den {
			if i > 0 {
				out += "/"
			}
			out += s
		}
	}
	return out
}

// Single builds a composite unit with a single factor of power 1.
func Single(symbol string) Composite {
	return Composite{Factors: []Factor{{Symbol: symbol, Power: 1}}}
}

// Mul combines two composite units as when multiplying quantities.
func Mul(a, b Composite) Composite {
	return normalize(append(append([]Factor{}, a.Factors...), b.Factors...))
}

// Div combines two composite units as when dividing quantities.
func Div(a, b Composite) Composite {
	inv := make([]Factor, len(b.Factors))
	for i, f := range b.Factors {
		inv[i] = Factor{Symbol: f.Symbol, Power: -f.Power}
	}
	return normalize(append(append([]Factor{}, a.Factors...), inv...))
}

// Pow raises a composite unit to an integer power.
func Pow(a Composite, n int) Composite {
	scaled := make([]Factor, len(a.Factors))
	for i, f := range a.Factors {
		scaled[i] = Factor{Symbol: f.Symbol, Power: f.Power * n}
	}
	return normalize(scaled)
}

// Invert returns the reciprocal composite unit (1/a).
func Invert(a Composite) Composite {
	return Div(Composite{}, a)
}

func normalize(factors []Factor) Composite {
	order := []string{}
	powers := map[string]int{}
	for _, f := range factors {
		if _, ok := powers[f.Symbol]; !ok {
			order = append(order, f.Symbol)
		}
		powers[f.Symbol] += f.Power
	}
	out := Composite{}
	for _, sym := range order {
		if p := powers[sym]; p != 0 {
			out.Factors = append(out.Factors, Factor{Symbol: sym, Power: p})
		}
	}
	return out
}

// Equal reports whether two composite units carry exactly the same factors
// (order-independent, after normalization).
func Equal(a, b Composite) bool {
	na, nb := normalize(a.Factors), normalize(b.Factors)
	if len(na.Factors) != len(nb.Factors) {
		return false
	}
	bp := map[string]int{}
	for _, f := range nb.Factors {
		bp[f.Symbol] = f.Power
	}
	for _, f := range na.Factors {
		if bp[f.Symbol] != f.Power {
			return false
		}
	}
	return true
}
