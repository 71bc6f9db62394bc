package units

import (
	"fmt"
	"strings"
	"sync"

	"github.com/nmaxcom/smartpad-go/internal/dimension"
)

// Alias is a user-defined unit: a factor and a composite unit it expands to.
// `workweek = 40 h` registers Alias{Symbol: "workweek", Factor: 40, Unit: Single("h")}.
// A numeric-only alias (`dozen = 12`) has an empty Unit and dimension "count".
type Alias struct {
	Symbol string
	Factor float64
	Unit   Composite
}

// Registry holds built-in units and user-defined aliases, resolving symbols
// (with SI/binary prefix expansion and plural recognition) to their base
// unit and conversion factor.
//
// Grounded on the teacher's internal/interp/builtins.Registry: a
// concurrency-safe, case-insensitive name→info map with category grouping,
// here repurposed from builtin functions to units.
type Registry struct {
	mu sync.RWMutex

	// units maps canonical (case-sensitive, as authored) symbol to Unit.
	units map[string]*Unit
	// byAlias maps a lowercase alias/plural word to the canonical symbol.
	byAlias map[string]string
	// userAliases maps a lowercase alias name to its definition.
	userAliases map[string]Alias
	// resolving tracks in-flight alias resolution for cycle detection.
	resolving map[string]bool
}

// NewRegistry builds a registry pre-populated with the built-in units.
func NewRegistry() *Registry {
	r := &Registry{
		units:       map[string]*Unit{},
		byAlias:     map[string]string{},
		userAliases: map[string]Alias{},
		resolving:   map[string]bool{},
	}
	registerBuiltins(r)
	return r
}

// Register adds (or replaces) a built-in unit definition.
func (r *Registry) Register(u Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[u.Symbol] = &u
	r.byAlias[strings.ToLower(u.Symbol)] = u.Symbol
	r.byAlias[strings.ToLower(u.Name)] = u.Symbol
	for _, a := range u.Aliases {
		r.byAlias[strings.ToLower(a)] = u.Symbol
	}
}

// Lookup resolves a bare (unprefixed) symbol, name, alias, or plural form to
// its canonical Unit definition.
func (r *Registry) Lookup(token string) (*Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookupLocked(token)
}

func (r *Registry) lookupLocked(token string) (*Unit, bool) {
	if u, ok := r.units[token]; ok {
		return u, true
	}
	key := strings.ToLower(token)
	if sym, ok := r.byAlias[key]; ok {
		return r.units[sym], true
	}
	if strings.HasSuffix(key, "s") {
		if sym, ok := r.byAlias[strings.TrimSuffix(key, "s")]; ok {
			return r.units[sym], true
		}
	}
	return nil, false
}

// Resolve resolves an identifier token that may carry a magnitude prefix
// (e.g. "km", "KiB", "msec") or be a user alias, returning the scalar
// factor to multiply by and the base unit it ultimately refers to.
//
// Shadowing rule (spec.md §4.4/§9): a user alias of the same token always
// wins over built-in symbol/prefix decomposition.
func (r *Registry) Resolve(token string) (factor float64, unit *Unit, err error) {
	key := strings.ToLower(token)
	r.mu.RLock()
	alias, isAlias := r.userAliases[key]
	if !isAlias && strings.HasSuffix(key, "s") {
		// Plural form of a user alias: "2 workweeks".
		alias, isAlias = r.userAliases[strings.TrimSuffix(key, "s")]
		if isAlias {
			key = strings.TrimSuffix(key, "s")
		}
	}
	r.mu.RUnlock()
	if isAlias {
		f, composite, derr := r.resolveAlias(key, map[string]bool{})
		if derr != nil {
			return 0, nil, derr
		}
		if composite.Dimensionless() {
			// Numeric-only alias: no base unit, dimension "count".
			return f, &Unit{Symbol: alias.Symbol, Name: alias.Symbol, Category: "count"}, nil
		}
		if len(composite.Factors) == 1 && composite.Factors[0].Power == 1 {
			base, ok := r.Lookup(composite.Factors[0].Symbol)
			if ok {
				return f * base.ToBase, base, nil
			}
		}
		return f, nil, fmt.Errorf("alias %q expands to a composite unit; use ParseComposite", token)
	}

	if u, ok := r.Lookup(token); ok {
		return 1, u, nil
	}

	// Try prefix expansion against every category's prefix table.
	for _, table := range [][]Prefix{siPrefixes, binaryPrefixes} {
		for _, p := range table {
			if !strings.HasPrefix(token, p.Symbol) {
				continue
			}
			rest := token[len(p.Symbol):]
			if rest == "" {
				continue
			}
			if u, ok := r.Lookup(rest); ok {
				return p.Factor, u, nil
			}
		}
	}

	return 0, nil, fmt.Errorf("unknown unit: %s", token)
}

// ExpandAlias expands a user alias to its (factor, composite) pair, with
// the same DFS cycle detection as Resolve.
func (r *Registry) ExpandAlias(name string) (float64, Composite, error) {
	return r.resolveAlias(strings.ToLower(name), map[string]bool{})
}

// resolveAlias expands a user alias to a (factor, composite) pair, following
// chains of aliases with DFS cycle detection.
func (r *Registry) resolveAlias(lowerName string, seen map[string]bool) (float64, Composite, error) {
	if seen[lowerName] {
		return 0, Composite{}, fmt.Errorf("circular unit alias: %s", lowerName)
	}
	seen[lowerName] = true

	r.mu.RLock()
	alias, ok := r.userAliases[lowerName]
	r.mu.RUnlock()
	if !ok {
		return 0, Composite{}, fmt.Errorf("unknown alias: %s", lowerName)
	}

	if alias.Unit.Dimensionless() {
		return alias.Factor, Composite{}, nil
	}

	totalFactor := alias.Factor
	var result Composite
	for _, f := range alias.Unit.Factors {
		sub := strings.ToLower(f.Symbol)
		if _, isAlias := r.userAliases[sub]; isAlias {
			subFactor, subComposite, err := r.resolveAlias(sub, seen)
			if err != nil {
				return 0, Composite{}, err
			}
			totalFactor *= pow(subFactor, f.Power)
			result = Mul(result, Pow(subComposite, f.Power))
			continue
		}
		result = Mul(result, Pow(Single(f.Symbol), f.Power))
	}
	return totalFactor, result, nil
}

func pow(base float64, exp int) float64 {
	if exp == 0 {
		return 1
	}
	neg := exp < 0
	if neg {
		exp = -exp
	}
	out := 1.0
	for i := 0; i < exp; i++ {
		out *= base
	}
	if neg {
		return 1 / out
	}
	return out
}

// DefineAlias registers a user-defined unit alias, e.g. from
// `workweek = 40 h`. It rejects aliases that would introduce a cycle.
func (r *Registry) DefineAlias(name string, factor float64, unit Composite) error {
	lname := strings.ToLower(name)

	r.mu.Lock()
	r.userAliases[lname] = Alias{Symbol: name, Factor: factor, Unit: unit}
	r.mu.Unlock()

	if _, _, err := r.resolveAlias(lname, map[string]bool{}); err != nil {
		// Roll back: an alias that doesn't resolve (cycle) must not stick.
		r.mu.Lock()
		delete(r.userAliases, lname)
		r.mu.Unlock()
		return err
	}
	return nil
}

// IsAlias reports whether name is a registered user alias.
func (r *Registry) IsAlias(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.userAliases[strings.ToLower(name)]
	return ok
}

// DimensionOf returns the physical dimension of a composite unit, resolving
// each factor's base unit through prefixes and aliases.
func (r *Registry) DimensionOf(c Composite) (dimension.Vector, error) {
	dim := dimension.Dimensionless
	for _, f := range c.Factors {
		_, u, err := r.Resolve(f.Symbol)
		if err != nil {
			return dimension.Vector{}, err
		}
		dim = dimension.Add(dim, dimension.Scale(u.Dim, f.Power))
	}
	return dim, nil
}

// ToBaseFactor returns the multiplicative factor that converts a value
// expressed in composite unit c to the SI base composite unit (each factor's
// prefix/alias expanded, but NOT collapsed to a canonical symbol).
func (r *Registry) ToBaseFactor(c Composite) (float64, error) {
	factor := 1.0
	for _, f := range c.Factors {
		scalar, u, err := r.Resolve(f.Symbol)
		if err != nil {
			return 0, err
		}
		factor *= pow(scalar*u.ToBase, f.Power)
	}
	return factor, nil
}
