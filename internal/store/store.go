// Package store implements the reactive variable store (spec.md §4.10):
// named variable records with creation/update timestamps, a dependency
// graph over free identifiers, topological re-evaluation order, and
// first-class cycle detection.
//
// Grounded on ZaninAndrea-calc_engine's execution graph (dependency
// ordering and cyclic-dependency detection over sheet lines) and the
// teacher's internal/interp environment pattern for scoped name lookup.
package store

import (
	"time"

	"github.com/nmaxcom/smartpad-go/internal/value"
)

// Variable is one stored variable record (spec.md §3.5).
type Variable struct {
	Name      string
	Value     value.Value
	RawSource string
	UnitsHint string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store holds all variables of one sheet plus their dependency graph.
// Mutation is linearized by the caller; independent sheets share nothing.
type Store struct {
	vars  map[string]*Variable
	order []string
	graph *Graph
	clock func() time.Time
}

func New() *Store {
	return &Store{
		vars:  map[string]*Variable{},
		graph: NewGraph(),
		clock: time.Now,
	}
}

// SetClock swaps the timestamp source, letting tests run deterministically.
func (s *Store) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Graph exposes the dependency graph for diagnostic surfaces (DOT output).
func (s *Store) Graph() *Graph {
	return s.graph
}

// Set writes a variable record and its dependency edges. CreatedAt is set
// once per name and never refreshed; UpdatedAt refreshes on every write.
// A write that closes a dependency cycle stores a CircularDependency
// error value for the offender and returns the cycle error.
func (s *Store) Set(name, rawSource string, v value.Value, deps []string) error {
	now := s.clock()
	rec, ok := s.vars[name]
	if !ok {
		rec = &Variable{Name: name, CreatedAt: now}
		s.vars[name] = rec
		s.order = append(s.order, name)
	}
	rec.RawSource = rawSource
	rec.UpdatedAt = now

	err := s.graph.SetDependencies(name, rawSource, deps)
	if err != nil {
		rec.Value = value.NewError("CircularDependency", err.Error())
		return err
	}
	rec.Value = v
	return nil
}

// SetValue updates just the computed value of an existing variable (used
// during reactive re-evaluation, where the raw source and edges are
// unchanged).
func (s *Store) SetValue(name string, v value.Value) {
	if rec, ok := s.vars[name]; ok {
		rec.Value = v
		rec.UpdatedAt = s.clock()
	}
}

// Get returns the current value of name.
func (s *Store) Get(name string) (value.Value, bool) {
	rec, ok := s.vars[name]
	if !ok {
		return nil, false
	}
	return rec.Value, true
}

// Record returns the full variable record for name.
func (s *Store) Record(name string) (*Variable, bool) {
	rec, ok := s.vars[name]
	return rec, ok
}

// Has reports whether name is defined.
func (s *Store) Has(name string) bool {
	_, ok := s.vars[name]
	return ok
}

// Names returns all defined names in insertion order.
func (s *Store) Names() []string {
	return append([]string{}, s.order...)
}

// Delete removes a variable and its graph node.
func (s *Store) Delete(name string) {
	if _, ok := s.vars[name]; !ok {
		return
	}
	delete(s.vars, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.graph.Remove(name)
}

// Clear empties the store, as when the sheet is reset.
func (s *Store) Clear() {
	s.vars = map[string]*Variable{}
	s.order = nil
	s.graph = NewGraph()
}

// DependentsOf returns the deterministic topological re-evaluation order
// for everything downstream of name.
func (s *Store) DependentsOf(name string) []string {
	return s.graph.DependentsOf(name)
}

// IsCircular reports whether name is on a dependency cycle.
func (s *Store) IsCircular(name string) bool {
	return s.graph.IsCircular(name)
}
