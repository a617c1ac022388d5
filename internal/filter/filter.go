// Package filter decides which incoming lines reach the store.
package filter

import (
	"strings"

	"github.com/Geun-Oh/scrollback/internal/line"
)

// Filter determines whether a Line matches a filtering criterion.
type Filter interface {
	// Match returns true if the line passes this filter.
	Match(l *line.Line) bool

	// Name returns a human-readable description of this filter.
	Name() string
}

// MatchMode controls how multiple filters are combined.
type MatchMode int

const (
	// MatchAny passes if ANY filter matches (OR logic).
	MatchAny MatchMode = iota
	// MatchAll passes only if ALL filters match (AND logic).
	MatchAll
)

// Chain combines multiple filters with a configurable match mode.
// Required filters must always pass, whatever the mode; exclusions are
// added this way so that OR chains cannot bypass them.
type Chain struct {
	filters  []Filter
	required []Filter
	mode     MatchMode
}

// NewChain creates a Chain with the given mode.
func NewChain(mode MatchMode, filters ...Filter) *Chain {
	return &Chain{
		filters: filters,
		mode:    mode,
	}
}

// Add appends a filter combined according to the chain's mode.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Require appends a filter every line must pass.
func (c *Chain) Require(f Filter) {
	c.required = append(c.required, f)
}

// Match evaluates the chain against a line.
// Returns true if no filters are configured (pass-through).
func (c *Chain) Match(l *line.Line) bool {
	for _, f := range c.required {
		if !f.Match(l) {
			return false
		}
	}
	if len(c.filters) == 0 {
		return true
	}

	if c.mode == MatchAll {
		for _, f := range c.filters {
			if !f.Match(l) {
				return false
			}
		}
		return true
	}
	for _, f := range c.filters {
		if f.Match(l) {
			return true
		}
	}
	return false
}

// Name returns a description of the chain.
func (c *Chain) Name() string {
	names := make([]string, 0, len(c.filters)+len(c.required))
	for _, f := range c.filters {
		names = append(names, f.Name())
	}
	for _, f := range c.required {
		names = append(names, f.Name())
	}
	op := "OR"
	if c.mode == MatchAll {
		op = "AND"
	}
	return "chain(" + op + ")[" + strings.Join(names, " ") + "]"
}

// Len returns the number of filters in the chain.
func (c *Chain) Len() int {
	return len(c.filters) + len(c.required)
}

type not struct{ f Filter }

// Not inverts a filter.
func Not(f Filter) Filter {
	return not{f: f}
}

func (n not) Match(l *line.Line) bool { return !n.f.Match(l) }
func (n not) Name() string            { return "not:" + n.f.Name() }
