package di

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dominikbraun/graph"
)

// EntryInfo describes one context entry for introspection.
type EntryInfo struct {
	Name     string
	Origin   Origin
	Realized bool
}

// Entries returns info about every entry, sorted by name.
func (c *Context) Entries() []EntryInfo {
	result := make([]EntryInfo, 0, len(c.entries))
	for _, name := range c.Keys() {
		e := c.entries[name]
		result = append(result, EntryInfo{
			Name:     name,
			Origin:   e.origin,
			Realized: e.state == stateBuilt,
		})
	}
	return result
}

// Dependencies returns, sorted, the names that name's factory has been
// observed to read. Only reads that already happened are known.
func (c *Context) Dependencies(name string) ([]string, error) {
	preds, err := c.observed.PredecessorMap()
	if err != nil {
		return nil, fmt.Errorf("di: reading dependency graph: %w", err)
	}
	deps, ok := preds[name]
	if !ok {
		return nil, &LookupError{Name: name}
	}
	return sortedNames(deps), nil
}

// Dependents returns, sorted, the names whose factories have been observed
// to read name.
func (c *Context) Dependents(name string) ([]string, error) {
	adj, err := c.observed.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("di: reading dependency graph: %w", err)
	}
	deps, ok := adj[name]
	if !ok {
		return nil, &LookupError{Name: name}
	}
	return sortedNames(deps), nil
}

// Order returns every observed name such that each appears after all the
// names it was observed to read. Ties are broken alphabetically.
func (c *Context) Order() ([]string, error) {
	order, err := graph.StableTopologicalSort(c.observed, func(a, b string) bool {
		return strings.Compare(a, b) < 0
	})
	if err != nil {
		return nil, fmt.Errorf("di: ordering dependency graph: %w", err)
	}
	return order, nil
}

func sortedNames(edges map[string]graph.Edge[string]) []string {
	names := make([]string, 0, len(edges))
	names = slices.AppendSeq(names, maps.Keys(edges))
	slices.Sort(names)
	return names
}
