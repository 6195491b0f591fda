package core

import (
	"fmt"
	"iter"
	"slices"

	"github.com/valter-silva-au/reseau/pkg/models"
)

// pairKey identifies an unordered pair of people.
type pairKey struct {
	lo, hi string
}

func keyOf(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// edge keeps the endpoints in the order they were first related so listings
// read the way the user entered them.
type edge struct {
	a, b string
	typ  models.RelationshipType
}

// RelationshipGraph is an undirected simple graph of people keyed by name.
// At most one relationship exists per unordered pair; adding another one
// overwrites its type.
type RelationshipGraph struct {
	order     []string
	adjacency map[string]map[string]struct{}
	edges     map[pairKey]*edge
	edgeOrder []pairKey
}

// NewRelationshipGraph returns an empty graph.
func NewRelationshipGraph() *RelationshipGraph {
	return &RelationshipGraph{
		adjacency: make(map[string]map[string]struct{}),
		edges:     make(map[pairKey]*edge),
	}
}

// AddPerson inserts name as a node. It reports whether a node was created;
// adding an existing name is a no-op.
func (g *RelationshipGraph) AddPerson(name string) bool {
	if _, ok := g.adjacency[name]; ok {
		return false
	}
	g.adjacency[name] = make(map[string]struct{})
	g.order = append(g.order, name)
	return true
}

// HasPerson reports whether name is a node of the graph.
func (g *RelationshipGraph) HasPerson(name string) bool {
	_, ok := g.adjacency[name]
	return ok
}

// AddRelationship inserts the edge {a, b} or overwrites its type. Both people
// must already exist.
func (g *RelationshipGraph) AddRelationship(a, b string, t models.RelationshipType) error {
	if a == b {
		return fmt.Errorf("relating %q to themselves: %w", a, ErrInvalidOperation)
	}
	for _, name := range []string{a, b} {
		if !g.HasPerson(name) {
			return fmt.Errorf("adding relationship %q-%q: %q: %w", a, b, name, ErrUnknownPerson)
		}
	}

	k := keyOf(a, b)
	if e, ok := g.edges[k]; ok {
		e.typ = t
		return nil
	}
	g.edges[k] = &edge{a: a, b: b, typ: t}
	g.edgeOrder = append(g.edgeOrder, k)
	g.adjacency[a][b] = struct{}{}
	g.adjacency[b][a] = struct{}{}
	return nil
}

// Relationship returns the type of the edge {a, b} if it exists.
func (g *RelationshipGraph) Relationship(a, b string) (models.RelationshipType, bool) {
	e, ok := g.edges[keyOf(a, b)]
	if !ok {
		return "", false
	}
	return e.typ, true
}

// RemoveRelationship deletes the edge {a, b}. It reports whether an edge was
// removed; a missing edge is not an error.
func (g *RelationshipGraph) RemoveRelationship(a, b string) bool {
	k := keyOf(a, b)
	if _, ok := g.edges[k]; !ok {
		return false
	}
	delete(g.edges, k)
	g.edgeOrder = slices.DeleteFunc(g.edgeOrder, func(o pairKey) bool { return o == k })
	delete(g.adjacency[a], b)
	delete(g.adjacency[b], a)
	return true
}

// RemovePerson deletes name and every edge incident to it, returning the
// number of edges removed.
func (g *RelationshipGraph) RemovePerson(name string) (int, error) {
	neighbours, ok := g.adjacency[name]
	if !ok {
		return 0, fmt.Errorf("removing %q: %w", name, ErrUnknownPerson)
	}

	removed := 0
	for other := range neighbours {
		delete(g.edges, keyOf(name, other))
		delete(g.adjacency[other], name)
		removed++
	}
	delete(g.adjacency, name)
	g.edgeOrder = slices.DeleteFunc(g.edgeOrder, func(o pairKey) bool {
		return o.lo == name || o.hi == name
	})
	g.order = slices.DeleteFunc(g.order, func(n string) bool { return n == name })
	return removed, nil
}

// People returns the node names in insertion order.
func (g *RelationshipGraph) People() []string {
	return slices.Clone(g.order)
}

// Neighbors returns the people directly related to name, in insertion order.
func (g *RelationshipGraph) Neighbors(name string) []string {
	adj, ok := g.adjacency[name]
	if !ok {
		return nil
	}
	var out []string
	for _, p := range g.order {
		if _, ok := adj[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Edges yields every current edge exactly once, in the order the pairs were
// first related. The graph must not be mutated while iterating.
func (g *RelationshipGraph) Edges() iter.Seq[models.Relationship] {
	return func(yield func(models.Relationship) bool) {
		for _, k := range g.edgeOrder {
			e := g.edges[k]
			if !yield(models.Relationship{PersonA: e.a, PersonB: e.b, Type: e.typ}) {
				return
			}
		}
	}
}

// PersonCount returns the number of nodes.
func (g *RelationshipGraph) PersonCount() int {
	return len(g.order)
}

// EdgeCount returns the number of edges.
func (g *RelationshipGraph) EdgeCount() int {
	return len(g.edges)
}
