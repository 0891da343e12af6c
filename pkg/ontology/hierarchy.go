package ontology

import (
	"errors"
	"fmt"

	"github.com/coolbeans/ontoscope/pkg/graph"
	"github.com/coolbeans/ontoscope/pkg/store"
)

// ErrNegativeDepth is returned when a traversal depth below zero is requested.
var ErrNegativeDepth = errors.New("max depth must be non-negative")

// BuildClassSubclassGraph computes the bounded ancestor/descendant
// neighbourhood of focusIRI over rdfs:subClassOf.
//
// The ancestor traversal runs first, then the descendant traversal; each is a
// breadth-first walk of at most maxDepth hops with its own visited set, so
// cyclic hierarchies terminate. A node keeps the role of its first discovery
// and the focus is always role=focus. Edges point child -> parent.
func BuildClassSubclassGraph(statements Statements, focusIRI string, maxDepth int) (*graph.NeighbourhoodGraph, error) {
	if maxDepth < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeDepth, maxDepth)
	}

	g := graph.New()
	g.AddNode(focusIRI, Label(statements, focusIRI), graph.RoleFocus)

	parentsOf := func(iri string) []string {
		return objects(statements, iri, store.RDFSSubClassOf, true)
	}
	childrenOf := func(iri string) []string {
		return subjects(statements, store.RDFSSubClassOf, iri)
	}

	upward := hierarchyWalk{
		statements: statements,
		graph:      g,
		role:       graph.RoleAncestor,
		next:       parentsOf,
		edge:       func(current, next string) (string, string) { return current, next },
	}
	if err := upward.run(focusIRI, maxDepth); err != nil {
		return nil, err
	}

	downward := hierarchyWalk{
		statements: statements,
		graph:      g,
		role:       graph.RoleDescendant,
		next:       childrenOf,
		edge:       func(current, next string) (string, string) { return next, current },
	}
	if err := downward.run(focusIRI, maxDepth); err != nil {
		return nil, err
	}

	return g, nil
}

// hierarchyWalk is one bounded breadth-first traversal in a single direction.
type hierarchyWalk struct {
	statements Statements
	graph      *graph.NeighbourhoodGraph
	role       graph.Role
	next       func(iri string) []string
	edge       func(current, next string) (child, parent string)
}

type walkItem struct {
	iri   string
	depth int
}

func (w hierarchyWalk) run(focusIRI string, maxDepth int) error {
	visited := map[string]bool{focusIRI: true}
	queue := []walkItem{{iri: focusIRI, depth: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxDepth {
			continue
		}

		for _, neighbour := range w.next(current.iri) {
			w.graph.AddNode(neighbour, Label(w.statements, neighbour), w.role)

			child, parent := w.edge(current.iri, neighbour)
			if err := w.graph.AddEdge(child, parent, graph.RelationSubClassOf); err != nil {
				return err
			}

			if visited[neighbour] {
				continue
			}
			visited[neighbour] = true
			queue = append(queue, walkItem{iri: neighbour, depth: current.depth + 1})
		}
	}

	return nil
}
