package ontology

import (
	"github.com/coolbeans/ontoscope/pkg/graph"
	"github.com/coolbeans/ontoscope/pkg/store"
)

// BuildPropertyGraph computes the single-hop domain/range neighbourhood of a
// property. A class in both the domain and range sets appears once, as a
// domain node, and receives both edges.
func BuildPropertyGraph(statements Statements, propertyIRI string) *graph.NeighbourhoodGraph {
	g := graph.New()
	g.AddNode(propertyIRI, Label(statements, propertyIRI), graph.RoleProperty)

	for _, domain := range objects(statements, propertyIRI, store.RDFSDomain, true) {
		g.AddNode(domain, Label(statements, domain), graph.RoleDomain)
		// Both endpoints were inserted above.
		_ = g.AddEdge(propertyIRI, domain, graph.RelationDomain)
	}

	for _, rangeIRI := range objects(statements, propertyIRI, store.RDFSRange, true) {
		g.AddNode(rangeIRI, Label(statements, rangeIRI), graph.RoleRange)
		_ = g.AddEdge(propertyIRI, rangeIRI, graph.RelationRange)
	}

	return g
}
