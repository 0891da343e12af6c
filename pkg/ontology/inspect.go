package ontology

import (
	"github.com/coolbeans/ontoscope/pkg/graph"
	"github.com/coolbeans/ontoscope/pkg/store"
)

// NodeDescription aggregates everything the store asserts about one entity.
// It is computed from the whole store, independent of any depth-limited graph.
type NodeDescription struct {
	IRI      string   `json:"iri"`
	Known    bool     `json:"known"`
	Label    string   `json:"label"`
	Comment  Text     `json:"comment"`
	Types    []string `json:"types"`
	Parents  []string `json:"parents"`
	Children []string `json:"children"`
	DomainOf []string `json:"domain_of"`
	RangeOf  []string `json:"range_of"`
}

// DescribeNode inspects an entity. An IRI that is never the subject or a
// resource object of a statement yields a record holding only the IRI;
// inspection never fails.
func DescribeNode(statements Statements, iri string) NodeDescription {
	description := NodeDescription{
		IRI:      iri,
		Types:    []string{},
		Parents:  []string{},
		Children: []string{},
		DomainOf: []string{},
		RangeOf:  []string{},
	}
	if iri == "" || !statements.Mentions(iri) {
		return description
	}

	description.Known = true
	description.Label = Label(statements, iri)
	description.Comment = Comment(statements, iri)
	description.Types = Types(statements, iri)
	description.Parents = objects(statements, iri, store.RDFSSubClassOf, true)
	description.Children = subjects(statements, store.RDFSSubClassOf, iri)
	description.DomainOf = subjects(statements, store.RDFSDomain, iri)
	description.RangeOf = subjects(statements, store.RDFSRange, iri)

	return description
}

// DescribeGraph turns an entity's one-hop relationships into a neighbourhood
// graph: parents as ancestors, children as descendants, and properties using
// the entity as domain or range with role=other.
func DescribeGraph(statements Statements, iri string) *graph.NeighbourhoodGraph {
	description := DescribeNode(statements, iri)

	g := graph.New()
	label := description.Label
	if !description.Known {
		label = store.LocalName(iri)
	}
	g.AddNode(iri, label, graph.RoleFocus)

	// Every edge below joins iri with a node inserted just before it.
	for _, parent := range description.Parents {
		g.AddNode(parent, Label(statements, parent), graph.RoleAncestor)
		_ = g.AddEdge(iri, parent, graph.RelationSubClassOf)
	}
	for _, child := range description.Children {
		g.AddNode(child, Label(statements, child), graph.RoleDescendant)
		_ = g.AddEdge(child, iri, graph.RelationSubClassOf)
	}
	for _, property := range description.DomainOf {
		g.AddNode(property, Label(statements, property), graph.RoleOther)
		_ = g.AddEdge(property, iri, graph.RelationDomain)
	}
	for _, property := range description.RangeOf {
		g.AddNode(property, Label(statements, property), graph.RoleOther)
		_ = g.AddEdge(property, iri, graph.RelationRange)
	}

	return g
}
