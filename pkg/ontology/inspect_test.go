package ontology

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/ontoscope/pkg/graph"
	"github.com/coolbeans/ontoscope/pkg/store"
)

func inspectionStore(t *testing.T) *store.TripleStore {
	return newStore(t,
		[3]string{ns + "Salmon", store.RDFType, store.OWLClass},
		[3]string{ns + "Salmon", store.RDFSLabel, "Salmon"},
		[3]string{ns + "Salmon", store.RDFSComment, "An anadromous fish."},
		[3]string{ns + "Salmon", store.RDFSSubClassOf, ns + "Fish"},
		[3]string{ns + "Chinook", store.RDFSSubClassOf, ns + "Salmon"},
		[3]string{ns + "Coho", store.RDFSSubClassOf, ns + "Salmon"},
		[3]string{ns + "spawnsIn", store.RDFSDomain, ns + "Salmon"},
		[3]string{ns + "eats", store.RDFSRange, ns + "Salmon"},
	)
}

func TestDescribeNode_Unknown(t *testing.T) {
	description := DescribeNode(store.NewTripleStore(), "urn:does-not-exist")

	assert.Equal(t, NodeDescription{
		IRI:      "urn:does-not-exist",
		Types:    []string{},
		Parents:  []string{},
		Children: []string{},
		DomainOf: []string{},
		RangeOf:  []string{},
	}, description)
}

func TestDescribeNode_EmptyIRI(t *testing.T) {
	description := DescribeNode(inspectionStore(t), "")
	assert.False(t, description.Known)
	assert.Empty(t, description.Types)
}

func TestDescribeNode_LiteralTextIsNotAnEntity(t *testing.T) {
	ts := inspectionStore(t)
	require.NoError(t, ts.AddLiteral(ns+"Salmon", store.RDFSComment, "urn:does-not-exist"))

	description := DescribeNode(ts, "urn:does-not-exist")
	assert.False(t, description.Known)
	assert.Empty(t, description.Label)
}

func TestDescribeNode(t *testing.T) {
	description := DescribeNode(inspectionStore(t), ns+"Salmon")

	assert.True(t, description.Known)
	assert.Equal(t, "Salmon", description.Label)
	assert.Equal(t, Some("An anadromous fish."), description.Comment)
	assert.Equal(t, []string{store.OWLClass}, description.Types)
	assert.Equal(t, []string{ns + "Fish"}, description.Parents)
	assert.Equal(t, []string{ns + "Chinook", ns + "Coho"}, description.Children)
	assert.Equal(t, []string{ns + "spawnsIn"}, description.DomainOf)
	assert.Equal(t, []string{ns + "eats"}, description.RangeOf)
}

func TestDescribeNode_ObjectOnly(t *testing.T) {
	description := DescribeNode(inspectionStore(t), ns+"Fish")

	assert.True(t, description.Known, "an IRI seen only as an object is still known")
	assert.Equal(t, "Fish", description.Label)
	assert.False(t, description.Comment.Present)
	assert.Equal(t, []string{ns + "Salmon"}, description.Children)
}

func TestDescribeNode_JSON(t *testing.T) {
	data, err := json.Marshal(DescribeNode(store.NewTripleStore(), ns+"Nothing"))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"iri": "https://example.org/ontology#Nothing",
		"known": false,
		"label": "",
		"comment": null,
		"types": [],
		"parents": [],
		"children": [],
		"domain_of": [],
		"range_of": []
	}`, string(data))
}

func TestDescribeGraph(t *testing.T) {
	g := DescribeGraph(inspectionStore(t), ns+"Salmon")

	assert.Equal(t, []string{ns + "Salmon"}, g.NodesWithRole(graph.RoleFocus))
	assert.Equal(t, []string{ns + "Fish"}, g.NodesWithRole(graph.RoleAncestor))
	assert.Equal(t, []string{ns + "Chinook", ns + "Coho"}, g.NodesWithRole(graph.RoleDescendant))
	assert.Equal(t, []string{ns + "spawnsIn", ns + "eats"}, g.NodesWithRole(graph.RoleOther))

	assert.Equal(t, []graph.Edge{
		{Source: ns + "Salmon", Target: ns + "Fish", Relation: graph.RelationSubClassOf},
		{Source: ns + "Chinook", Target: ns + "Salmon", Relation: graph.RelationSubClassOf},
		{Source: ns + "Coho", Target: ns + "Salmon", Relation: graph.RelationSubClassOf},
		{Source: ns + "spawnsIn", Target: ns + "Salmon", Relation: graph.RelationDomain},
		{Source: ns + "eats", Target: ns + "Salmon", Relation: graph.RelationRange},
	}, g.Edges())
}

func TestDescribeGraph_Unknown(t *testing.T) {
	g := DescribeGraph(store.NewTripleStore(), ns+"Ghost")

	assert.Equal(t, []graph.Node{{ID: ns + "Ghost", Label: "Ghost", Role: graph.RoleFocus}}, g.Nodes())
	assert.Zero(t, g.EdgeCount())
}
