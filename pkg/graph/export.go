package graph

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DocumentNode is the exported form of a node.
type DocumentNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Role  Role   `json:"role"`
}

// DocumentEdge is the exported form of an edge.
type DocumentEdge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Relation Relation `json:"relation"`
}

// Document is the neutral export format of a neighbourhood graph: exactly two
// top-level arrays, nodes and edges, in the graph's insertion order.
type Document struct {
	Nodes []DocumentNode `json:"nodes"`
	Edges []DocumentEdge `json:"edges"`
}

// ToDocument converts a graph to its export document. Empty graphs yield
// empty arrays, never null.
func ToDocument(g *NeighbourhoodGraph) Document {
	document := Document{
		Nodes: make([]DocumentNode, 0, g.NodeCount()),
		Edges: make([]DocumentEdge, 0, g.EdgeCount()),
	}

	for _, node := range g.nodes {
		document.Nodes = append(document.Nodes, DocumentNode{ID: node.ID, Label: node.Label, Role: node.Role})
	}
	for _, edge := range g.edges {
		document.Edges = append(document.Edges, DocumentEdge{Source: edge.Source, Target: edge.Target, Relation: edge.Relation})
	}

	return document
}

// ToJSON serializes the graph export document to indented JSON.
func ToJSON(g *NeighbourhoodGraph) ([]byte, error) {
	return json.MarshalIndent(ToDocument(g), "", "  ")
}

// FromDocument rebuilds a graph from an export document, validating roles,
// relations and edge endpoints.
func FromDocument(document Document) (*NeighbourhoodGraph, error) {
	g := New()

	for _, node := range document.Nodes {
		if !node.Role.Valid() {
			return nil, fmt.Errorf("%w: %q on node %s", ErrUnknownRole, node.Role, node.ID)
		}
		if !g.AddNode(node.ID, node.Label, node.Role) {
			return nil, fmt.Errorf("duplicate node id %s", node.ID)
		}
	}

	for _, edge := range document.Edges {
		if !edge.Relation.Valid() {
			return nil, fmt.Errorf("%w: %q on edge %s -> %s", ErrUnknownRelation, edge.Relation, edge.Source, edge.Target)
		}
		if err := g.AddEdge(edge.Source, edge.Target, edge.Relation); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// ReadDocument parses JSON produced by ToJSON back into a graph.
func ReadDocument(data []byte) (*NeighbourhoodGraph, error) {
	var document Document
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("failed to parse graph document: %w", err)
	}
	return FromDocument(document)
}

// ToDOT exports the graph in DOT format for Graphviz.
func ToDOT(g *NeighbourhoodGraph) string {
	var sb strings.Builder

	sb.WriteString("digraph Neighbourhood {\n")
	sb.WriteString("  rankdir=BT;\n")
	sb.WriteString("  node [shape=box];\n\n")

	roleColors := map[Role]string{
		RoleFocus:      "gold",
		RoleAncestor:   "lightblue",
		RoleDescendant: "lightgreen",
		RoleOther:      "lightgray",
		RoleProperty:   "lightsalmon",
		RoleDomain:     "lavender",
		RoleRange:      "lightpink",
	}

	for _, node := range g.nodes {
		color := roleColors[node.Role]
		if color == "" {
			color = "white"
		}
		label := []rune(node.Label)
		if len(label) > 40 {
			label = append(label[:40], []rune("...")...)
		}
		fmt.Fprintf(&sb, "  \"%s\" [label=\"%s\" style=filled fillcolor=%s];\n",
			escapeDOT(node.ID), escapeDOT(string(label)), color)
	}

	sb.WriteString("\n")

	edgeStyles := map[Relation]string{
		RelationSubClassOf: "solid",
		RelationDomain:     "dashed",
		RelationRange:      "dotted",
	}

	for _, edge := range g.edges {
		fmt.Fprintf(&sb, "  \"%s\" -> \"%s\" [label=\"%s\" style=%s];\n",
			escapeDOT(edge.Source), escapeDOT(edge.Target), edge.Relation, edgeStyles[edge.Relation])
	}

	sb.WriteString("}\n")
	return sb.String()
}

func escapeDOT(value string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
}
