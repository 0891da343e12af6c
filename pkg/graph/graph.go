// Package graph provides the neighbourhood graph model shared by the hierarchy
// and property builders, and its neutral export formats.
package graph

import (
	"errors"
	"fmt"
)

// Role is the relationship of a node to the focus entity within one
// neighbourhood computation.
type Role string

const (
	RoleFocus      Role = "focus"
	RoleAncestor   Role = "ancestor"
	RoleDescendant Role = "descendant"
	RoleOther      Role = "other"
	RoleProperty   Role = "property"
	RoleDomain     Role = "domain"
	RoleRange      Role = "range"
)

// Relation is the kind of an edge.
type Relation string

const (
	RelationSubClassOf Relation = "subClassOf"
	RelationDomain     Relation = "domain"
	RelationRange      Relation = "range"
)

var (
	// ErrUnknownRole is returned when a node carries a role outside the defined set.
	ErrUnknownRole = errors.New("unknown node role")

	// ErrUnknownRelation is returned when an edge carries a relation outside the defined set.
	ErrUnknownRelation = errors.New("unknown edge relation")

	// ErrDanglingEdge is returned when an edge endpoint is not a node of the graph.
	ErrDanglingEdge = errors.New("edge endpoint is not a node of the graph")
)

// Valid reports whether the role is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleFocus, RoleAncestor, RoleDescendant, RoleOther, RoleProperty, RoleDomain, RoleRange:
		return true
	}
	return false
}

// Valid reports whether the relation is one of the defined relations.
func (r Relation) Valid() bool {
	switch r {
	case RelationSubClassOf, RelationDomain, RelationRange:
		return true
	}
	return false
}

// Node is a role-tagged entity in a neighbourhood graph. Nodes are values:
// the same IRI in two graphs yields two independent nodes.
type Node struct {
	ID    string
	Label string
	Role  Role
}

// Edge is a directed relation between two nodes of the same graph.
type Edge struct {
	Source   string
	Target   string
	Relation Relation
}

// NeighbourhoodGraph is a bounded subgraph computed around one focus entity.
// Nodes keep discovery order and are unique by id; a node's role is fixed by
// its first insertion.
type NeighbourhoodGraph struct {
	nodes    []Node
	index    map[string]int
	edges    []Edge
	edgeSeen map[Edge]bool
}

// New creates an empty neighbourhood graph.
func New() *NeighbourhoodGraph {
	return &NeighbourhoodGraph{
		index:    make(map[string]int),
		edgeSeen: make(map[Edge]bool),
	}
}

// AddNode inserts a node unless its id is already present. It returns true
// when the node was inserted; an existing node keeps its original role.
func (g *NeighbourhoodGraph) AddNode(id, label string, role Role) bool {
	if _, exists := g.index[id]; exists {
		return false
	}
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, Node{ID: id, Label: label, Role: role})
	return true
}

// AddEdge appends an edge between two existing nodes. Repeated edges are
// ignored.
func (g *NeighbourhoodGraph) AddEdge(source, target string, relation Relation) error {
	if !g.HasNode(source) {
		return fmt.Errorf("%w: source %s", ErrDanglingEdge, source)
	}
	if !g.HasNode(target) {
		return fmt.Errorf("%w: target %s", ErrDanglingEdge, target)
	}

	edge := Edge{Source: source, Target: target, Relation: relation}
	if g.edgeSeen[edge] {
		return nil
	}
	g.edgeSeen[edge] = true
	g.edges = append(g.edges, edge)
	return nil
}

// HasNode reports whether a node with the id is present.
func (g *NeighbourhoodGraph) HasNode(id string) bool {
	_, exists := g.index[id]
	return exists
}

// Node returns the node with the given id.
func (g *NeighbourhoodGraph) Node(id string) (Node, bool) {
	position, exists := g.index[id]
	if !exists {
		return Node{}, false
	}
	return g.nodes[position], true
}

// Nodes returns a copy of the nodes in discovery order.
func (g *NeighbourhoodGraph) Nodes() []Node {
	nodes := make([]Node, len(g.nodes))
	copy(nodes, g.nodes)
	return nodes
}

// Edges returns a copy of the edges in insertion order.
func (g *NeighbourhoodGraph) Edges() []Edge {
	edges := make([]Edge, len(g.edges))
	copy(edges, g.edges)
	return edges
}

// NodesWithRole returns the ids of nodes carrying the role, in discovery order.
func (g *NeighbourhoodGraph) NodesWithRole(role Role) []string {
	var ids []string
	for _, node := range g.nodes {
		if node.Role == role {
			ids = append(ids, node.ID)
		}
	}
	return ids
}

// NodeCount returns the number of nodes.
func (g *NeighbourhoodGraph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *NeighbourhoodGraph) EdgeCount() int {
	return len(g.edges)
}
