package ontology

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/ontoscope/pkg/graph"
	"github.com/coolbeans/ontoscope/pkg/store"
)

func subClass(child, parent string) [3]string {
	return [3]string{ns + child, store.RDFSSubClassOf, ns + parent}
}

func declared(name string) [3]string {
	return [3]string{ns + name, store.RDFType, store.OWLClass}
}

// chainStore asserts A subClassOf B subClassOf C subClassOf D.
func chainStore(t *testing.T) *store.TripleStore {
	return newStore(t,
		declared("A"), declared("B"), declared("C"), declared("D"),
		subClass("A", "B"), subClass("B", "C"), subClass("C", "D"),
	)
}

func TestBuildClassSubclassGraph_DepthBound(t *testing.T) {
	g, err := BuildClassSubclassGraph(chainStore(t), ns+"B", 1)
	require.NoError(t, err)

	assert.Equal(t, []string{ns + "B"}, g.NodesWithRole(graph.RoleFocus))
	assert.Equal(t, []string{ns + "C"}, g.NodesWithRole(graph.RoleAncestor))
	assert.Equal(t, []string{ns + "A"}, g.NodesWithRole(graph.RoleDescendant))
	assert.False(t, g.HasNode(ns+"D"))

	assert.Equal(t, []graph.Edge{
		{Source: ns + "B", Target: ns + "C", Relation: graph.RelationSubClassOf},
		{Source: ns + "A", Target: ns + "B", Relation: graph.RelationSubClassOf},
	}, g.Edges())
}

func TestBuildClassSubclassGraph_DepthTable(t *testing.T) {
	testCases := []struct {
		depth       int
		focus       string
		ancestors   []string
		descendants []string
	}{
		{depth: 0, focus: "B", ancestors: nil, descendants: nil},
		{depth: 2, focus: "B", ancestors: []string{ns + "C", ns + "D"}, descendants: []string{ns + "A"}},
		{depth: 10, focus: "D", ancestors: nil, descendants: []string{ns + "C", ns + "B", ns + "A"}},
		{depth: 1, focus: "A", ancestors: []string{ns + "B"}, descendants: nil},
	}

	for _, testCase := range testCases {
		t.Run(fmt.Sprintf("%s depth %d", testCase.focus, testCase.depth), func(t *testing.T) {
			g, err := BuildClassSubclassGraph(chainStore(t), ns+testCase.focus, testCase.depth)
			require.NoError(t, err)
			assert.Equal(t, testCase.ancestors, g.NodesWithRole(graph.RoleAncestor))
			assert.Equal(t, testCase.descendants, g.NodesWithRole(graph.RoleDescendant))
			assertEdgesResolve(t, g)
		})
	}
}

func TestBuildClassSubclassGraph_ZeroDepth(t *testing.T) {
	g, err := BuildClassSubclassGraph(chainStore(t), ns+"B", 0)
	require.NoError(t, err)

	assert.Equal(t, 1, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())
	node, ok := g.Node(ns + "B")
	require.True(t, ok)
	assert.Equal(t, graph.RoleFocus, node.Role)
	assert.Equal(t, "B", node.Label)
}

func TestBuildClassSubclassGraph_NegativeDepth(t *testing.T) {
	_, err := BuildClassSubclassGraph(chainStore(t), ns+"B", -1)
	assert.ErrorIs(t, err, ErrNegativeDepth)
}

func TestBuildClassSubclassGraph_CycleTerminates(t *testing.T) {
	ts := newStore(t,
		subClass("A", "B"), subClass("B", "C"), subClass("C", "A"),
		subClass("C", "C"),
	)

	for _, depth := range []int{0, 1, 2, 3, 50, 1000} {
		t.Run(fmt.Sprintf("depth %d", depth), func(t *testing.T) {
			g, err := BuildClassSubclassGraph(ts, ns+"A", depth)
			require.NoError(t, err)

			seen := make(map[string]bool)
			for _, node := range g.Nodes() {
				assert.False(t, seen[node.ID], "node %s appears twice", node.ID)
				seen[node.ID] = true
			}
			assert.LessOrEqual(t, g.NodeCount(), 3)
			assertEdgesResolve(t, g)

			focus, _ := g.Node(ns + "A")
			assert.Equal(t, graph.RoleFocus, focus.Role, "focus keeps its role even when the cycle returns to it")
		})
	}
}

func TestBuildClassSubclassGraph_RolePrecedence(t *testing.T) {
	// X is a parent of F, and an independent assertion makes X a child of F too.
	ts := newStore(t,
		subClass("F", "X"),
		subClass("X", "F"),
		subClass("Y", "F"),
	)

	g, err := BuildClassSubclassGraph(ts, ns+"F", 3)
	require.NoError(t, err)

	x, ok := g.Node(ns + "X")
	require.True(t, ok)
	assert.Equal(t, graph.RoleAncestor, x.Role)

	y, ok := g.Node(ns + "Y")
	require.True(t, ok)
	assert.Equal(t, graph.RoleDescendant, y.Role)

	// The descendant traversal still records the X -> F edge it walked.
	assert.Contains(t, g.Edges(), graph.Edge{Source: ns + "X", Target: ns + "F", Relation: graph.RelationSubClassOf})
	assert.Contains(t, g.Edges(), graph.Edge{Source: ns + "F", Target: ns + "X", Relation: graph.RelationSubClassOf})
}

func TestBuildClassSubclassGraph_Diamond(t *testing.T) {
	// D has two parents B and C which share the parent A.
	ts := newStore(t,
		subClass("D", "B"), subClass("D", "C"),
		subClass("B", "A"), subClass("C", "A"),
	)

	g, err := BuildClassSubclassGraph(ts, ns+"D", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{ns + "B", ns + "C", ns + "A"}, g.NodesWithRole(graph.RoleAncestor))
	assert.Len(t, g.Edges(), 4, "both paths to A are recorded, A is emitted once")
}

func TestBuildClassSubclassGraph_UndeclaredFocus(t *testing.T) {
	g, err := BuildClassSubclassGraph(store.NewTripleStore(), "urn:does-not-exist", 3)
	require.NoError(t, err)

	nodes := g.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, graph.Node{ID: "urn:does-not-exist", Label: "does-not-exist", Role: graph.RoleFocus}, nodes[0])
}

func TestBuildClassSubclassGraph_SkipsAnonymousParents(t *testing.T) {
	ts := newStore(t,
		subClass("A", "B"),
		[3]string{ns + "A", store.RDFSSubClassOf, "_:restriction"},
	)

	g, err := BuildClassSubclassGraph(ts, ns+"A", 2)
	require.NoError(t, err)
	assert.False(t, g.HasNode("_:restriction"))
	assert.Equal(t, 2, g.NodeCount())
}

func assertEdgesResolve(t *testing.T, g *graph.NeighbourhoodGraph) {
	t.Helper()
	for _, edge := range g.Edges() {
		assert.True(t, g.HasNode(edge.Source), "edge source %s missing", edge.Source)
		assert.True(t, g.HasNode(edge.Target), "edge target %s missing", edge.Target)
	}
}
