package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/ontoscope/pkg/graph"
	"github.com/coolbeans/ontoscope/pkg/ontology"
	"github.com/coolbeans/ontoscope/pkg/session"
	"github.com/coolbeans/ontoscope/pkg/store"
)

const ns = "https://example.org/salmon#"

func fixtureStore(t *testing.T) *store.TripleStore {
	t.Helper()
	ts := store.NewTripleStore()
	for _, row := range [][3]string{
		{ns + "Fish", store.RDFType, store.OWLClass},
		{ns + "Salmon", store.RDFType, store.OWLClass},
		{ns + "Salmon", store.RDFSLabel, "Salmon"},
		{ns + "Salmon", store.RDFSSubClassOf, ns + "Fish"},
		{ns + "Chinook", store.RDFType, store.OWLClass},
		{ns + "Chinook", store.RDFSSubClassOf, ns + "Salmon"},
		{ns + "spawnsIn", store.RDFType, store.OWLObjectProperty},
		{ns + "spawnsIn", store.RDFSDomain, ns + "Salmon"},
		{ns + "spawnsIn", store.RDFSRange, ns + "River"},
		{ns + "weight", store.RDFType, store.OWLDatatypeProperty},
	} {
		require.NoError(t, ts.Add(row[0], row[1], row[2]))
	}
	return ts
}

func newTestServer(t *testing.T, reload ReloadFunc) (*Server, *session.Session) {
	t.Helper()
	sess := session.New(nil)
	sess.Swap(session.NewSnapshot("fixture", fixtureStore(t)))
	server := NewServer(sess, Config{
		DefaultDepth: 1,
		MaxDepth:     3,
		Prefixes:     store.NewPrefixMap(store.WithPrefix("salmon", ns)),
		Reload:       reload,
	})
	return server, sess
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &value), recorder.Body.String())
	return value
}

func TestHealth(t *testing.T) {
	server, sess := newTestServer(t, nil)
	current, _ := sess.Current()

	recorder := get(t, server.Handler(), "/v1/health")
	require.Equal(t, http.StatusOK, recorder.Code)

	health := decode[HealthResponse](t, recorder)
	assert.Equal(t, "ok", health.Status)
	require.NotNil(t, health.Snapshot)
	assert.Equal(t, current.ID, health.Snapshot.ID)
	assert.Equal(t, 10, health.Snapshot.Triples)
}

func TestNoSnapshot(t *testing.T) {
	server := NewServer(session.New(nil), Config{})

	recorder := get(t, server.Handler(), "/v1/classes")
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Equal(t, "no_snapshot", decode[ErrorResponse](t, recorder).Error)

	health := decode[HealthResponse](t, get(t, server.Handler(), "/v1/health"))
	assert.Equal(t, "loading", health.Status)
	assert.Nil(t, health.Snapshot)
}

func TestClasses(t *testing.T) {
	server, sess := newTestServer(t, nil)
	current, _ := sess.Current()

	recorder := get(t, server.Handler(), "/v1/classes")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, current.ID, recorder.Header().Get(SnapshotHeader))

	response := decode[ClassesResponse](t, recorder)
	assert.Equal(t, 3, response.Count)

	filtered := decode[ClassesResponse](t, get(t, server.Handler(), "/v1/classes?q=salm"))
	require.Len(t, filtered.Classes, 1)
	assert.Equal(t, ns+"Salmon", filtered.Classes[0].IRI)
	assert.Equal(t, []string{ns + "Fish"}, filtered.Classes[0].Parents)
}

func TestProperties(t *testing.T) {
	server, _ := newTestServer(t, nil)

	all := decode[PropertiesResponse](t, get(t, server.Handler(), "/v1/properties"))
	assert.Equal(t, 2, all.Count)

	objects := decode[PropertiesResponse](t, get(t, server.Handler(), "/v1/properties?kind=object"))
	require.Len(t, objects.Properties, 1)
	assert.Equal(t, ontology.KindObject, objects.Properties[0].Kind)

	recorder := get(t, server.Handler(), "/v1/properties?kind=functional")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestClassGraph(t *testing.T) {
	server, _ := newTestServer(t, nil)

	recorder := get(t, server.Handler(), "/v1/graph/class?iri=salmon:Salmon")
	require.Equal(t, http.StatusOK, recorder.Code)

	g, err := graph.ReadDocument(recorder.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{ns + "Salmon"}, g.NodesWithRole(graph.RoleFocus))
	assert.Equal(t, []string{ns + "Fish"}, g.NodesWithRole(graph.RoleAncestor))
	assert.Equal(t, []string{ns + "Chinook"}, g.NodesWithRole(graph.RoleDescendant))

	focusOnly, err := graph.ReadDocument(get(t, server.Handler(), "/v1/graph/class?iri="+url.QueryEscape(ns+"Chinook")+"&depth=0").Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 1, focusOnly.NodeCount())
}

func TestClassGraph_BadInput(t *testing.T) {
	server, _ := newTestServer(t, nil)

	testCases := []struct {
		target string
		code   string
	}{
		{"/v1/graph/class", "missing_iri"},
		{"/v1/graph/class?iri=salmon:Salmon&depth=-1", "invalid_depth"},
		{"/v1/graph/class?iri=salmon:Salmon&depth=4", "invalid_depth"},
		{"/v1/graph/class?iri=salmon:Salmon&depth=deep", "invalid_depth"},
		{"/v1/graph/class?iri=salmon:Salmon&format=svg", "invalid_format"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.target, func(t *testing.T) {
			recorder := get(t, server.Handler(), testCase.target)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Equal(t, testCase.code, decode[ErrorResponse](t, recorder).Error)
		})
	}
}

func TestPropertyGraph(t *testing.T) {
	server, _ := newTestServer(t, nil)

	recorder := get(t, server.Handler(), "/v1/graph/property?iri=salmon:spawnsIn")
	require.Equal(t, http.StatusOK, recorder.Code)

	var document graph.Document
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &document))
	assert.Equal(t, []graph.DocumentNode{
		{ID: ns + "spawnsIn", Label: "spawnsIn", Role: graph.RoleProperty},
		{ID: ns + "Salmon", Label: "Salmon", Role: graph.RoleDomain},
		{ID: ns + "River", Label: "River", Role: graph.RoleRange},
	}, document.Nodes)

	dot := get(t, server.Handler(), "/v1/graph/property?iri=salmon:spawnsIn&format=dot")
	require.Equal(t, http.StatusOK, dot.Code)
	assert.True(t, strings.HasPrefix(dot.Body.String(), "digraph"))
}

func TestNode(t *testing.T) {
	server, _ := newTestServer(t, nil)

	description := decode[ontology.NodeDescription](t, get(t, server.Handler(), "/v1/node?iri=salmon:Salmon"))
	assert.True(t, description.Known)
	assert.Equal(t, []string{ns + "Chinook"}, description.Children)
	assert.Equal(t, []string{ns + "spawnsIn"}, description.DomainOf)

	unknown := decode[ontology.NodeDescription](t, get(t, server.Handler(), "/v1/node?iri=urn:does-not-exist"))
	assert.False(t, unknown.Known)
	assert.Equal(t, "urn:does-not-exist", unknown.IRI)

	g, err := graph.ReadDocument(get(t, server.Handler(), "/v1/node?iri=salmon:Salmon&view=graph").Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{ns + "spawnsIn"}, g.NodesWithRole(graph.RoleOther))
}

func TestOverview(t *testing.T) {
	server, _ := newTestServer(t, nil)

	overview := decode[ontology.Overview](t, get(t, server.Handler(), "/v1/overview"))
	assert.Equal(t, 10, overview.Triples)
	assert.Equal(t, 3, overview.Classes)
	assert.Equal(t, 1, overview.Properties[ontology.KindDatatype])
}

func TestReload(t *testing.T) {
	var calls int
	reload := func(ctx context.Context) (*session.Snapshot, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("upstream unavailable")
		}
		return session.NewSnapshot("reloaded", store.NewTripleStore()), nil
	}
	server, _ := newTestServer(t, reload)

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/v1/reload", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	info := decode[SnapshotInfo](t, recorder)
	assert.Equal(t, "reloaded", info.Source)
	assert.Equal(t, info.ID, recorder.Header().Get(SnapshotHeader))

	recorder = httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/v1/reload", nil))
	assert.Equal(t, http.StatusBadGateway, recorder.Code)

	recorder = httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/reload", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}

func TestReload_Disabled(t *testing.T) {
	server, _ := newTestServer(t, nil)

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/v1/reload", nil))
	assert.Equal(t, http.StatusNotImplemented, recorder.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t, nil)
	get(t, server.Handler(), "/v1/classes")
	get(t, server.Handler(), "/v1/graph/class?iri=salmon:Salmon")

	httpServer := httptest.NewServer(server.Handler())
	defer httpServer.Close()

	resp, err := http.Get(httpServer.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `ontoscope_http_requests_total{code="200",route="classes"} 1`)
	assert.Contains(t, string(body), "ontoscope_graph_nodes_bucket")
	assert.Contains(t, string(body), "ontoscope_snapshot_triples 10")
}
