package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/ontoscope/pkg/graph"
	"github.com/coolbeans/ontoscope/pkg/ontology"
)

const salmonTurtle = `@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix ex: <https://example.org/salmon#> .

ex:Fish a owl:Class .
ex:Salmon a owl:Class ;
    rdfs:label "Salmon" ;
    rdfs:subClassOf ex:Fish .
ex:Chinook a owl:Class ;
    rdfs:subClassOf ex:Salmon .
ex:spawnsIn a owl:ObjectProperty ;
    rdfs:domain ex:Salmon ;
    rdfs:range ex:River .
`

// setup writes an ontology and a config naming it, and isolates HOME.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	ontologyDir := filepath.Join(dir, "ontology")
	require.NoError(t, os.MkdirAll(ontologyDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(ontologyDir, "salmon.ttl"), []byte(salmonTurtle), 0644))

	configPath := filepath.Join(dir, "ontoscope.yaml")
	config := "source:\n  location: " + ontologyDir + "\nprefixes:\n  - prefix: ex\n    namespace: https://example.org/salmon#\nlog_level: error\n"
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0644))
	return configPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestClassesCommand_JSON(t *testing.T) {
	configPath := setup(t)

	out, err := run(t, "classes", "--config", configPath, "--format", "json")
	require.NoError(t, err)

	var classes []ontology.ClassRecord
	require.NoError(t, json.Unmarshal([]byte(out), &classes))
	require.Len(t, classes, 3)
	assert.Equal(t, "https://example.org/salmon#Chinook", classes[0].IRI)
	assert.Equal(t, []string{"https://example.org/salmon#Salmon"}, classes[0].Parents)
}

func TestClassesCommand_Table(t *testing.T) {
	configPath := setup(t)

	out, err := run(t, "classes", "--config", configPath, "--query", "salmon")
	require.NoError(t, err)
	assert.Contains(t, out, "ex:Salmon")
	assert.Contains(t, out, "ex:Fish")
}

func TestPropertiesCommand_Kind(t *testing.T) {
	configPath := setup(t)

	out, err := run(t, "properties", "--config", configPath, "--format", "json", "--kind", "object")
	require.NoError(t, err)

	var properties []ontology.PropertyRecord
	require.NoError(t, json.Unmarshal([]byte(out), &properties))
	require.Len(t, properties, 1)
	assert.Equal(t, []string{"https://example.org/salmon#River"}, properties[0].Range)

	_, err = run(t, "properties", "--config", configPath, "--kind", "functional")
	assert.Error(t, err)
}

func TestPropertiesCommand_HelpListsParsableKinds(t *testing.T) {
	long := propertiesCmd().Long
	start := strings.Index(long, "Kinds: ")
	require.GreaterOrEqual(t, start, 0)
	line := strings.TrimSuffix(strings.SplitN(long[start+len("Kinds: "):], "\n", 2)[0], ".")

	for _, name := range strings.Split(line, ", ") {
		_, err := ontology.ParsePropertyKind(name)
		assert.NoError(t, err, "kind %q from the help text", name)
	}

	configPath := setup(t)
	_, err := run(t, "properties", "--config", configPath, "--kind", "generic")
	assert.NoError(t, err)
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	ontologyDir := filepath.Join(dir, "ontology")
	require.NoError(t, os.MkdirAll(ontologyDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(ontologyDir, "salmon.ttl"), []byte(salmonTurtle), 0644))
	configPath := filepath.Join(dir, "ontoscope.yaml")

	out, err := run(t, "init", "--config", configPath, "--source", ontologyDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+configPath)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), ontologyDir)

	out, err = run(t, "classes", "--config", configPath, "--format", "json")
	require.NoError(t, err)
	var classes []ontology.ClassRecord
	require.NoError(t, json.Unmarshal([]byte(out), &classes))
	assert.Len(t, classes, 3)

	_, err = run(t, "init", "--config", configPath)
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "init", "--config", configPath, "--force")
	assert.NoError(t, err)
}

func TestHierarchyCommand(t *testing.T) {
	configPath := setup(t)

	out, err := run(t, "hierarchy", "ex:Salmon", "--config", configPath, "--format", "json", "--depth", "1")
	require.NoError(t, err)

	g, err := graph.ReadDocument([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.org/salmon#Fish"}, g.NodesWithRole(graph.RoleAncestor))
	assert.Equal(t, []string{"https://example.org/salmon#Chinook"}, g.NodesWithRole(graph.RoleDescendant))
}

func TestHierarchyCommand_DepthLimits(t *testing.T) {
	configPath := setup(t)

	_, err := run(t, "hierarchy", "ex:Salmon", "--config", configPath, "--depth", "11")
	assert.ErrorContains(t, err, "exceeds the maximum")

	_, err = run(t, "hierarchy", "ex:Salmon", "--config", configPath, "--depth", "-1")
	assert.ErrorIs(t, err, ontology.ErrNegativeDepth)
}

func TestPropertyGraphCommand_DOT(t *testing.T) {
	configPath := setup(t)

	out, err := run(t, "property-graph", "ex:spawnsIn", "--config", configPath, "--dot")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph"))
	assert.Contains(t, out, "https://example.org/salmon#River")
}

func TestDescribeCommand(t *testing.T) {
	configPath := setup(t)

	out, err := run(t, "describe", "ex:Salmon", "--config", configPath, "--format", "json")
	require.NoError(t, err)

	var description ontology.NodeDescription
	require.NoError(t, json.Unmarshal([]byte(out), &description))
	assert.True(t, description.Known)
	assert.Equal(t, []string{"https://example.org/salmon#spawnsIn"}, description.DomainOf)

	out, err = run(t, "describe", "ex:Nothing", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "no statement mentions this IRI")
}

func TestSourcesCommand(t *testing.T) {
	configPath := setup(t)

	out, err := run(t, "sources", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "salmon.ttl")
}

func TestInvalidFormat(t *testing.T) {
	configPath := setup(t)

	_, err := run(t, "overview", "--config", configPath, "--format", "xml")
	assert.ErrorContains(t, err, "output.format")
}
