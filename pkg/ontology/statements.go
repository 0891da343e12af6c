// Package ontology extracts class and property records from a statement
// store and builds role-tagged neighbourhood graphs around them.
//
// Every function here is a pure read of the Statements it is given. Callers
// pass the current store snapshot on each call; nothing is cached between
// calls, so results never mix statements from two snapshots.
package ontology

import (
	"encoding/json"

	"github.com/coolbeans/ontoscope/pkg/store"
)

// Statements is the read-only view of a statement store the engine needs.
// Every lookup returns matches in assertion order; an empty object matches
// any value. Mentions ignores literal objects. *store.TripleStore satisfies it.
type Statements interface {
	FirstObject(subject, predicate string) (string, bool)
	ObjectsOf(subject, predicate string) []string
	SubjectsOf(predicate, object string) []string
	Exists(subject, predicate, object string) bool
	Mentions(term string) bool
	Count() int
}

// Text is an optional string value read from the store.
type Text struct {
	Value   string
	Present bool
}

// Some returns a present Text.
func Some(value string) Text {
	return Text{Value: value, Present: true}
}

// OrLocalName returns the value when present, else the local name of iri.
// This is the single fallback rule for display labels.
func (t Text) OrLocalName(iri string) string {
	if t.Present {
		return t.Value
	}
	return store.LocalName(iri)
}

// String returns the value, or "" when absent.
func (t Text) String() string {
	return t.Value
}

// MarshalJSON encodes an absent Text as null.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Present {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// UnmarshalJSON decodes null as an absent Text.
func (t *Text) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Text{}
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*t = Some(value)
	return nil
}

// FirstValue returns the earliest asserted object of subject/predicate.
func FirstValue(statements Statements, subject, predicate string) Text {
	if subject == "" {
		return Text{}
	}
	value, ok := statements.FirstObject(subject, predicate)
	if !ok {
		return Text{}
	}
	return Some(value)
}

// Label resolves the display label of an entity: its first rdfs:label, else
// the local name of its IRI.
func Label(statements Statements, iri string) string {
	return FirstValue(statements, iri, store.RDFSLabel).OrLocalName(iri)
}

// Comment returns the first rdfs:comment of an entity.
func Comment(statements Statements, iri string) Text {
	return FirstValue(statements, iri, store.RDFSComment)
}

// Types returns the declared rdf:type values of an entity.
func Types(statements Statements, iri string) []string {
	return objects(statements, iri, store.RDFType, false)
}

// objects returns the distinct objects of subject/predicate in assertion
// order. With namedOnly, blank-node objects are skipped.
func objects(statements Statements, subject, predicate string, namedOnly bool) []string {
	values := make([]string, 0)
	if subject == "" {
		return values
	}
	seen := make(map[string]bool)
	for _, object := range statements.ObjectsOf(subject, predicate) {
		if seen[object] || (namedOnly && store.IsBlankNode(object)) {
			continue
		}
		seen[object] = true
		values = append(values, object)
	}
	return values
}

// subjects returns the distinct named subjects holding predicate=object in
// assertion order. An empty object matches any value.
func subjects(statements Statements, predicate, object string) []string {
	values := make([]string, 0)
	seen := make(map[string]bool)
	for _, subject := range statements.SubjectsOf(predicate, object) {
		if seen[subject] || store.IsBlankNode(subject) {
			continue
		}
		seen[subject] = true
		values = append(values, subject)
	}
	return values
}
