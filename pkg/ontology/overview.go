package ontology

import (
	"strings"

	"github.com/coolbeans/ontoscope/pkg/store"
)

// OntologyMetadata is the best-effort header of an owl:Ontology resource.
type OntologyMetadata struct {
	IRI         string `json:"iri"`
	VersionInfo Text   `json:"version_info"`
	VersionIRI  Text   `json:"version_iri"`
	Title       Text   `json:"title"`
	Description Text   `json:"description"`
}

// Overview summarizes a loaded ontology.
type Overview struct {
	Triples    int                  `json:"triples"`
	Classes    int                  `json:"classes"`
	Properties map[PropertyKind]int `json:"properties"`
	Ontology   *OntologyMetadata    `json:"ontology,omitempty"`
}

// Summarize counts statements, classes and properties by kind and reads the
// metadata of the first owl:Ontology subject, if any.
func Summarize(statements Statements) Overview {
	overview := Overview{
		Triples: statements.Count(),
		Classes: len(ExtractClasses(statements)),
		Properties: map[PropertyKind]int{
			KindObject:     0,
			KindDatatype:   0,
			KindAnnotation: 0,
			KindGeneric:    0,
			KindUnknown:    0,
		},
	}

	for _, property := range ExtractProperties(statements) {
		overview.Properties[property.Kind]++
	}

	if ontologies := subjects(statements, store.RDFType, store.OWLOntology); len(ontologies) > 0 {
		iri := ontologies[0]
		overview.Ontology = &OntologyMetadata{
			IRI:         iri,
			VersionInfo: FirstValue(statements, iri, store.OWLVersionInfo),
			VersionIRI:  FirstValue(statements, iri, store.OWLVersionIRI),
			Title:       firstOf(statements, iri, store.DCTermsTitle, store.DCTitle, store.RDFSLabel),
			Description: Comment(statements, iri),
		}
	}

	return overview
}

func firstOf(statements Statements, subject string, predicates ...string) Text {
	for _, predicate := range predicates {
		if value := FirstValue(statements, subject, predicate); value.Present {
			return value
		}
	}
	return Text{}
}

// FilterClasses keeps records whose label or IRI contains query,
// case-insensitively. An empty query keeps everything.
func FilterClasses(records []ClassRecord, query string) []ClassRecord {
	filtered := make([]ClassRecord, 0, len(records))
	for _, record := range records {
		if matchesQuery(query, record.Label, record.IRI) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// FilterProperties keeps records whose label or IRI contains query,
// case-insensitively. An empty query keeps everything.
func FilterProperties(records []PropertyRecord, query string) []PropertyRecord {
	filtered := make([]PropertyRecord, 0, len(records))
	for _, record := range records {
		if matchesQuery(query, record.Label, record.IRI) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// PropertiesOfKind keeps records of one kind.
func PropertiesOfKind(records []PropertyRecord, kind PropertyKind) []PropertyRecord {
	filtered := make([]PropertyRecord, 0, len(records))
	for _, record := range records {
		if record.Kind == kind {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

func matchesQuery(query string, fields ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
