package store

import (
	"fmt"
	"strings"
)

// Triple represents an RDF Subject-Predicate-Object statement.
//   - Subject: an IRI or a blank node label ("_:b0")
//   - Predicate: an IRI (e.g., rdfs:subClassOf in full form)
//   - Object: an IRI, a blank node label, or the lexical form of a literal
//
// Literal marks objects that are literals, so a literal whose text happens to
// look like an IRI is never mistaken for a resource.
type Triple struct {
	Subject   string
	Predicate string
	Object    string
	Literal   bool
}

// NewTriple creates a triple whose object is an IRI or blank node.
func NewTriple(subject, predicate, object string) Triple {
	return Triple{
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
	}
}

// NewLiteralTriple creates a triple whose object is a literal value.
func NewLiteralTriple(subject, predicate, value string) Triple {
	return Triple{
		Subject:   subject,
		Predicate: predicate,
		Object:    value,
		Literal:   true,
	}
}

// NTriples returns the triple as one N-Triples line. Literal objects are
// written as plain quoted strings.
func (t Triple) NTriples() string {
	object := resourceTerm(t.Object)
	if t.Literal {
		object = `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`).Replace(t.Object) + `"`
	}
	return fmt.Sprintf("%s <%s> %s .", resourceTerm(t.Subject), t.Predicate, object)
}

// IsValid returns true if all components are non-empty.
func (t Triple) IsValid() bool {
	return t.Subject != "" && t.Predicate != "" && t.Object != ""
}

// IsBlankNode reports whether a term is a blank node label.
func IsBlankNode(term string) bool {
	return strings.HasPrefix(term, "_:")
}

func resourceTerm(term string) string {
	if IsBlankNode(term) {
		return term
	}
	return "<" + term + ">"
}
