package ontology

import (
	"fmt"
	"strings"

	"github.com/coolbeans/ontoscope/pkg/store"
)

// ClassRecord is the normalized view of one declared class.
type ClassRecord struct {
	IRI     string   `json:"iri"`
	Label   string   `json:"label"`
	Parents []string `json:"parents"`
	Comment Text     `json:"comment"`
}

// PropertyKind classifies a property.
type PropertyKind string

const (
	KindObject     PropertyKind = "Object"
	KindDatatype   PropertyKind = "Datatype"
	KindAnnotation PropertyKind = "Annotation"
	KindGeneric    PropertyKind = "Generic"
	KindUnknown    PropertyKind = "Unknown"
)

// ParsePropertyKind accepts a kind name case-insensitively.
func ParsePropertyKind(name string) (PropertyKind, error) {
	for _, kind := range []PropertyKind{KindObject, KindDatatype, KindAnnotation, KindGeneric, KindUnknown} {
		if strings.EqualFold(name, string(kind)) {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown property kind %q", name)
}

// kindDeclaration maps an explicit declaration vocabulary to a kind.
type kindDeclaration struct {
	vocabulary string
	kind       PropertyKind
}

// kindPrecedence is the ordered table used to resolve a property's kind. The
// first declared vocabulary wins when several are asserted. A property with
// no declaration but an asserted domain or range is inferred as KindUnknown.
var kindPrecedence = []kindDeclaration{
	{vocabulary: store.OWLObjectProperty, kind: KindObject},
	{vocabulary: store.OWLDatatypeProperty, kind: KindDatatype},
	{vocabulary: store.OWLAnnotationProperty, kind: KindAnnotation},
	{vocabulary: store.RDFProperty, kind: KindGeneric},
}

// PropertyRecord is the normalized view of one declared or inferred property.
type PropertyRecord struct {
	IRI     string       `json:"iri"`
	Label   string       `json:"label"`
	Kind    PropertyKind `json:"kind"`
	Domain  []string     `json:"domain"`
	Range   []string     `json:"range"`
	Comment Text         `json:"comment"`

	// DeclaredKinds lists every explicit kind asserted, in precedence order.
	DeclaredKinds []PropertyKind `json:"declared_kinds"`
}

// Inferred reports whether the property was found only through domain/range.
func (r PropertyRecord) Inferred() bool {
	return len(r.DeclaredKinds) == 0
}

// Ambiguous reports whether more than one explicit kind was declared.
func (r PropertyRecord) Ambiguous() bool {
	return len(r.DeclaredKinds) > 1
}
