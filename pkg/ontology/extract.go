package ontology

import (
	"log/slog"
	"sort"

	"github.com/coolbeans/ontoscope/pkg/store"
)

// classVocabularies are the interchangeable class-declaration types.
var classVocabularies = []string{store.OWLClass, store.RDFSClass}

// Extractor scans a store for class and property declarations.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an extractor. Data-quality notes go to logger; nil
// means slog.Default().
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// ExtractClasses is Extractor.Classes with the default logger.
func ExtractClasses(statements Statements) []ClassRecord {
	return NewExtractor(nil).Classes(statements)
}

// ExtractProperties is Extractor.Properties with the default logger.
func ExtractProperties(statements Statements) []PropertyRecord {
	return NewExtractor(nil).Properties(statements)
}

// Classes returns one record per named entity declared owl:Class or
// rdfs:Class, sorted by IRI.
func (e *Extractor) Classes(statements Statements) []ClassRecord {
	candidates := make(map[string]bool)
	for _, vocabulary := range classVocabularies {
		for _, iri := range subjects(statements, store.RDFType, vocabulary) {
			candidates[iri] = true
		}
	}

	records := make([]ClassRecord, 0, len(candidates))
	for _, iri := range sortedSet(candidates) {
		records = append(records, ClassRecord{
			IRI:     iri,
			Label:   Label(statements, iri),
			Parents: objects(statements, iri, store.RDFSSubClassOf, true),
			Comment: Comment(statements, iri),
		})
	}

	e.logger.Debug("Extracted classes", slog.Int("count", len(records)))
	return records
}

// Properties returns one record per explicitly declared property and per
// undeclared subject with an asserted rdfs:domain or rdfs:range, sorted by IRI.
func (e *Extractor) Properties(statements Statements) []PropertyRecord {
	candidates := make(map[string]bool)
	for _, declaration := range kindPrecedence {
		for _, iri := range subjects(statements, store.RDFType, declaration.vocabulary) {
			candidates[iri] = true
		}
	}
	for _, predicate := range []string{store.RDFSDomain, store.RDFSRange} {
		for _, iri := range subjects(statements, predicate, "") {
			candidates[iri] = true
		}
	}

	records := make([]PropertyRecord, 0, len(candidates))
	for _, iri := range sortedSet(candidates) {
		record := PropertyRecord{
			IRI:           iri,
			Label:         Label(statements, iri),
			Kind:          KindUnknown,
			Domain:        objects(statements, iri, store.RDFSDomain, true),
			Range:         objects(statements, iri, store.RDFSRange, true),
			Comment:       Comment(statements, iri),
			DeclaredKinds: declaredKinds(statements, iri),
		}
		if !record.Inferred() {
			record.Kind = record.DeclaredKinds[0]
		}
		if record.Ambiguous() {
			e.logger.Warn("Property declares conflicting kinds",
				slog.String("iri", iri),
				slog.Any("declared", record.DeclaredKinds),
				slog.String("resolved", string(record.Kind)))
		}
		records = append(records, record)
	}

	e.logger.Debug("Extracted properties", slog.Int("count", len(records)))
	return records
}

// declaredKinds lists the explicit kinds asserted for iri in precedence order.
func declaredKinds(statements Statements, iri string) []PropertyKind {
	kinds := make([]PropertyKind, 0, 1)
	for _, declaration := range kindPrecedence {
		if statements.Exists(iri, store.RDFType, declaration.vocabulary) {
			kinds = append(kinds, declaration.kind)
		}
	}
	return kinds
}

func sortedSet(set map[string]bool) []string {
	values := make([]string, 0, len(set))
	for value := range set {
		values = append(values, value)
	}
	sort.Strings(values)
	return values
}
