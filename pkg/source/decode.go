// Package source loads ontology documents into a statement store. Documents
// come from a local file or directory, or from a directory of a GitHub
// repository fetched through the contents API and raw downloads.
package source

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/knakk/rdf"

	"github.com/coolbeans/ontoscope/pkg/store"
)

// ErrUnsupportedFormat is returned for documents whose serialization cannot
// be inferred from their name.
var ErrUnsupportedFormat = errors.New("unsupported ontology format")

// Format is an RDF serialization.
type Format string

const (
	FormatTurtle   Format = "turtle"
	FormatNTriples Format = "ntriples"
	FormatRDFXML   Format = "rdfxml"
)

// DetectFormat infers the serialization from a file name or URL path.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".ttl", ".turtle":
		return FormatTurtle, nil
	case ".nt":
		return FormatNTriples, nil
	case ".rdf", ".owl", ".xml":
		return FormatRDFXML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

func (f Format) decoderFormat() (rdf.Format, error) {
	switch f {
	case FormatTurtle:
		return rdf.Turtle, nil
	case FormatNTriples:
		return rdf.NTriples, nil
	case FormatRDFXML:
		return rdf.RDFXML, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
}

// Decode reads every statement of r into ts and returns the number of new
// statements. Blank node labels are prefixed with scope so that documents
// loaded into the same store keep distinct anonymous nodes.
func Decode(r io.Reader, format Format, scope string, ts *store.TripleStore) (int, error) {
	decoderFormat, err := format.decoderFormat()
	if err != nil {
		return 0, err
	}

	decoder := rdf.NewTripleDecoder(r, decoderFormat)
	var triples []store.Triple
	for {
		triple, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to decode %s statement %d: %w", format, len(triples)+1, err)
		}
		triples = append(triples, store.Triple{
			Subject:   termValue(triple.Subj, scope),
			Predicate: termValue(triple.Pred, scope),
			Object:    termValue(triple.Obj, scope),
			Literal:   triple.Obj.Type() == rdf.TermLiteral,
		})
	}

	return ts.BulkAdd(triples), nil
}

// termValue converts a decoded term to the store's string form: IRIs and
// literal lexical values as-is, blank nodes as "_:<scope><label>".
func termValue(term rdf.Term, scope string) string {
	if term.Type() == rdf.TermBlank {
		return "_:" + scope + strings.TrimPrefix(term.String(), "_:")
	}
	return term.String()
}
