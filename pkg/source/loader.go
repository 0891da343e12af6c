package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coolbeans/ontoscope/pkg/session"
	"github.com/coolbeans/ontoscope/pkg/store"
)

// Loader reads a source into a fresh store.
type Loader struct {
	source Source
	only   string
	logger *slog.Logger
}

// NewLoader creates a loader. When only is set, just the document whose name
// or path equals it is loaded; otherwise every listed document is merged
// into one store. A nil logger uses slog.Default().
func NewLoader(src Source, only string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: src, only: only, logger: logger}
}

// Source returns the underlying source.
func (l *Loader) Source() Source {
	return l.source
}

// Documents lists the documents Load would read.
func (l *Loader) Documents(ctx context.Context) ([]Document, error) {
	documents, err := l.source.List(ctx)
	if err != nil {
		return nil, err
	}

	if l.only != "" {
		var selected []Document
		for _, document := range documents {
			if document.Name == l.only || document.Path == l.only {
				selected = append(selected, document)
			}
		}
		documents = selected
	}

	if len(documents) == 0 {
		if l.only != "" {
			return nil, fmt.Errorf("%w: %s has no document %q", ErrNotFound, l.source, l.only)
		}
		return nil, fmt.Errorf("%w in %s", ErrNotFound, l.source)
	}
	return documents, nil
}

// Load builds a new store from the selected documents. The store is complete
// before it is returned and is never modified afterwards.
func (l *Loader) Load(ctx context.Context) (*store.TripleStore, error) {
	documents, err := l.Documents(ctx)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	ts := store.NewTripleStore()
	for i, document := range documents {
		if err := l.loadDocument(ctx, ts, document, fmt.Sprintf("d%d_", i)); err != nil {
			return nil, err
		}
	}

	l.logger.Info("Ontology loaded",
		"source", l.source.String(),
		"documents", len(documents),
		"triples", ts.Count(),
		"duration", time.Since(started))
	return ts, nil
}

func (l *Loader) loadDocument(ctx context.Context, ts *store.TripleStore, document Document, scope string) error {
	format, err := DetectFormat(document.Path)
	if err != nil {
		return err
	}

	reader, err := l.source.Open(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", document.Path, err)
	}
	defer reader.Close()

	added, err := Decode(reader, format, scope, ts)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", document.Path, err)
	}

	l.logger.Debug("Document parsed", "path", document.Path, "format", format, "triples", added)
	return nil
}

// Reload loads the source and installs the result as the session's current
// snapshot. On failure the current snapshot is left untouched.
func (l *Loader) Reload(ctx context.Context, sess *session.Session) (*session.Snapshot, error) {
	ts, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := session.NewSnapshot(l.source.String(), ts)
	sess.Swap(snapshot)
	return snapshot, nil
}
