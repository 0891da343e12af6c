// Package session owns the current ontology snapshot. A snapshot is a
// fully loaded, never mutated store; reloads build a new one and swap it in
// whole so readers never observe a mix of two loads.
package session

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/coolbeans/ontoscope/pkg/store"
)

// ErrNoSnapshot is returned when no ontology has been loaded yet.
var ErrNoSnapshot = errors.New("no ontology loaded")

// Snapshot is one immutable load of an ontology source.
type Snapshot struct {
	ID          string
	Source      string
	Store       *store.TripleStore
	Fingerprint string
	LoadedAt    time.Time
}

// NewSnapshot wraps a loaded store. The store must not be modified afterwards.
func NewSnapshot(source string, ts *store.TripleStore) *Snapshot {
	return &Snapshot{
		ID:          uuid.New().String(),
		Source:      source,
		Store:       ts,
		Fingerprint: ts.Fingerprint(),
		LoadedAt:    time.Now().UTC(),
	}
}

// Session holds the current snapshot.
type Session struct {
	current atomic.Pointer[Snapshot]
	logger  *slog.Logger
}

// New creates an empty session. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{logger: logger}
}

// Current returns the active snapshot. Callers should read it once per
// request and compute against that value only.
func (s *Session) Current() (*Snapshot, error) {
	snapshot := s.current.Load()
	if snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return snapshot, nil
}

// Swap installs next as the active snapshot and returns the previous one,
// which may be nil. Swapping in a snapshot whose fingerprint equals the
// current one still installs it.
func (s *Session) Swap(next *Snapshot) *Snapshot {
	previous := s.current.Swap(next)

	attrs := []any{"id", next.ID, "source", next.Source, "triples", next.Store.Count()}
	if previous != nil {
		attrs = append(attrs, "previous", previous.ID, "changed", previous.Fingerprint != next.Fingerprint)
	}
	s.logger.Info("Snapshot installed", attrs...)

	return previous
}
