package store

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// TripleStore is an in-memory RDF triple store with multiple indexes.
// It provides lookups via three indexes:
//   - SPO: Subject -> Predicate -> Object (find facts about a subject)
//   - POS: Predicate -> Object -> Subject (find subjects with property=value)
//   - OSP: Object -> Subject -> Predicate (find subjects pointing to object)
//
// Every index leaf records the assertion sequence number of its triple, so
// lookups return statements in the order they were loaded. A store is filled
// once by a loader and then only read; there is no delete operation.
type TripleStore struct {
	mu sync.RWMutex

	// SPO index: Subject -> Predicate -> Object -> entry
	spo map[string]map[string]map[string]entry

	// POS index: Predicate -> Object -> Subject -> entry
	pos map[string]map[string]map[string]entry

	// OSP index: Object -> Subject -> Predicate -> entry
	osp map[string]map[string]map[string]entry

	next  uint64
	count int
}

// entry is an index leaf: the assertion sequence of a statement and whether
// its object is a literal.
type entry struct {
	seq     uint64
	literal bool
}

// NewTripleStore creates a new in-memory triple store with all indexes initialized.
func NewTripleStore() *TripleStore {
	return &TripleStore{
		spo: make(map[string]map[string]map[string]entry),
		pos: make(map[string]map[string]map[string]entry),
		osp: make(map[string]map[string]map[string]entry),
	}
}

// Add inserts a statement whose object is an IRI or blank node. Adding an
// existing statement is a no-op; the first assertion keeps its position.
func (ts *TripleStore) Add(subject, predicate, object string) error {
	return ts.add(NewTriple(subject, predicate, object))
}

// AddLiteral inserts a statement whose object is the lexical form of a literal.
func (ts *TripleStore) AddLiteral(subject, predicate, value string) error {
	return ts.add(NewLiteralTriple(subject, predicate, value))
}

func (ts *TripleStore) add(triple Triple) error {
	if !triple.IsValid() {
		return fmt.Errorf("triple components cannot be empty")
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.addUnsafe(triple)
	return nil
}

// BulkAdd inserts multiple triples under a single write lock. Invalid triples
// are skipped; the number of newly stored triples is returned.
func (ts *TripleStore) BulkAdd(triples []Triple) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	added := 0
	for _, triple := range triples {
		if !triple.IsValid() {
			continue
		}
		if ts.addUnsafe(triple) {
			added++
		}
	}
	return added
}

// Find queries triples matching the pattern. Use empty string "" for wildcards.
// Matches are returned in assertion order.
func (ts *TripleStore) Find(subject, predicate, object string) []Triple {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	return ts.findUnsafe(subject, predicate, object)
}

// Exists checks if a specific triple exists in the store.
func (ts *TripleStore) Exists(subject, predicate, object string) bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	_, ok := ts.spo[subject][predicate][object]
	return ok
}

// Mentions reports whether the term occurs as the subject or as a non-literal
// object of any statement. A literal with the same text does not count.
func (ts *TripleStore) Mentions(term string) bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	if _, asSubject := ts.spo[term]; asSubject {
		return true
	}
	for _, predicates := range ts.osp[term] {
		for _, leaf := range predicates {
			if !leaf.literal {
				return true
			}
		}
	}
	return false
}

// ObjectsOf returns the objects asserted for a subject-predicate pair in
// assertion order.
func (ts *TripleStore) ObjectsOf(subject, predicate string) []string {
	triples := ts.Find(subject, predicate, "")
	objects := make([]string, 0, len(triples))
	for _, triple := range triples {
		objects = append(objects, triple.Object)
	}
	return objects
}

// FirstObject returns the earliest asserted object for a subject-predicate pair.
func (ts *TripleStore) FirstObject(subject, predicate string) (string, bool) {
	objects := ts.ObjectsOf(subject, predicate)
	if len(objects) == 0 {
		return "", false
	}
	return objects[0], true
}

// SubjectsOf returns the subjects holding predicate=object in assertion order.
func (ts *TripleStore) SubjectsOf(predicate, object string) []string {
	triples := ts.Find("", predicate, object)
	subjects := make([]string, 0, len(triples))
	for _, triple := range triples {
		subjects = append(subjects, triple.Subject)
	}
	return subjects
}

// Count returns the total number of triples in the store.
func (ts *TripleStore) Count() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.count
}

// All returns all triples in the store in assertion order.
func (ts *TripleStore) All() []Triple {
	return ts.Find("", "", "")
}

// Fingerprint hashes the statement set independent of assertion order. Two
// stores holding the same statements share a fingerprint.
func (ts *TripleStore) Fingerprint() string {
	lines := make([]string, 0, ts.Count())
	for _, triple := range ts.All() {
		lines = append(lines, triple.NTriples())
	}
	sort.Strings(lines)

	digest := xxhash.New()
	for _, line := range lines {
		_, _ = digest.WriteString(line)
		_, _ = digest.WriteString("\n")
	}
	return strconv.FormatUint(digest.Sum64(), 16)
}

// addUnsafe stores a triple without locking. Returns false for duplicates.
func (ts *TripleStore) addUnsafe(triple Triple) bool {
	subject, predicate, object := triple.Subject, triple.Predicate, triple.Object
	if _, exists := ts.spo[subject][predicate][object]; exists {
		return false
	}

	leaf := entry{seq: ts.next, literal: triple.Literal}
	ts.next++

	if ts.spo[subject] == nil {
		ts.spo[subject] = make(map[string]map[string]entry)
	}
	if ts.spo[subject][predicate] == nil {
		ts.spo[subject][predicate] = make(map[string]entry)
	}
	ts.spo[subject][predicate][object] = leaf

	if ts.pos[predicate] == nil {
		ts.pos[predicate] = make(map[string]map[string]entry)
	}
	if ts.pos[predicate][object] == nil {
		ts.pos[predicate][object] = make(map[string]entry)
	}
	ts.pos[predicate][object][subject] = leaf

	if ts.osp[object] == nil {
		ts.osp[object] = make(map[string]map[string]entry)
	}
	if ts.osp[object][subject] == nil {
		ts.osp[object][subject] = make(map[string]entry)
	}
	ts.osp[object][subject][predicate] = leaf

	ts.count++
	return true
}

// sequencedTriple pairs a triple with its assertion sequence for ordering.
type sequencedTriple struct {
	seq    uint64
	triple Triple
}

// findUnsafe finds triples without locking, ordered by assertion sequence.
func (ts *TripleStore) findUnsafe(subject, predicate, object string) []Triple {
	var matches []sequencedTriple
	collect := func(s, p, o string, leaf entry) {
		matches = append(matches, sequencedTriple{
			seq:    leaf.seq,
			triple: Triple{Subject: s, Predicate: p, Object: o, Literal: leaf.literal},
		})
	}

	switch {
	case subject != "":
		// SPO index
		for p, oMap := range ts.spo[subject] {
			if predicate != "" && p != predicate {
				continue
			}
			for o, leaf := range oMap {
				if object != "" && o != object {
					continue
				}
				collect(subject, p, o, leaf)
			}
		}
	case predicate != "":
		// POS index
		for o, sMap := range ts.pos[predicate] {
			if object != "" && o != object {
				continue
			}
			for s, leaf := range sMap {
				collect(s, predicate, o, leaf)
			}
		}
	case object != "":
		// OSP index
		for s, pMap := range ts.osp[object] {
			for p, leaf := range pMap {
				collect(s, p, object, leaf)
			}
		}
	default:
		for s, pMap := range ts.spo {
			for p, oMap := range pMap {
				for o, leaf := range oMap {
					collect(s, p, o, leaf)
				}
			}
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].seq < matches[j].seq
	})

	results := make([]Triple, len(matches))
	for i, match := range matches {
		results[i] = match.triple
	}
	return results
}
