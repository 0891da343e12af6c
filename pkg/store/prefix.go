package store

import (
	"sort"
	"strings"
)

// PrefixMapping associates a short prefix label with its full namespace IRI.
type PrefixMapping struct {
	Prefix    string `yaml:"prefix" json:"prefix"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

// PrefixMap compacts full IRIs to CURIEs and expands CURIEs back to IRIs.
type PrefixMap struct {
	prefixMappings []PrefixMapping
	prefixIndex    map[string]string // prefix -> namespace
	namespaceIndex map[string]string // namespace -> prefix
}

// PrefixOption is a functional option for configuring a PrefixMap.
type PrefixOption func(*PrefixMap)

// NewPrefixMap creates a PrefixMap with the standard vocabulary prefixes.
func NewPrefixMap(options ...PrefixOption) *PrefixMap {
	prefixMap := &PrefixMap{
		prefixMappings: defaultPrefixMappings(),
	}

	for _, option := range options {
		option(prefixMap)
	}

	prefixMap.rebuildIndexes()

	return prefixMap
}

// WithPrefix adds or overrides a prefix mapping.
func WithPrefix(prefix, namespace string) PrefixOption {
	return func(prefixMap *PrefixMap) {
		prefixMap.prefixMappings = append(prefixMap.prefixMappings, PrefixMapping{
			Prefix:    prefix,
			Namespace: namespace,
		})
	}
}

// WithoutDefaultPrefixes clears default prefixes so only custom ones are used.
func WithoutDefaultPrefixes() PrefixOption {
	return func(prefixMap *PrefixMap) {
		prefixMap.prefixMappings = nil
	}
}

func defaultPrefixMappings() []PrefixMapping {
	return []PrefixMapping{
		{Prefix: "rdf", Namespace: NamespaceRDF},
		{Prefix: "rdfs", Namespace: NamespaceRDFS},
		{Prefix: "owl", Namespace: NamespaceOWL},
		{Prefix: "xsd", Namespace: NamespaceXSD},
		{Prefix: "dc", Namespace: NamespaceDC},
		{Prefix: "dcterms", Namespace: NamespaceDCTerms},
		{Prefix: "skos", Namespace: NamespaceSKOS},
	}
}

// Later mappings override earlier ones for the same prefix.
func (prefixMap *PrefixMap) rebuildIndexes() {
	prefixMap.prefixIndex = make(map[string]string, len(prefixMap.prefixMappings))
	for _, mapping := range prefixMap.prefixMappings {
		prefixMap.prefixIndex[mapping.Prefix] = mapping.Namespace
	}

	prefixMap.namespaceIndex = make(map[string]string, len(prefixMap.prefixIndex))
	for prefix, namespace := range prefixMap.prefixIndex {
		prefixMap.namespaceIndex[namespace] = prefix
	}
}

// Mappings returns the effective prefix mappings sorted by prefix.
func (prefixMap *PrefixMap) Mappings() []PrefixMapping {
	mappings := make([]PrefixMapping, 0, len(prefixMap.prefixIndex))
	for _, prefix := range sortedKeys(prefixMap.prefixIndex) {
		mappings = append(mappings, PrefixMapping{Prefix: prefix, Namespace: prefixMap.prefixIndex[prefix]})
	}
	return mappings
}

// Compact replaces a full namespace IRI with its prefixed form, choosing the
// longest matching namespace.
func (prefixMap *PrefixMap) Compact(fullIRI string) (string, bool) {
	namespaces := make([]string, 0, len(prefixMap.namespaceIndex))
	for namespace := range prefixMap.namespaceIndex {
		if strings.HasPrefix(fullIRI, namespace) {
			namespaces = append(namespaces, namespace)
		}
	}
	sort.Slice(namespaces, func(i, j int) bool {
		return len(namespaces[i]) > len(namespaces[j])
	})

	for _, namespace := range namespaces {
		localName := fullIRI[len(namespace):]
		if isValidLocalName(localName) {
			return prefixMap.namespaceIndex[namespace] + ":" + localName, true
		}
	}
	return "", false
}

// CompactOrSelf compacts an IRI when possible and returns it unchanged otherwise.
func (prefixMap *PrefixMap) CompactOrSelf(fullIRI string) string {
	if compacted, ok := prefixMap.Compact(fullIRI); ok {
		return compacted
	}
	return fullIRI
}

// Expand turns a CURIE with a known prefix into a full IRI. Angle-bracketed
// IRIs are unwrapped; anything else is returned unchanged.
func (prefixMap *PrefixMap) Expand(term string) string {
	term = strings.TrimSpace(term)
	if strings.HasPrefix(term, "<") && strings.HasSuffix(term, ">") {
		return term[1 : len(term)-1]
	}

	colonIndex := strings.Index(term, ":")
	if colonIndex < 0 {
		return term
	}
	if namespace, ok := prefixMap.prefixIndex[term[:colonIndex]]; ok {
		return namespace + term[colonIndex+1:]
	}
	return term
}

// LocalName derives a display name from an IRI: the text after the last '#',
// then after the last '/' of that. An IRI with neither is cut after its last
// ':'. An IRI with an empty trailing segment yields the IRI itself.
func LocalName(iri string) string {
	localName := iri
	if idx := strings.LastIndex(localName, "#"); idx != -1 {
		localName = localName[idx+1:]
	}
	if idx := strings.LastIndex(localName, "/"); idx != -1 {
		localName = localName[idx+1:]
	}
	if localName == iri {
		if idx := strings.LastIndex(iri, ":"); idx != -1 {
			localName = iri[idx+1:]
		}
	}
	if localName == "" {
		return iri
	}
	return localName
}

// isValidLocalName checks if a string can stand as the local part of a CURIE.
func isValidLocalName(localName string) bool {
	if localName == "" {
		return false
	}
	return !strings.ContainsAny(localName, " \t\n\r<>\"{}|^`\\/#")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
