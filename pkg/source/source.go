package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNotFound is returned when a source has no matching ontology documents.
var ErrNotFound = errors.New("no ontology documents found")

// DefaultPattern selects Turtle documents at any depth.
const DefaultPattern = "**/*.ttl"

// githubScheme prefixes GitHub descriptors: github:owner/repo@branch:dir.
const githubScheme = "github:"

// Document is one loadable ontology file.
type Document struct {
	Name     string `json:"name" yaml:"name"`
	Path     string `json:"path" yaml:"path"`
	Location string `json:"location" yaml:"location"`
}

// Source enumerates and opens ontology documents.
type Source interface {
	List(ctx context.Context) ([]Document, error)
	Open(ctx context.Context, document Document) (io.ReadCloser, error)
	String() string
}

// Options configures Parse.
type Options struct {
	// Pattern is the doublestar glob documents must match. Defaults to DefaultPattern.
	Pattern string

	// GitHub configures remote sources.
	GitHub GitHubOptions
}

// Parse turns a descriptor into a Source. Descriptors starting with
// "github:" name a repository directory; anything else is a local path.
func Parse(descriptor string, options Options) (Source, error) {
	pattern := options.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid document pattern %q", pattern)
	}

	descriptor = strings.TrimSpace(descriptor)
	if descriptor == "" {
		return nil, fmt.Errorf("empty source descriptor")
	}

	if strings.HasPrefix(descriptor, githubScheme) {
		ref, err := ParseGitHubRef(strings.TrimPrefix(descriptor, githubScheme))
		if err != nil {
			return nil, err
		}
		return NewGitHubSource(ref, pattern, options.GitHub)
	}

	return NewLocalSource(descriptor, pattern), nil
}

// LocalSource reads a single file, or every file under a directory matching
// a doublestar pattern.
type LocalSource struct {
	root    string
	pattern string
}

// NewLocalSource creates a source rooted at root.
func NewLocalSource(root, pattern string) *LocalSource {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &LocalSource{root: filepath.Clean(root), pattern: pattern}
}

// Root returns the file or directory the source reads.
func (s *LocalSource) Root() string {
	return s.root
}

// Matches reports whether a path below the root is a document of this source.
func (s *LocalSource) Matches(path string) bool {
	info, err := os.Stat(s.root)
	if err == nil && !info.IsDir() {
		return filepath.Clean(path) == s.root
	}
	relative, err := filepath.Rel(s.root, path)
	if err != nil {
		return false
	}
	matched, err := doublestar.Match(s.pattern, filepath.ToSlash(relative))
	return err == nil && matched
}

// List returns the documents in lexical path order.
func (s *LocalSource) List(ctx context.Context) ([]Document, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", s.root, err)
	}

	if !info.IsDir() {
		return []Document{{Name: filepath.Base(s.root), Path: s.root, Location: s.root}}, nil
	}

	matches, err := doublestar.Glob(os.DirFS(s.root), s.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.root, err)
	}
	sort.Strings(matches)

	documents := make([]Document, 0, len(matches))
	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		location := filepath.Join(s.root, filepath.FromSlash(match))
		documents = append(documents, Document{
			Name:     filepath.Base(location),
			Path:     match,
			Location: location,
		})
	}
	return documents, nil
}

// Open opens a listed document.
func (s *LocalSource) Open(_ context.Context, document Document) (io.ReadCloser, error) {
	file, err := os.Open(document.Location)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, document.Location)
	}
	return file, err
}

func (s *LocalSource) String() string {
	return s.root
}
