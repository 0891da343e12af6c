package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	defaultGitHubAPIBase = "https://api.github.com"
	defaultGitHubRawBase = "https://raw.githubusercontent.com"
	defaultBranch        = "main"
)

// GitHubRef addresses a directory of a repository at a branch.
type GitHubRef struct {
	Owner  string
	Repo   string
	Branch string
	Dir    string
}

// ParseGitHubRef parses owner/repo[@branch][:dir]. The branch defaults to
// main and the directory to the repository root.
func ParseGitHubRef(value string) (GitHubRef, error) {
	ref := GitHubRef{Branch: defaultBranch}

	repoPart := value
	if colon := strings.Index(value, ":"); colon >= 0 {
		repoPart = value[:colon]
		ref.Dir = strings.Trim(value[colon+1:], "/")
	}
	if at := strings.Index(repoPart, "@"); at >= 0 {
		ref.Branch = repoPart[at+1:]
		repoPart = repoPart[:at]
	}

	owner, repo, ok := strings.Cut(repoPart, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") || ref.Branch == "" {
		return GitHubRef{}, fmt.Errorf("invalid GitHub reference %q (want owner/repo[@branch][:dir])", value)
	}
	ref.Owner = owner
	ref.Repo = repo
	return ref, nil
}

func (ref GitHubRef) String() string {
	descriptor := githubScheme + ref.Owner + "/" + ref.Repo + "@" + ref.Branch
	if ref.Dir != "" {
		descriptor += ":" + ref.Dir
	}
	return descriptor
}

// GitHubOptions configures GitHub access.
type GitHubOptions struct {
	// APIBaseURL overrides https://api.github.com.
	APIBaseURL string

	// RawBaseURL overrides https://raw.githubusercontent.com.
	RawBaseURL string

	// Token is sent as a bearer token when set.
	Token string

	// Client performs requests. Defaults to an http.Client with a 30s timeout.
	Client HTTPClient

	// Cache stores raw downloads. Nil disables caching.
	Cache *DiskCache

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// GitHubSource lists documents with the contents API and downloads them raw.
type GitHubSource struct {
	ref     GitHubRef
	pattern string
	options GitHubOptions
	logger  *slog.Logger
}

// NewGitHubSource creates a source for ref.
func NewGitHubSource(ref GitHubRef, pattern string, options GitHubOptions) (*GitHubSource, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if options.APIBaseURL == "" {
		options.APIBaseURL = defaultGitHubAPIBase
	}
	if options.RawBaseURL == "" {
		options.RawBaseURL = defaultGitHubRawBase
	}
	if options.Client == nil {
		options.Client = &http.Client{Timeout: 30 * time.Second}
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for _, base := range []string{options.APIBaseURL, options.RawBaseURL} {
		if _, err := url.Parse(base); err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL %q: %w", base, err)
		}
	}

	return &GitHubSource{ref: ref, pattern: pattern, options: options, logger: logger}, nil
}

// contentsItem is one entry of a contents API directory listing.
type contentsItem struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

// List walks the configured directory and returns matching files sorted by
// name. A missing directory or branch yields ErrNotFound.
func (s *GitHubSource) List(ctx context.Context) ([]Document, error) {
	var documents []Document
	if err := s.walk(ctx, s.ref.Dir, &documents); err != nil {
		return nil, err
	}

	sort.Slice(documents, func(i, j int) bool {
		if documents[i].Name != documents[j].Name {
			return documents[i].Name < documents[j].Name
		}
		return documents[i].Path < documents[j].Path
	})
	return documents, nil
}

func (s *GitHubSource) walk(ctx context.Context, dir string, documents *[]Document) error {
	items, err := s.listDir(ctx, dir)
	if err != nil {
		return err
	}

	for _, item := range items {
		switch item.Type {
		case "dir":
			if err := s.walk(ctx, item.Path, documents); err != nil {
				return err
			}
		case "file":
			relative := strings.TrimPrefix(strings.TrimPrefix(item.Path, s.ref.Dir), "/")
			matched, err := doublestar.Match(s.pattern, relative)
			if err != nil || !matched {
				continue
			}
			*documents = append(*documents, Document{
				Name:     item.Name,
				Path:     item.Path,
				Location: s.rawURL(item.Path),
			})
		}
	}
	return nil
}

func (s *GitHubSource) listDir(ctx context.Context, dir string) ([]contentsItem, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		strings.TrimRight(s.options.APIBaseURL, "/"),
		url.PathEscape(s.ref.Owner), url.PathEscape(s.ref.Repo),
		escapePath(dir), url.QueryEscape(s.ref.Branch))

	body, err := s.get(ctx, endpoint, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}

	var items []contentsItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to decode listing of %s: %w", dir, err)
	}
	s.logger.Debug("Listed GitHub directory", "repo", s.ref.Owner+"/"+s.ref.Repo, "dir", dir, "entries", len(items))
	return items, nil
}

// Open downloads a document, serving it from the disk cache when fresh.
func (s *GitHubSource) Open(ctx context.Context, document Document) (io.ReadCloser, error) {
	if s.options.Cache != nil {
		if body, ok := s.options.Cache.Get(document.Location); ok {
			s.logger.Debug("Serving document from cache", "url", document.Location)
			return io.NopCloser(bytes.NewReader(body)), nil
		}
	}

	body, err := s.get(ctx, document.Location, "")
	if err != nil {
		return nil, err
	}

	if s.options.Cache != nil {
		if err := s.options.Cache.Set(document.Location, body); err != nil {
			s.logger.Warn("Failed to cache document", "url", document.Location, "error", err)
		}
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (s *GitHubSource) get(ctx context.Context, endpoint, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if s.options.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.options.Token)
	}

	resp, err := s.options.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, endpoint)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s returned HTTP %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", endpoint, err)
	}
	return body, nil
}

func (s *GitHubSource) rawURL(filePath string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s",
		strings.TrimRight(s.options.RawBaseURL, "/"),
		url.PathEscape(s.ref.Owner), url.PathEscape(s.ref.Repo),
		escapePath(s.ref.Branch), escapePath(filePath))
}

func (s *GitHubSource) String() string {
	return s.ref.String()
}

func escapePath(value string) string {
	segments := strings.Split(path.Clean("/" + value)[1:], "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
