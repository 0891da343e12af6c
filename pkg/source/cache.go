package source

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskCache stores downloaded documents as JSON files keyed by a SHA-256
// hash of their URL. It holds source bytes only, never derived state.
type DiskCache struct {
	cacheDir string
	cacheTTL time.Duration
}

type diskCacheEntry struct {
	URL       string    `json:"url"`
	Body      []byte    `json:"body"`
	FetchedAt time.Time `json:"fetched_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewDiskCache creates a cache in cacheDir, creating the directory if needed.
func NewDiskCache(cacheDir string, cacheTTL time.Duration) (*DiskCache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", cacheDir, err)
	}

	return &DiskCache{
		cacheDir: cacheDir,
		cacheTTL: cacheTTL,
	}, nil
}

// Get returns the cached body for url if present and not expired.
func (cache *DiskCache) Get(url string) ([]byte, bool) {
	cacheFilePath := cache.pathFor(url)

	data, err := os.ReadFile(cacheFilePath)
	if err != nil {
		return nil, false
	}

	var entry diskCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(cacheFilePath)
		return nil, false
	}

	return entry.Body, true
}

// Set stores body for url.
func (cache *DiskCache) Set(url string, body []byte) error {
	now := time.Now()
	entry := diskCacheEntry{
		URL:       url,
		Body:      body,
		FetchedAt: now,
		ExpiresAt: now.Add(cache.cacheTTL),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	cacheFilePath := cache.pathFor(url)
	if err := os.WriteFile(cacheFilePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file %s: %w", cacheFilePath, err)
	}

	return nil
}

// Clear removes every cached entry.
func (cache *DiskCache) Clear() error {
	matches, err := filepath.Glob(filepath.Join(cache.cacheDir, "*.json"))
	if err != nil {
		return err
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove cache file %s: %w", match, err)
		}
	}
	return nil
}

func (cache *DiskCache) pathFor(url string) string {
	hash := sha256.Sum256([]byte(url))
	return filepath.Join(cache.cacheDir, hex.EncodeToString(hash[:])+".json")
}
