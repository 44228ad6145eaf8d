package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/hash-resume/internal/storage"
)

// DefaultCacheTTL is how long a fetched job posting is reused.
const DefaultCacheTTL = 24 * time.Hour

// cacheKeyPrefix namespaces cached postings inside the shared document store.
const cacheKeyPrefix = "job-posting-"

// CachedFetcher wraps JobDescription with a storage-backed cache so repeated
// job matching against the same URL does not hit the job board again.
type CachedFetcher struct {
	store    storage.Store
	options  *Options
	cacheTTL time.Duration

	// swapped in tests
	fetch func(ctx context.Context, urlStr string, opts *Options) (string, error)
	now   func() time.Time
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL time.Duration
	Options  *Options
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL: DefaultCacheTTL,
		Options:  DefaultOptions(),
	}
}

// NewCachedFetcher creates a new cached fetcher. A nil store disables caching.
func NewCachedFetcher(store storage.Store, config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	return &CachedFetcher{
		store:    store,
		options:  config.Options,
		cacheTTL: config.CacheTTL,
		fetch:    JobDescription,
		now:      time.Now,
	}
}

// CachedPosting is the persisted form of a fetched posting.
type CachedPosting struct {
	URL       string    `json:"url"`
	Text      string    `json:"text"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// CachedResult is a job description plus cache metadata.
type CachedResult struct {
	URL       string
	Text      string
	FetchedAt time.Time
	FromCache bool
}

// CacheKey derives the storage key for a URL.
func CacheKey(urlStr string) string {
	sum := sha256.Sum256([]byte(urlStr))
	return cacheKeyPrefix + hex.EncodeToString(sum[:8])
}

// Fetch returns the job description at urlStr, reusing a cached copy that is
// younger than the TTL. Cache read and write failures are logged and never
// fail the fetch.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedResult, error) {
	if cached, ok := f.lookup(ctx, urlStr); ok {
		return cached, nil
	}

	text, err := f.fetch(ctx, urlStr, f.options)
	if err != nil {
		return nil, err
	}

	posting := CachedPosting{URL: urlStr, Text: text, FetchedAt: f.now().UTC()}
	f.save(ctx, posting)

	return &CachedResult{
		URL:       urlStr,
		Text:      text,
		FetchedAt: posting.FetchedAt,
	}, nil
}

// Invalidate drops a cached posting by overwriting it with an expired entry.
func (f *CachedFetcher) Invalidate(ctx context.Context, urlStr string) error {
	if f.store == nil {
		return nil
	}
	data, err := json.Marshal(CachedPosting{URL: urlStr})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := f.store.Put(ctx, CacheKey(urlStr), data); err != nil {
		return fmt.Errorf("failed to invalidate cache entry: %w", err)
	}
	return nil
}

func (f *CachedFetcher) lookup(ctx context.Context, urlStr string) (*CachedResult, bool) {
	if f.store == nil {
		return nil, false
	}

	data, err := f.store.Get(ctx, CacheKey(urlStr))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("[FETCH] Cache read failed for %s: %v", urlStr, err)
		}
		return nil, false
	}

	var posting CachedPosting
	if err := json.Unmarshal(data, &posting); err != nil {
		log.Printf("[FETCH] Ignoring corrupt cache entry for %s: %v", urlStr, err)
		return nil, false
	}
	// hash collisions and invalidated entries both land here
	if posting.URL != urlStr || posting.Text == "" || f.now().Sub(posting.FetchedAt) > f.cacheTTL {
		return nil, false
	}

	return &CachedResult{
		URL:       posting.URL,
		Text:      posting.Text,
		FetchedAt: posting.FetchedAt,
		FromCache: true,
	}, true
}

func (f *CachedFetcher) save(ctx context.Context, posting CachedPosting) {
	if f.store == nil {
		return
	}
	data, err := json.Marshal(posting)
	if err != nil {
		log.Printf("[FETCH] Failed to encode cache entry for %s: %v", posting.URL, err)
		return
	}
	if err := f.store.Put(ctx, CacheKey(posting.URL), data); err != nil {
		log.Printf("[FETCH] Cache write failed for %s: %v", posting.URL, err)
	}
}
