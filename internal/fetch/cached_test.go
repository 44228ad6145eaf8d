package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jonathan/hash-resume/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(store storage.Store, text string, calls *int) (*CachedFetcher, *time.Time) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := NewCachedFetcher(store, &CachedFetcherConfig{CacheTTL: time.Hour})
	f.fetch = func(_ context.Context, _ string, _ *Options) (string, error) {
		*calls++
		return text, nil
	}
	f.now = func() time.Time { return now }
	return f, &now
}

func TestNewCachedFetcher_Defaults(t *testing.T) {
	fetcher := NewCachedFetcher(nil, &CachedFetcherConfig{})
	assert.Equal(t, DefaultCacheTTL, fetcher.cacheTTL)
	assert.NotNil(t, fetcher.options)

	fetcher = NewCachedFetcher(nil, nil)
	assert.Equal(t, DefaultCacheTTL, fetcher.cacheTTL)
}

func TestCacheKey(t *testing.T) {
	key := CacheKey("https://jobs.lever.co/acme/1")
	assert.Equal(t, key, CacheKey("https://jobs.lever.co/acme/1"))
	assert.NotEqual(t, key, CacheKey("https://jobs.lever.co/acme/2"))
	assert.Regexp(t, `^job-posting-[0-9a-f]{16}$`, key)
}

func TestCachedFetcher_ReusesFreshEntry(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	calls := 0
	f, now := newTestFetcher(store, "Go engineer wanted", &calls)

	first, err := f.Fetch(ctx, "https://example.com/job")
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, "Go engineer wanted", first.Text)

	*now = now.Add(30 * time.Minute)
	second, err := f.Fetch(ctx, "https://example.com/job")
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, "Go engineer wanted", second.Text)
	assert.Equal(t, 1, calls)
}

func TestCachedFetcher_RefetchesAfterTTL(t *testing.T) {
	ctx := context.Background()
	calls := 0
	f, now := newTestFetcher(storage.NewMemoryStore(), "text", &calls)

	_, err := f.Fetch(ctx, "https://example.com/job")
	require.NoError(t, err)

	*now = now.Add(2 * time.Hour)
	result, err := f.Fetch(ctx, "https://example.com/job")
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, 2, calls)
}

func TestCachedFetcher_Invalidate(t *testing.T) {
	ctx := context.Background()
	calls := 0
	f, _ := newTestFetcher(storage.NewMemoryStore(), "text", &calls)

	_, err := f.Fetch(ctx, "https://example.com/job")
	require.NoError(t, err)
	require.NoError(t, f.Invalidate(ctx, "https://example.com/job"))

	result, err := f.Fetch(ctx, "https://example.com/job")
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, 2, calls)
}

func TestCachedFetcher_IgnoresCorruptEntry(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Put(ctx, CacheKey("https://example.com/job"), []byte("{not json")))

	calls := 0
	f, _ := newTestFetcher(store, "fresh", &calls)
	result, err := f.Fetch(ctx, "https://example.com/job")
	require.NoError(t, err)
	assert.Equal(t, "fresh", result.Text)
	assert.Equal(t, 1, calls)

	data, err := store.Get(ctx, CacheKey("https://example.com/job"))
	require.NoError(t, err)
	var posting CachedPosting
	require.NoError(t, json.Unmarshal(data, &posting))
	assert.Equal(t, "fresh", posting.Text)
}

func TestCachedFetcher_NoStore(t *testing.T) {
	calls := 0
	f, _ := newTestFetcher(nil, "text", &calls)

	for i := 0; i < 2; i++ {
		result, err := f.Fetch(context.Background(), "https://example.com/job")
		require.NoError(t, err)
		assert.False(t, result.FromCache)
	}
	assert.Equal(t, 2, calls)
	assert.NoError(t, f.Invalidate(context.Background(), "https://example.com/job"))
}

func TestCachedFetcher_FetchErrorNotCached(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	f := NewCachedFetcher(store, nil)
	f.fetch = func(_ context.Context, urlStr string, _ *Options) (string, error) {
		return "", &Error{URL: urlStr, Message: "HTTP status 404"}
	}

	_, err := f.Fetch(ctx, "https://example.com/missing")
	require.Error(t, err)

	_, err = store.Get(ctx, CacheKey("https://example.com/missing"))
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}
