package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/spacesedan/paperboy/internal/models"
)

const feedCachePrefix = "paperboy:feed:"

// Cache stores serialized feeds by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type noCacheKey struct{}

// WithoutCache marks ctx so a CachingFetcher skips the cached copy and goes to
// the upstream service. The fresh result is still written back.
func WithoutCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, noCacheKey{}, true)
}

func skipCache(ctx context.Context) bool {
	skip, _ := ctx.Value(noCacheKey{}).(bool)
	return skip
}

// CachingFetcher serves recent feeds from a cache. Cache errors are logged and
// never fail a fetch.
type CachingFetcher struct {
	next  Fetcher
	cache Cache
	ttl   time.Duration
}

func NewCachingFetcher(next Fetcher, cache Cache, ttl time.Duration) *CachingFetcher {
	return &CachingFetcher{next: next, cache: cache, ttl: ttl}
}

func (f *CachingFetcher) GetTopArticles(ctx context.Context, topic models.Topic) ([]models.Article, error) {
	key := feedCachePrefix + string(topic)

	if !skipCache(ctx) {
		data, ok, err := f.cache.Get(ctx, key)
		switch {
		case err != nil:
			slog.Warn("[FeedCache] Cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		case ok:
			var articles []models.Article
			if err := json.Unmarshal(data, &articles); err == nil {
				slog.Debug("[FeedCache] Cache hit", slog.String("key", key), slog.Int("count", len(articles)))
				return articles, nil
			}
			slog.Warn("[FeedCache] Dropping unreadable cache entry", slog.String("key", key))
		}
	}

	articles, err := f.next.GetTopArticles(ctx, topic)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(articles)
	if err != nil {
		return articles, nil
	}
	if err := f.cache.Set(ctx, key, data, f.ttl); err != nil {
		slog.Warn("[FeedCache] Cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return articles, nil
}
