package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/paperboy/config"
	"github.com/spacesedan/paperboy/internal/clients"
	"github.com/spacesedan/paperboy/internal/db"
	"github.com/spacesedan/paperboy/internal/favorites"
	"github.com/spacesedan/paperboy/internal/feed"
)

func buildFetcher(ctx context.Context, cfg config.Config, vc *clients.ValkeyClient) (feed.Fetcher, error) {
	var fetcher feed.Fetcher
	switch cfg.FetchSource {
	case config.FetchSourceNewsAPI:
		if cfg.NewsAPIKey == "" {
			return nil, clients.ErrMissingAPIKey
		}
		fetcher = clients.NewNewsAPIClient(cfg.NewsAPIKey, cfg.NewsAPICountry)
	case config.FetchSourceRSS:
		fetcher = clients.NewRSSClient(clients.TopicToFeeds)
	case config.FetchSourceReddit:
		rc, err := clients.NewRedditClient(ctx, cfg.RedditClientID, cfg.RedditClientSecret, clients.TopicToSubreddits)
		if err != nil {
			return nil, err
		}
		fetcher = rc
	default:
		return nil, fmt.Errorf("[Paperboy] unknown FETCH_SOURCE %q", cfg.FetchSource)
	}

	if vc != nil && cfg.FeedCacheTTL > 0 {
		slog.Info("[Paperboy] Caching feeds in valkey", slog.Duration("ttl", cfg.FeedCacheTTL))
		fetcher = feed.NewCachingFetcher(fetcher, vc, cfg.FeedCacheTTL)
	}

	slog.Info("[Paperboy] Fetch source selected", slog.String("source", cfg.FetchSource))
	return fetcher, nil
}

func buildFavorites(ctx context.Context, cfg config.Config, vc *clients.ValkeyClient) (favorites.Persistence, func(), error) {
	noop := func() {}

	slog.Info("[Paperboy] Favorites backend selected", slog.String("backend", cfg.FavoritesBackend))
	switch cfg.FavoritesBackend {
	case config.BackendMemory:
		return favorites.NewMemory(), noop, nil

	case config.BackendSQLite:
		s, err := db.NewSQLiteFavorites(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil

	case config.BackendValkey:
		if vc == nil {
			return nil, nil, fmt.Errorf("[Paperboy] favorites backend valkey needs VALKEY_INIT_ADDRESS")
		}
		return db.NewValkeyFavorites(vc, ""), noop, nil

	case config.BackendDynamoDB:
		client, err := clients.NewDynamoDBClient(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
		if err != nil {
			return nil, nil, err
		}
		d := db.NewDynamoFavorites(client, cfg.DynamoFavoritesTable)
		if err := d.EnsureTable(ctx); err != nil {
			return nil, nil, err
		}
		return d, noop, nil

	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("[Paperboy] favorites backend postgres needs DATABASE_URL")
		}
		pool, err := clients.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		p, err := db.NewPostgresFavorites(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return p, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("[Paperboy] unknown FAVORITES_BACKEND %q", cfg.FavoritesBackend)
	}
}

// logFeedEvent reports controller events to the terminal: the offline
// fallback, its dismissal, and feed replacements.
func logFeedEvent(logger *slog.Logger) func(feed.Event) {
	return func(ev feed.Event) {
		s := ev.Snapshot
		switch ev.Kind {
		case feed.EventOffline:
			logger.Warn("[Paperboy] Offline fallback shown",
				slog.String("topic", string(s.Topic)),
				slog.Int("articles", len(s.Articles)))
		case feed.EventOnline:
			logger.Info("[Paperboy] Back online", slog.String("topic", string(s.Topic)))
		case feed.EventFeedReplaced:
			attrs := []any{
				slog.String("topic", string(s.Topic)),
				slog.Int("articles", len(s.Articles)),
				slog.Uint64("generation", s.Generation),
			}
			if s.Err != "" {
				attrs = append(attrs, slog.String("error", s.Err))
			}
			logger.Info("[Paperboy] Feed replaced", attrs...)
		}
	}
}
