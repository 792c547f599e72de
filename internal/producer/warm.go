package producer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spacesedan/paperboy/internal/feed"
	"github.com/spacesedan/paperboy/internal/models"
)

const DEFAULT_WORKERS = 3

// Warmer periodically refetches every topic through a caching fetcher so a
// topic switch is served from the cache.
type Warmer struct {
	fetcher  feed.Fetcher
	topics   []models.Topic
	interval time.Duration
	workers  int
}

func NewWarmer(fetcher feed.Fetcher, topics []models.Topic, interval time.Duration) *Warmer {
	return &Warmer{
		fetcher:  fetcher,
		topics:   topics,
		interval: interval,
		workers:  DEFAULT_WORKERS,
	}
}

// WarmAll fetches every topic once, bypassing cached copies. It returns how
// many topics were refreshed and the joined errors of those that were not.
func (w *Warmer) WarmAll(ctx context.Context) (int, error) {
	ctx = feed.WithoutCache(ctx)

	jobs := make(chan models.Topic)
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		warmed int
		errs   []error
	)

	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for topic := range jobs {
				articles, err := w.fetcher.GetTopArticles(ctx, topic)

				mu.Lock()
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", topic, err))
				} else {
					warmed++
				}
				mu.Unlock()

				if err != nil {
					slog.Warn("[Warmer] Failed to warm topic",
						slog.String("topic", string(topic)),
						slog.String("error", err.Error()))
					continue
				}
				slog.Debug("[Warmer] Warmed topic",
					slog.String("topic", string(topic)),
					slog.Int("count", len(articles)))
			}
		}()
	}

dispatch:
	for _, topic := range w.topics {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- topic:
		}
	}
	close(jobs)
	wg.Wait()

	if ctx.Err() != nil {
		errs = append(errs, ctx.Err())
	}
	return warmed, errors.Join(errs...)
}

// Run warms on start and then on every interval until ctx is done.
func (w *Warmer) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.warm(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("[Warmer] Stopped")
			return
		case <-ticker.C:
			w.warm(ctx)
		}
	}
}

func (w *Warmer) warm(ctx context.Context) {
	start := time.Now()
	warmed, err := w.WarmAll(ctx)
	if err != nil && ctx.Err() != nil {
		return
	}
	slog.Info("[Warmer] Feed cache warmed",
		slog.Int("topics", warmed),
		slog.Int("failed", len(w.topics)-warmed),
		slog.Duration("took", time.Since(start)))
}
