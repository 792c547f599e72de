package producer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spacesedan/paperboy/internal/feed"
	"github.com/spacesedan/paperboy/internal/models"
)

type recordingCache struct {
	mu   sync.Mutex
	sets map[string]int
}

func (c *recordingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return []byte(`[{"title":"stale","url":"https://stale.example.com"}]`), true, nil
}

func (c *recordingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets[key]++
	return nil
}

type countingFetcher struct {
	mu    sync.Mutex
	calls map[models.Topic]int
	fail  models.Topic
}

func (f *countingFetcher) GetTopArticles(ctx context.Context, topic models.Topic) ([]models.Article, error) {
	f.mu.Lock()
	f.calls[topic]++
	f.mu.Unlock()

	if topic == f.fail {
		return nil, errors.New("upstream down")
	}
	return []models.Article{{Title: string(topic), URL: "https://news.example.com/" + string(topic)}}, nil
}

func TestWarmAllBypassesAndRefillsCache(t *testing.T) {
	upstream := &countingFetcher{calls: map[models.Topic]int{}, fail: models.TopicHealth}
	cache := &recordingCache{sets: map[string]int{}}
	w := NewWarmer(feed.NewCachingFetcher(upstream, cache, time.Minute), models.AllTopics, time.Hour)

	warmed, err := w.WarmAll(context.Background())
	if warmed != len(models.AllTopics)-1 {
		t.Errorf("warmed = %d, want %d", warmed, len(models.AllTopics)-1)
	}
	if err == nil {
		t.Fatal("expected error for failing topic")
	}

	for _, topic := range models.AllTopics {
		if upstream.calls[topic] != 1 {
			t.Errorf("%s fetched %d times, want 1 (cache must be bypassed)", topic, upstream.calls[topic])
		}
		want := 1
		if topic == models.TopicHealth {
			want = 0
		}
		if got := cache.sets["paperboy:feed:"+string(topic)]; got != want {
			t.Errorf("%s cache writes = %d, want %d", topic, got, want)
		}
	}
}

func TestWarmAllStopsOnCancel(t *testing.T) {
	upstream := &countingFetcher{calls: map[models.Topic]int{}}
	w := NewWarmer(upstream, models.AllTopics, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.WarmAll(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunWarmsImmediately(t *testing.T) {
	upstream := &countingFetcher{calls: map[models.Topic]int{}}
	w := NewWarmer(upstream, []models.Topic{models.TopicSports}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		upstream.mu.Lock()
		n := upstream.calls[models.TopicSports]
		upstream.mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("Run did not warm on start")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}
