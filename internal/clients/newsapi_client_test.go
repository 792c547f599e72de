package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spacesedan/paperboy/internal/models"
)

const topHeadlinesJSON = `{
  "status": "ok",
  "totalResults": 3,
  "articles": [
    {
      "source": {"id": "the-verge", "name": "The Verge"},
      "author": "Jane Doe",
      "title": "A new phone",
      "description": "It has a screen.",
      "url": "https://www.theverge.com/phone",
      "urlToImage": "https://cdn.theverge.com/phone.jpg",
      "publishedAt": "2024-05-01T10:00:00Z",
      "content": "..."
    },
    {
      "source": {"id": null, "name": "Example"},
      "title": "[Removed]",
      "url": "https://removed.com"
    },
    {
      "source": {"id": null, "name": "Wired"},
      "title": "Chips",
      "description": "Smaller.",
      "url": "https://www.wired.com/chips",
      "publishedAt": "not a date"
    }
  ]
}`

func newTestNewsAPIClient(url string) *NewsAPIClient {
	c := NewNewsAPIClient("test-key", "us")
	c.Endpoint = url
	c.initialBackoff = time.Millisecond
	return c
}

func TestNewsAPIGetTopArticles(t *testing.T) {
	var gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("X-Api-Key")
		w.Write([]byte(topHeadlinesJSON))
	}))
	defer srv.Close()

	articles, err := newTestNewsAPIClient(srv.URL).GetTopArticles(context.Background(), models.TopicTechnology)
	if err != nil {
		t.Fatalf("GetTopArticles: %v", err)
	}

	if gotKey != "test-key" {
		t.Errorf("X-Api-Key = %q", gotKey)
	}
	if gotQuery != "category=technology&country=us&pageSize=50" {
		t.Errorf("query = %q", gotQuery)
	}
	if len(articles) != 2 {
		t.Fatalf("len = %d, want 2 (removed story filtered)", len(articles))
	}

	first := articles[0]
	if first.Title != "A new phone" || first.Summary != "It has a screen." || first.Source != "The Verge" ||
		first.Author != "Jane Doe" || first.ImageURL != "https://cdn.theverge.com/phone.jpg" {
		t.Errorf("first = %+v", first)
	}
	if !first.PublishedAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("PublishedAt = %v", first.PublishedAt)
	}
	if !articles[1].PublishedAt.IsZero() {
		t.Errorf("unparseable date should be zero, got %v", articles[1].PublishedAt)
	}
}

func TestNewsAPIMissingKey(t *testing.T) {
	c := NewNewsAPIClient("", "us")
	if _, err := c.GetTopArticles(context.Background(), models.TopicGeneral); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestNewsAPIUnauthorizedIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestNewsAPIClient(srv.URL).GetTopArticles(context.Background(), models.TopicGeneral)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestNewsAPIRetriesRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(topHeadlinesJSON))
	}))
	defer srv.Close()

	articles, err := newTestNewsAPIClient(srv.URL).GetTopArticles(context.Background(), models.TopicBusiness)
	if err != nil {
		t.Fatalf("GetTopArticles: %v", err)
	}
	if len(articles) != 2 {
		t.Errorf("len = %d, want 2", len(articles))
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestNewsAPIGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestNewsAPIClient(srv.URL).GetTopArticles(context.Background(), models.TopicBusiness)
	if !errors.Is(err, ErrMaxRetries) {
		t.Fatalf("err = %v, want ErrMaxRetries", err)
	}
	if n := atomic.LoadInt32(&calls); n != MAX_RETRIES {
		t.Errorf("calls = %d, want %d", n, MAX_RETRIES)
	}
}

func TestNewsAPIErrorStatusInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","code":"parameterInvalid","message":"bad category"}`))
	}))
	defer srv.Close()

	if _, err := newTestNewsAPIClient(srv.URL).GetTopArticles(context.Background(), models.TopicBusiness); err == nil {
		t.Fatal("expected error for status=error body")
	}
}
