package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/spacesedan/paperboy/internal/models"
)

const RSS_MAX_ARTICLES = 50

// RSSClient builds a topic feed by merging a set of RSS/Atom feeds.
type RSSClient struct {
	parser *gofeed.Parser
	feeds  map[models.Topic][]string
}

func NewRSSClient(feeds map[models.Topic][]string) *RSSClient {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: 20 * time.Second}
	parser.UserAgent = USER_AGENT

	return &RSSClient{parser: parser, feeds: feeds}
}

// GetTopArticles merges every feed of the topic, newest first. A failing feed
// is skipped; the call fails only when every feed fails.
func (c *RSSClient) GetTopArticles(ctx context.Context, topic models.Topic) ([]models.Article, error) {
	urls, ok := c.feeds[topic]
	if !ok || len(urls) == 0 {
		slog.Warn("[RSSClient] No feeds configured for topic", slog.String("topic", string(topic)))
		return []models.Article{}, nil
	}

	var (
		articles []models.Article
		errs     []error
	)
	for _, feedURL := range urls {
		feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			slog.Warn("[RSSClient] Failed to parse feed",
				slog.String("feed", feedURL),
				slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", feedURL, err))
			continue
		}
		articles = append(articles, FeedToArticles(feed)...)
	}

	if len(errs) == len(urls) {
		return nil, fmt.Errorf("[RSSClient] all feeds failed for %s: %w", topic, errors.Join(errs...))
	}

	articles = dedupeArticles(articles)
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	if len(articles) > RSS_MAX_ARTICLES {
		articles = articles[:RSS_MAX_ARTICLES]
	}

	slog.Info("[RSSClient] Fetched topic feed",
		slog.String("topic", string(topic)),
		slog.Int("count", len(articles)))
	return articles, nil
}

func FeedToArticles(feed *gofeed.Feed) []models.Article {
	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" && item.GUID == "" {
			continue
		}
		a := models.Article{
			ServerID: item.GUID,
			Title:    strings.TrimSpace(item.Title),
			Summary:  strings.TrimSpace(item.Description),
			URL:      item.Link,
			Source:   feed.Title,
			ImageURL: itemImage(item),
		}
		if len(item.Authors) > 0 && item.Authors[0] != nil {
			a.Author = item.Authors[0].Name
		}
		switch {
		case item.PublishedParsed != nil:
			a.PublishedAt = item.PublishedParsed.UTC()
		case item.UpdatedParsed != nil:
			a.PublishedAt = item.UpdatedParsed.UTC()
		}
		articles = append(articles, a)
	}
	return articles
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

func dedupeArticles(articles []models.Article) []models.Article {
	seen := make(map[string]bool, len(articles))
	out := articles[:0]
	for _, a := range articles {
		key := a.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}
