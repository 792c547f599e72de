package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/paperboy/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	REDDIT_AUTH_URL      = "https://www.reddit.com/api/v1/access_token"
	REDDIT_API_URL       = "https://oauth.reddit.com"
	REDDIT_WEB_URL       = "https://www.reddit.com"
	REDDIT_LISTING_LIMIT = 50
	REDDIT_SUMMARY_MAX   = 280
)

var ErrMissingRedditCredentials = errors.New("[RedditClient] client id or secret is missing")

// TopicToSubreddits are the communities merged into each topic feed.
var TopicToSubreddits = map[models.Topic][]string{
	models.TopicGeneral:       {"news", "worldnews"},
	models.TopicBusiness:      {"business", "economics"},
	models.TopicTechnology:    {"technology", "tech"},
	models.TopicEntertainment: {"entertainment", "movies", "television"},
	models.TopicHealth:        {"health", "medicine"},
	models.TopicScience:       {"science", "space"},
	models.TopicSports:        {"sports"},
}

// RedditClient builds topic feeds from the top posts of the day in a set of
// subreddits, authenticated with application-only OAuth.
type RedditClient struct {
	Config     *clientcredentials.Config
	APIURL     string
	subreddits map[models.Topic][]string

	// tokenCtx outlives any single request; oauth2 fetches tokens with the
	// context the client was built from.
	tokenCtx context.Context
	mu       sync.Mutex
	client   *http.Client

	initialBackoff time.Duration
}

func NewRedditClient(ctx context.Context, clientID, clientSecret string, subreddits map[models.Topic][]string) (*RedditClient, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingRedditCredentials
	}
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     REDDIT_AUTH_URL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	return newRedditClient(ctx, conf, REDDIT_API_URL, subreddits), nil
}

func newRedditClient(ctx context.Context, conf *clientcredentials.Config, apiURL string, subreddits map[models.Topic][]string) *RedditClient {
	tokenCtx := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, &http.Client{Timeout: 20 * time.Second})
	return &RedditClient{
		Config:         conf,
		APIURL:         strings.TrimRight(apiURL, "/"),
		subreddits:     subreddits,
		tokenCtx:       tokenCtx,
		client:         conf.Client(tokenCtx),
		initialBackoff: INITIAL_BACKOFF,
	}
}

func (rc *RedditClient) httpClient() *http.Client {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.client
}

// refreshClient drops the cached token so the next request fetches a new one.
func (rc *RedditClient) refreshClient() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.client = rc.Config.Client(rc.tokenCtx)
}

func (rc *RedditClient) GetTopArticles(ctx context.Context, topic models.Topic) ([]models.Article, error) {
	subs := rc.subreddits[topic]
	if len(subs) == 0 {
		slog.Warn("[RedditClient] No subreddits configured for topic", slog.String("topic", string(topic)))
		return []models.Article{}, nil
	}

	endpoint := fmt.Sprintf("%s/r/%s/top?%s", rc.APIURL, strings.Join(subs, "+"), url.Values{
		"t":        {"day"},
		"limit":    {fmt.Sprint(REDDIT_LISTING_LIMIT)},
		"raw_json": {"1"},
	}.Encode())

	backoff := rc.initialBackoff
	refreshed := false
	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		listing, status, err := rc.fetch(ctx, endpoint)
		switch {
		case err == nil:
			articles := listingToArticles(listing)
			slog.Info("[RedditClient] Fetched topic feed",
				slog.String("topic", string(topic)),
				slog.Int("count", len(articles)))
			return articles, nil
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case status == http.StatusUnauthorized && !refreshed:
			slog.Warn("[RedditClient] Token rejected - Refreshing and Retrying...")
			rc.refreshClient()
			refreshed = true
			continue
		case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError || status == 0:
			if attempt == MAX_RETRIES {
				return nil, fmt.Errorf("[RedditClient] Max retries reached: %w", err)
			}
			slog.Warn("[RedditClient] Retrying request",
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff),
				slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > MAX_BACKOFF {
				backoff = MAX_BACKOFF
			}
		default:
			return nil, err
		}
	}
	return nil, fmt.Errorf("[RedditClient] Max retries reached request failed")
}

// fetch returns the listing, or the HTTP status (0 for transport errors) with
// the failure.
func (rc *RedditClient) fetch(ctx context.Context, endpoint string) (*models.RedditListing, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, -1, err
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := rc.httpClient().Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("[RedditClient] request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("[RedditClient] unexpected status %d", resp.StatusCode)
	}

	var listing models.RedditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, -1, fmt.Errorf("[RedditClient] decode listing: %w", err)
	}
	return &listing, resp.StatusCode, nil
}

func listingToArticles(listing *models.RedditListing) []models.Article {
	articles := make([]models.Article, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		p := child.Data
		if p.Stickied || p.Over18 || p.Title == "" {
			continue
		}

		link := p.URL
		if p.IsSelf || link == "" {
			link = REDDIT_WEB_URL + p.Permalink
		}

		a := models.Article{
			ServerID:    p.Name,
			Title:       strings.TrimSpace(p.Title),
			Summary:     truncate(strings.TrimSpace(p.Selftext), REDDIT_SUMMARY_MAX),
			URL:         link,
			Source:      "r/" + p.Subreddit,
			Author:      p.Author,
			PublishedAt: time.Unix(int64(p.CreatedUTC), 0).UTC(),
		}
		// "self", "default", "nsfw" and friends are placeholders, not URLs
		if strings.HasPrefix(p.Thumbnail, "http") {
			a.ImageURL = p.Thumbnail
		}
		articles = append(articles, a)
	}
	return articles
}
