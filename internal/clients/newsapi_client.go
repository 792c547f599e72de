package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spacesedan/paperboy/internal/models"
)

const (
	NEWS_API_ENDPOINT  = "https://newsapi.org/v2/top-headlines"
	NEWS_API_PAGE_SIZE = 50
)

var (
	ErrMissingAPIKey = errors.New("[NewsAPIClient] API key is missing")
	ErrBadRequest    = errors.New("[NewsAPIClient] Bad request: check query parameters")
	ErrUnauthorized  = errors.New("[NewsAPIClient] Invalid API Key, check credentials")
	ErrForbidden     = errors.New("[NewsAPIClient] API key lacks required permissions")
	ErrMaxRetries    = errors.New("[NewsAPIClient] failed after max retries")
)

type NewsAPIClient struct {
	Client   *http.Client
	APIKey   string
	Country  string
	Endpoint string

	initialBackoff time.Duration
}

func NewNewsAPIClient(apiKey, country string) *NewsAPIClient {
	return &NewsAPIClient{
		Client:         &http.Client{Timeout: 20 * time.Second},
		APIKey:         apiKey,
		Country:        country,
		Endpoint:       NEWS_API_ENDPOINT,
		initialBackoff: INITIAL_BACKOFF,
	}
}

// GetTopArticles returns the current top headlines for a category. Rate limits
// and server errors are retried with exponential backoff.
func (n *NewsAPIClient) GetTopArticles(ctx context.Context, topic models.Topic) ([]models.Article, error) {
	if n.APIKey == "" {
		slog.Error("[NewsAPIClient] API key is missing")
		return nil, ErrMissingAPIKey
	}

	q := url.Values{}
	q.Set("category", string(topic))
	q.Set("pageSize", strconv.Itoa(NEWS_API_PAGE_SIZE))
	if n.Country != "" {
		q.Set("country", n.Country)
	}
	endpoint := n.Endpoint + "?" + q.Encode()

	var lastErr error
	backoff := n.initialBackoff

	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		slog.Info("[NewsAPIClient] Fetching top headlines",
			slog.String("topic", string(topic)),
			slog.Int("attempt", attempt))

		response, retry, err := n.fetch(ctx, endpoint)
		if err == nil {
			articles := toArticles(response)
			slog.Info("[NewsAPIClient] Successfully fetched headlines",
				slog.String("topic", string(topic)),
				slog.Int("count", len(articles)))
			return articles, nil
		}
		if !retry {
			return nil, err
		}

		lastErr = err
		if attempt == MAX_RETRIES {
			slog.Error("[NewsAPIClient] Failed after max retries", slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: %w", ErrMaxRetries, lastErr)
		}

		slog.Warn("[NewsAPIClient] Retrying...",
			slog.Duration("backoff", backoff),
			slog.Int("attempt", attempt),
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
	}
	return nil, lastErr
}

// fetch performs one request. retry reports whether the failure is transient.
func (n *NewsAPIClient) fetch(ctx context.Context, endpoint string) (*models.NewsAPITopHeadlinesResponse, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("X-Api-Key", n.APIKey)
	req.Header.Set("User-Agent", USER_AGENT)

	res, err := n.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		slog.Error("[NewsAPIClient] request failed", slog.String("error", err.Error()))
		return nil, true, err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		var response models.NewsAPITopHeadlinesResponse
		if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
			slog.Error("[NewsAPIClient] Failed to parse JSON response", slog.String("error", err.Error()))
			return nil, false, fmt.Errorf("[NewsAPIClient] decode response: %w", err)
		}
		if response.Status != "" && response.Status != "ok" {
			return nil, false, fmt.Errorf("[NewsAPIClient] %s: %s", response.Code, response.Message)
		}
		return &response, false, nil
	case http.StatusBadRequest:
		slog.Warn("[NewsAPIClient] Bad request: check query parameters")
		return nil, false, ErrBadRequest
	case http.StatusUnauthorized:
		slog.Error("[NewsAPIClient] Invalid API Key, check credentials")
		return nil, false, ErrUnauthorized
	case http.StatusForbidden:
		slog.Error("[NewsAPIClient] Access forbidden, check API key permissions")
		return nil, false, ErrForbidden
	case http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, res.Body)
		slog.Warn("[NewsAPIClient] Rate limit exceeded")
		return nil, true, fmt.Errorf("[NewsAPIClient] rate limited (status %d)", res.StatusCode)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		_, _ = io.Copy(io.Discard, res.Body)
		slog.Warn("[NewsAPIClient] Server Error", slog.Int("statusCode", res.StatusCode))
		return nil, true, fmt.Errorf("[NewsAPIClient] server error (status %d)", res.StatusCode)
	default:
		slog.Warn("[NewsAPIClient] Unexpected Response", slog.Int("statusCode", res.StatusCode))
		return nil, false, fmt.Errorf("[NewsAPIClient] unexpected status code %d", res.StatusCode)
	}
}

func toArticles(response *models.NewsAPITopHeadlinesResponse) []models.Article {
	articles := make([]models.Article, 0, len(response.Articles))
	for _, a := range response.Articles {
		// NewsAPI marks deleted stories with this placeholder
		if a.URL == "" || a.Title == "[Removed]" {
			continue
		}
		published, err := time.Parse(time.RFC3339, a.PublishedAt)
		if err != nil {
			published = time.Time{}
		}
		articles = append(articles, models.Article{
			Title:       a.Title,
			Summary:     a.Description,
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			Source:      a.Source.Name,
			Author:      a.Author,
			PublishedAt: published,
		})
	}
	return articles
}
