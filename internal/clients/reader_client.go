package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const READER_MAX_CONTENT = 20000

// ReaderClient extracts the readable body of an article page for the detail
// screen.
type ReaderClient struct {
	client *http.Client
}

func NewReaderClient(timeout time.Duration) *ReaderClient {
	return &ReaderClient{client: &http.Client{Timeout: timeout}}
}

func newReaderClientWithHTTP(client *http.Client) *ReaderClient {
	return &ReaderClient{client: client}
}

func (r *ReaderClient) Read(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("[ReaderClient] invalid url %q: %w", pageURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("[ReaderClient] creating request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("[ReaderClient] fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("[ReaderClient] %s returned status %d", pageURL, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", fmt.Errorf("[ReaderClient] extracting content from %s: %w", pageURL, err)
	}

	return truncate(strings.TrimSpace(article.TextContent), READER_MAX_CONTENT), nil
}
