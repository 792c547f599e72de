package detail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/paperboy/internal/models"
)

var ErrNoShareURL = errors.New("[Detail] article has no url to share")

// Reader extracts the readable body of an article page.
type Reader interface {
	Read(ctx context.Context, url string) (string, error)
}

// Detail is everything the detail screen shows for one article.
type Detail struct {
	Article        models.Article `json:"article"`
	ID             string         `json:"id"`
	PublishedLabel string         `json:"published_label"`
	Body           string         `json:"body"`
	FromSource     bool           `json:"from_source"`
	HTML           string         `json:"html"`
	Saved          bool           `json:"saved"`
}

type Service struct {
	reader Reader
	now    func() time.Time
}

// NewService returns a detail builder. reader may be nil, in which case the
// body is always the summary.
func NewService(reader Reader) *Service {
	return &Service{reader: reader, now: time.Now}
}

func (s *Service) Build(ctx context.Context, a models.Article) Detail {
	d := Detail{
		Article:        a,
		ID:             a.Key(),
		PublishedLabel: PublishedLabel(a.PublishedAt, s.now()),
		Body:           a.Summary,
	}

	if s.reader != nil && a.URL != "" {
		body, err := s.reader.Read(ctx, a.URL)
		switch {
		case err != nil:
			slog.Warn("[Detail] Falling back to summary",
				slog.String("url", a.URL),
				slog.String("error", err.Error()))
		case strings.TrimSpace(body) != "":
			d.Body = body
			d.FromSource = true
		}
	}

	d.HTML = RenderHTML(Markdown(a, d.PublishedLabel, d.Body))
	return d
}

// PublishedLabel is "Published 3 hours ago", or empty for an unknown date.
func PublishedLabel(published, now time.Time) string {
	if published.IsZero() {
		return ""
	}
	return "Published " + humanize.RelTime(published, now, "ago", "from now")
}

// Markdown composes the detail screen as a markdown document.
func Markdown(a models.Article, publishedLabel, body string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", strings.TrimSpace(a.Title))

	var byline []string
	if a.Source != "" {
		byline = append(byline, a.Source)
	}
	if a.Author != "" {
		byline = append(byline, "by "+a.Author)
	}
	if publishedLabel != "" {
		byline = append(byline, publishedLabel)
	}
	if len(byline) > 0 {
		fmt.Fprintf(&b, "_%s_\n\n", strings.Join(byline, " · "))
	}

	if a.ImageURL != "" {
		fmt.Fprintf(&b, "![%s](%s)\n\n", escapeAlt(a.Title), a.ImageURL)
	}

	for _, para := range strings.Split(body, "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString(para)
		b.WriteString("\n\n")
	}

	if a.URL != "" {
		fmt.Fprintf(&b, "[Read the full story](%s)\n", a.URL)
	}
	return b.String()
}

func RenderHTML(markdown string) string {
	return string(blackfriday.Run([]byte(markdown)))
}

// Share returns the item handed to the platform share surface: the article's
// source URL.
func Share(a models.Article) (string, error) {
	if strings.TrimSpace(a.URL) == "" {
		return "", ErrNoShareURL
	}
	return a.URL, nil
}

func escapeAlt(s string) string {
	r := strings.NewReplacer("[", "", "]", "")
	return r.Replace(s)
}
