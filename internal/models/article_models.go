package models

import (
	"time"

	"github.com/google/uuid"
)

// Article is a news item produced by a fetch service. The UI layer treats it as
// read-only.
type Article struct {
	// ServerID is a source-assigned identifier (RSS guid). Optional.
	ServerID    string    `json:"server_id,omitempty"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url,omitempty"`
	Source      string    `json:"source,omitempty"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Key is the stable identity of the article: a name-based UUID over the server
// identifier when present, otherwise over the source URL. Empty when the
// article has neither.
func (a Article) Key() string {
	switch {
	case a.ServerID != "":
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(a.ServerID)).String()
	case a.URL != "":
		return uuid.NewSHA1(uuid.NameSpaceURL, []byte(a.URL)).String()
	default:
		return ""
	}
}

// Favorite is the persisted copy of an article the user saved.
type Favorite struct {
	ID          string    `json:"id" dynamodbav:"id"`
	Title       string    `json:"title" dynamodbav:"title"`
	Summary     string    `json:"summary" dynamodbav:"summary,omitempty"`
	URL         string    `json:"url" dynamodbav:"url,omitempty"`
	ImageURL    string    `json:"image_url,omitempty" dynamodbav:"image_url,omitempty"`
	Source      string    `json:"source,omitempty" dynamodbav:"source,omitempty"`
	Author      string    `json:"author,omitempty" dynamodbav:"author,omitempty"`
	PublishedAt time.Time `json:"published_at" dynamodbav:"published_at"`
	SavedAt     time.Time `json:"saved_at" dynamodbav:"saved_at"`
}

func FavoriteFromArticle(a Article, savedAt time.Time) Favorite {
	return Favorite{
		ID:          a.Key(),
		Title:       a.Title,
		Summary:     a.Summary,
		URL:         a.URL,
		ImageURL:    a.ImageURL,
		Source:      a.Source,
		Author:      a.Author,
		PublishedAt: a.PublishedAt,
		SavedAt:     savedAt,
	}
}

// Article rebuilds the article view of a favorite, used by the detail screen.
func (f Favorite) Article() Article {
	return Article{
		Title:       f.Title,
		Summary:     f.Summary,
		URL:         f.URL,
		ImageURL:    f.ImageURL,
		Source:      f.Source,
		Author:      f.Author,
		PublishedAt: f.PublishedAt,
	}
}
