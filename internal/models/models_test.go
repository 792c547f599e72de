package models

import (
	"errors"
	"testing"
	"time"
)

func TestParseTopic(t *testing.T) {
	tests := []struct {
		in      string
		want    Topic
		wantErr bool
	}{
		{"technology", TopicTechnology, false},
		{" Business ", TopicBusiness, false},
		{"SPORTS", TopicSports, false},
		{"politics", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseTopic(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownTopic) {
				t.Errorf("ParseTopic(%q) err = %v, want ErrUnknownTopic", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTopic(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseTopic(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTopicTitle(t *testing.T) {
	if got := TopicTechnology.Title(); got != "Technology" {
		t.Errorf("Title() = %q, want Technology", got)
	}
	if got := Topic("").Title(); got != "" {
		t.Errorf("empty Title() = %q, want empty", got)
	}
}

func TestAllTopicsStartsWithGeneral(t *testing.T) {
	if len(AllTopics) != 7 {
		t.Fatalf("len(AllTopics) = %d, want 7", len(AllTopics))
	}
	if AllTopics[0] != TopicGeneral {
		t.Errorf("AllTopics[0] = %q, want general", AllTopics[0])
	}
}

func TestArticleKey(t *testing.T) {
	a := Article{URL: "https://example.com/a"}
	b := Article{URL: "https://example.com/a", Title: "different title"}
	c := Article{URL: "https://example.com/c"}

	if a.Key() == "" {
		t.Fatal("Key() is empty for article with URL")
	}
	if a.Key() != b.Key() {
		t.Errorf("same URL produced different keys: %q vs %q", a.Key(), b.Key())
	}
	if a.Key() == c.Key() {
		t.Error("different URLs produced the same key")
	}

	withID := Article{ServerID: "guid-1", URL: "https://example.com/a"}
	if withID.Key() == a.Key() {
		t.Error("server id should take precedence over URL")
	}

	if (Article{Title: "no identity"}).Key() != "" {
		t.Error("article without URL or server id should have empty key")
	}
}

func TestFavoriteRoundTrip(t *testing.T) {
	published := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	saved := published.Add(time.Hour)
	a := Article{
		Title:       "Go 1.24 released",
		Summary:     "Generic type aliases land.",
		URL:         "https://go.dev/blog/go1.24",
		ImageURL:    "https://go.dev/images/gopher.png",
		Source:      "The Go Blog",
		Author:      "Go team",
		PublishedAt: published,
	}

	fav := FavoriteFromArticle(a, saved)
	if fav.ID != a.Key() {
		t.Errorf("ID = %q, want %q", fav.ID, a.Key())
	}
	if !fav.SavedAt.Equal(saved) {
		t.Errorf("SavedAt = %v, want %v", fav.SavedAt, saved)
	}
	if got := fav.Article(); got != a {
		t.Errorf("Article() = %+v, want %+v", got, a)
	}
}
