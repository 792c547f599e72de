package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spacesedan/paperboy/internal/detail"
	"github.com/spacesedan/paperboy/internal/favorites"
	"github.com/spacesedan/paperboy/internal/feed"
	"github.com/spacesedan/paperboy/internal/models"
)

type fakeController struct {
	snap       feed.Snapshot
	selectErr  error
	refreshed  int
	refreshErr error
	selected   []models.Topic
}

func (f *fakeController) SelectTopic(ctx context.Context, topic models.Topic) error {
	f.selected = append(f.selected, topic)
	f.snap.Topic = topic
	return f.selectErr
}

func (f *fakeController) Refresh(ctx context.Context) error {
	f.refreshed++
	return f.refreshErr
}

func (f *fakeController) Snapshot(ctx context.Context) (feed.Snapshot, error) {
	return f.snap, nil
}

func (f *fakeController) Article(ctx context.Context, row int) (models.Article, error) {
	if row < 0 || row >= len(f.snap.Articles) {
		return models.Article{}, feed.ErrUnknownRow
	}
	return f.snap.Articles[row], nil
}

type fakeDetail struct{}

func (fakeDetail) Build(ctx context.Context, a models.Article) detail.Detail {
	return detail.Detail{Article: a, ID: a.Key(), Body: a.Summary}
}

type fakeNetwork bool

func (n fakeNetwork) Reachable() bool { return bool(n) }

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testArticles() []models.Article {
	return []models.Article{
		{Title: "One", Summary: "first", URL: "https://news.example.com/1"},
		{Title: "Two", Summary: "second", URL: "https://news.example.com/2"},
		{Title: "No link", Summary: "third"},
	}
}

type harness struct {
	ctrl    *fakeController
	store   *favorites.Store
	handler http.Handler
}

func newHarness(reachable bool) *harness {
	ctrl := &fakeController{snap: feed.Snapshot{
		Topic:      models.TopicTechnology,
		Articles:   testArticles(),
		Generation: 2,
		UpdatedAt:  testNow.Add(-3 * time.Minute),
	}}
	store := favorites.NewStore(favorites.NewMemory())
	h := Router(Deps{
		Feed:      ctrl,
		Favorites: store,
		Detail:    fakeDetail{},
		Network:   fakeNetwork(reachable),
		Now:       func() time.Time { return testNow },
	})
	return &harness{ctrl: ctrl, store: store, handler: h}
}

func (h *harness) do(t *testing.T, method, path string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	r := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, r)

	body := map[string]json.RawMessage{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s %s body = %q, error = %v", method, path, w.Body, err)
		}
	}
	return w, body
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

func TestListTopics(t *testing.T) {
	h := newHarness(true)
	w, body := h.do(t, "GET", "/topics")
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}

	var topics []topicItem
	decode(t, body["topics"], &topics)
	if len(topics) != len(models.AllTopics) {
		t.Fatalf("len = %d", len(topics))
	}
	for _, item := range topics {
		if item.Selected != (item.Topic == models.TopicTechnology) {
			t.Errorf("%s selected = %v", item.Topic, item.Selected)
		}
	}
}

func TestSelectTopic(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
		code int
	}{
		{"accepted", "/topics/sports", nil, http.StatusAccepted},
		{"offline", "/topics/sports", feed.ErrOffline, http.StatusServiceUnavailable},
		{"unknown", "/topics/gardening", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(true)
			h.ctrl.selectErr = tt.err

			w, body := h.do(t, "POST", tt.path)
			if w.Code != tt.code {
				t.Fatalf("code = %d, want %d", w.Code, tt.code)
			}
			if tt.err == feed.ErrOffline {
				if _, ok := body["offline"]; !ok {
					t.Errorf("offline view missing: %s", w.Body)
				}
			}
			if tt.code != http.StatusNotFound && (len(h.ctrl.selected) != 1 || h.ctrl.selected[0] != models.TopicSports) {
				t.Errorf("selected = %v", h.ctrl.selected)
			}
		})
	}
}

func TestGetFeed(t *testing.T) {
	h := newHarness(true)
	w, body := h.do(t, "GET", "/feed")
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}

	var header string
	decode(t, body["header"], &header)
	if header != "Updated 3 minutes ago" {
		t.Errorf("header = %q", header)
	}

	var rows []struct {
		Index   int             `json:"index"`
		Variant string          `json:"variant"`
		Height  int             `json:"height"`
		Article *models.Article `json:"article"`
	}
	decode(t, body["rows"], &rows)
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Variant != "large" || rows[0].Height != feed.LargeRowHeight || rows[1].Variant != "right-small" || rows[2].Variant != "left-small" {
		t.Errorf("rows = %+v", rows)
	}
	if rows[1].Article == nil || rows[1].Article.Title != "Two" {
		t.Errorf("row 1 article = %+v", rows[1].Article)
	}
	if _, ok := body["offline"]; ok {
		t.Error("unexpected offline view")
	}
}

func TestGetFeedEmptyShowsPlaceholders(t *testing.T) {
	h := newHarness(true)
	h.ctrl.snap.Articles = nil

	_, body := h.do(t, "GET", "/feed")
	var raw []map[string]interface{}
	decode(t, body["rows"], &raw)
	if len(raw) != feed.PlaceholderRows {
		t.Fatalf("rows = %d, want %d", len(raw), feed.PlaceholderRows)
	}
	for i, r := range raw {
		if r["placeholder"] != true {
			t.Errorf("row %d not a placeholder: %v", i, r)
		}
	}
}

func TestGetFeedOffline(t *testing.T) {
	h := newHarness(false)
	_, body := h.do(t, "GET", "/feed")

	var view map[string]string
	decode(t, body["offline"], &view)
	if view["title"] != OfflineTitle || view["message"] != OfflineMessage {
		t.Errorf("offline view = %v", view)
	}
}

func TestRefresh(t *testing.T) {
	h := newHarness(true)
	w, body := h.do(t, "POST", "/feed/refresh")
	if w.Code != http.StatusAccepted || h.ctrl.refreshed != 1 {
		t.Fatalf("code = %d, refreshed = %d", w.Code, h.ctrl.refreshed)
	}
	var msg string
	decode(t, body["message"], &msg)
	if msg != feed.PullReadyMessage {
		t.Errorf("message = %q", msg)
	}

	h.ctrl.refreshErr = feed.ErrOffline
	if w, _ := h.do(t, "POST", "/feed/refresh"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("offline refresh code = %d", w.Code)
	}

	h.ctrl.refreshErr = feed.ErrNoTopic
	if w, _ := h.do(t, "POST", "/feed/refresh"); w.Code != http.StatusConflict {
		t.Errorf("no topic refresh code = %d", w.Code)
	}
}

func TestPullMessage(t *testing.T) {
	h := newHarness(true)
	_, body := h.do(t, "GET", "/feed/pull?offset=30")
	var msg string
	decode(t, body["message"], &msg)
	if msg != "Keep Pulling..." {
		t.Errorf("message = %q", msg)
	}

	if w, _ := h.do(t, "GET", "/feed/pull?offset=abc"); w.Code != http.StatusBadRequest {
		t.Errorf("bad offset code = %d", w.Code)
	}
}

func TestRowDetail(t *testing.T) {
	h := newHarness(true)

	w, body := h.do(t, "GET", "/feed/rows/1")
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	var d detail.Detail
	decode(t, body["detail"], &d)
	if d.Article.Title != "Two" || d.Saved {
		t.Errorf("detail = %+v", d)
	}

	if w, _ := h.do(t, "GET", "/feed/rows/9"); w.Code != http.StatusNotFound {
		t.Errorf("unknown row code = %d", w.Code)
	}
	if w, _ := h.do(t, "GET", "/feed/rows/x"); w.Code != http.StatusBadRequest {
		t.Errorf("bad row code = %d", w.Code)
	}
}

func TestShareRow(t *testing.T) {
	h := newHarness(true)

	_, body := h.do(t, "GET", "/feed/rows/0/share")
	var url string
	decode(t, body["url"], &url)
	if url != "https://news.example.com/1" {
		t.Errorf("url = %q", url)
	}

	if w, _ := h.do(t, "GET", "/feed/rows/2/share"); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("share without url code = %d", w.Code)
	}
}

func TestFavoriteLifecycle(t *testing.T) {
	h := newHarness(true)

	w, body := h.do(t, "POST", "/feed/rows/0/favorite")
	if w.Code != http.StatusCreated {
		t.Fatalf("code = %d", w.Code)
	}
	var title, message string
	decode(t, body["title"], &title)
	decode(t, body["message"], &message)
	if title != favorites.SavedTitle || message != favorites.SavedMessage {
		t.Errorf("confirmation = %q / %q", title, message)
	}

	h.do(t, "POST", "/feed/rows/1/favorite")
	h.do(t, "POST", "/feed/rows/0/favorite")

	_, body = h.do(t, "GET", "/favorites")
	var favs []models.Favorite
	decode(t, body["favorites"], &favs)
	if len(favs) != 2 || favs[0].Title != "One" || favs[1].Title != "Two" {
		t.Fatalf("favorites = %+v", favs)
	}

	_, body = h.do(t, "GET", "/feed/rows/0")
	var d detail.Detail
	decode(t, body["detail"], &d)
	if !d.Saved {
		t.Error("detail should report saved article")
	}

	if w, _ := h.do(t, "DELETE", "/favorites/"+favs[0].ID); w.Code != http.StatusNoContent {
		t.Fatalf("delete code = %d", w.Code)
	}
	_, body = h.do(t, "GET", "/favorites")
	decode(t, body["favorites"], &favs)
	if len(favs) != 1 || favs[0].Title != "Two" {
		t.Fatalf("after delete = %+v", favs)
	}
}

func TestStatus(t *testing.T) {
	_, body := newHarness(false).do(t, "GET", "/status")
	var reachable bool
	decode(t, body["reachable"], &reachable)
	if reachable {
		t.Error("reachable = true, want false")
	}
}
