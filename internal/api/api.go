package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/spacesedan/paperboy/internal/detail"
	"github.com/spacesedan/paperboy/internal/feed"
	"github.com/spacesedan/paperboy/internal/models"
)

type FeedController interface {
	SelectTopic(ctx context.Context, topic models.Topic) error
	Refresh(ctx context.Context) error
	Snapshot(ctx context.Context) (feed.Snapshot, error)
	Article(ctx context.Context, row int) (models.Article, error)
}

type FavoritesStore interface {
	Save(ctx context.Context, a models.Article) (models.Favorite, error)
	RemoveByID(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Favorite, error)
	Contains(ctx context.Context, a models.Article) (bool, error)
}

type DetailBuilder interface {
	Build(ctx context.Context, a models.Article) detail.Detail
}

type Reachability interface {
	Reachable() bool
}

type Deps struct {
	Feed      FeedController
	Favorites FavoritesStore
	Detail    DetailBuilder
	Network   Reachability
	Now       func() time.Time
}

// Router mounts every endpoint of the reader.
func Router(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}

	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Get("/status", getStatus(d.Network))

	r.Get("/topics", listTopics(d.Feed))
	r.Post("/topics/{topic}", selectTopic(d.Feed))

	r.Get("/feed", getFeed(d.Feed, d.Network, d.Now))
	r.Post("/feed/refresh", refreshFeed(d.Feed))
	r.Get("/feed/pull", getPullMessage)
	r.Get("/feed/rows/{row}", getRowDetail(d.Feed, d.Detail, d.Favorites))
	r.Get("/feed/rows/{row}/share", shareRow(d.Feed))
	r.Post("/feed/rows/{row}/favorite", favoriteRow(d.Feed, d.Favorites))

	r.Get("/favorites", listFavorites(d.Favorites))
	r.Delete("/favorites/{id}", removeFavorite(d.Favorites))

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("[API] Request served",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("took", time.Since(start)))
	})
}

func getStatus(network Reachability) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		args{"reachable": network == nil || network.Reachable()}.WriteJSON(w)
	}
}
