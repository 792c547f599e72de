package favorites

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/paperboy/internal/models"
)

var ErrNoIdentity = errors.New("[FavoritesStore] article has no url or server id")

const (
	SavedTitle   = "Article Saved"
	SavedMessage = "This article has been added to your Favorites"
)

// Persistence is the durable store behind the favorites list.
//
// Insert must be a no-op when a favorite with the same ID exists, leaving the
// original in its place. Delete of a missing ID is not an error. All returns
// favorites in insertion order.
type Persistence interface {
	Insert(ctx context.Context, fav models.Favorite) error
	Delete(ctx context.Context, id string) error
	All(ctx context.Context) ([]models.Favorite, error)
}

// Store keeps the user's saved articles, one entry per article identity.
type Store struct {
	p   Persistence
	now func() time.Time
}

func NewStore(p Persistence) *Store {
	return &Store{p: p, now: time.Now}
}

// Save stores a copy of a. Saving the same article again is a no-op.
func (s *Store) Save(ctx context.Context, a models.Article) (models.Favorite, error) {
	fav := models.FavoriteFromArticle(a, s.now().UTC())
	if fav.ID == "" {
		return models.Favorite{}, ErrNoIdentity
	}

	if err := s.p.Insert(ctx, fav); err != nil {
		slog.Error("[FavoritesStore] Failed to save favorite",
			slog.String("id", fav.ID),
			slog.String("error", err.Error()))
		return models.Favorite{}, fmt.Errorf("[FavoritesStore] save %s: %w", fav.ID, err)
	}

	slog.Info("[FavoritesStore] Saved favorite", slog.String("id", fav.ID), slog.String("title", fav.Title))
	return fav, nil
}

func (s *Store) Remove(ctx context.Context, a models.Article) error {
	id := a.Key()
	if id == "" {
		return ErrNoIdentity
	}
	return s.RemoveByID(ctx, id)
}

func (s *Store) RemoveByID(ctx context.Context, id string) error {
	if err := s.p.Delete(ctx, id); err != nil {
		return fmt.Errorf("[FavoritesStore] remove %s: %w", id, err)
	}
	slog.Info("[FavoritesStore] Removed favorite", slog.String("id", id))
	return nil
}

// List returns every favorite in the order it was first saved.
func (s *Store) List(ctx context.Context) ([]models.Favorite, error) {
	favs, err := s.p.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("[FavoritesStore] list: %w", err)
	}
	if favs == nil {
		favs = []models.Favorite{}
	}
	return favs, nil
}

func (s *Store) Contains(ctx context.Context, a models.Article) (bool, error) {
	id := a.Key()
	if id == "" {
		return false, nil
	}
	favs, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, f := range favs {
		if f.ID == id {
			return true, nil
		}
	}
	return false, nil
}
