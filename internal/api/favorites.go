package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/spacesedan/paperboy/internal/favorites"
	"github.com/spacesedan/paperboy/internal/feed"
	"github.com/spacesedan/paperboy/internal/models"
)

func articleAt(w http.ResponseWriter, r *http.Request, ctrl FeedController, row int) (article models.Article, stop bool) {
	article, err := ctrl.Article(r.Context(), row)
	if err != nil {
		if errors.Is(err, feed.ErrUnknownRow) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			fatal(w, "Error getting article", err)
		}
		return article, true
	}
	return article, false
}

func favoriteRow(ctrl FeedController, store FavoritesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row, stop := rowFromRequest(w, r)
		if stop {
			return
		}

		article, stop := articleAt(w, r, ctrl, row)
		if stop {
			return
		}

		fav, err := store.Save(r.Context(), article)
		if err != nil {
			if errors.Is(err, favorites.ErrNoIdentity) {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			fatal(w, "Error saving favorite", err)
			return
		}

		args{
			"favorite": fav,
			"title":    favorites.SavedTitle,
			"message":  favorites.SavedMessage,
		}.WriteJSONStatus(w, http.StatusCreated)
	}
}

func listFavorites(store FavoritesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		favs, err := store.List(r.Context())
		if err != nil {
			fatal(w, "Error listing favorites", err)
			return
		}
		args{"favorites": favs}.WriteJSON(w)
	}
}

func removeFavorite(store FavoritesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.RemoveByID(r.Context(), chi.URLParam(r, "id")); err != nil {
			fatal(w, "Error removing favorite", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
