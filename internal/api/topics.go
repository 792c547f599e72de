package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/spacesedan/paperboy/internal/feed"
	"github.com/spacesedan/paperboy/internal/models"
)

type topicItem struct {
	Topic    models.Topic `json:"topic"`
	Title    string       `json:"title"`
	Selected bool         `json:"selected"`
}

func listTopics(ctrl FeedController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := ctrl.Snapshot(r.Context())
		if err != nil {
			fatal(w, "Error getting feed state", err)
			return
		}

		items := make([]topicItem, len(models.AllTopics))
		for i, t := range models.AllTopics {
			items[i] = topicItem{Topic: t, Title: t.Title(), Selected: t == snap.Topic}
		}

		args{"topics": items}.WriteJSON(w)
	}
}

func selectTopic(ctrl FeedController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic, err := models.ParseTopic(chi.URLParam(r, "topic"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		err = ctrl.SelectTopic(r.Context(), topic)
		switch {
		case errors.Is(err, feed.ErrOffline):
			args{"topic": topic, "offline": offlineView()}.WriteJSONStatus(w, http.StatusServiceUnavailable)
		case err != nil:
			fatal(w, "Error selecting topic", err)
		default:
			args{"topic": topic}.WriteJSONStatus(w, http.StatusAccepted)
		}
	}
}
