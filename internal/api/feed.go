package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/spacesedan/paperboy/internal/detail"
	"github.com/spacesedan/paperboy/internal/feed"
)

func getFeed(ctrl FeedController, network Reachability, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := ctrl.Snapshot(r.Context())
		if err != nil {
			fatal(w, "Error getting feed", err)
			return
		}

		resp := args{
			"topic":         snap.Topic,
			"generation":    snap.Generation,
			"loading":       snap.Loading,
			"header":        feed.HeaderText(snap.UpdatedAt, now()),
			"header_height": feed.HeaderHeight,
			"footer_height": feed.FooterHeight,
			"rows":          feed.Layout(snap.Articles),
		}
		if snap.Err != "" {
			resp["error"] = snap.Err
		}
		if snap.Offline || (network != nil && !network.Reachable()) {
			resp["offline"] = offlineView()
		}

		resp.WriteJSON(w)
	}
}

func refreshFeed(ctrl FeedController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := ctrl.Refresh(r.Context())
		switch {
		case errors.Is(err, feed.ErrOffline):
			args{"offline": offlineView()}.WriteJSONStatus(w, http.StatusServiceUnavailable)
		case errors.Is(err, feed.ErrNoTopic):
			http.Error(w, err.Error(), http.StatusConflict)
		case err != nil:
			fatal(w, "Error refreshing feed", err)
		default:
			args{"message": feed.PullReadyMessage}.WriteJSONStatus(w, http.StatusAccepted)
		}
	}
}

func getPullMessage(w http.ResponseWriter, r *http.Request) {
	offset, err := strconv.ParseFloat(r.URL.Query().Get("offset"), 64)
	if err != nil {
		http.Error(w, "invalid offset", http.StatusBadRequest)
		return
	}
	args{"message": feed.PullMessage(offset)}.WriteJSON(w)
}

func getRowDetail(ctrl FeedController, builder DetailBuilder, store FavoritesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row, stop := rowFromRequest(w, r)
		if stop {
			return
		}

		article, stop := articleAt(w, r, ctrl, row)
		if stop {
			return
		}

		d := builder.Build(r.Context(), article)
		if saved, err := store.Contains(r.Context(), article); err == nil {
			d.Saved = saved
		}

		args{"detail": d}.WriteJSON(w)
	}
}

func shareRow(ctrl FeedController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row, stop := rowFromRequest(w, r)
		if stop {
			return
		}

		article, stop := articleAt(w, r, ctrl, row)
		if stop {
			return
		}

		url, err := detail.Share(article)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		args{"url": url, "title": article.Title}.WriteJSON(w)
	}
}
