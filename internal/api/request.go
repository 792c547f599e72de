package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
)

const (
	OfflineTitle   = "No Internet Connection"
	OfflineMessage = "Connect to the internet and pull down to refresh."
)

type args map[string]interface{}

func (a args) WriteJSON(w http.ResponseWriter) {
	a.WriteJSONStatus(w, http.StatusOK)
}

func (a args) WriteJSONStatus(w http.ResponseWriter, code int) {
	b, err := json.Marshal(a)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(b)
}

func offlineView() args {
	return args{"title": OfflineTitle, "message": OfflineMessage}
}

func fatal(w http.ResponseWriter, msg string, err error) {
	slog.Error("[API] "+msg, slog.String("error", err.Error()))
	http.Error(w, msg, http.StatusInternalServerError)
}

func rowFromRequest(w http.ResponseWriter, r *http.Request) (row int, stop bool) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil || row < 0 {
		http.Error(w, "invalid row", http.StatusBadRequest)
		return 0, true
	}
	return row, false
}
