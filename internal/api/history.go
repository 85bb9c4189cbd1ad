package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/snarg/lectern/internal/session"
)

// HistoryHandler serves a user's past study runs and aggregate stats.
type HistoryHandler struct {
	store *session.Store
	log   zerolog.Logger
}

func NewHistoryHandler(store *session.Store, log zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{
		store: store,
		log:   log.With().Str("handler", "history").Logger(),
	}
}

type historyResponse struct {
	Stats   session.Stats          `json:"stats"`
	Entries []session.HistoryEntry `json:"entries"`
}

// List handles GET /api/v1/history. Entries are newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromRequest(r)
	entries := h.store.History(sess.Username)
	if entries == nil {
		entries = []session.HistoryEntry{}
	}
	WriteJSON(w, http.StatusOK, historyResponse{
		Stats:   h.store.UserStats(sess.Username),
		Entries: entries,
	})
}
