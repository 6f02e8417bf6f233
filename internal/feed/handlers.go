package feed

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"

	"feedview/internal/common"
	"feedview/internal/imagecache"
	"feedview/internal/playback"
)

// SessionResponse is the JSON view of one playback slot.
type SessionResponse struct {
	Slot       string `json:"slot"`
	URL        string `json:"url,omitempty"`
	State      string `json:"state"`
	PositionMS int64  `json:"position_ms"`
	DurationMS int64  `json:"duration_ms"`
	Visible    bool   `json:"visible"`
	UserPaused bool   `json:"user_paused"`
	Error      string `json:"error,omitempty"`
}

type PostsResponse struct {
	Count int           `json:"count"`
	Posts []common.Post `json:"posts"`
}

// DebugHandler exposes the feed, playback slots and cache over HTTP.
type DebugHandler struct {
	coord    *Coordinator
	sessions *playback.Manager
	cache    *imagecache.Cache // optional
	started  time.Time
	router   *mux.Router
	log      *slog.Logger
}

func NewDebugHandler(coord *Coordinator, sessions *playback.Manager, cache *imagecache.Cache, logger *slog.Logger) *DebugHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &DebugHandler{
		coord:    coord,
		sessions: sessions,
		cache:    cache,
		started:  time.Now(),
		log:      logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/posts", h.listPosts).Methods(http.MethodGet)
	r.HandleFunc("/sessions", h.listSessions).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{slot}", h.getSession).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{slot}/toggle", h.toggleSession).Methods(http.MethodPost)
	r.HandleFunc("/cache", h.cacheStats).Methods(http.MethodGet)
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	h.router = r
	return h
}

func (h *DebugHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *DebugHandler) listPosts(w http.ResponseWriter, r *http.Request) {
	posts := h.coord.Posts()
	h.writeJSON(w, http.StatusOK, PostsResponse{Count: len(posts), Posts: posts})
}

func (h *DebugHandler) listSessions(w http.ResponseWriter, r *http.Request) {
	snaps := h.sessions.Snapshots()
	out := make([]SessionResponse, 0, len(snaps))
	for slot, s := range snaps {
		out = append(out, toSessionResponse(slot, s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	h.writeJSON(w, http.StatusOK, out)
}

func (h *DebugHandler) getSession(w http.ResponseWriter, r *http.Request) {
	slot := mux.Vars(r)["slot"]
	c, ok := h.sessions.Lookup(slot)
	if !ok {
		h.writeError(w, http.StatusNotFound, "unknown slot")
		return
	}
	h.writeJSON(w, http.StatusOK, toSessionResponse(slot, c.Snapshot()))
}

func (h *DebugHandler) toggleSession(w http.ResponseWriter, r *http.Request) {
	slot := mux.Vars(r)["slot"]
	c, ok := h.sessions.Lookup(slot)
	if !ok {
		h.writeError(w, http.StatusNotFound, "unknown slot")
		return
	}
	if err := c.TogglePlayback(); err != nil {
		if errors.Is(err, playback.ErrNotReady) {
			h.writeError(w, http.StatusConflict, err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, toSessionResponse(slot, c.Snapshot()))
}

func (h *DebugHandler) cacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusNotFound, "no image cache")
		return
	}
	h.writeJSON(w, http.StatusOK, h.cache.Stats())
}

func (h *DebugHandler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "alive",
		"uptime":  int64(time.Since(h.started).Seconds()),
		"posts":   h.coord.Len(),
		"playing": h.sessions.Active(),
	})
}

func (h *DebugHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("feed: writing response failed", "error", err)
	}
}

func (h *DebugHandler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func toSessionResponse(slot string, s playback.Snapshot) SessionResponse {
	resp := SessionResponse{
		Slot:       slot,
		URL:        s.URL,
		State:      s.State.String(),
		PositionMS: s.Position.Milliseconds(),
		DurationMS: s.Duration.Milliseconds(),
		Visible:    s.Visible,
		UserPaused: s.UserPaused,
	}
	if s.Err != nil {
		resp.Error = s.Err.Error()
	}
	return resp
}
