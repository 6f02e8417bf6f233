package feed

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"feedview/internal/common"
	"feedview/internal/imagecache"
	"feedview/internal/media"
	"feedview/internal/playback"
)

var mp4Header = []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2avc1mp41")

func newTestDebugHandler(t *testing.T) (*DebugHandler, *playback.Manager) {
	t.Helper()

	src := new(mockPostSource)
	src.On("ListPosts", mock.Anything, mock.Anything).Return([]common.Post{imagePost("a.jpg"), videoPost("b.mp4")}, nil)
	coord := NewCoordinator(src, 10, nil)
	_, err := coord.Refresh(context.Background())
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	fetcher := media.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), "b.mp4").Return(mp4Header, nil).AnyTimes()
	sessions := playback.NewManager(playback.NewSimEngine(fetcher, playback.SimOptions{ClipDuration: time.Hour}), 0, nil)
	t.Cleanup(sessions.Close)

	cache, err := imagecache.New(10, 1<<20)
	require.NoError(t, err)
	cache.Put("a.jpg", image.NewRGBA(image.Rect(0, 0, 2, 2)), 16)

	return NewDebugHandler(coord, sessions, cache, nil), sessions
}

func doRequest(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestDebugHandler_ListPosts(t *testing.T) {
	h, _ := newTestDebugHandler(t)

	rec := doRequest(h, http.MethodGet, "/posts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp PostsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "a.jpg", resp.Posts[0].ImageURL())
	assert.Equal(t, common.MediaTypeVideo, resp.Posts[1].MediaType)
}

func TestDebugHandler_Sessions(t *testing.T) {
	h, sessions := newTestDebugHandler(t)

	slot := sessions.Slot("row-1")
	slot.HandleVisibilityChange(true)
	require.NoError(t, slot.Setup(context.Background(), "b.mp4"))

	rec := doRequest(h, http.MethodGet, "/sessions")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "row-1", list[0].Slot)
	assert.Equal(t, "b.mp4", list[0].URL)
	assert.True(t, list[0].Visible)
	assert.Contains(t, []string{"playing", "stalled"}, list[0].State)

	rec = doRequest(h, http.MethodGet, "/sessions/row-1")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(h, http.MethodGet, "/sessions/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDebugHandler_Toggle(t *testing.T) {
	h, sessions := newTestDebugHandler(t)

	sessions.Slot("idle")
	rec := doRequest(h, http.MethodPost, "/sessions/idle/toggle")
	assert.Equal(t, http.StatusConflict, rec.Code)

	slot := sessions.Slot("row-1")
	slot.HandleVisibilityChange(true)
	require.NoError(t, slot.Setup(context.Background(), "b.mp4"))

	rec = doRequest(h, http.MethodPost, "/sessions/row-1/toggle")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "paused", resp.State)
	assert.True(t, resp.UserPaused)

	rec = doRequest(h, http.MethodPost, "/sessions/missing/toggle")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(h, http.MethodGet, "/sessions/row-1/toggle")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDebugHandler_CacheAndHealth(t *testing.T) {
	h, _ := newTestDebugHandler(t)

	rec := doRequest(h, http.MethodGet, "/cache")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats imagecache.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(16), stats.TotalCost)

	rec = doRequest(h, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "alive", health["status"])
	assert.Equal(t, float64(2), health["posts"])
}
