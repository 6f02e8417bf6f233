package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"feedview/internal/dbmongo"
)

var ErrNotFound = errors.New("media not found")

// Store is where the media server reads files from.
type Store interface {
	Open(ctx context.Context, fileID string) (io.ReadCloser, string, int64, error)
}

// GridFSStore adapts dbmongo.MediaStorage.
type GridFSStore struct {
	Storage *dbmongo.MediaStorage
}

func (s GridFSStore) Open(ctx context.Context, fileID string) (io.ReadCloser, string, int64, error) {
	rc, mf, err := s.Storage.DownloadFile(ctx, fileID)
	if err != nil {
		return nil, "", 0, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return rc, mf.Filename, mf.Size, nil
}

// DirStore serves files by name from a local directory.
type DirStore struct {
	Root string
}

func (s DirStore) Open(ctx context.Context, fileID string) (io.ReadCloser, string, int64, error) {
	if fileID == "" || strings.ContainsAny(fileID, `/\`) || fileID == ".." {
		return nil, "", 0, ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.Root, fileID))
	if err != nil {
		return nil, "", 0, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		f.Close()
		return nil, "", 0, ErrNotFound
	}
	return f, fi.Name(), fi.Size(), nil
}

type HTTPServer struct {
	store  Store
	router *mux.Router
	log    *slog.Logger
}

func NewHTTPServer(store Store, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &HTTPServer{store: store, log: logger}

	router := mux.NewRouter()

	// Main endpoint: GET /media/{fileId}
	router.HandleFunc("/media/{fileId}", s.serveFile).Methods("GET")

	// Health check
	router.HandleFunc("/health", s.health).Methods("GET")

	s.router = router
	return s
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *HTTPServer) serveFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]

	rc, name, size, err := s.store.Open(r.Context(), fileID)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", getContentType(name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", size))

	if _, err := io.Copy(w, rc); err != nil {
		s.log.Warn("media: streaming file failed", "file_id", fileID, "error", err)
	}
}

func getContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("✅ Media server is healthy"))
}
