package media

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// GridFSReader is the slice of dbmongo.MediaStorage the fetcher needs.
type GridFSReader interface {
	ReadFile(ctx context.Context, fileID string, maxBytes int64) ([]byte, error)
}

// GridFSFetcher serves gridfs://<object id hex> URLs.
type GridFSFetcher struct {
	Storage  GridFSReader
	MaxBytes int64
}

func NewGridFSFetcher(storage GridFSReader, maxBytes int64) *GridFSFetcher {
	return &GridFSFetcher{Storage: storage, MaxBytes: maxBytes}
}

func (f *GridFSFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	id, err := gridFSFileID(rawURL)
	if err != nil {
		return nil, err
	}
	return f.Storage.ReadFile(ctx, id, f.MaxBytes)
}

func gridFSFileID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(u.Scheme, "gridfs") {
		return "", fmt.Errorf("not a gridfs url: %q", rawURL)
	}
	id := u.Host
	if id == "" {
		id = strings.Trim(u.Path, "/")
	}
	if id == "" {
		return "", fmt.Errorf("gridfs url without file id: %q", rawURL)
	}
	return id, nil
}
