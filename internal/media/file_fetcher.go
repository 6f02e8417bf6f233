package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

var errOutsideRoot = errors.New("path escapes media root")

// FileFetcher reads bundled media from disk: file:// URLs and bare relative
// paths, both resolved under Root.
type FileFetcher struct {
	Root     string
	MaxBytes int64
}

func NewFileFetcher(root string, maxBytes int64) *FileFetcher {
	return &FileFetcher{Root: filepath.Clean(strings.TrimSpace(root)), MaxBytes: maxBytes}
}

func (f *FileFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := f.resolve(rawURL)
	if err != nil {
		return nil, err
	}

	if f.MaxBytes > 0 {
		fi, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if fi.Size() > f.MaxBytes {
			return nil, fmt.Errorf("%s is %d bytes, limit %d", path, fi.Size(), f.MaxBytes)
		}
	}
	return os.ReadFile(path)
}

func (f *FileFetcher) resolve(rawURL string) (string, error) {
	p := rawURL
	if strings.HasPrefix(strings.ToLower(rawURL), "file://") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", err
		}
		p = u.Host + u.Path
	}
	p = filepath.FromSlash(strings.TrimPrefix(p, "/"))

	full := filepath.Join(f.Root, p)
	rel, err := filepath.Rel(f.Root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errOutsideRoot
	}
	return full, nil
}
