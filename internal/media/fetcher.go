package media

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

//go:generate mockgen -source=fetcher.go -destination=mock_fetcher.go -package=media

// Fetcher returns the raw bytes behind a media URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Router dispatches on the URL scheme. URLs without a scheme go to the ""
// entry, which is how bundled local media is addressed.
type Router struct {
	routes map[string]Fetcher
}

func NewRouter(routes map[string]Fetcher) *Router {
	r := &Router{routes: make(map[string]Fetcher, len(routes))}
	for scheme, f := range routes {
		if f != nil {
			r.routes[strings.ToLower(scheme)] = f
		}
	}
	return r
}

func (r *Router) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	scheme := schemeOf(rawURL)
	f, ok := r.routes[scheme]
	if !ok {
		return nil, fmt.Errorf("no fetcher for scheme %q", scheme)
	}
	return f.Fetch(ctx, rawURL)
}

func schemeOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}
