package media

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"feedview/internal/imagecache"
)

const (
	defaultMaxConcurrent = 4
	defaultFetchTimeout  = 20 * time.Second
)

type LoaderOptions struct {
	MaxConcurrent int           // concurrent fetch+decode jobs across all urls
	FetchTimeout  time.Duration // per fetch, independent of any single caller
	Logger        *slog.Logger
}

// Loader materializes images for the feed: cache first, then one
// fetch+decode per url no matter how many callers are waiting on it.
type Loader struct {
	cache   *imagecache.Cache
	fetcher Fetcher
	group   singleflight.Group
	sem     *semaphore.Weighted
	workers int
	timeout time.Duration
	log     *slog.Logger
}

func NewLoader(cache *imagecache.Cache, fetcher Fetcher, opts LoaderOptions) *Loader {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Loader{
		cache:   cache,
		fetcher: fetcher,
		sem:     semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		workers: opts.MaxConcurrent,
		timeout: opts.FetchTimeout,
		log:     opts.Logger,
	}
}

// LoadImage returns the decoded image for url. Concurrent misses for the
// same url share a single fetch and all see its result. Cancelling ctx only
// abandons this caller's wait; the shared fetch keeps going for the others.
//
// Errors are *FetchError or *DecodeError, or ctx.Err().
func (l *Loader) LoadImage(ctx context.Context, url string) (image.Image, error) {
	if img, ok := l.cache.Get(url); ok {
		return img, nil
	}

	ch := l.group.DoChan(url, func() (any, error) {
		return l.fetchAndDecode(context.WithoutCancel(ctx), url)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(image.Image), nil
	}
}

func (l *Loader) fetchAndDecode(ctx context.Context, url string) (image.Image, error) {
	// A flight that finished between our miss and DoChan already filled the cache.
	if img, ok := l.cache.Peek(url); ok {
		return img, nil
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer l.sem.Release(1)

	start := time.Now()
	data, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		l.log.Warn("media: fetch failed", "url", url, "error", err)
		var fe *FetchError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, &FetchError{URL: url, Err: err}
	}

	img, format, err := Decode(data)
	if err != nil {
		l.log.Warn("media: decode failed", "url", url, "bytes", len(data), "error", err)
		return nil, &DecodeError{URL: url, Err: err}
	}

	if !l.cache.Put(url, img, int64(len(data))) {
		l.log.Debug("media: image larger than cache, not stored", "url", url, "bytes", len(data))
	}
	l.log.Debug("media: image loaded",
		"url", url,
		"format", format,
		"bytes", len(data),
		"elapsed", time.Since(start),
	)
	return img, nil
}

// Prefetch warms the cache for urls. Failures are logged, not returned; the
// row that needs the image will see the error when it loads it.
func (l *Loader) Prefetch(ctx context.Context, urls ...string) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for _, u := range urls {
		if u == "" || l.cache.Contains(u) {
			continue
		}
		u := u
		g.Go(func() error {
			if _, err := l.LoadImage(ctx, u); err != nil && ctx.Err() == nil {
				l.log.Debug("media: prefetch failed", "url", u, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (l *Loader) Cache() *imagecache.Cache { return l.cache }
