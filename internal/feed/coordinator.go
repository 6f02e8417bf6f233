package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"feedview/internal/common"
)

const defaultPageSize = 50

// Coordinator owns the ordered list of posts shown by the feed.
type Coordinator struct {
	source   common.PostSource
	pageSize int
	log      *slog.Logger

	mu    sync.RWMutex
	posts []common.Post
	index map[uuid.UUID]int
}

func NewCoordinator(source common.PostSource, pageSize int, logger *slog.Logger) *Coordinator {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		source:   source,
		pageSize: pageSize,
		log:      logger,
		index:    map[uuid.UUID]int{},
	}
}

// Refresh replaces the feed with the source's current posts, keeping the
// source order. Posts that break the media invariants or repeat an id are
// dropped. On error the previous feed is kept.
func (c *Coordinator) Refresh(ctx context.Context) (int, error) {
	raw, err := c.source.ListPosts(ctx, c.pageSize)
	if err != nil {
		return 0, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]common.Post, 0, len(raw))
	index := make(map[uuid.UUID]int, len(raw))
	for _, p := range raw {
		if err := common.ValidatePost(p); err != nil {
			c.log.Warn("feed: dropping post", "post_id", p.ID, "error", err)
			continue
		}
		if _, dup := index[p.ID]; dup {
			c.log.Warn("feed: dropping duplicate post", "post_id", p.ID)
			continue
		}
		index[p.ID] = len(posts)
		posts = append(posts, p)
	}

	c.mu.Lock()
	c.posts = posts
	c.index = index
	c.mu.Unlock()

	c.log.Info("feed: refreshed", "received", len(raw), "kept", len(posts))
	return len(posts), nil
}

// Posts returns a copy of the feed.
func (c *Coordinator) Posts() []common.Post {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]common.Post(nil), c.posts...)
}

func (c *Coordinator) Post(id uuid.UUID) (common.Post, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return common.Post{}, false
	}
	return c.posts[i], true
}

func (c *Coordinator) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.posts)
}
