package common

import (
	"context"
)

// PostSource supplies the ordered posts of a feed, newest first.
type PostSource interface {
	ListPosts(ctx context.Context, limit int) ([]Post, error)
}
