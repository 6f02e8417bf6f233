package dbmysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"feedview/internal/common"
)

// PostRepository reads the feed from MySQL.
type PostRepository struct {
	db           *gorm.DB
	mediaBaseURL string
}

func NewPostRepository(db *gorm.DB, mediaBaseURL string) *PostRepository {
	return &PostRepository{db: db, mediaBaseURL: mediaBaseURL}
}

var _ common.PostSource = (*PostRepository)(nil)

// ListPosts returns the newest posts first.
func (r *PostRepository) ListPosts(ctx context.Context, limit int) ([]common.Post, error) {
	var rows []Post

	query := r.db.WithContext(ctx).
		Preload("ImageRef").
		Preload("VideoRef").
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	posts := make([]common.Post, 0, len(rows))
	for i := range rows {
		posts = append(posts, rows[i].ToPost(r.mediaBaseURL))
	}
	return posts, nil
}

// CreatePost stores the post together with any new media refs.
func (r *PostRepository) CreatePost(ctx context.Context, post *Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}
