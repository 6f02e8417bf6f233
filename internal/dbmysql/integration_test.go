package dbmysql

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"

	"feedview/internal/common"
)

// Runs against a real MySQL, e.g.
// MYSQL_TEST_DSN="feedview:feedview123@tcp(localhost:3306)/feedview_test?parseTime=true"
func TestPostRepository_Integration(t *testing.T) {
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set")
	}

	db, err := Open(mysql.Open(dsn), 5, 2)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Exec("DELETE FROM posts")
		db.Exec("DELETE FROM media_refs")
	})

	repo := NewPostRepository(db, "")
	ctx := context.Background()
	base := time.Now().Truncate(time.Second)

	older := &Post{
		PostID:    uuid.NewString(),
		MediaType: "image",
		Caption:   "older",
		CreatedAt: base.Add(-time.Hour),
		ImageRef:  &MediaRef{Kind: common.MediaFileTypeImage, URL: "https://cdn/older.jpg"},
	}
	newer := &Post{
		PostID:    uuid.NewString(),
		MediaType: "video",
		Caption:   "newer",
		CreatedAt: base,
		VideoRef:  &MediaRef{Kind: common.MediaFileTypeVideo, FileID: "64b7f0c2e4b0a1a2b3c4d5e6"},
	}
	require.NoError(t, repo.CreatePost(ctx, older))
	require.NoError(t, repo.CreatePost(ctx, newer))

	posts, err := repo.ListPosts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "newer", posts[0].Caption)
	assert.Equal(t, "gridfs://64b7f0c2e4b0a1a2b3c4d5e6", posts[0].VideoURL())
	assert.Equal(t, "https://cdn/older.jpg", posts[1].ImageURL())

	limited, err := repo.ListPosts(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
