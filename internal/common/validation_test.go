package common

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePost(t *testing.T) {
	id := uuid.New()
	now := time.Now()

	tests := []struct {
		name    string
		post    Post
		wantErr bool
	}{
		{
			name: "image post",
			post: Post{ID: id, MediaType: MediaTypeImage, ImageRef: Photo("https://cdn/a.jpg"), Timestamp: now},
		},
		{
			name: "video post",
			post: Post{ID: id, MediaType: MediaTypeVideo, VideoRef: Video("video1.mp4"), Timestamp: now},
		},
		{
			name: "mixed post",
			post: Post{ID: id, MediaType: MediaTypeMixed, ImageRef: Photo("a.jpg"), VideoRef: Video("b.mp4")},
		},
		{
			name:    "image post with a video",
			post:    Post{ID: id, MediaType: MediaTypeImage, ImageRef: Photo("a.jpg"), VideoRef: Video("b.mp4")},
			wantErr: true,
		},
		{
			name:    "video post without video",
			post:    Post{ID: id, MediaType: MediaTypeVideo},
			wantErr: true,
		},
		{
			name:    "mixed post missing image",
			post:    Post{ID: id, MediaType: MediaTypeMixed, VideoRef: Video("b.mp4")},
			wantErr: true,
		},
		{
			name:    "photo ref in video slot",
			post:    Post{ID: id, MediaType: MediaTypeVideo, VideoRef: Photo("a.jpg")},
			wantErr: true,
		},
		{
			name:    "empty url",
			post:    Post{ID: id, MediaType: MediaTypeImage, ImageRef: Photo("  ")},
			wantErr: true,
		},
		{
			name:    "nil id",
			post:    Post{MediaType: MediaTypeImage, ImageRef: Photo("a.jpg")},
			wantErr: true,
		},
		{
			name:    "unknown media type",
			post:    Post{ID: id, MediaType: "gif", ImageRef: Photo("a.gif")},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePost(tc.post)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidPost)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestPost_URLs(t *testing.T) {
	p := Post{MediaType: MediaTypeMixed, ImageRef: Photo("a.jpg"), VideoRef: Video("b.mp4")}
	assert.Equal(t, "a.jpg", p.ImageURL())
	assert.Equal(t, "b.mp4", p.VideoURL())

	empty := Post{}
	assert.Empty(t, empty.ImageURL())
	assert.Empty(t, empty.VideoURL())
	assert.False(t, empty.ImageRef.IsPhoto())
}
