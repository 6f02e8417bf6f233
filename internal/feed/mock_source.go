package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"feedview/internal/common"
)

var mockNamespace = uuid.MustParse("6f1c8f8e-2b1d-4a53-9a0e-5d3c2f7b9a10")

var mockCaptions = []string{
	"Morning light over the harbour",
	"First ride of the season",
	"Street food tour, part two",
	"Rainy day in the studio",
	"Behind the scenes",
	"Sunset from the roof",
}

// MockSource generates a deterministic feed cycling image, video and mixed
// posts. Media URLs are built under baseURL; ids are stable across calls.
type MockSource struct {
	count   int
	baseURL string
	now     func() time.Time
}

func NewMockSource(count int, baseURL string) *MockSource {
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &MockSource{count: count, baseURL: baseURL, now: time.Now}
}

func (s *MockSource) ListPosts(ctx context.Context, limit int) ([]common.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := s.count
	if limit > 0 && limit < n {
		n = limit
	}

	now := s.now()
	posts := make([]common.Post, 0, n)
	for i := 0; i < n; i++ {
		p := common.Post{
			ID:        uuid.NewSHA1(mockNamespace, []byte(fmt.Sprintf("post-%d", i))),
			Caption:   mockCaptions[i%len(mockCaptions)],
			Timestamp: now.Add(-time.Duration(i) * time.Hour),
		}
		switch i % 3 {
		case 0:
			p.MediaType = common.MediaTypeImage
			p.ImageRef = common.Photo(s.mediaURL("photo_%02d.jpg", i))
		case 1:
			p.MediaType = common.MediaTypeVideo
			p.VideoRef = common.Video(s.mediaURL("clip_%02d.mp4", i))
		default:
			p.MediaType = common.MediaTypeMixed
			p.ImageRef = common.Photo(s.mediaURL("photo_%02d.jpg", i))
			p.VideoRef = common.Video(s.mediaURL("clip_%02d.mp4", i))
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func (s *MockSource) mediaURL(format string, i int) string {
	return s.baseURL + fmt.Sprintf(format, i)
}
