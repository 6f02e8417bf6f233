package common

import (
	"time"

	"github.com/google/uuid"
)

// MediaRef points at one photo or video. Identity is the URL.
type MediaRef struct {
	Kind MediaFileType `json:"kind"`
	URL  string        `json:"url"`
}

func Photo(url string) *MediaRef {
	return &MediaRef{Kind: MediaFileTypeImage, URL: url}
}

func Video(url string) *MediaRef {
	return &MediaRef{Kind: MediaFileTypeVideo, URL: url}
}

func (r *MediaRef) IsPhoto() bool { return r != nil && r.Kind == MediaFileTypeImage }
func (r *MediaRef) IsVideo() bool { return r != nil && r.Kind == MediaFileTypeVideo }

type Post struct {
	ID        uuid.UUID `json:"id"`
	MediaType MediaType `json:"media_type"`
	ImageRef  *MediaRef `json:"image,omitempty"`
	VideoRef  *MediaRef `json:"video,omitempty"`
	Caption   string    `json:"caption"`
	Timestamp time.Time `json:"timestamp"`
}

// ImageURL returns "" when the post has no image.
func (p Post) ImageURL() string {
	if p.ImageRef == nil {
		return ""
	}
	return p.ImageRef.URL
}

// VideoURL returns "" when the post has no video.
func (p Post) VideoURL() string {
	if p.VideoRef == nil {
		return ""
	}
	return p.VideoRef.URL
}
