package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidPost = errors.New("invalid post")

// ValidatePost enforces the media invariants:
// image => image only, video => video only, mixed => both.
func ValidatePost(p Post) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("%w: missing id", ErrInvalidPost)
	}
	if err := validateRef(p.ImageRef, MediaFileTypeImage); err != nil {
		return fmt.Errorf("%w: image ref: %v", ErrInvalidPost, err)
	}
	if err := validateRef(p.VideoRef, MediaFileTypeVideo); err != nil {
		return fmt.Errorf("%w: video ref: %v", ErrInvalidPost, err)
	}

	hasImage, hasVideo := p.ImageRef != nil, p.VideoRef != nil
	switch p.MediaType {
	case MediaTypeImage:
		if !hasImage || hasVideo {
			return fmt.Errorf("%w: image post must carry exactly an image", ErrInvalidPost)
		}
	case MediaTypeVideo:
		if !hasVideo || hasImage {
			return fmt.Errorf("%w: video post must carry exactly a video", ErrInvalidPost)
		}
	case MediaTypeMixed:
		if !hasImage || !hasVideo {
			return fmt.Errorf("%w: mixed post must carry an image and a video", ErrInvalidPost)
		}
	default:
		return fmt.Errorf("%w: unknown media type %q", ErrInvalidPost, p.MediaType)
	}
	return nil
}

func validateRef(r *MediaRef, want MediaFileType) error {
	if r == nil {
		return nil
	}
	if r.Kind != want {
		return fmt.Errorf("kind %q, want %q", r.Kind, want)
	}
	if strings.TrimSpace(r.URL) == "" {
		return errors.New("url is empty")
	}
	return nil
}
