package common

import "strings"

// MediaFileType is the kind of a single media reference.
type MediaFileType string

const (
	MediaFileTypeImage MediaFileType = "image"
	MediaFileTypeVideo MediaFileType = "video"
)

// String returns the string representation
func (mft MediaFileType) String() string {
	return string(mft)
}

// IsValid checks if the media file type is valid
func (mft MediaFileType) IsValid() bool {
	return mft == MediaFileTypeImage || mft == MediaFileTypeVideo
}

func DetectFileType(mimeType string) MediaFileType {
	lowerMimeType := strings.ToLower(mimeType)
	if strings.HasPrefix(lowerMimeType, "image/") {
		return MediaFileTypeImage
	}
	if strings.HasPrefix(lowerMimeType, "video/") {
		return MediaFileTypeVideo
	}
	return MediaFileTypeImage // Default fallback
}

// MediaType describes which media a post carries.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeMixed MediaType = "mixed"
)

func (mt MediaType) String() string {
	return string(mt)
}

func (mt MediaType) IsValid() bool {
	switch mt {
	case MediaTypeImage, MediaTypeVideo, MediaTypeMixed:
		return true
	}
	return false
}

// ParseMediaType is case insensitive; unknown values come back invalid.
func ParseMediaType(s string) MediaType {
	return MediaType(strings.ToLower(strings.TrimSpace(s)))
}
