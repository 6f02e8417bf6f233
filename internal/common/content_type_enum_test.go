package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaFileType_String(t *testing.T) {
	assert.Equal(t, "image", MediaFileTypeImage.String())
	assert.Equal(t, "video", MediaFileTypeVideo.String())
}

func TestMediaFileType_IsValid(t *testing.T) {
	assert.True(t, MediaFileTypeImage.IsValid())
	assert.True(t, MediaFileTypeVideo.IsValid())

	invalidType := MediaFileType("invalid")
	assert.False(t, invalidType.IsValid())
}

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		input    string
		expected MediaFileType
	}{
		{"image/jpeg", MediaFileTypeImage},
		{"image/png", MediaFileTypeImage},
		{"video/mp4", MediaFileTypeVideo},
		{"video/webm", MediaFileTypeVideo},
		{"IMAGE/JPEG", MediaFileTypeImage}, // Case insensitive
		{"Video/MP4", MediaFileTypeVideo},
		{"application/pdf", MediaFileTypeImage}, // Default fallback
		{"", MediaFileTypeImage},
	}

	for _, tc := range tests {
		result := DetectFileType(tc.input)
		assert.Equal(t, tc.expected, result, "Failed for input: %s", tc.input)
	}
}

func TestParseMediaType(t *testing.T) {
	assert.Equal(t, MediaTypeImage, ParseMediaType("image"))
	assert.Equal(t, MediaTypeVideo, ParseMediaType(" Video "))
	assert.Equal(t, MediaTypeMixed, ParseMediaType("MIXED"))
	assert.True(t, ParseMediaType("mixed").IsValid())
	assert.False(t, ParseMediaType("gif").IsValid())
	assert.False(t, MediaType("").IsValid())
}
