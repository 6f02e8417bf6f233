package dbmysql

import (
	"strings"

	"gorm.io/gorm"

	"feedview/internal/common"
)

type MediaRef struct {
	gorm.Model
	FileID      string               `gorm:"size:24;index" json:"file_id"` // GridFS ObjectID, optional
	Kind        common.MediaFileType `gorm:"size:10;not null" json:"kind"`
	FileName    string               `gorm:"size:255" json:"file_name"`
	ContentType string               `gorm:"size:100" json:"content_type"`
	URL         string               `gorm:"size:500" json:"url"`
	Size        int64                `json:"size"`
}

func (MediaRef) TableName() string {
	return "media_refs"
}

// ResolveURL picks the URL the feed should load: an explicit URL wins, then
// the media server under baseURL, then a direct gridfs:// reference.
func (m *MediaRef) ResolveURL(baseURL string) string {
	if m == nil {
		return ""
	}
	if m.URL != "" {
		return m.URL
	}
	if m.FileID == "" {
		return ""
	}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		return baseURL + m.FileID
	}
	return "gridfs://" + m.FileID
}
