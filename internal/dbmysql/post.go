package dbmysql

import (
	"time"

	"github.com/google/uuid"

	"feedview/internal/common"
)

type Post struct {
	PostID          string    `gorm:"primaryKey;size:36;column:post_id"`
	MediaType       string    `gorm:"type:ENUM('image','video','mixed');column:media_type"`
	ImageMediaRefID *uint     `gorm:"column:image_media_ref_id"`
	VideoMediaRefID *uint     `gorm:"column:video_media_ref_id"`
	Caption         string    `gorm:"type:text;column:caption"`
	CreatedAt       time.Time `gorm:"index;column:created_at"`

	ImageRef *MediaRef `gorm:"foreignKey:ImageMediaRefID"`
	VideoRef *MediaRef `gorm:"foreignKey:VideoMediaRefID"`
}

func (Post) TableName() string {
	return "posts"
}

// ToPost converts a row into the feed's Post. A malformed id becomes
// uuid.Nil, which the feed rejects.
func (p *Post) ToPost(mediaBaseURL string) common.Post {
	id, err := uuid.Parse(p.PostID)
	if err != nil {
		id = uuid.Nil
	}
	out := common.Post{
		ID:        id,
		MediaType: common.ParseMediaType(p.MediaType),
		Caption:   p.Caption,
		Timestamp: p.CreatedAt,
	}
	if p.ImageRef != nil {
		out.ImageRef = &common.MediaRef{Kind: p.ImageRef.Kind, URL: p.ImageRef.ResolveURL(mediaBaseURL)}
	}
	if p.VideoRef != nil {
		out.VideoRef = &common.MediaRef{Kind: p.VideoRef.Kind, URL: p.VideoRef.ResolveURL(mediaBaseURL)}
	}
	return out
}
