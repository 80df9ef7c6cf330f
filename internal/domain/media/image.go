package media

import (
	"time"

	"github.com/yungbote/pictures2pages-backend/internal/domain/user"
)

// Image is an uploaded picture that can feed a generation request.
type Image struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID     uint       `gorm:"index;not null;column:owner_id" json:"owner_id"`
	Owner       *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerID;references:ID" json:"-"`
	URL         string     `gorm:"not null;column:url" json:"url"`
	StorageKey  string     `gorm:"not null;uniqueIndex;column:storage_key" json:"storage_key"`
	Description string     `gorm:"column:description" json:"description"`
	ContentType string     `gorm:"column:content_type" json:"content_type"`
	SizeBytes   int64      `gorm:"column:size_bytes" json:"size_bytes"`
	IsPublic    bool       `gorm:"not null;default:false;column:is_public" json:"is_public"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
}

func (Image) TableName() string { return "image" }
