package user

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID              uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username        string `gorm:"not null;column:username" json:"username"`
	Email           string `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password        string `gorm:"not null;column:password" json:"-"`
	AvatarColor     string `gorm:"column:avatar_color" json:"avatar_color"`
	AvatarBucketKey string `gorm:"column:avatar_bucket_key" json:"avatar_bucket_key"`
	AvatarURL       string `gorm:"column:avatar_url" json:"avatar_url"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "user" }
