package model

import (
	"time"
)

type PostSample struct {
	ID              uint64  `gorm:"primaryKey"`
	AccountID       uint64  `gorm:"not null;uniqueIndex:idx_account_external,priority:1"`
	ExternalID      string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_account_external,priority:2"`
	Caption         string  `gorm:"type:text"`
	MediaType       string  `gorm:"type:varchar(30)"`
	MediaURL        string  `gorm:"type:varchar(500)"`
	ThumbnailURL    *string `gorm:"type:varchar(500)"`
	Likes           int     `gorm:"not null;default:0"`
	Comments        int     `gorm:"not null;default:0"`
	Shares          int     `gorm:"not null;default:0"`
	Saves           int     `gorm:"not null;default:0"`
	Reach           int     `gorm:"not null;default:0"`
	EngagementRate  float64 `gorm:"type:double;not null;default:0"`
	ReachRate       float64 `gorm:"type:double;not null;default:0"`
	LocationName    *string `gorm:"type:varchar(150)"`
	Latitude        *float64
	Longitude       *float64
	HashtagCount    int       `gorm:"not null;default:0"`
	EmojiCount      int       `gorm:"not null;default:0"`
	MentionCount    int       `gorm:"not null;default:0"`
	CaptionLength   int       `gorm:"not null;default:0"`
	SentimentLabel  string    `gorm:"type:varchar(10);default:''"`
	HasCallToAction bool      `gorm:"type:tinyint(1);default:0"`
	PostedAt        time.Time `gorm:"index:idx_account_posted"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (PostSample) TableName() string {
	return "post_samples"
}
