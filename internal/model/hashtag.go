package model

import "time"

type Hashtag struct {
	ID                uint64  `gorm:"primaryKey"`
	AccountID         uint64  `gorm:"not null;uniqueIndex:idx_account_tag,priority:1"`
	Tag               string  `gorm:"type:varchar(150);not null;uniqueIndex:idx_account_tag,priority:2"`
	Frequency         float64 `gorm:"type:double;not null;default:0"`
	EngagementAverage float64 `gorm:"type:double;not null;default:0"`
	PerformanceScore  float64 `gorm:"type:double;not null;default:0"`
	PostCount         int     `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Hashtag) TableName() string {
	return "hashtags"
}
