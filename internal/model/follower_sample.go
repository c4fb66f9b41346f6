package model

import "time"

type FollowerSample struct {
	ID          uint64    `gorm:"primaryKey"`
	AccountID   uint64    `gorm:"not null;index:idx_account_recorded,priority:1"`
	Count       int64     `gorm:"not null"`
	GainedCount int       `gorm:"not null;default:0"`
	LostCount   int       `gorm:"not null;default:0"`
	GrowthRate  float64   `gorm:"type:decimal(8,4);not null;default:0"`
	RecordedAt  time.Time `gorm:"not null;index:idx_account_recorded,priority:2"`
	CreatedAt   time.Time
}

func (FollowerSample) TableName() string {
	return "follower_samples"
}
