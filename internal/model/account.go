package model

import (
	"time"
)

type Account struct {
	ID             uint64  `gorm:"primaryKey"`
	Handle         string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_handle"`
	Platform       string  `gorm:"type:varchar(30);not null;default:'instagram'"`
	Niche          string  `gorm:"type:varchar(50);default:''"`
	DisplayName    *string `gorm:"type:varchar(150)"`
	Biography      *string `gorm:"type:text"`
	FollowerCount  int64   `gorm:"not null;default:0"`
	FollowingCount int64   `gorm:"not null;default:0"`
	MediaCount     int64   `gorm:"not null;default:0"`
	IsVerified     bool    `gorm:"type:tinyint(1);default:0"`
	IsPrivate      bool    `gorm:"type:tinyint(1);default:0"`
	RegisteredAt   *time.Time
	LastSyncedAt   *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Account) TableName() string {
	return "accounts"
}
