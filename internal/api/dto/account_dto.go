package dto

import (
	"time"

	"lumina/internal/pkg/mongo"
)

type RegisterAccountDTO struct {
	Handle string `json:"handle" binding:"required" validate:"min=1,max=100"`
}

type AccountDTO struct {
	ID             uint64     `json:"id"`
	Handle         string     `json:"handle"`
	Platform       string     `json:"platform"`
	DisplayName    *string    `json:"display_name,omitempty"`
	Biography      *string    `json:"bio,omitempty"`
	FollowerCount  int64      `json:"follower_count"`
	FollowingCount int64      `json:"following_count"`
	MediaCount     int64      `json:"media_count"`
	IsVerified     bool       `json:"is_verified"`
	IsPrivate      bool       `json:"is_private"`
	RegisteredAt   *time.Time `json:"registered_at,omitempty"`
	LastSyncedAt   *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type ChangeRecordDTO struct {
	AccountID uint64             `json:"account_id"`
	Version   int64              `json:"version"`
	Source    string             `json:"source"`
	Changes   []mongo.FieldChange `json:"changes"`
	Metadata  mongo.SyncMetadata  `json:"sync_metadata"`
	CreatedAt time.Time          `json:"created_at"`
}
