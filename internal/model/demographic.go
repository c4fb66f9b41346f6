package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

type Demographic struct {
	ID                 uint64            `gorm:"primaryKey"`
	AccountID          uint64            `gorm:"not null;index:idx_account_recorded"`
	AgeDistribution    ShareMap          `gorm:"type:json"`
	GenderDistribution ShareMap          `gorm:"type:json"`
	TopLocations       LocationShareList `gorm:"type:json"`
	TotalFollowers     int64             `gorm:"not null;default:0"`
	EngagementRate     float64           `gorm:"type:double;not null;default:0"`
	RecordedAt         time.Time         `gorm:"index:idx_account_recorded"`
}

func (Demographic) TableName() string {
	return "demographics"
}

// ShareMap 分布占比: map[bucket]percentage
type ShareMap map[string]float64

func (s ShareMap) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *ShareMap) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
	return json.Unmarshal(bytes, s)
}

// LocationShare 地区及其粉丝占比
type LocationShare struct {
	Name  string  `json:"name"`
	Share float64 `json:"share"`
}

type LocationShareList []LocationShare

func (l LocationShareList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *LocationShareList) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
	return json.Unmarshal(bytes, l)
}
