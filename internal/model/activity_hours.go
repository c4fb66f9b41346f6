package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

type ActivityHours struct {
	ID                uint64    `gorm:"primaryKey"`
	AccountID         uint64    `gorm:"not null;index:idx_account_created"`
	Hours             HourMap   `gorm:"type:json;not null"` // 存储 小时:活跃度 快照
	PeakActivityScore float64   `gorm:"type:double;not null;default:0"`
	CreatedAt         time.Time `gorm:"index:idx_account_created"`
}

func (ActivityHours) TableName() string {
	return "activity_hours"
}

// HourMap 各小时活跃度: map["0".."23"]activity
type HourMap map[string]float64

func (h HourMap) Value() (driver.Value, error) {
	return json.Marshal(h)
}

func (h *HourMap) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
	return json.Unmarshal(bytes, h)
}
