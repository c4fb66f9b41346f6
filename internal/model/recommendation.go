package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

type Recommendation struct {
	ID        uint64                `gorm:"primaryKey"`
	AccountID uint64                `gorm:"not null;index:idx_account_created"`
	Type      string                `gorm:"type:varchar(50);not null"`
	Payload   RecommendationPayload `gorm:"type:json;not null"`
	CreatedAt time.Time             `gorm:"index:idx_account_created"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}

// RecommendationPayload 建议内容，priority 留在 json 内便于 JSON_EXTRACT 过滤
type RecommendationPayload struct {
	Type                string             `json:"type"`
	Priority            string             `json:"priority"`
	Title               string             `json:"title"`
	Description         string             `json:"description"`
	ActionItems         []string           `json:"actionItems"`
	Metrics             map[string]float64 `json:"metrics,omitempty"`
	ImplementationSteps []string           `json:"implementationSteps,omitempty"`
	MLInsight           string             `json:"mlInsight,omitempty"`
}

func (p RecommendationPayload) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *RecommendationPayload) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
	return json.Unmarshal(bytes, p)
}
