package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

type GrowthPrediction struct {
	ID                 uint64            `gorm:"primaryKey"`
	AccountID          uint64            `gorm:"not null;index:idx_account_created"`
	PredictedFollowers int64             `gorm:"not null"`
	GrowthRate         float64           `gorm:"type:double;not null"`
	ConfidenceScore    float64           `gorm:"type:double;not null"`
	Factors            PredictionFactors `gorm:"type:json"`
	CreatedAt          time.Time         `gorm:"index:idx_account_created"`
}

func (GrowthPrediction) TableName() string {
	return "growth_predictions"
}

// PredictionFactors 预测依据快照
type PredictionFactors struct {
	EngagementTrend  float64 `json:"engagementTrend"`
	PostFrequency    float64 `json:"postFrequency"`
	AudienceQuality  float64 `json:"audienceQuality"`
	ContentQuality   float64 `json:"contentQuality"`
	Seasonality      float64 `json:"seasonality"`
	ThirtyDayGrowth  float64 `json:"thirtyDayGrowth"`
	NinetyDayGrowth  float64 `json:"ninetyDayGrowth"`
	DataPoints       int     `json:"dataPoints"`
	CurrentFollowers int64   `json:"currentFollowers"`
}

func (f PredictionFactors) Value() (driver.Value, error) {
	return json.Marshal(f)
}

func (f *PredictionFactors) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
	return json.Unmarshal(bytes, f)
}
