package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

const (
	BenchmarkCategoryEngagement = "engagement"
	BenchmarkCategoryReach      = "reach"
	BenchmarkCategoryGrowth     = "growth"
	BenchmarkCategoryConversion = "conversion"
)

const (
	TierMicro = "micro"
	TierSmall = "small"
	TierMid   = "mid"
	TierMacro = "macro"
	TierMega  = "mega"
)

type Benchmark struct {
	ID                uint64            `gorm:"primaryKey"`
	AccountID         uint64            `gorm:"not null;uniqueIndex:idx_account_category_date,priority:1"`
	Category          string            `gorm:"type:varchar(20);not null;uniqueIndex:idx_account_category_date,priority:2"`
	MetricDate        time.Time         `gorm:"type:date;not null;uniqueIndex:idx_account_category_date,priority:3"`
	InfluencerTier    string            `gorm:"type:varchar(10);not null"`
	Niche             string            `gorm:"type:varchar(50)"`
	AverageValue      float64           `gorm:"type:double;not null;default:0"`
	MedianValue       float64           `gorm:"type:double;not null;default:0"`
	TopPerformerValue float64           `gorm:"type:double;not null;default:0"`
	SampleSize        int               `gorm:"not null;default:0"`
	PerformanceScore  float64           `gorm:"type:double;not null;default:0"`
	IndustryMetrics   IndustryMetrics   `gorm:"type:json"`
	CompetitorMetrics CompetitorList    `gorm:"type:json"`
	AdditionalMetrics AdditionalMetrics `gorm:"type:json"`
	Recommendations   StringList        `gorm:"type:json"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Benchmark) TableName() string {
	return "benchmarks"
}

// IndustryMetrics 同领域行业基线
type IndustryMetrics struct {
	AverageEngagementRate   float64            `json:"averageEngagementRate"`
	AverageReachRate        float64            `json:"averageReachRate"`
	AverageFollowerGrowth   float64            `json:"averageFollowerGrowth"`
	AveragePostFrequency    float64            `json:"averagePostFrequency"`
	TopHashtags             []string           `json:"topHashtags"`
	BestPostingTimes        []string           `json:"bestPostingTimes"`
	ContentTypeDistribution map[string]float64 `json:"contentTypeDistribution"`
}

func (m IndustryMetrics) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *IndustryMetrics) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
	return json.Unmarshal(bytes, m)
}

// CompetitorMetric 单个竞品账号的指标
type CompetitorMetric struct {
	Username       string  `json:"username"`
	FollowerCount  int64   `json:"followerCount"`
	EngagementRate float64 `json:"engagementRate"`
	PostFrequency  float64 `json:"postFrequency"`
	ContentQuality float64 `json:"contentQuality"`
	GrowthRate     float64 `json:"growthRate"`
}

type CompetitorList []CompetitorMetric

func (l CompetitorList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *CompetitorList) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
	return json.Unmarshal(bytes, l)
}

// AdditionalMetrics 与上一期对比的增量指标
type AdditionalMetrics struct {
	EngagementRate         float64 `json:"engagementRate"`
	ReachRate              float64 `json:"reachRate"`
	GrowthRate             float64 `json:"growthRate"`
	PreviousEngagementRate float64 `json:"previousEngagementRate"`
	PreviousReachRate      float64 `json:"previousReachRate"`
	PreviousGrowthRate     float64 `json:"previousGrowthRate"`
	EngagementRateChange   float64 `json:"engagementRateChange"`
	ReachRateChange        float64 `json:"reachRateChange"`
	GrowthRateChange       float64 `json:"growthRateChange"`
}

func (m AdditionalMetrics) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *AdditionalMetrics) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
	return json.Unmarshal(bytes, m)
}
