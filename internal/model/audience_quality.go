package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

type AudienceQuality struct {
	ID                   uint64            `gorm:"primaryKey"`
	AccountID            uint64            `gorm:"not null;index:idx_account_analyzed"`
	OverallScore         float64           `gorm:"type:double;not null"`
	SuspiciousPercentage float64           `gorm:"type:double;not null"`
	MassFollowerPercent  float64           `gorm:"type:double;not null"`
	AuthenticEngagement  float64           `gorm:"type:double;not null"`
	EngagementRate       float64           `gorm:"type:double;not null;default:0"`
	CommentQuality       float64           `gorm:"type:double;not null;default:0"`
	ReachEfficiency      float64           `gorm:"type:double;not null;default:0"`
	SaveRate             float64           `gorm:"type:double;not null;default:0"`
	ShareRate            float64           `gorm:"type:double;not null;default:0"`
	RiskFactors          StringList        `gorm:"type:json"`
	Metrics              AudienceMetrics   `gorm:"type:json"`
	Benchmarks           QualityBenchmarks `gorm:"type:json"`
	AnalyzedAt           time.Time         `gorm:"index:idx_account_analyzed"`
}

func (AudienceQuality) TableName() string {
	return "audience_qualities"
}

// AudienceMetrics 分析时点的样本统计快照
type AudienceMetrics struct {
	SampleSize        int     `json:"sampleSize"`
	SuspiciousCount   int     `json:"suspiciousCount"`
	MassFollowerCount int     `json:"massFollowerCount"`
	TotalFollowers    int64   `json:"totalFollowers"`
	AverageEngagement float64 `json:"averageEngagement"`
}

func (m AudienceMetrics) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *AudienceMetrics) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
	return json.Unmarshal(bytes, m)
}

// QualityBenchmark 一组互动基线
type QualityBenchmark struct {
	EngagementRate float64 `json:"engagementRate"`
	ReachRate      float64 `json:"reachRate"`
	SaveRate       float64 `json:"saveRate"`
	ShareRate      float64 `json:"shareRate"`
}

// QualityBenchmarks 行业基线与同规模账号基线对照
type QualityBenchmarks struct {
	Industry    QualityBenchmark `json:"industry"`
	SimilarTier QualityBenchmark `json:"similarTier"`
}

func (b QualityBenchmarks) Value() (driver.Value, error) {
	return json.Marshal(b)
}

func (b *QualityBenchmarks) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
	return json.Unmarshal(bytes, b)
}

// StringList 存成 json 数组的字符串列表
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
	return json.Unmarshal(bytes, l)
}
