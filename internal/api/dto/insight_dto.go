package dto

import "time"

type RecommendationDTO struct {
	Type        string    `json:"type"`
	Priority    string    `json:"priority"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ActionItems []string  `json:"action_items"`
	CreatedAt   time.Time `json:"created_at"`
}

type HashtagDTO struct {
	Tag               string  `json:"tag"`
	Frequency         float64 `json:"frequency"`
	EngagementAverage float64 `json:"engagement_average"`
	PerformanceScore  float64 `json:"performance_score"`
	PostCount         int     `json:"post_count"`
}
