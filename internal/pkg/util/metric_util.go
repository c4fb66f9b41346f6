package util

import "math"

type metricRange struct {
	min float64
	max float64
}

var metricRanges = map[string]metricRange{
	"engagementRate": {min: 0, max: 100},
	"reachRate":      {min: 0, max: 100},
	"followers":      {min: 0, max: 1_000_000_000},
	"likes":          {min: 0, max: 1_000_000},
	"comments":       {min: 0, max: 1_000_000},
	"shares":         {min: 0, max: 1_000_000},
	"saves":          {min: 0, max: 1_000_000},
	"latitude":       {min: -90, max: 90},
	"longitude":      {min: -180, max: 180},
}

// ClampMetric 将指标裁剪到合理区间，NaN 或未知指标名返回 0
func ClampMetric(value float64, metricName string) float64 {
	r, ok := metricRanges[metricName]
	if !ok || math.IsNaN(value) {
		return 0
	}
	return math.Min(math.Max(value, r.min), r.max)
}
