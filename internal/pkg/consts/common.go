package consts

const (
	PlatformInstagram = "instagram"
)

const (
	TimeframeDay     = "1d"
	TimeframeWeek    = "7d"
	TimeframeMonth   = "30d"
	TimeframeQuarter = "90d"
)

const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)
