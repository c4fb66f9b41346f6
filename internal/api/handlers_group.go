package api

import "lumina/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	AccountHandler        *handler.AccountHandler
	AudienceHandler       *handler.AudienceHandler
	GrowthHandler         *handler.GrowthHandler
	TrendHandler          *handler.TrendHandler
	BenchmarkHandler      *handler.BenchmarkHandler
	RecommendationHandler *handler.RecommendationHandler
	InsightHandler        *handler.InsightHandler
}
