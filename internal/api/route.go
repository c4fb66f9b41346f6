package api

import (
	"lumina/internal/api/middleware"
	"lumina/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		accountGroup := apiGroup.Group("/accounts")
		{
			accountGroup.POST("", group.AccountHandler.Register)
			accountGroup.GET("/:account_id", group.AccountHandler.GetAccount)
			accountGroup.POST("/:account_id/sync", group.AccountHandler.TriggerSync)
			accountGroup.GET("/:account_id/audit", group.AccountHandler.GetChangeRecords)

			audienceGroup := accountGroup.Group("/:account_id/audience")
			{
				audienceGroup.POST("/analyze", group.AudienceHandler.Analyze)
				audienceGroup.GET("", group.AudienceHandler.GetLatest)
			}

			growthGroup := accountGroup.Group("/:account_id/growth")
			{
				growthGroup.POST("/predict", group.GrowthHandler.Predict)
				growthGroup.GET("", group.GrowthHandler.GetLatest)
			}

			trendGroup := accountGroup.Group("/:account_id/trends")
			{
				trendGroup.GET("", group.TrendHandler.Analyze)
				trendGroup.DELETE("/cache", group.TrendHandler.InvalidateCache)
			}

			benchmarkGroup := accountGroup.Group("/:account_id/benchmarks")
			{
				benchmarkGroup.POST("/generate", group.BenchmarkHandler.Generate)
				benchmarkGroup.GET("", group.BenchmarkHandler.GetLatest)
			}

			recommendationGroup := accountGroup.Group("/:account_id/recommendations")
			{
				recommendationGroup.POST("/generate", group.RecommendationHandler.Generate)
				recommendationGroup.GET("", group.RecommendationHandler.List)
			}

			insightGroup := accountGroup.Group("/:account_id/insights")
			{
				insightGroup.GET("/hashtags", group.InsightHandler.GetTopHashtags)
				insightGroup.GET("/activity-hours", group.InsightHandler.GetActivityHours)
				insightGroup.GET("/demographics", group.InsightHandler.GetDemographics)
			}
		}
	}

	return r
}
