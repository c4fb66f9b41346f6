package wire

import (
	"lumina/internal/api"
	"lumina/internal/api/config"
	"lumina/internal/api/handler"
	"lumina/internal/job"
	"lumina/internal/pkg/cache"
	"lumina/internal/pkg/cron"
	"lumina/internal/pkg/kafka"
	pkgmongo "lumina/internal/pkg/mongo"
	"lumina/internal/pkg/scraper"
	"lumina/internal/repository"
	"lumina/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	CronMgr      *cron.Manager
	KafkaManager *kafka.ConsumerManager
}

func BuildApplication(db *gorm.DB, mongoDB *mongo.Database, cfg *config.Config) (*ApplicationContainer, error) {
	accountRepo := repository.NewAccountRepository(db)
	postSampleRepo := repository.NewPostSampleRepository(db)
	followerSampleRepo := repository.NewFollowerSampleRepository(db)
	audienceQualityRepo := repository.NewAudienceQualityRepository(db)
	growthPredictionRepo := repository.NewGrowthPredictionRepository(db)
	benchmarkRepo := repository.NewBenchmarkRepository(db)
	audienceInsightRepo := repository.NewAudienceInsightRepository(db)
	recommendationRepo := repository.NewRecommendationRepository(db)
	changeRecordRepo := pkgmongo.NewChangeRecordRepo(mongoDB)

	scraperClient := scraper.NewClient()
	trendCache := cache.NewRedisCache()

	audienceService := service.NewAudienceService(accountRepo, audienceQualityRepo, postSampleRepo, scraperClient, nil)
	growthService := service.NewGrowthService(accountRepo, followerSampleRepo, postSampleRepo, audienceQualityRepo, growthPredictionRepo)
	trendService := service.NewTrendService(accountRepo, postSampleRepo, followerSampleRepo, benchmarkRepo, audienceQualityRepo, trendCache)
	benchmarkService := service.NewBenchmarkService(accountRepo, benchmarkRepo, audienceQualityRepo, postSampleRepo, audienceInsightRepo)
	recommendationService := service.NewRecommendationService(accountRepo, recommendationRepo, audienceQualityRepo, postSampleRepo)
	insightService := service.NewInsightService(audienceInsightRepo)
	syncService := service.NewSyncService(
		accountRepo,
		postSampleRepo,
		followerSampleRepo,
		audienceInsightRepo,
		changeRecordRepo,
		scraperClient,
		audienceService,
		growthService,
		benchmarkService,
		trendService,
	)

	handlers := &api.HandlersGroup{
		AccountHandler:        handler.NewAccountHandler(syncService),
		AudienceHandler:       handler.NewAudienceHandler(audienceService),
		GrowthHandler:         handler.NewGrowthHandler(growthService),
		TrendHandler:          handler.NewTrendHandler(trendService),
		BenchmarkHandler:      handler.NewBenchmarkHandler(benchmarkService),
		RecommendationHandler: handler.NewRecommendationHandler(recommendationService),
		InsightHandler:        handler.NewInsightHandler(insightService),
	}

	router := api.SetupRouter(handlers)

	cronMgr := cron.NewCronManager(job.NewAccountSyncJob(syncService))

	kafkaMgr, err := kafka.NewConsumerManager(cfg, syncService)
	if err != nil {
		return nil, err
	}

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		CronMgr:      cronMgr,
		KafkaManager: kafkaMgr,
	}, nil
}
