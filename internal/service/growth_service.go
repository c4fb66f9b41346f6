package service

import (
	"context"
	log "log/slog"
	"math"
	"time"

	"lumina/internal/model"
	"lumina/internal/pkg/stats"
	"lumina/internal/repository"
)

const (
	historySampleLimit = 90
	growthRateWindow   = 30
)

type GrowthService interface {
	PredictGrowth(ctx context.Context, accountID uint64) (*model.GrowthPrediction, error)
	GetLatestPrediction(ctx context.Context, accountID uint64) (*model.GrowthPrediction, error)
}

type growthServiceImpl struct {
	accountRepo          repository.AccountRepo
	followerSampleRepo   repository.FollowerSampleRepo
	postSampleRepo       repository.PostSampleRepo
	audienceQualityRepo  repository.AudienceQualityRepo
	growthPredictionRepo repository.GrowthPredictionRepo
}

func NewGrowthService(
	accountRepo repository.AccountRepo,
	followerSampleRepo repository.FollowerSampleRepo,
	postSampleRepo repository.PostSampleRepo,
	audienceQualityRepo repository.AudienceQualityRepo,
	growthPredictionRepo repository.GrowthPredictionRepo,
) GrowthService {
	return &growthServiceImpl{
		accountRepo:          accountRepo,
		followerSampleRepo:   followerSampleRepo,
		postSampleRepo:       postSampleRepo,
		audienceQualityRepo:  audienceQualityRepo,
		growthPredictionRepo: growthPredictionRepo,
	}
}

// PredictGrowth 基于历史粉丝曲线和内容因子外推未来 30 天的粉丝数
// 无历史数据时返回全零预测而不报错
func (s *growthServiceImpl) PredictGrowth(ctx context.Context, accountID uint64) (*model.GrowthPrediction, error) {
	account, err := s.accountRepo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	history, err := s.followerSampleRepo.GetRecentSamples(ctx, accountID, historySampleLimit)
	if err != nil {
		return nil, err
	}

	factors, err := s.analyzeGrowthFactors(ctx, accountID, history)
	if err != nil {
		return nil, err
	}

	prediction := s.calculatePrediction(history, factors)
	prediction.AccountID = accountID

	if err := s.growthPredictionRepo.CreatePrediction(ctx, prediction); err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "增长预测完成",
		"accountId", accountID,
		"predictedFollowers", prediction.PredictedFollowers,
		"confidence", prediction.ConfidenceScore)
	return prediction, nil
}

func (s *growthServiceImpl) GetLatestPrediction(ctx context.Context, accountID uint64) (*model.GrowthPrediction, error) {
	prediction, err := s.growthPredictionRepo.GetLatestPrediction(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if prediction == nil {
		return nil, ErrInsufficientData
	}
	return prediction, nil
}

func (s *growthServiceImpl) analyzeGrowthFactors(ctx context.Context, accountID uint64, history []*model.FollowerSample) (model.PredictionFactors, error) {
	var factors model.PredictionFactors
	factors.DataPoints = len(history)
	if len(history) > 0 {
		factors.CurrentFollowers = history[len(history)-1].Count
	}

	quality, err := s.audienceQualityRepo.GetLatestAnalysis(ctx, accountID)
	if err != nil {
		return factors, err
	}
	if quality != nil {
		factors.EngagementTrend = quality.AuthenticEngagement
		factors.AudienceQuality = quality.OverallScore
	}

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	posts, err := s.postSampleRepo.GetByAccountBetween(ctx, accountID, thirtyDaysAgo, time.Now())
	if err != nil {
		return factors, err
	}
	factors.PostFrequency = float64(len(posts)) / 30
	factors.ContentQuality = contentQualityFromPosts(posts, factors.CurrentFollowers)

	growthRates := make([]float64, len(history))
	for i, sample := range history {
		growthRates[i] = sample.GrowthRate
	}
	factors.Seasonality = stats.Seasonality(growthRates)
	factors.ThirtyDayGrowth = meanGrowthOverWindow(history, 30)
	factors.NinetyDayGrowth = meanGrowthOverWindow(history, 90)

	return factors, nil
}

// meanGrowthOverWindow 最近 N 个采样点的平均单日增长率
func meanGrowthOverWindow(history []*model.FollowerSample, days int) float64 {
	if len(history) == 0 {
		return 0
	}
	window := history
	if len(window) > days {
		window = window[len(window)-days:]
	}
	var sum float64
	for _, sample := range window {
		sum += sample.GrowthRate
	}
	return sum / float64(len(window))
}

// contentQualityFromPosts 收藏率与转发率的均值
func contentQualityFromPosts(posts []*model.PostSample, followerCount int64) float64 {
	if len(posts) == 0 || followerCount == 0 {
		return 0
	}
	var saveSum, shareSum float64
	for _, post := range posts {
		saveSum += float64(post.Saves) / float64(followerCount) * 100
		shareSum += float64(post.Shares) / float64(followerCount) * 100
	}
	saveRate := saveSum / float64(len(posts))
	shareRate := shareSum / float64(len(posts))
	return (saveRate + shareRate) / 2
}

func (s *growthServiceImpl) calculatePrediction(history []*model.FollowerSample, factors model.PredictionFactors) *model.GrowthPrediction {
	if len(history) == 0 {
		return &model.GrowthPrediction{Factors: factors, CreatedAt: time.Now()}
	}

	currentFollowers := history[len(history)-1].Count

	// 最近 30 个采样点的平均增长率作为基准
	baseGrowthRate := meanGrowthOverWindow(history, growthRateWindow)

	adjustedGrowthRate := baseGrowthRate * (1 +
		factors.EngagementTrend*0.3 +
		factors.PostFrequency*0.2 +
		factors.AudienceQuality*0.2 +
		factors.ContentQuality*0.2 +
		factors.Seasonality*0.1)

	predictedFollowers := int64(math.Round(float64(currentFollowers) * (1 + adjustedGrowthRate/100)))

	return &model.GrowthPrediction{
		PredictedFollowers: predictedFollowers,
		GrowthRate:         adjustedGrowthRate,
		ConfidenceScore:    confidenceScore(len(history), factors, baseGrowthRate),
		Factors:            factors,
		CreatedAt:          time.Now(),
	}
}

func confidenceScore(dataPoints int, factors model.PredictionFactors, baseGrowthRate float64) float64 {
	quantityScore := math.Min(float64(dataPoints)/90, 1) * 0.3

	var qualityScore float64
	if factors.EngagementTrend > 0 {
		qualityScore += 0.1
	}
	if factors.PostFrequency > 0 {
		qualityScore += 0.1
	}
	if factors.AudienceQuality > 0 {
		qualityScore += 0.1
	}
	if factors.ContentQuality > 0 {
		qualityScore += 0.1
	}

	stabilityScore := 0.15
	if baseGrowthRate > 0 {
		stabilityScore = 0.3
	}

	return math.Round((quantityScore + qualityScore + stabilityScore) * 100)
}
