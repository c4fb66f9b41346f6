package service

import (
	"context"
	log "log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"lumina/internal/api/config"
	"lumina/internal/model"
	"lumina/internal/pkg/cache"
	"lumina/internal/pkg/consts"
	"lumina/internal/pkg/stats"
	"lumina/internal/repository"
)

// 趋势判定的变化率阈值（百分比）
const trendChangeThreshold = 5

var timeframeDays = map[string]int{
	consts.TimeframeDay:     1,
	consts.TimeframeWeek:    7,
	consts.TimeframeMonth:   30,
	consts.TimeframeQuarter: 90,
}

// TrendMetric 单项指标的环比趋势
type TrendMetric struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Change   float64 `json:"change"`
	Trend    string  `json:"trend"`
}

// ContentPerformanceTrend 窗口内各内容类型的表现概览
type ContentPerformanceTrend struct {
	BestTypes        []string `json:"bestTypes"`
	WorstTypes       []string `json:"worstTypes"`
	Improvement      float64  `json:"improvement"`
	ConsistencyScore float64  `json:"consistencyScore"`
}

// AudienceQualityTrend 窗口内的受众质量概览
type AudienceQualityTrend struct {
	Score        float64 `json:"score"`
	Retention    float64 `json:"retention"`
	Engagement   float64 `json:"engagement"`
	Authenticity float64 `json:"authenticity"`
}

// TimeframeTrends 单时间窗口内的各项趋势
type TimeframeTrends struct {
	Engagement         TrendMetric             `json:"engagement"`
	Reach              TrendMetric             `json:"reach"`
	Growth             TrendMetric             `json:"growth"`
	ConsistencyScore   float64                 `json:"consistencyScore"`
	ContentPerformance ContentPerformanceTrend `json:"contentPerformance"`
	AudienceQuality    AudienceQualityTrend    `json:"audienceQuality"`
}

// TrendAnalysis 各时间窗口的趋势汇总
type TrendAnalysis struct {
	AccountID  uint64                     `json:"accountId"`
	Timeframes map[string]TimeframeTrends `json:"timeframes"`
	AnalyzedAt time.Time                  `json:"analyzedAt"`
}

type TrendService interface {
	AnalyzeTrends(ctx context.Context, accountID uint64) (*TrendAnalysis, error)
	InvalidateCache(ctx context.Context, accountID uint64) error
}

type trendServiceImpl struct {
	accountRepo         repository.AccountRepo
	postSampleRepo      repository.PostSampleRepo
	followerSampleRepo  repository.FollowerSampleRepo
	benchmarkRepo       repository.BenchmarkRepo
	audienceQualityRepo repository.AudienceQualityRepo
	trendCache          cache.Cache
}

func NewTrendService(
	accountRepo repository.AccountRepo,
	postSampleRepo repository.PostSampleRepo,
	followerSampleRepo repository.FollowerSampleRepo,
	benchmarkRepo repository.BenchmarkRepo,
	audienceQualityRepo repository.AudienceQualityRepo,
	trendCache cache.Cache,
) TrendService {
	return &trendServiceImpl{
		accountRepo:         accountRepo,
		postSampleRepo:      postSampleRepo,
		followerSampleRepo:  followerSampleRepo,
		benchmarkRepo:       benchmarkRepo,
		audienceQualityRepo: audienceQualityRepo,
		trendCache:          trendCache,
	}
}

// AnalyzeTrends 四个时间窗口的环比趋势分析，结果缓存一小时
func (s *trendServiceImpl) AnalyzeTrends(ctx context.Context, accountID uint64) (*TrendAnalysis, error) {
	cacheKey := consts.AccountTrendsKey + strconv.FormatUint(accountID, 10)
	if cached, err := s.trendCache.Get(ctx, cacheKey); err == nil && cached != nil {
		var analysis TrendAnalysis
		if err := json.Unmarshal(cached, &analysis); err == nil {
			log.DebugContext(ctx, "趋势分析命中缓存", "accountId", accountID)
			return &analysis, nil
		}
	}

	account, err := s.accountRepo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	if err := s.validateDataAvailability(ctx, accountID); err != nil {
		return nil, err
	}

	now := time.Now()
	analysis := &TrendAnalysis{
		AccountID:  accountID,
		Timeframes: make(map[string]TimeframeTrends, len(timeframeDays)),
		AnalyzedAt: now,
	}
	for timeframe, days := range timeframeDays {
		trends, err := s.analyzeTimeframe(ctx, accountID, now, days)
		if err != nil {
			return nil, err
		}
		analysis.Timeframes[timeframe] = trends
	}

	if payload, err := json.Marshal(analysis); err == nil {
		ttl := time.Duration(config.Cfg.Trends.CacheTTLMinutes) * time.Minute
		if err := s.trendCache.Set(ctx, cacheKey, payload, ttl); err != nil {
			log.WarnContext(ctx, "趋势分析写缓存失败", "accountId", accountID, "error", err)
		}
	}
	return analysis, nil
}

func (s *trendServiceImpl) InvalidateCache(ctx context.Context, accountID uint64) error {
	cacheKey := consts.AccountTrendsKey + strconv.FormatUint(accountID, 10)
	return s.trendCache.Invalidate(ctx, cacheKey)
}

func (s *trendServiceImpl) validateDataAvailability(ctx context.Context, accountID uint64) error {
	minPoints := int64(config.Cfg.Trends.MinDataPoints)

	postCount, err := s.postSampleRepo.CountByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	sampleCount, err := s.followerSampleRepo.CountSamples(ctx, accountID)
	if err != nil {
		return err
	}
	benchmarkCount, err := s.benchmarkRepo.CountBenchmarks(ctx, accountID)
	if err != nil {
		return err
	}
	if postCount < minPoints || sampleCount < minPoints || benchmarkCount < minPoints {
		return ErrInsufficientData
	}
	return nil
}

func (s *trendServiceImpl) analyzeTimeframe(ctx context.Context, accountID uint64, now time.Time, days int) (TimeframeTrends, error) {
	currentStart := now.AddDate(0, 0, -days)
	previousStart := currentStart.AddDate(0, 0, -days)

	current, err := s.calculateWindowMetrics(ctx, accountID, currentStart, now)
	if err != nil {
		return TimeframeTrends{}, err
	}
	previous, err := s.calculateWindowMetrics(ctx, accountID, previousStart, currentStart)
	if err != nil {
		return TimeframeTrends{}, err
	}

	return TimeframeTrends{
		Engagement:         buildTrend(current.engagement, previous.engagement),
		Reach:              buildTrend(current.reach, previous.reach),
		Growth:             buildTrend(current.growth, previous.growth),
		ConsistencyScore:   current.consistency,
		ContentPerformance: buildContentPerformance(current, previous),
		AudienceQuality:    current.quality,
	}, nil
}

type windowMetrics struct {
	engagement  float64
	reach       float64
	growth      float64
	consistency float64
	typeRates   map[string]float64
	quality     AudienceQualityTrend
}

func (s *trendServiceImpl) calculateWindowMetrics(ctx context.Context, accountID uint64, from, to time.Time) (windowMetrics, error) {
	var metrics windowMetrics

	posts, err := s.postSampleRepo.GetByAccountBetween(ctx, accountID, from, to)
	if err != nil {
		return metrics, err
	}
	posts = stats.RemoveOutliers(posts, func(p *model.PostSample) float64 {
		return p.EngagementRate
	}, stats.DefaultOutlierThreshold)

	if len(posts) > 0 {
		engagementRates := make([]float64, len(posts))
		reachRates := make([]float64, len(posts))
		for i, post := range posts {
			engagementRates[i] = post.EngagementRate
			reachRates[i] = post.ReachRate
		}
		metrics.engagement = stats.Mean(engagementRates)
		metrics.reach = stats.Mean(reachRates)
		metrics.consistency = consistencyScore(engagementRates)
		metrics.typeRates = typeAverages(posts)
	}
	metrics.quality.Engagement = metrics.engagement

	// 窗口内已有基准时以基准聚合值为准
	benchmarks, err := s.benchmarkRepo.GetByAccountBetween(ctx, accountID, model.BenchmarkCategoryEngagement, from, to)
	if err != nil {
		return metrics, err
	}
	benchmarks = stats.RemoveOutliers(benchmarks, func(b *model.Benchmark) float64 {
		return b.AdditionalMetrics.EngagementRate
	}, stats.DefaultOutlierThreshold)
	if len(benchmarks) > 0 {
		engagementRates := make([]float64, len(benchmarks))
		reachRates := make([]float64, len(benchmarks))
		for i, benchmark := range benchmarks {
			engagementRates[i] = benchmark.AdditionalMetrics.EngagementRate
			reachRates[i] = benchmark.AdditionalMetrics.ReachRate
		}
		metrics.engagement = stats.Mean(engagementRates)
		metrics.reach = stats.Mean(reachRates)
	}

	samples, err := s.followerSampleRepo.GetSamplesSince(ctx, accountID, from)
	if err != nil {
		return metrics, err
	}
	inWindow := make([]*model.FollowerSample, 0, len(samples))
	for _, sample := range samples {
		if sample.RecordedAt.Before(to) {
			inWindow = append(inWindow, sample)
		}
	}
	inWindow = stats.RemoveOutliers(inWindow, func(s *model.FollowerSample) float64 {
		return float64(s.Count)
	}, stats.DefaultOutlierThreshold)
	if len(inWindow) >= 2 {
		oldest, latest := inWindow[0], inWindow[len(inWindow)-1]
		if oldest.Count > 0 {
			metrics.growth = float64(latest.Count-oldest.Count) / float64(oldest.Count) * 100
		}
	}
	metrics.quality.Retention = retentionScore(inWindow)

	qualities, err := s.audienceQualityRepo.GetAnalysesBetween(ctx, accountID, from, to)
	if err != nil {
		return metrics, err
	}
	if len(qualities) > 0 {
		scores := make([]float64, len(qualities))
		authenticity := make([]float64, len(qualities))
		for i, quality := range qualities {
			scores[i] = quality.OverallScore
			authenticity[i] = math.Max(0, 100-quality.SuspiciousPercentage)
		}
		metrics.quality.Score = stats.Mean(scores)
		metrics.quality.Authenticity = stats.Mean(authenticity)
	}
	return metrics, nil
}

// typeAverages 每种内容类型的平均互动率
func typeAverages(posts []*model.PostSample) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]float64)
	for _, post := range posts {
		if post.MediaType == "" {
			continue
		}
		sums[post.MediaType] += post.EngagementRate
		counts[post.MediaType]++
	}
	averages := make(map[string]float64, len(sums))
	for mediaType, sum := range sums {
		averages[mediaType] = sum / counts[mediaType]
	}
	return averages
}

// retentionScore 100 减去窗口内流失占比，有下限 0
func retentionScore(samples []*model.FollowerSample) float64 {
	if len(samples) == 0 {
		return 100
	}
	latest := samples[len(samples)-1]
	if latest.Count <= 0 {
		return 100
	}
	var lost float64
	for _, sample := range samples {
		lost += float64(sample.LostCount)
	}
	return math.Max(0, 100-lost/float64(latest.Count)*100)
}

func buildContentPerformance(current, previous windowMetrics) ContentPerformanceTrend {
	type typeRate struct {
		mediaType string
		rate      float64
	}
	rates := make([]typeRate, 0, len(current.typeRates))
	for mediaType, rate := range current.typeRates {
		rates = append(rates, typeRate{mediaType: mediaType, rate: rate})
	}
	sort.Slice(rates, func(i, j int) bool {
		if rates[i].rate != rates[j].rate {
			return rates[i].rate > rates[j].rate
		}
		return rates[i].mediaType < rates[j].mediaType
	})

	perf := ContentPerformanceTrend{ConsistencyScore: current.consistency}
	for i := 0; i < len(rates) && i < 3; i++ {
		perf.BestTypes = append(perf.BestTypes, rates[i].mediaType)
	}
	for i := len(rates) - 1; i >= 0 && len(perf.WorstTypes) < 3; i-- {
		perf.WorstTypes = append(perf.WorstTypes, rates[i].mediaType)
	}

	var changes []float64
	for mediaType, rate := range current.typeRates {
		prev, ok := previous.typeRates[mediaType]
		if !ok || prev == 0 {
			continue
		}
		changes = append(changes, (rate-prev)/prev*100)
	}
	perf.Improvement = stats.Mean(changes)
	return perf
}

func buildTrend(current, previous float64) TrendMetric {
	var change float64
	if previous != 0 {
		change = (current - previous) / previous * 100
	}
	return TrendMetric{
		Current:  current,
		Previous: previous,
		Change:   change,
		Trend:    determineTrend(change),
	}
}

func determineTrend(change float64) string {
	switch {
	case change > trendChangeThreshold:
		return consts.TrendUp
	case change < -trendChangeThreshold:
		return consts.TrendDown
	default:
		return consts.TrendStable
	}
}

// consistencyScore 标准差越小得分越高
func consistencyScore(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := stats.Mean(values)
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	std := math.Sqrt(variance / float64(len(values)))
	return math.Max(0, 100-std*10)
}
