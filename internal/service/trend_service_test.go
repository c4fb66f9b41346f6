package service

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumina/internal/api/config"
	"lumina/internal/model"
	"lumina/internal/pkg/consts"
)

func setTrendsConfig(t *testing.T, minPoints int) {
	t.Helper()
	previous := config.Cfg
	config.Cfg = &config.Config{Trends: config.TrendsConfig{CacheTTLMinutes: 60, MinDataPoints: minPoints}}
	t.Cleanup(func() { config.Cfg = previous })
}

func TestAnalyzeTrends(t *testing.T) {
	setTrendsConfig(t, 3)
	ctx := context.Background()
	now := time.Now()

	accountRepo := newFakeAccountRepo(&model.Account{ID: 1, Handle: "creator"})
	postRepo := newFakePostSampleRepo()
	postRepo.recent[1] = []*model.PostSample{
		{EngagementRate: 10, ReachRate: 20, MediaType: "image", PostedAt: now.Add(-2 * time.Hour)},
		{EngagementRate: 10, ReachRate: 20, MediaType: "image", PostedAt: now.Add(-4 * time.Hour)},
		{EngagementRate: 10, ReachRate: 20, MediaType: "video", PostedAt: now.Add(-6 * time.Hour)},
	}
	followerRepo := newFakeFollowerSampleRepo()
	followerRepo.samples[1] = []*model.FollowerSample{
		{AccountID: 1, Count: 1000, RecordedAt: now.Add(-8 * time.Hour)},
		{AccountID: 1, Count: 1050, RecordedAt: now.Add(-5 * time.Hour)},
		{AccountID: 1, Count: 1100, RecordedAt: now.Add(-time.Hour)},
	}
	benchmarkRepo := newFakeBenchmarkRepo()
	benchmarkRepo.count = 3
	qualityRepo := newFakeAudienceQualityRepo()
	qualityRepo.history[1] = []*model.AudienceQuality{
		{AccountID: 1, OverallScore: 80, SuspiciousPercentage: 10, AnalyzedAt: now.Add(-3 * time.Hour)},
	}
	trendCache := newFakeCache()

	svc := NewTrendService(accountRepo, postRepo, followerRepo, benchmarkRepo, qualityRepo, trendCache)
	analysis, err := svc.AnalyzeTrends(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), analysis.AccountID)
	assert.Len(t, analysis.Timeframes, 4)

	day := analysis.Timeframes[consts.TimeframeDay]
	assert.InDelta(t, 10.0, day.Engagement.Current, 1e-9)
	assert.InDelta(t, 20.0, day.Reach.Current, 1e-9)
	// 1000 -> 1100
	assert.InDelta(t, 10.0, day.Growth.Current, 1e-9)
	// 互动率方差为零
	assert.InDelta(t, 100.0, day.ConsistencyScore, 1e-9)

	// 两种内容类型互动率相同，排序按类型名称稳定
	assert.Equal(t, []string{"image", "video"}, day.ContentPerformance.BestTypes)
	assert.InDelta(t, 100.0, day.ContentPerformance.ConsistencyScore, 1e-9)

	assert.InDelta(t, 80.0, day.AudienceQuality.Score, 1e-9)
	assert.InDelta(t, 90.0, day.AudienceQuality.Authenticity, 1e-9)
	assert.InDelta(t, 10.0, day.AudienceQuality.Engagement, 1e-9)
	assert.InDelta(t, 100.0, day.AudienceQuality.Retention, 1e-9)

	// 结果已写入缓存
	cached, err := trendCache.Get(ctx, consts.AccountTrendsKey+"1")
	require.NoError(t, err)
	assert.NotNil(t, cached)
}

func TestAnalyzeTrendsCacheHit(t *testing.T) {
	setTrendsConfig(t, 3)
	ctx := context.Background()

	cachedAnalysis := &TrendAnalysis{AccountID: 9, Timeframes: map[string]TimeframeTrends{}}
	payload, err := json.Marshal(cachedAnalysis)
	require.NoError(t, err)

	trendCache := newFakeCache()
	require.NoError(t, trendCache.Set(ctx, consts.AccountTrendsKey+"9", payload, time.Hour))

	// 命中缓存时不应触达任何仓储
	svc := NewTrendService(nil, nil, nil, nil, nil, trendCache)
	analysis, err := svc.AnalyzeTrends(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), analysis.AccountID)
}

func TestAnalyzeTrendsInsufficientData(t *testing.T) {
	setTrendsConfig(t, 3)

	accountRepo := newFakeAccountRepo(&model.Account{ID: 1, Handle: "creator"})
	svc := NewTrendService(accountRepo, newFakePostSampleRepo(), newFakeFollowerSampleRepo(), newFakeBenchmarkRepo(), newFakeAudienceQualityRepo(), newFakeCache())

	_, err := svc.AnalyzeTrends(context.Background(), 1)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestInvalidateCache(t *testing.T) {
	ctx := context.Background()
	trendCache := newFakeCache()
	require.NoError(t, trendCache.Set(ctx, consts.AccountTrendsKey+"1", []byte("{}"), time.Hour))

	svc := NewTrendService(nil, nil, nil, nil, nil, trendCache)
	require.NoError(t, svc.InvalidateCache(ctx, 1))
	assert.Equal(t, []string{consts.AccountTrendsKey + "1"}, trendCache.invalidated)
}

func TestDetermineTrend(t *testing.T) {
	assert.Equal(t, consts.TrendUp, determineTrend(10))
	assert.Equal(t, consts.TrendDown, determineTrend(-10))
	assert.Equal(t, consts.TrendStable, determineTrend(4))
	assert.Equal(t, consts.TrendStable, determineTrend(-4))
}

func TestBuildTrend(t *testing.T) {
	metric := buildTrend(110, 100)
	assert.InDelta(t, 10.0, metric.Change, 1e-9)
	assert.Equal(t, consts.TrendUp, metric.Trend)

	// 前期为零不计算环比
	metric = buildTrend(50, 0)
	assert.Zero(t, metric.Change)
	assert.Equal(t, consts.TrendStable, metric.Trend)
}

func TestConsistencyScore(t *testing.T) {
	assert.InDelta(t, 100.0, consistencyScore([]float64{5, 5, 5}), 1e-9)
	// 标准差 10，得分归零
	assert.Zero(t, consistencyScore([]float64{0, 20}))
	assert.Zero(t, consistencyScore([]float64{5}))
}

func TestAnalyzeTrendsIgnoresFollowerGlitch(t *testing.T) {
	setTrendsConfig(t, 3)
	ctx := context.Background()
	now := time.Now()

	accountRepo := newFakeAccountRepo(&model.Account{ID: 1, Handle: "creator"})
	postRepo := newFakePostSampleRepo()
	postRepo.recent[1] = []*model.PostSample{
		{EngagementRate: 10, ReachRate: 20, PostedAt: now.Add(-2 * time.Hour)},
		{EngagementRate: 10, ReachRate: 20, PostedAt: now.Add(-4 * time.Hour)},
		{EngagementRate: 10, ReachRate: 20, PostedAt: now.Add(-6 * time.Hour)},
	}

	followerRepo := newFakeFollowerSampleRepo()
	for i := 0; i < 9; i++ {
		followerRepo.samples[1] = append(followerRepo.samples[1], &model.FollowerSample{
			AccountID:  1,
			Count:      int64(1000 + i),
			RecordedAt: now.Add(time.Duration(i-10) * time.Hour),
		})
	}
	// 抓取毛刺：一条离群粉丝数不应放大增长率
	followerRepo.samples[1] = append(followerRepo.samples[1], &model.FollowerSample{
		AccountID:  1,
		Count:      900_000,
		RecordedAt: now.Add(-30 * time.Minute),
	})

	benchmarkRepo := newFakeBenchmarkRepo()
	benchmarkRepo.count = 3
	svc := NewTrendService(accountRepo, postRepo, followerRepo, benchmarkRepo, newFakeAudienceQualityRepo(), newFakeCache())

	analysis, err := svc.AnalyzeTrends(ctx, 1)
	require.NoError(t, err)

	// (1008-1000)/1000
	day := analysis.Timeframes[consts.TimeframeDay]
	assert.InDelta(t, 0.8, day.Growth.Current, 1e-9)
}

func TestAnalyzeTrendsPrefersBenchmarkAggregates(t *testing.T) {
	setTrendsConfig(t, 3)
	ctx := context.Background()
	now := time.Now()

	accountRepo := newFakeAccountRepo(&model.Account{ID: 1, Handle: "creator"})
	postRepo := newFakePostSampleRepo()
	postRepo.recent[1] = []*model.PostSample{
		{EngagementRate: 10, ReachRate: 20, PostedAt: now.Add(-2 * time.Hour)},
		{EngagementRate: 10, ReachRate: 20, PostedAt: now.Add(-4 * time.Hour)},
		{EngagementRate: 10, ReachRate: 20, PostedAt: now.Add(-6 * time.Hour)},
	}
	followerRepo := newFakeFollowerSampleRepo()
	followerRepo.samples[1] = []*model.FollowerSample{
		{AccountID: 1, Count: 1000, RecordedAt: now.Add(-8 * time.Hour)},
		{AccountID: 1, Count: 1100, RecordedAt: now.Add(-time.Hour)},
		{AccountID: 1, Count: 1100, RecordedAt: now.Add(-30 * time.Minute)},
	}
	benchmarkRepo := newFakeBenchmarkRepo()
	benchmarkRepo.count = 3
	benchmarkRepo.rows = []*model.Benchmark{
		{AccountID: 1, CreatedAt: now.Add(-3 * time.Hour), AdditionalMetrics: model.AdditionalMetrics{EngagementRate: 6, ReachRate: 30}},
		{AccountID: 1, CreatedAt: now.Add(-5 * time.Hour), AdditionalMetrics: model.AdditionalMetrics{EngagementRate: 8, ReachRate: 40}},
	}

	svc := NewTrendService(accountRepo, postRepo, followerRepo, benchmarkRepo, newFakeAudienceQualityRepo(), newFakeCache())
	analysis, err := svc.AnalyzeTrends(ctx, 1)
	require.NoError(t, err)

	// 窗口内存在基准时互动与触达取基准聚合值
	day := analysis.Timeframes[consts.TimeframeDay]
	assert.InDelta(t, 7.0, day.Engagement.Current, 1e-9)
	assert.InDelta(t, 35.0, day.Reach.Current, 1e-9)
}

func TestRetentionScore(t *testing.T) {
	assert.InDelta(t, 100.0, retentionScore(nil), 1e-9)
	samples := []*model.FollowerSample{
		{Count: 1000, LostCount: 30},
		{Count: 990, LostCount: 20},
	}
	// 100 - 50/990*100
	assert.InDelta(t, 100-50.0/990*100, retentionScore(samples), 1e-9)
}

func TestBuildContentPerformance(t *testing.T) {
	current := windowMetrics{
		consistency: 90,
		typeRates:   map[string]float64{"image": 8, "video": 12, "carousel": 4, "reel": 2},
	}
	previous := windowMetrics{typeRates: map[string]float64{"image": 10, "video": 10}}

	perf := buildContentPerformance(current, previous)
	assert.Equal(t, []string{"video", "image", "carousel"}, perf.BestTypes)
	assert.Equal(t, []string{"reel", "carousel", "image"}, perf.WorstTypes)
	// 均值((8-10)/10, (12-10)/10) = 0
	assert.InDelta(t, 0.0, perf.Improvement, 1e-9)
	assert.InDelta(t, 90.0, perf.ConsistencyScore, 1e-9)
}
