package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumina/internal/model"
)

func TestGenerateBenchmark(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	accountRepo := newFakeAccountRepo(
		&model.Account{ID: 1, Handle: "creator", Platform: "instagram", FollowerCount: 5000},
		&model.Account{ID: 2, Handle: "rival", Platform: "instagram", FollowerCount: 8000},
	)
	qualityRepo := newFakeAudienceQualityRepo()
	// 最近两次快照之间的粉丝变化即增长率
	latest1 := &model.AudienceQuality{AccountID: 1, AuthenticEngagement: 4, Metrics: model.AudienceMetrics{TotalFollowers: 1100}}
	latest2 := &model.AudienceQuality{AccountID: 2, AuthenticEngagement: 2, Metrics: model.AudienceMetrics{TotalFollowers: 1050}}
	qualityRepo.latest[1] = latest1
	qualityRepo.latest[2] = latest2
	qualityRepo.history[1] = []*model.AudienceQuality{
		latest1,
		{AccountID: 1, Metrics: model.AudienceMetrics{TotalFollowers: 1000}},
	}
	qualityRepo.history[2] = []*model.AudienceQuality{
		latest2,
		{AccountID: 2, Metrics: model.AudienceMetrics{TotalFollowers: 1000}},
	}

	postRepo := newFakePostSampleRepo()
	postRepo.recent[1] = []*model.PostSample{
		{ReachRate: 10, MediaType: "image", PostedAt: now},
		{ReachRate: 10, MediaType: "image", PostedAt: now},
	}
	postRepo.recent[2] = []*model.PostSample{
		{ReachRate: 20, Likes: 40, MediaType: "image", PostedAt: now},
	}

	insightRepo := &fakeAudienceInsightRepo{topHashtags: []*model.Hashtag{{Tag: "golang"}}}
	benchmarkRepo := newFakeBenchmarkRepo()

	svc := NewBenchmarkService(accountRepo, benchmarkRepo, qualityRepo, postRepo, insightRepo)
	benchmark, err := svc.GenerateBenchmark(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, model.TierMicro, benchmark.InfluencerTier)
	assert.Equal(t, "instagram", benchmark.Niche)
	assert.Equal(t, 2, benchmark.SampleSize)
	assert.InDelta(t, 3.0, benchmark.AverageValue, 1e-9)
	assert.InDelta(t, 4.0, benchmark.TopPerformerValue, 1e-9)
	assert.Equal(t, []string{"golang"}, benchmark.IndustryMetrics.TopHashtags)
	assert.InDelta(t, 3.0, benchmark.IndustryMetrics.AverageEngagementRate, 1e-9)
	assert.InDelta(t, 7.5, benchmark.IndustryMetrics.AverageFollowerGrowth, 1e-9)

	require.Len(t, benchmark.CompetitorMetrics, 1)
	competitor := benchmark.CompetitorMetrics[0]
	assert.Equal(t, "rival", competitor.Username)
	assert.InDelta(t, 2.0, competitor.EngagementRate, 1e-9)
	assert.InDelta(t, 5.0, competitor.GrowthRate, 1e-9)
	assert.InDelta(t, 10.0, competitor.ContentQuality, 1e-9)

	// 互动/触达/增长三项均优于同行，排名第一
	assert.InDelta(t, 115.0, benchmark.PerformanceScore, 1e-9)

	assert.InDelta(t, 4.0, benchmark.AdditionalMetrics.EngagementRate, 1e-9)
	assert.InDelta(t, 10.0, benchmark.AdditionalMetrics.ReachRate, 1e-9)
	assert.Zero(t, benchmark.AdditionalMetrics.EngagementRateChange)

	// 互动与发布频率均不落后，只剩内容类型与时段两条建议
	require.Len(t, benchmark.Recommendations, 2)
	assert.Contains(t, benchmark.Recommendations[0], "image")
	assert.Len(t, benchmarkRepo.saved, 1)
}

func TestGenerateBenchmarkAccountMissing(t *testing.T) {
	svc := NewBenchmarkService(newFakeAccountRepo(), newFakeBenchmarkRepo(), newFakeAudienceQualityRepo(), newFakePostSampleRepo(), &fakeAudienceInsightRepo{})

	_, err := svc.GenerateBenchmark(context.Background(), 3)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestGetLatestBenchmark(t *testing.T) {
	ctx := context.Background()
	benchmarkRepo := newFakeBenchmarkRepo()
	svc := NewBenchmarkService(newFakeAccountRepo(), benchmarkRepo, newFakeAudienceQualityRepo(), newFakePostSampleRepo(), &fakeAudienceInsightRepo{})

	_, err := svc.GetLatestBenchmark(ctx, 1, "")
	assert.ErrorIs(t, err, ErrInsufficientData)

	benchmarkRepo.latest[1] = &model.Benchmark{AccountID: 1, PerformanceScore: 88}
	benchmark, err := svc.GetLatestBenchmark(ctx, 1, "")
	require.NoError(t, err)
	assert.InDelta(t, 88.0, benchmark.PerformanceScore, 1e-9)
}

func TestInfluencerTier(t *testing.T) {
	assert.Equal(t, model.TierMicro, influencerTier(9_999))
	assert.Equal(t, model.TierSmall, influencerTier(10_000))
	assert.Equal(t, model.TierMid, influencerTier(100_000))
	assert.Equal(t, model.TierMacro, influencerTier(500_000))
	assert.Equal(t, model.TierMega, influencerTier(1_000_000))
}

func TestTopHours(t *testing.T) {
	counts := map[string]int{"09": 5, "12": 8, "18": 8, "21": 2}
	// 次数相同按小时升序
	assert.Equal(t, []string{"12", "18", "09"}, topHours(counts, 3))
	assert.Empty(t, topHours(nil, 3))
}

func TestCompetitorRanking(t *testing.T) {
	own := ownMetrics{engagementRate: 4, growthRate: 10}
	competitors := model.CompetitorList{
		{EngagementRate: 2, GrowthRate: 5},
		{EngagementRate: 10, GrowthRate: 20},
	}
	// 三人中排第二
	assert.InDelta(t, 2.0/3.0, competitorRanking(own, competitors), 1e-9)
	// 无竞品时独占第一
	assert.InDelta(t, 1.0, competitorRanking(own, nil), 1e-9)
}

func TestPercentChange(t *testing.T) {
	assert.InDelta(t, 50.0, percentChange(10, 15), 1e-9)
	assert.InDelta(t, -50.0, percentChange(10, 5), 1e-9)
	assert.Zero(t, percentChange(0, 5))
}

func TestFilterCohort(t *testing.T) {
	account := &model.Account{ID: 1, FollowerCount: 5000, Niche: "fitness"}
	peers := []*model.Account{
		account,
		{ID: 2, FollowerCount: 8000, Niche: "fitness"},
		{ID: 3, FollowerCount: 20000, Niche: "fitness"},
		{ID: 4, FollowerCount: 6000, Niche: "travel"},
	}

	// 量级或领域不同的账号不进入对比组
	cohort := filterCohort(account, peers)
	require.Len(t, cohort, 2)
	assert.Equal(t, uint64(1), cohort[0].ID)
	assert.Equal(t, uint64(2), cohort[1].ID)

	// 未设置领域时只按量级过滤
	account.Niche = ""
	assert.Len(t, filterCohort(account, peers), 3)
}

func TestBuildRecommendations(t *testing.T) {
	own := ownMetrics{engagementRate: 2, postFrequency: 0.02}
	industry := model.IndustryMetrics{
		AverageEngagementRate:   3,
		AveragePostFrequency:    0.2,
		ContentTypeDistribution: map[string]float64{"image": 3, "video": 5},
		BestPostingTimes:        []string{"09", "18"},
	}

	recs := buildRecommendations(own, industry)
	require.Len(t, recs, 4)
	assert.Contains(t, recs[0], "互动率低于同领域均值")
	assert.Contains(t, recs[1], "0.2")
	assert.Contains(t, recs[2], "video")
	assert.Contains(t, recs[3], "09, 18")

	// 全部优于基线时不给建议
	strong := ownMetrics{engagementRate: 5, postFrequency: 1}
	assert.Empty(t, buildRecommendations(strong, model.IndustryMetrics{AverageEngagementRate: 3, AveragePostFrequency: 0.2}))
}
