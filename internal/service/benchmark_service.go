package service

import (
	"context"
	"fmt"
	log "log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"lumina/internal/model"
	"lumina/internal/pkg/stats"
	"lumina/internal/repository"
)

const (
	maxCompetitors  = 5
	topHashtagCount = 10
	topPostingHours = 5
	benchmarkWindow = 100
	postFreqDaySpan = 30
)

type BenchmarkService interface {
	GenerateBenchmark(ctx context.Context, accountID uint64) (*model.Benchmark, error)
	GetLatestBenchmark(ctx context.Context, accountID uint64, category string) (*model.Benchmark, error)
}

type benchmarkServiceImpl struct {
	accountRepo         repository.AccountRepo
	benchmarkRepo       repository.BenchmarkRepo
	audienceQualityRepo repository.AudienceQualityRepo
	postSampleRepo      repository.PostSampleRepo
	audienceInsightRepo repository.AudienceInsightRepo
}

func NewBenchmarkService(
	accountRepo repository.AccountRepo,
	benchmarkRepo repository.BenchmarkRepo,
	audienceQualityRepo repository.AudienceQualityRepo,
	postSampleRepo repository.PostSampleRepo,
	audienceInsightRepo repository.AudienceInsightRepo,
) BenchmarkService {
	return &benchmarkServiceImpl{
		accountRepo:         accountRepo,
		benchmarkRepo:       benchmarkRepo,
		audienceQualityRepo: audienceQualityRepo,
		postSampleRepo:      postSampleRepo,
		audienceInsightRepo: audienceInsightRepo,
	}
}

// GenerateBenchmark 对比同量级同领域账号生成当日基准，一天内重复生成会覆盖
func (s *benchmarkServiceImpl) GenerateBenchmark(ctx context.Context, accountID uint64) (*model.Benchmark, error) {
	account, err := s.accountRepo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	peers, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	peers = filterCohort(account, peers)

	industryMetrics, peerEngagements, err := s.buildIndustryMetrics(ctx, accountID, peers)
	if err != nil {
		return nil, err
	}
	competitors, err := s.analyzeCompetitors(ctx, accountID, peers)
	if err != nil {
		return nil, err
	}

	ownMetrics, err := s.calculateOwnMetrics(ctx, accountID)
	if err != nil {
		return nil, err
	}

	niche := account.Niche
	if niche == "" {
		niche = account.Platform
	}

	today := midnight(time.Now())
	benchmark := &model.Benchmark{
		AccountID:         accountID,
		Category:          model.BenchmarkCategoryEngagement,
		MetricDate:        today,
		InfluencerTier:    influencerTier(account.FollowerCount),
		Niche:             niche,
		SampleSize:        len(peers),
		IndustryMetrics:   industryMetrics,
		CompetitorMetrics: competitors,
		PerformanceScore:  performanceScore(ownMetrics, industryMetrics, competitors),
	}

	distribution := stats.Describe(peerEngagements)
	benchmark.AverageValue = distribution.Mean
	benchmark.MedianValue = distribution.Median
	if len(peerEngagements) > 0 {
		sorted := append([]float64(nil), peerEngagements...)
		sort.Float64s(sorted)
		benchmark.TopPerformerValue = sorted[len(sorted)-1]
	}

	benchmark.AdditionalMetrics = s.buildAdditionalMetrics(ctx, accountID, ownMetrics, today)
	benchmark.Recommendations = buildRecommendations(ownMetrics, industryMetrics)

	if err := s.benchmarkRepo.SaveOrUpdateBenchmark(ctx, benchmark); err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "基准分析完成",
		"accountId", accountID, "performanceScore", benchmark.PerformanceScore, "peers", len(peers))
	return benchmark, nil
}

func (s *benchmarkServiceImpl) GetLatestBenchmark(ctx context.Context, accountID uint64, category string) (*model.Benchmark, error) {
	if category == "" {
		category = model.BenchmarkCategoryEngagement
	}
	benchmark, err := s.benchmarkRepo.GetLatestBenchmark(ctx, accountID, category)
	if err != nil {
		return nil, err
	}
	if benchmark == nil {
		return nil, ErrInsufficientData
	}
	return benchmark, nil
}

// ownMetrics 本账号参与打分与建议生成的指标
type ownMetrics struct {
	engagementRate float64
	reachRate      float64
	growthRate     float64
	postFrequency  float64
}

func (s *benchmarkServiceImpl) calculateOwnMetrics(ctx context.Context, accountID uint64) (ownMetrics, error) {
	var metrics ownMetrics

	quality, err := s.audienceQualityRepo.GetLatestAnalysis(ctx, accountID)
	if err != nil {
		return metrics, err
	}
	if quality != nil {
		metrics.engagementRate = quality.AuthenticEngagement
	}

	posts, err := s.postSampleRepo.GetRecentByAccount(ctx, accountID, benchmarkWindow)
	if err != nil {
		return metrics, err
	}
	if len(posts) > 0 {
		var reachSum float64
		for _, post := range posts {
			reachSum += post.ReachRate
		}
		metrics.reachRate = reachSum / float64(len(posts))
	}
	metrics.postFrequency = float64(len(posts)) / postFreqDaySpan

	metrics.growthRate, err = s.recentGrowthRate(ctx, accountID)
	return metrics, err
}

// recentGrowthRate 最近两次受众质量快照之间的粉丝数变化率
func (s *benchmarkServiceImpl) recentGrowthRate(ctx context.Context, accountID uint64) (float64, error) {
	snapshots, err := s.audienceQualityRepo.GetRecentAnalyses(ctx, accountID, 2)
	if err != nil {
		return 0, err
	}
	if len(snapshots) < 2 {
		return 0, nil
	}
	latest, previous := snapshots[0], snapshots[1]
	if previous.Metrics.TotalFollowers == 0 {
		return 0, nil
	}
	return float64(latest.Metrics.TotalFollowers-previous.Metrics.TotalFollowers) /
		float64(previous.Metrics.TotalFollowers) * 100, nil
}

// filterCohort 只保留同量级且同领域的账号，本账号始终保留
func filterCohort(account *model.Account, peers []*model.Account) []*model.Account {
	tier := influencerTier(account.FollowerCount)
	cohort := make([]*model.Account, 0, len(peers))
	for _, peer := range peers {
		if peer.ID == account.ID {
			cohort = append(cohort, peer)
			continue
		}
		if influencerTier(peer.FollowerCount) != tier {
			continue
		}
		if account.Niche != "" && peer.Niche != account.Niche {
			continue
		}
		cohort = append(cohort, peer)
	}
	return cohort
}

func (s *benchmarkServiceImpl) buildIndustryMetrics(ctx context.Context, accountID uint64, peers []*model.Account) (model.IndustryMetrics, []float64, error) {
	var (
		engagementRates []float64
		reachRates      []float64
		growthRates     []float64
		postFrequencies []float64
	)
	hourCounts := make(map[string]int)
	typeCounts := make(map[string]float64)

	for _, peer := range peers {
		quality, err := s.audienceQualityRepo.GetLatestAnalysis(ctx, peer.ID)
		if err != nil {
			return model.IndustryMetrics{}, nil, err
		}
		if quality != nil {
			engagementRates = append(engagementRates, quality.AuthenticEngagement)
		}

		posts, err := s.postSampleRepo.GetRecentByAccount(ctx, peer.ID, benchmarkWindow)
		if err != nil {
			return model.IndustryMetrics{}, nil, err
		}
		for _, post := range posts {
			reachRates = append(reachRates, post.ReachRate)
			hour := fmt.Sprintf("%02d", post.PostedAt.Hour())
			hourCounts[hour]++
			typeCounts[post.MediaType]++
		}
		if len(posts) > 0 {
			postFrequencies = append(postFrequencies, float64(len(posts))/postFreqDaySpan)
		}

		growth, err := s.recentGrowthRate(ctx, peer.ID)
		if err != nil {
			return model.IndustryMetrics{}, nil, err
		}
		growthRates = append(growthRates, growth)
	}

	topTags, err := s.audienceInsightRepo.GetTopHashtags(ctx, accountID, topHashtagCount)
	if err != nil {
		return model.IndustryMetrics{}, nil, err
	}
	hashtags := make([]string, 0, len(topTags))
	for _, tag := range topTags {
		hashtags = append(hashtags, tag.Tag)
	}

	metrics := model.IndustryMetrics{
		AverageEngagementRate:   stats.Mean(engagementRates),
		AverageReachRate:        stats.Mean(reachRates),
		AverageFollowerGrowth:   stats.Mean(growthRates),
		AveragePostFrequency:    stats.Mean(postFrequencies),
		TopHashtags:             hashtags,
		BestPostingTimes:        topHours(hourCounts, topPostingHours),
		ContentTypeDistribution: typeCounts,
	}
	return metrics, engagementRates, nil
}

func (s *benchmarkServiceImpl) analyzeCompetitors(ctx context.Context, accountID uint64, peers []*model.Account) (model.CompetitorList, error) {
	competitors := make(model.CompetitorList, 0, maxCompetitors)
	for _, peer := range peers {
		if peer.ID == accountID {
			continue
		}
		if len(competitors) >= maxCompetitors {
			break
		}

		quality, err := s.audienceQualityRepo.GetLatestAnalysis(ctx, peer.ID)
		if err != nil {
			return nil, err
		}
		posts, err := s.postSampleRepo.GetRecentByAccount(ctx, peer.ID, benchmarkWindow)
		if err != nil {
			return nil, err
		}
		growth, err := s.recentGrowthRate(ctx, peer.ID)
		if err != nil {
			return nil, err
		}

		competitor := model.CompetitorMetric{
			Username:       peer.Handle,
			FollowerCount:  peer.FollowerCount,
			PostFrequency:  float64(len(posts)) / postFreqDaySpan,
			ContentQuality: contentQuality(posts),
			GrowthRate:     growth,
		}
		if quality != nil {
			competitor.EngagementRate = quality.AuthenticEngagement
		}
		competitors = append(competitors, competitor)
	}
	return competitors, nil
}

// contentQuality 各互动指标均分后的平均值
func contentQuality(posts []*model.PostSample) float64 {
	if len(posts) == 0 {
		return 0
	}
	var sum float64
	for _, post := range posts {
		sum += float64(post.Likes+post.Comments+post.Saves+post.Shares) / 4
	}
	return sum / float64(len(posts))
}

func performanceScore(own ownMetrics, industry model.IndustryMetrics, competitors model.CompetitorList) float64 {
	var engagementScore, reachScore, growthScore float64
	if industry.AverageEngagementRate > 0 {
		engagementScore = own.engagementRate / industry.AverageEngagementRate
	}
	if industry.AverageReachRate > 0 {
		reachScore = own.reachRate / industry.AverageReachRate
	}
	if industry.AverageFollowerGrowth > 0 {
		growthScore = own.growthRate / industry.AverageFollowerGrowth
	}
	rankScore := competitorRanking(own, competitors)

	return math.Round((engagementScore*0.3 + reachScore*0.2 + growthScore*0.3 + rankScore*0.2) * 100)
}

// competitorRanking 按 互动率*0.6+增长率*0.4 排名，返回 (N-rank)/N
func competitorRanking(own ownMetrics, competitors model.CompetitorList) float64 {
	type entry struct {
		score float64
		self  bool
	}
	entries := make([]entry, 0, len(competitors)+1)
	entries = append(entries, entry{score: own.engagementRate*0.6 + own.growthRate*0.4, self: true})
	for _, c := range competitors {
		entries = append(entries, entry{score: c.EngagementRate*0.6 + c.GrowthRate*0.4})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].score > entries[j].score
	})
	for rank, e := range entries {
		if e.self {
			return float64(len(entries)-rank) / float64(len(entries))
		}
	}
	return 0
}

func (s *benchmarkServiceImpl) buildAdditionalMetrics(ctx context.Context, accountID uint64, own ownMetrics, today time.Time) model.AdditionalMetrics {
	metrics := model.AdditionalMetrics{
		EngagementRate: own.engagementRate,
		ReachRate:      own.reachRate,
		GrowthRate:     own.growthRate,
	}

	previous, err := s.benchmarkRepo.GetLatestBefore(ctx, accountID, model.BenchmarkCategoryEngagement, today)
	if err != nil || previous == nil {
		return metrics
	}

	metrics.PreviousEngagementRate = previous.AdditionalMetrics.EngagementRate
	metrics.PreviousReachRate = previous.AdditionalMetrics.ReachRate
	metrics.PreviousGrowthRate = previous.AdditionalMetrics.GrowthRate
	metrics.EngagementRateChange = percentChange(metrics.PreviousEngagementRate, own.engagementRate)
	metrics.ReachRateChange = percentChange(metrics.PreviousReachRate, own.reachRate)
	metrics.GrowthRateChange = percentChange(metrics.PreviousGrowthRate, own.growthRate)
	return metrics
}

// buildRecommendations 落后于同领域基线的维度给出文字建议
func buildRecommendations(own ownMetrics, industry model.IndustryMetrics) []string {
	var recs []string
	if industry.AverageEngagementRate > 0 && own.engagementRate < industry.AverageEngagementRate {
		recs = append(recs, "互动率低于同领域均值，建议使用热门标签并在高峰时段发布")
	}
	if industry.AveragePostFrequency > 0 && own.postFrequency < industry.AveragePostFrequency {
		recs = append(recs, fmt.Sprintf("发布频率低于同领域均值，建议提升到每天约 %.1f 篇", industry.AveragePostFrequency))
	}
	if top := dominantContentType(industry.ContentTypeDistribution); top != "" {
		recs = append(recs, fmt.Sprintf("%s 类内容在同领域表现最佳，建议增加此类内容占比", top))
	}
	if len(industry.BestPostingTimes) > 0 {
		recs = append(recs, "同领域高峰发布时段: "+strings.Join(industry.BestPostingTimes, ", ")+" 点")
	}
	return recs
}

func dominantContentType(distribution map[string]float64) string {
	var top string
	var best float64
	for mediaType, count := range distribution {
		if mediaType == "" || count <= 0 {
			continue
		}
		if count > best || (count == best && mediaType < top) {
			top = mediaType
			best = count
		}
	}
	return top
}

func percentChange(previous, current float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

func influencerTier(followerCount int64) string {
	switch {
	case followerCount < 10_000:
		return model.TierMicro
	case followerCount < 50_000:
		return model.TierSmall
	case followerCount < 500_000:
		return model.TierMid
	case followerCount < 1_000_000:
		return model.TierMacro
	default:
		return model.TierMega
	}
}

func topHours(hourCounts map[string]int, limit int) []string {
	type hourCount struct {
		hour  string
		count int
	}
	counts := make([]hourCount, 0, len(hourCounts))
	for hour, count := range hourCounts {
		counts = append(counts, hourCount{hour: hour, count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].hour < counts[j].hour
	})
	if len(counts) > limit {
		counts = counts[:limit]
	}
	hours := make([]string, 0, len(counts))
	for _, c := range counts {
		hours = append(hours, c.hour)
	}
	return hours
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
