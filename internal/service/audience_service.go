package service

import (
	"context"
	"fmt"
	log "log/slog"
	"math"
	"time"

	"lumina/internal/model"
	"lumina/internal/pkg/scraper"
	"lumina/internal/pkg/stats"
	"lumina/internal/repository"
)

const (
	maxFollowingRatio    = 1.5
	minEngagementRate    = 0.5
	minAccountAgeDays    = 30
	minPostCount         = 5
	massFollowerLimit    = 7500
	suspicionCutoff      = 50
	followerSampleLimit  = 100
	engagementPostWindow = 50
)

// ScoringStrategy 单个粉丝的可疑度打分策略
type ScoringStrategy interface {
	Score(follower scraper.RawFollower) (score int, reasons []string)
}

// RuleScoringStrategy 基于固定阈值的默认打分策略
type RuleScoringStrategy struct{}

func (RuleScoringStrategy) Score(f scraper.RawFollower) (int, []string) {
	var score int
	var reasons []string

	ratioExceeded := f.FollowerCount == 0 && f.FollowingCount > 0
	if f.FollowerCount > 0 && float64(f.FollowingCount)/float64(f.FollowerCount) > maxFollowingRatio {
		ratioExceeded = true
	}
	if ratioExceeded {
		reasons = append(reasons, "关注粉丝比异常")
		score += 25
	}
	if f.EngagementRate < minEngagementRate {
		reasons = append(reasons, "互动率过低")
		score += 25
	}
	if accountAgeDays(f.CreatedAt) < minAccountAgeDays {
		reasons = append(reasons, "账号注册时间过短")
		score += 20
	}
	if f.PostCount < minPostCount {
		reasons = append(reasons, "发帖数过少")
		score += 15
	}
	if f.FollowingCount > massFollowerLimit {
		reasons = append(reasons, "批量关注行为")
		score += 15
	}
	return score, reasons
}

func accountAgeDays(createdAt time.Time) float64 {
	if createdAt.IsZero() {
		return math.MaxFloat64
	}
	return time.Since(createdAt).Hours() / 24
}

type AudienceService interface {
	AnalyzeAudience(ctx context.Context, accountID uint64) (*model.AudienceQuality, error)
	GetLatestAnalysis(ctx context.Context, accountID uint64) (*model.AudienceQuality, error)
}

type audienceServiceImpl struct {
	accountRepo         repository.AccountRepo
	audienceQualityRepo repository.AudienceQualityRepo
	postSampleRepo      repository.PostSampleRepo
	scraperClient       scraper.Client
	strategy            ScoringStrategy
}

func NewAudienceService(
	accountRepo repository.AccountRepo,
	audienceQualityRepo repository.AudienceQualityRepo,
	postSampleRepo repository.PostSampleRepo,
	scraperClient scraper.Client,
	strategy ScoringStrategy,
) AudienceService {
	if strategy == nil {
		strategy = RuleScoringStrategy{}
	}
	return &audienceServiceImpl{
		accountRepo:         accountRepo,
		audienceQualityRepo: audienceQualityRepo,
		postSampleRepo:      postSampleRepo,
		scraperClient:       scraperClient,
		strategy:            strategy,
	}
}

// AnalyzeAudience 抽样粉丝做机器人检测，产出受众质量评分并落库
func (s *audienceServiceImpl) AnalyzeAudience(ctx context.Context, accountID uint64) (*model.AudienceQuality, error) {
	account, err := s.accountRepo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	followers, err := s.scraperClient.GetFollowers(ctx, account.Handle, followerSampleLimit)
	if err != nil {
		return nil, err
	}

	var suspiciousCount, massFollowerCount int
	for _, follower := range followers {
		score, _ := s.strategy.Score(follower)
		if score >= suspicionCutoff {
			suspiciousCount++
		}
		if follower.FollowingCount > massFollowerLimit {
			massFollowerCount++
		}
	}

	var suspiciousPct, massPct float64
	if len(followers) > 0 {
		suspiciousPct = float64(suspiciousCount) / float64(len(followers)) * 100
		massPct = float64(massFollowerCount) / float64(len(followers)) * 100
	}

	profile, err := s.calculateEngagementProfile(ctx, accountID, account.FollowerCount)
	if err != nil {
		return nil, err
	}

	analysis := &model.AudienceQuality{
		AccountID:            accountID,
		OverallScore:         qualityScore(suspiciousPct, massPct, profile.authentic),
		SuspiciousPercentage: suspiciousPct,
		MassFollowerPercent:  massPct,
		AuthenticEngagement:  profile.authentic,
		EngagementRate:       profile.engagementRate,
		CommentQuality:       profile.commentQuality,
		ReachEfficiency:      profile.reachEfficiency,
		SaveRate:             profile.saveRate,
		ShareRate:            profile.shareRate,
		RiskFactors:          riskFactors(suspiciousPct, massPct, profile.authentic),
		Metrics: model.AudienceMetrics{
			SampleSize:        len(followers),
			SuspiciousCount:   suspiciousCount,
			MassFollowerCount: massFollowerCount,
			TotalFollowers:    account.FollowerCount,
			AverageEngagement: profile.authentic,
		},
		Benchmarks: qualityBenchmarks(account.FollowerCount),
		AnalyzedAt: time.Now(),
	}

	if err := s.audienceQualityRepo.CreateAnalysis(ctx, analysis); err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "受众质量分析完成",
		"accountId", accountID, "score", analysis.OverallScore, "sampleSize", len(followers))
	return analysis, nil
}

func (s *audienceServiceImpl) GetLatestAnalysis(ctx context.Context, accountID uint64) (*model.AudienceQuality, error) {
	analysis, err := s.audienceQualityRepo.GetLatestAnalysis(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		return nil, ErrInsufficientData
	}
	return analysis, nil
}

// engagementProfile 近期帖子统计出的互动画像
type engagementProfile struct {
	authentic       float64
	engagementRate  float64
	commentQuality  float64
	reachEfficiency float64
	saveRate        float64
	shareRate       float64
}

// calculateEngagementProfile 剔除互动率离群帖后的平均互动率，外加逐项互动子指标
func (s *audienceServiceImpl) calculateEngagementProfile(ctx context.Context, accountID uint64, followerCount int64) (engagementProfile, error) {
	var profile engagementProfile
	if followerCount == 0 {
		return profile, nil
	}
	posts, err := s.postSampleRepo.GetRecentByAccount(ctx, accountID, engagementPostWindow)
	if err != nil {
		return profile, err
	}
	if len(posts) == 0 {
		return profile, nil
	}

	rates := make([]float64, len(posts))
	var likeSum, commentSum, saveSum, shareSum, reachSum float64
	for i, post := range posts {
		rates[i] = float64(post.Likes+post.Comments) / float64(followerCount) * 100
		likeSum += float64(post.Likes)
		commentSum += float64(post.Comments)
		saveSum += float64(post.Saves)
		shareSum += float64(post.Shares)
		reachSum += float64(post.Reach)
	}
	valid := stats.RemoveOutliers(rates, func(r float64) float64 { return r }, stats.DefaultOutlierThreshold)
	profile.authentic = stats.Mean(valid)

	n := float64(len(posts))
	avgLikes := likeSum / n
	avgComments := commentSum / n
	followers := float64(followerCount)

	profile.engagementRate = (avgLikes + avgComments) / followers * 100
	profile.saveRate = saveSum / n / followers * 100
	profile.shareRate = shareSum / n / followers * 100
	profile.reachEfficiency = reachSum / n / followers * 100
	if avgLikes > 0 {
		profile.commentQuality = avgComments / avgLikes * 100
	}
	return profile, nil
}

// qualityBenchmarks 行业基线固定，同规模基线按粉丝量分档
func qualityBenchmarks(followerCount int64) model.QualityBenchmarks {
	var base float64
	switch {
	case followerCount < 5000:
		base = 5.6
	case followerCount < 20000:
		base = 4.2
	case followerCount < 100000:
		base = 3.4
	default:
		base = 2.1
	}
	return model.QualityBenchmarks{
		Industry: model.QualityBenchmark{
			EngagementRate: 3.5,
			ReachRate:      30.0,
			SaveRate:       1.5,
			ShareRate:      1.0,
		},
		SimilarTier: model.QualityBenchmark{
			EngagementRate: base,
			ReachRate:      25.0 + base*2,
			SaveRate:       1.2 + base*0.1,
			ShareRate:      0.8 + base*0.1,
		},
	}
}

func qualityScore(suspiciousPct, massPct, authenticEngagement float64) float64 {
	suspiciousScore := math.Max(0, 100-suspiciousPct)
	massScore := math.Max(0, 100-massPct)
	engagementScore := math.Min(100, authenticEngagement*20)

	return math.Round(suspiciousScore*0.4 + massScore*0.3 + engagementScore*0.3)
}

func riskFactors(suspiciousPct, massPct, authenticEngagement float64) []string {
	var factors []string
	if suspiciousPct > 20 {
		factors = append(factors, fmt.Sprintf("可疑账号占比过高 (%.0f%%)", math.Round(suspiciousPct)))
	}
	if massPct > 15 {
		factors = append(factors, fmt.Sprintf("批量关注账号占比过高 (%.0f%%)", math.Round(massPct)))
	}
	if authenticEngagement < 1 {
		factors = append(factors, "真实互动率过低")
	}
	return factors
}
