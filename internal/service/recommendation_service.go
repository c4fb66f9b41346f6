package service

import (
	"context"
	"fmt"
	log "log/slog"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"lumina/internal/model"
	"lumina/internal/pkg/consts"
	"lumina/internal/pkg/util"
	"lumina/internal/repository"
)

const (
	criticalSuspiciousPct = 30
	criticalQualityScore  = 40
	lowQualityScore       = 60
	visibilityPostWindow  = 20
)

var priorityWeight = map[string]int{
	consts.PriorityHigh:   3,
	consts.PriorityMedium: 2,
	consts.PriorityLow:    1,
}

var typeWeight = map[string]int{
	"security":      5,
	"quality":       4,
	"engagement":    4,
	"growth":        4,
	"business":      4,
	"conversion":    4,
	"visibility":    3,
	"content":       3,
	"reels":         3,
	"stories":       3,
	"collaboration": 3,
	"timing":        2,
	"hashtags":      2,
	"monetization":  1,
}

// 地理亲和度匹配的热门区域
var tourismZones = []string{"Paris", "London", "New York"}

type RecommendationService interface {
	GenerateRecommendations(ctx context.Context, accountID uint64) ([]*model.Recommendation, error)
	ListRecommendations(ctx context.Context, accountID uint64, priority string) ([]*model.Recommendation, error)
}

type recommendationServiceImpl struct {
	accountRepo         repository.AccountRepo
	recommendationRepo  repository.RecommendationRepo
	audienceQualityRepo repository.AudienceQualityRepo
	postSampleRepo      repository.PostSampleRepo
}

func NewRecommendationService(
	accountRepo repository.AccountRepo,
	recommendationRepo repository.RecommendationRepo,
	audienceQualityRepo repository.AudienceQualityRepo,
	postSampleRepo repository.PostSampleRepo,
) RecommendationService {
	return &recommendationServiceImpl{
		accountRepo:         accountRepo,
		recommendationRepo:  recommendationRepo,
		audienceQualityRepo: audienceQualityRepo,
		postSampleRepo:      postSampleRepo,
	}
}

// GenerateRecommendations 按最新分析结果生成运营建议并整批落库
func (s *recommendationServiceImpl) GenerateRecommendations(ctx context.Context, accountID uint64) ([]*model.Recommendation, error) {
	account, err := s.accountRepo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	// 受众分析与可见度计算互不依赖，并发执行
	var (
		quality         *model.AudienceQuality
		visibilityScore float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quality, err = s.audienceQualityRepo.GetLatestAnalysis(gctx, accountID)
		return err
	})
	g.Go(func() error {
		var err error
		visibilityScore, err = s.averageVisibility(gctx, accountID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var payloads []model.RecommendationPayload
	if quality != nil {
		payloads = append(payloads, securityRecommendations(quality)...)
		payloads = append(payloads, qualityRecommendations(quality)...)
	}
	payloads = append(payloads, visibilityRecommendation(visibilityScore))
	payloads = append(payloads, staticRecommendations()...)

	prioritize(payloads)

	now := time.Now()
	recommendations := make([]*model.Recommendation, 0, len(payloads))
	for _, payload := range payloads {
		recommendations = append(recommendations, &model.Recommendation{
			AccountID: accountID,
			Type:      payload.Type,
			Payload:   payload,
			CreatedAt: now,
		})
	}

	if err := s.recommendationRepo.ReplaceRecommendations(ctx, accountID, recommendations); err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "运营建议生成完成", "accountId", accountID, "count", len(recommendations))
	return recommendations, nil
}

func (s *recommendationServiceImpl) ListRecommendations(ctx context.Context, accountID uint64, priority string) ([]*model.Recommendation, error) {
	if priority != "" {
		if _, ok := priorityWeight[priority]; !ok {
			return nil, ErrParamInvalid
		}
	}
	return s.recommendationRepo.ListRecommendations(ctx, accountID, priority)
}

// averageVisibility 近期帖子的可见度均分
// 互动按 点赞0.4/评论0.3/转发0.2/情感0.1 加权，命中热门区域再加地理亲和分
func (s *recommendationServiceImpl) averageVisibility(ctx context.Context, accountID uint64) (float64, error) {
	posts, err := s.postSampleRepo.GetRecentByAccount(ctx, accountID, visibilityPostWindow)
	if err != nil {
		return 0, err
	}
	if len(posts) == 0 {
		return 0, nil
	}

	var sum float64
	for _, post := range posts {
		score := float64(post.Likes)*0.4 +
			float64(post.Comments)*0.3 +
			float64(post.Shares)*0.2 +
			util.SentimentScore(post.Caption)*0.1
		if post.LocationName != nil {
			score += geoAffinity(*post.LocationName)
		}
		sum += score
	}
	return sum / float64(len(posts)), nil
}

func geoAffinity(location string) float64 {
	for _, zone := range tourismZones {
		if zone == location {
			return 1
		}
	}
	return 0
}

func securityRecommendations(quality *model.AudienceQuality) []model.RecommendationPayload {
	if quality.SuspiciousPercentage < criticalSuspiciousPct {
		return nil
	}
	return []model.RecommendationPayload{{
		Type:        "security",
		Priority:    consts.PriorityHigh,
		Title:       "立即清理可疑粉丝",
		Description: fmt.Sprintf("%.0f%% 的粉丝存在可疑行为，建议尽快治理以恢复账号真实互动", math.Round(quality.SuspiciousPercentage)),
		ActionItems: []string{
			"移除可疑粉丝",
			"开启粉丝增长监控",
			"定期复查受众质量",
		},
		Metrics: map[string]float64{
			"suspiciousPercentage": quality.SuspiciousPercentage,
			"overallScore":         quality.OverallScore,
		},
		ImplementationSteps: []string{
			"导出可疑粉丝名单",
			"分批移除并观察互动率变化",
		},
	}}
}

func qualityRecommendations(quality *model.AudienceQuality) []model.RecommendationPayload {
	switch {
	case quality.OverallScore <= criticalQualityScore:
		return []model.RecommendationPayload{{
			Type:        "quality",
			Priority:    consts.PriorityHigh,
			Title:       "实施受众质量改善计划",
			Description: "多项指标显示受众质量严重偏低，需要系统性治理",
			ActionItems: []string{
				"排查粉丝来源渠道",
				"停止低质量涨粉手段",
				"聚焦真实互动内容",
			},
			Metrics: map[string]float64{
				"overallScore":        quality.OverallScore,
				"authenticEngagement": quality.AuthenticEngagement,
			},
		}}
	case quality.OverallScore <= lowQualityScore:
		return []model.RecommendationPayload{{
			Type:        "quality",
			Priority:    consts.PriorityMedium,
			Title:       "逐步提升受众质量",
			Description: "受众质量有改善空间，建议持续优化各项指标",
			ActionItems: []string{
				"关注互动率变化趋势",
				"分析高互动内容特征",
			},
		}}
	default:
		return nil
	}
}

func visibilityRecommendation(score float64) model.RecommendationPayload {
	return model.RecommendationPayload{
		Type:        "visibility",
		Priority:    consts.PriorityHigh,
		Title:       "优化内容可见度",
		Description: fmt.Sprintf("当前可见度评分 %.2f，通过算法友好的发布策略可以进一步放大触达", score),
		ActionItems: []string{
			"在高峰时段发布",
			"提升文案情感表达",
			"结合热门地点标记",
		},
		Metrics:   map[string]float64{"visibilityScore": score},
		MLInsight: "可见度评分由互动加权与地理亲和度拟合得出",
	}
}

func staticRecommendations() []model.RecommendationPayload {
	return []model.RecommendationPayload{
		{
			Type:        "content",
			Priority:    consts.PriorityHigh,
			Title:       "执行数据驱动的内容策略",
			Description: "按表现数据平衡内容类型与发布频率",
			ActionItems: []string{
				"保持教育/娱乐/推广内容约 4:3:3 的配比",
				"制作系列化内容维持稳定互动",
				"对内容类型做对照实验",
			},
		},
		{
			Type:        "timing",
			Priority:    consts.PriorityMedium,
			Title:       "优化发布时间",
			Description: "根据受众活跃时段安排发布计划",
			ActionItems: []string{
				"在识别出的高峰时段发布",
				"保持稳定的发布频率",
				"结合受众时区分布调整",
			},
		},
		{
			Type:        "hashtags",
			Priority:    consts.PriorityHigh,
			Title:       "优化标签策略",
			Description: "用数据驱动的标签组合提升内容被发现的概率",
			ActionItems: []string{
				"混用热门、垂类与小众标签",
				"跟踪标签表现并定期轮换",
				"建立品牌专属标签",
			},
		},
		{
			Type:        "monetization",
			Priority:    consts.PriorityMedium,
			Title:       "优化变现策略",
			Description: "围绕账号影响力布局变现渠道",
			ActionItems: []string{
				"制作商务合作资料包",
				"建立联盟合作关系",
				"探索平台内购物能力",
			},
		},
	}
}

// prioritize 按 优先级权重×类型权重 降序稳定排序
func prioritize(payloads []model.RecommendationPayload) {
	sort.SliceStable(payloads, func(i, j int) bool {
		iWeight := typeWeight[payloads[i].Type]
		if iWeight == 0 {
			iWeight = 1
		}
		jWeight := typeWeight[payloads[j].Type]
		if jWeight == 0 {
			jWeight = 1
		}
		return priorityWeight[payloads[i].Priority]*iWeight > priorityWeight[payloads[j].Priority]*jWeight
	})
}
