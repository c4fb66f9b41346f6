package service

import (
	"context"

	"lumina/internal/model"
	"lumina/internal/repository"
)

const defaultHashtagLimit = 20

// InsightService 受众洞察快照的读侧入口
type InsightService interface {
	GetTopHashtags(ctx context.Context, accountID uint64, limit int) ([]*model.Hashtag, error)
	GetActivityHours(ctx context.Context, accountID uint64) (*model.ActivityHours, error)
	GetDemographics(ctx context.Context, accountID uint64) (*model.Demographic, error)
}

type insightServiceImpl struct {
	audienceInsightRepo repository.AudienceInsightRepo
}

func NewInsightService(audienceInsightRepo repository.AudienceInsightRepo) InsightService {
	return &insightServiceImpl{audienceInsightRepo: audienceInsightRepo}
}

func (s *insightServiceImpl) GetTopHashtags(ctx context.Context, accountID uint64, limit int) ([]*model.Hashtag, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultHashtagLimit
	}
	return s.audienceInsightRepo.GetTopHashtags(ctx, accountID, limit)
}

func (s *insightServiceImpl) GetActivityHours(ctx context.Context, accountID uint64) (*model.ActivityHours, error) {
	hours, err := s.audienceInsightRepo.GetLatestActivityHours(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if hours == nil {
		return nil, ErrInsufficientData
	}
	return hours, nil
}

func (s *insightServiceImpl) GetDemographics(ctx context.Context, accountID uint64) (*model.Demographic, error) {
	demographic, err := s.audienceInsightRepo.GetLatestDemographic(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if demographic == nil {
		return nil, ErrInsufficientData
	}
	return demographic, nil
}
