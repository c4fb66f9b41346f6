package repository

import (
	"context"
	"errors"
	"lumina/internal/model"
	"time"

	"gorm.io/gorm"
)

type AudienceQualityRepo interface {
	CreateAnalysis(ctx context.Context, analysis *model.AudienceQuality) error
	GetLatestAnalysis(ctx context.Context, accountID uint64) (*model.AudienceQuality, error)
	GetRecentAnalyses(ctx context.Context, accountID uint64, limit int) ([]*model.AudienceQuality, error)
	GetAnalysesBetween(ctx context.Context, accountID uint64, from, to time.Time) ([]*model.AudienceQuality, error)
}

type audienceQualityRepoImpl struct {
	db *gorm.DB
}

func NewAudienceQualityRepository(db *gorm.DB) AudienceQualityRepo {
	return &audienceQualityRepoImpl{db: db}
}

func (s *audienceQualityRepoImpl) CreateAnalysis(ctx context.Context, analysis *model.AudienceQuality) error {
	return s.db.WithContext(ctx).Create(analysis).Error
}

func (s *audienceQualityRepoImpl) GetLatestAnalysis(ctx context.Context, accountID uint64) (*model.AudienceQuality, error) {
	var analysis model.AudienceQuality
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("analyzed_at DESC").
		First(&analysis).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &analysis, nil
}

// GetRecentAnalyses 返回按分析时间倒序的最近快照
func (s *audienceQualityRepoImpl) GetRecentAnalyses(ctx context.Context, accountID uint64, limit int) ([]*model.AudienceQuality, error) {
	analyses := make([]*model.AudienceQuality, 0)
	result := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("analyzed_at DESC").
		Limit(limit).
		Find(&analyses)
	if result.Error != nil {
		return nil, result.Error
	}
	return analyses, nil
}

func (s *audienceQualityRepoImpl) GetAnalysesBetween(ctx context.Context, accountID uint64, from, to time.Time) ([]*model.AudienceQuality, error) {
	analyses := make([]*model.AudienceQuality, 0)
	result := s.db.WithContext(ctx).
		Where("account_id = ? AND analyzed_at BETWEEN ? AND ?", accountID, from, to).
		Order("analyzed_at ASC").
		Find(&analyses)
	if result.Error != nil {
		return nil, result.Error
	}
	return analyses, nil
}
