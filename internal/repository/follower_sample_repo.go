package repository

import (
	"context"
	"errors"
	"lumina/internal/model"
	"time"

	"gorm.io/gorm"
)

type FollowerSampleRepo interface {
	CreateSample(ctx context.Context, sample *model.FollowerSample) error
	GetLatestSample(ctx context.Context, accountID uint64) (*model.FollowerSample, error)
	GetRecentSamples(ctx context.Context, accountID uint64, limit int) ([]*model.FollowerSample, error)
	GetSamplesSince(ctx context.Context, accountID uint64, since time.Time) ([]*model.FollowerSample, error)
	ExistsInWindow(ctx context.Context, accountID uint64, from, to time.Time) (bool, error)
	CountSamples(ctx context.Context, accountID uint64) (int64, error)
}

type followerSampleRepoImpl struct {
	db *gorm.DB
}

func NewFollowerSampleRepository(db *gorm.DB) FollowerSampleRepo {
	return &followerSampleRepoImpl{db: db}
}

func (s *followerSampleRepoImpl) CreateSample(ctx context.Context, sample *model.FollowerSample) error {
	return s.db.WithContext(ctx).Create(sample).Error
}

func (s *followerSampleRepoImpl) GetLatestSample(ctx context.Context, accountID uint64) (*model.FollowerSample, error) {
	var sample model.FollowerSample
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("recorded_at DESC").
		First(&sample).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sample, nil
}

// GetRecentSamples 按采样时间倒序取最近 limit 条，再反转回时间正序
func (s *followerSampleRepoImpl) GetRecentSamples(ctx context.Context, accountID uint64, limit int) ([]*model.FollowerSample, error) {
	samples := make([]*model.FollowerSample, 0)
	result := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&samples)
	if result.Error != nil {
		return nil, result.Error
	}
	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}
	return samples, nil
}

func (s *followerSampleRepoImpl) GetSamplesSince(ctx context.Context, accountID uint64, since time.Time) ([]*model.FollowerSample, error) {
	samples := make([]*model.FollowerSample, 0)
	result := s.db.WithContext(ctx).
		Where("account_id = ? AND recorded_at >= ?", accountID, since).
		Order("recorded_at ASC").
		Find(&samples)
	if result.Error != nil {
		return nil, result.Error
	}
	return samples, nil
}

func (s *followerSampleRepoImpl) CountSamples(ctx context.Context, accountID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.FollowerSample{}).
		Where("account_id = ?", accountID).
		Count(&count).Error
	return count, err
}

// ExistsInWindow 用于按小时去重
func (s *followerSampleRepoImpl) ExistsInWindow(ctx context.Context, accountID uint64, from, to time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.FollowerSample{}).
		Where("account_id = ? AND recorded_at >= ? AND recorded_at < ?", accountID, from, to).
		Count(&count).Error
	return count > 0, err
}
