package repository

import (
	"context"
	"lumina/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostSampleRepo interface {
	UpsertSamples(ctx context.Context, samples []*model.PostSample) error
	GetRecentByAccount(ctx context.Context, accountID uint64, limit int) ([]*model.PostSample, error)
	GetByExternalIDs(ctx context.Context, accountID uint64, externalIDs []string) ([]*model.PostSample, error)
	GetByAccountBetween(ctx context.Context, accountID uint64, from, to time.Time) ([]*model.PostSample, error)
	CountByAccount(ctx context.Context, accountID uint64) (int64, error)
}

type postSampleRepoImpl struct {
	db *gorm.DB
}

func NewPostSampleRepository(db *gorm.DB) PostSampleRepo {
	return &postSampleRepoImpl{db: db}
}

// UpsertSamples 按 (account_id, external_id) 冲突时覆盖最新指标
func (s *postSampleRepoImpl) UpsertSamples(ctx context.Context, samples []*model.PostSample) error {
	if len(samples) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"caption", "media_type", "media_url", "thumbnail_url",
			"likes", "comments", "shares", "saves", "reach",
			"engagement_rate", "reach_rate", "location_name", "latitude", "longitude",
			"hashtag_count", "emoji_count", "mention_count",
			"caption_length", "sentiment_label", "has_call_to_action",
			"updated_at",
		}),
	}).Create(samples).Error
}

func (s *postSampleRepoImpl) GetRecentByAccount(ctx context.Context, accountID uint64, limit int) ([]*model.PostSample, error) {
	samples := make([]*model.PostSample, 0)
	result := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("posted_at DESC").
		Limit(limit).
		Find(&samples)
	if result.Error != nil {
		return nil, result.Error
	}
	return samples, nil
}

func (s *postSampleRepoImpl) GetByExternalIDs(ctx context.Context, accountID uint64, externalIDs []string) ([]*model.PostSample, error) {
	samples := make([]*model.PostSample, 0)
	if len(externalIDs) == 0 {
		return samples, nil
	}
	result := s.db.WithContext(ctx).
		Where("account_id = ? AND external_id IN ?", accountID, externalIDs).
		Find(&samples)
	if result.Error != nil {
		return nil, result.Error
	}
	return samples, nil
}

func (s *postSampleRepoImpl) GetByAccountBetween(ctx context.Context, accountID uint64, from, to time.Time) ([]*model.PostSample, error) {
	samples := make([]*model.PostSample, 0)
	result := s.db.WithContext(ctx).
		Where("account_id = ? AND posted_at BETWEEN ? AND ?", accountID, from, to).
		Order("posted_at ASC").
		Find(&samples)
	if result.Error != nil {
		return nil, result.Error
	}
	return samples, nil
}

func (s *postSampleRepoImpl) CountByAccount(ctx context.Context, accountID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.PostSample{}).
		Where("account_id = ?", accountID).
		Count(&count).Error
	return count, err
}
