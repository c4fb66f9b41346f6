package repository

import (
	"context"
	"errors"
	"lumina/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AudienceInsightRepo 聚合受众画像相关的落库操作
type AudienceInsightRepo interface {
	CreateActivityHours(ctx context.Context, hours *model.ActivityHours) error
	GetLatestActivityHours(ctx context.Context, accountID uint64) (*model.ActivityHours, error)
	UpsertHashtags(ctx context.Context, tags []*model.Hashtag) error
	GetTopHashtags(ctx context.Context, accountID uint64, limit int) ([]*model.Hashtag, error)
	CreateDemographic(ctx context.Context, demographic *model.Demographic) error
	GetLatestDemographic(ctx context.Context, accountID uint64) (*model.Demographic, error)
}

type audienceInsightRepoImpl struct {
	db *gorm.DB
}

func NewAudienceInsightRepository(db *gorm.DB) AudienceInsightRepo {
	return &audienceInsightRepoImpl{db: db}
}

func (s *audienceInsightRepoImpl) CreateActivityHours(ctx context.Context, hours *model.ActivityHours) error {
	return s.db.WithContext(ctx).Create(hours).Error
}

func (s *audienceInsightRepoImpl) GetLatestActivityHours(ctx context.Context, accountID uint64) (*model.ActivityHours, error) {
	var hours model.ActivityHours
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		First(&hours).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &hours, nil
}

// UpsertHashtags 同账号同标签累计更新
func (s *audienceInsightRepoImpl) UpsertHashtags(ctx context.Context, tags []*model.Hashtag) error {
	if len(tags) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}, {Name: "tag"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"frequency", "engagement_average", "performance_score", "post_count", "updated_at",
		}),
	}).Create(tags).Error
}

func (s *audienceInsightRepoImpl) GetTopHashtags(ctx context.Context, accountID uint64, limit int) ([]*model.Hashtag, error) {
	tags := make([]*model.Hashtag, 0)
	result := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("performance_score DESC").
		Limit(limit).
		Find(&tags)
	if result.Error != nil {
		return nil, result.Error
	}
	return tags, nil
}

func (s *audienceInsightRepoImpl) CreateDemographic(ctx context.Context, demographic *model.Demographic) error {
	return s.db.WithContext(ctx).Create(demographic).Error
}

func (s *audienceInsightRepoImpl) GetLatestDemographic(ctx context.Context, accountID uint64) (*model.Demographic, error) {
	var demographic model.Demographic
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("recorded_at DESC").
		First(&demographic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &demographic, nil
}
