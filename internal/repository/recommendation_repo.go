package repository

import (
	"context"
	"lumina/internal/model"

	"gorm.io/gorm"
)

type RecommendationRepo interface {
	ReplaceRecommendations(ctx context.Context, accountID uint64, recommendations []*model.Recommendation) error
	ListRecommendations(ctx context.Context, accountID uint64, priority string) ([]*model.Recommendation, error)
}

type recommendationRepoImpl struct {
	db *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) RecommendationRepo {
	return &recommendationRepoImpl{db: db}
}

// ReplaceRecommendations 整批替换，保持账号下的建议始终是最新一轮生成结果
func (s *recommendationRepoImpl) ReplaceRecommendations(ctx context.Context, accountID uint64, recommendations []*model.Recommendation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", accountID).Delete(&model.Recommendation{}).Error; err != nil {
			return err
		}
		if len(recommendations) == 0 {
			return nil
		}
		return tx.Create(recommendations).Error
	})
}

// ListRecommendations priority 为空时返回全部，优先级存在 payload 里用 JSON_EXTRACT 过滤
func (s *recommendationRepoImpl) ListRecommendations(ctx context.Context, accountID uint64, priority string) ([]*model.Recommendation, error) {
	recommendations := make([]*model.Recommendation, 0)
	query := s.db.WithContext(ctx).Where("account_id = ?", accountID)
	if priority != "" {
		query = query.Where("JSON_EXTRACT(payload, '$.priority') = ?", priority)
	}
	result := query.Order("id ASC").Find(&recommendations)
	if result.Error != nil {
		return nil, result.Error
	}
	return recommendations, nil
}
