package repository

import (
	"context"
	"errors"
	"lumina/internal/model"

	"gorm.io/gorm"
)

type GrowthPredictionRepo interface {
	CreatePrediction(ctx context.Context, prediction *model.GrowthPrediction) error
	GetLatestPrediction(ctx context.Context, accountID uint64) (*model.GrowthPrediction, error)
}

type growthPredictionRepoImpl struct {
	db *gorm.DB
}

func NewGrowthPredictionRepository(db *gorm.DB) GrowthPredictionRepo {
	return &growthPredictionRepoImpl{db: db}
}

func (s *growthPredictionRepoImpl) CreatePrediction(ctx context.Context, prediction *model.GrowthPrediction) error {
	return s.db.WithContext(ctx).Create(prediction).Error
}

func (s *growthPredictionRepoImpl) GetLatestPrediction(ctx context.Context, accountID uint64) (*model.GrowthPrediction, error) {
	var prediction model.GrowthPrediction
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		First(&prediction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prediction, nil
}
