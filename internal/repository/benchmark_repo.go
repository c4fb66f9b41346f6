package repository

import (
	"context"
	"errors"
	"lumina/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BenchmarkRepo interface {
	SaveOrUpdateBenchmark(ctx context.Context, benchmark *model.Benchmark) error
	GetBenchmarkByDate(ctx context.Context, accountID uint64, category string, date time.Time) (*model.Benchmark, error)
	GetLatestBefore(ctx context.Context, accountID uint64, category string, date time.Time) (*model.Benchmark, error)
	GetLatestBenchmark(ctx context.Context, accountID uint64, category string) (*model.Benchmark, error)
	GetByAccountBetween(ctx context.Context, accountID uint64, category string, from, to time.Time) ([]*model.Benchmark, error)
	CountBenchmarks(ctx context.Context, accountID uint64) (int64, error)
}

type benchmarkRepoImpl struct {
	db *gorm.DB
}

func NewBenchmarkRepository(db *gorm.DB) BenchmarkRepo {
	return &benchmarkRepoImpl{db: db}
}

// SaveOrUpdateBenchmark 同账号同类别同一天只保留一条
func (s *benchmarkRepoImpl) SaveOrUpdateBenchmark(ctx context.Context, benchmark *model.Benchmark) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}, {Name: "category"}, {Name: "metric_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"influencer_tier", "niche", "average_value", "median_value", "top_performer_value",
			"sample_size", "performance_score", "industry_metrics", "competitor_metrics",
			"additional_metrics", "recommendations", "updated_at",
		}),
	}).Create(benchmark).Error
}

func (s *benchmarkRepoImpl) GetBenchmarkByDate(ctx context.Context, accountID uint64, category string, date time.Time) (*model.Benchmark, error) {
	var benchmark model.Benchmark
	err := s.db.WithContext(ctx).
		Where("account_id = ? AND category = ? AND metric_date = ?", accountID, category, date.Format("2006-01-02")).
		First(&benchmark).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &benchmark, nil
}

func (s *benchmarkRepoImpl) GetLatestBefore(ctx context.Context, accountID uint64, category string, date time.Time) (*model.Benchmark, error) {
	var benchmark model.Benchmark
	err := s.db.WithContext(ctx).
		Where("account_id = ? AND category = ? AND metric_date < ?", accountID, category, date.Format("2006-01-02")).
		Order("metric_date DESC").
		First(&benchmark).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &benchmark, nil
}

func (s *benchmarkRepoImpl) GetByAccountBetween(ctx context.Context, accountID uint64, category string, from, to time.Time) ([]*model.Benchmark, error) {
	benchmarks := make([]*model.Benchmark, 0)
	result := s.db.WithContext(ctx).
		Where("account_id = ? AND category = ? AND created_at BETWEEN ? AND ?", accountID, category, from, to).
		Order("created_at ASC").
		Find(&benchmarks)
	if result.Error != nil {
		return nil, result.Error
	}
	return benchmarks, nil
}

func (s *benchmarkRepoImpl) CountBenchmarks(ctx context.Context, accountID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Benchmark{}).
		Where("account_id = ?", accountID).
		Count(&count).Error
	return count, err
}

func (s *benchmarkRepoImpl) GetLatestBenchmark(ctx context.Context, accountID uint64, category string) (*model.Benchmark, error) {
	var benchmark model.Benchmark
	err := s.db.WithContext(ctx).
		Where("account_id = ? AND category = ?", accountID, category).
		Order("metric_date DESC").
		First(&benchmark).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &benchmark, nil
}
