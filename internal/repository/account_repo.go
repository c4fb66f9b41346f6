package repository

import (
	"context"
	"errors"
	"lumina/internal/model"
	"time"

	"gorm.io/gorm"
)

type AccountRepo interface {
	GetAccountByID(ctx context.Context, id uint64) (*model.Account, error)
	GetAccountByHandle(ctx context.Context, handle string) (*model.Account, error)
	CreateAccount(ctx context.Context, account *model.Account) error
	UpdateAccount(ctx context.Context, account *model.Account) error
	MarkSynced(ctx context.Context, id uint64, syncedAt time.Time) error
	ListAccountIDs(ctx context.Context) ([]uint64, error)
	ListAccounts(ctx context.Context) ([]*model.Account, error)
}

type accountRepoImpl struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepo {
	return &accountRepoImpl{db: db}
}

func (s *accountRepoImpl) GetAccountByID(ctx context.Context, id uint64) (*model.Account, error) {
	var account model.Account
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (s *accountRepoImpl) GetAccountByHandle(ctx context.Context, handle string) (*model.Account, error) {
	var account model.Account
	err := s.db.WithContext(ctx).Where("handle = ?", handle).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (s *accountRepoImpl) CreateAccount(ctx context.Context, account *model.Account) error {
	return s.db.WithContext(ctx).Create(account).Error
}

func (s *accountRepoImpl) UpdateAccount(ctx context.Context, account *model.Account) error {
	return s.db.WithContext(ctx).Save(account).Error
}

func (s *accountRepoImpl) MarkSynced(ctx context.Context, id uint64, syncedAt time.Time) error {
	return s.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ?", id).
		Update("last_synced_at", syncedAt).Error
}

func (s *accountRepoImpl) ListAccountIDs(ctx context.Context) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := s.db.WithContext(ctx).Model(&model.Account{}).Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *accountRepoImpl) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	accounts := make([]*model.Account, 0)
	result := s.db.WithContext(ctx).Find(&accounts)
	if result.Error != nil {
		return nil, result.Error
	}
	return accounts, nil
}
