package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ChangeRecordRepo interface {
	AppendRecord(ctx context.Context, record *ChangeRecordModel) error
	GetRecordList(ctx context.Context, accountID uint64, limit, offset int64) ([]*ChangeRecordModel, error)
	GetLatestVersion(ctx context.Context, accountID uint64) (int64, error)
}

type changeRecordRepoImpl struct {
	col *mongo.Collection
}

func NewChangeRecordRepo(db *mongo.Database) ChangeRecordRepo {
	return &changeRecordRepoImpl{
		col: db.Collection("change_records"),
	}
}

// AppendRecord 追加一条审计记录，版本号取当前最大值+1
func (s *changeRecordRepoImpl) AppendRecord(ctx context.Context, record *ChangeRecordModel) error {
	version, err := s.GetLatestVersion(ctx, record.AccountID)
	if err != nil {
		return err
	}
	record.Version = version + 1
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	_, err = s.col.InsertOne(ctx, record)
	return err
}

// GetRecordList 分页获取账号的审计记录 (按版本倒序)
func (s *changeRecordRepoImpl) GetRecordList(ctx context.Context, accountID uint64, limit, offset int64) ([]*ChangeRecordModel, error) {
	filter := bson.M{"account_id": accountID}
	opts := options.Find().
		SetSort(bson.D{{Key: "version", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var list []*ChangeRecordModel
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetLatestVersion 获取账号当前最大版本号，无记录时返回 0
func (s *changeRecordRepoImpl) GetLatestVersion(ctx context.Context, accountID uint64) (int64, error) {
	filter := bson.M{"account_id": accountID}
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})

	var latest ChangeRecordModel
	err := s.col.FindOne(ctx, filter, opts).Decode(&latest)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, err
	}
	return latest.Version, nil
}
