package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 字段级变更类型
const (
	ChangeTypeCreate = "create"
	ChangeTypeUpdate = "update"
	ChangeTypeDelete = "delete"
)

// FieldChange 单个实体的字段级变更
type FieldChange struct {
	EntityType string         `bson:"entity_type" json:"entityType"` // post / follower_sample / account
	EntityID   string         `bson:"entity_id" json:"entityId"`     // 实体外部ID
	ChangeType string         `bson:"change_type" json:"changeType"` // create / update / delete
	Fields     []string       `bson:"fields,omitempty" json:"fields,omitempty"`
	Before     map[string]any `bson:"before,omitempty" json:"before,omitempty"`
	After      map[string]any `bson:"after,omitempty" json:"after,omitempty"`
}

// SyncMetadata 单次同步的执行元信息
type SyncMetadata struct {
	DurationMs   int64             `bson:"duration_ms" json:"durationMs"`
	EntityCounts map[string]int    `bson:"entity_counts" json:"entityCounts"` // 键形如 post_update
	Errors       map[string]string `bson:"errors,omitempty" json:"errors,omitempty"`
}

// ChangeRecordModel 同步变更审计记录，按账号维度版本号递增
type ChangeRecordModel struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AccountID uint64             `bson:"account_id" json:"accountId"` // 账号ID
	Version   int64              `bson:"version" json:"version"`      // 账号内严格递增的版本号
	Source    string             `bson:"source" json:"source"`        // 触发来源: cron / kafka / api
	Changes   []FieldChange      `bson:"changes" json:"changes"`      // 字段级变更列表
	Metadata  SyncMetadata       `bson:"sync_metadata" json:"syncMetadata"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"` // 记录时间
}
