package job

import (
	"context"
	log "log/slog"
	"lumina/internal/pkg/consts"
	"lumina/internal/pkg/logger"
	"lumina/internal/pkg/redis"
	"lumina/internal/pkg/util"
	"lumina/internal/service"

	"github.com/google/uuid"
)

type AccountSyncJob struct {
	syncSvc service.SyncService
}

func NewAccountSyncJob(syncSvc service.SyncService) *AccountSyncJob {
	return &AccountSyncJob{
		syncSvc: syncSvc,
	}
}

// Run 消费待同步脏集合，先改名再处理，避免与新入队的账号互相干扰
func (s *AccountSyncJob) Run() {
	traceID := "job-sync-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	processingKey := consts.AccountSyncDirtyKey + ":processing"
	err := redis.Rename(ctx, consts.AccountSyncDirtyKey, processingKey)
	if err != nil {
		return
	}

	tempSet, err := redis.GetSet(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "get sync dirty set error", "err", err)
		return
	}

	accountIDs := util.StrSliceToUInt64Slice(tempSet)

	log.InfoContext(ctx, "start syncing dirty accounts", "count", len(accountIDs))

	successCount := 0
	for _, accountID := range accountIDs {
		if err = s.syncSvc.SyncAccount(ctx, accountID); err != nil {
			log.ErrorContext(ctx, "sync account error", "accountId", accountID, "err", err)
			// 同步失败放回脏集合等待下一轮
			if requeueErr := s.syncSvc.EnqueueSync(ctx, accountID); requeueErr != nil {
				log.ErrorContext(ctx, "requeue account error", "accountId", accountID, "err", requeueErr)
			}
			continue
		}
		successCount++
	}

	if err = redis.DeleteKey(ctx, processingKey); err != nil {
		log.ErrorContext(ctx, "delete processing set error", "err", err)
	}
	log.InfoContext(ctx, "account sync job finished", "success", successCount, "total", len(accountIDs))
}
