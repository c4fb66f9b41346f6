package kafka

import (
	"context"
	"errors"
	log "log/slog"
	"lumina/internal/service"

	"github.com/IBM/sarama"
)

type SyncRequestHandler struct {
	syncSvc service.SyncService
}

func NewSyncRequestHandler(syncSvc service.SyncService) *SyncRequestHandler {
	return &SyncRequestHandler{syncSvc: syncSvc}
}

func (s *SyncRequestHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("sync request consumer setup")
	return nil
}

func (s *SyncRequestHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("sync request consumer cleanup")
	return nil
}

func (s *SyncRequestHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-sync-request consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-sync-request process batch error", "err", err)
		return err
	}
	return nil
}

func (s *SyncRequestHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	request, err := ToSyncRequest(msg)
	if err != nil {
		// 格式非法的消息直接丢弃，避免无限重试
		return nil
	}

	// immediate 请求同步执行，否则只入队等定时任务消费
	if request.Immediate {
		err = s.syncSvc.SyncAccount(ctx, request.AccountID)
		if errors.Is(err, service.ErrSyncInProgress) || errors.Is(err, service.ErrAccountNotFound) {
			log.WarnContext(ctx, "skip sync request", "accountId", request.AccountID, "reason", err)
			return nil
		}
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "account synced from kafka request", "accountId", request.AccountID, "source", request.Source)
		return nil
	}

	return s.syncSvc.EnqueueSync(ctx, request.AccountID)
}
