package service

import (
	"context"
	"time"

	"Care_Community/internal/pkg"
	"Care_Community/internal/repository"

	"go.uber.org/zap"
)

const (
	DefaultRelayInterval = 10 * time.Second
	DefaultRelayBatch    = 100
	MaxRelayRetry        = 10
)

// OutboxRelayer 定时把 task_outbox 中未送达的事件重投到 kafka
type OutboxRelayer struct {
	repo      repository.OutboxRepository
	events    EventPublisher
	interval  time.Duration
	batchSize int
	maxRetry  int
	log       *zap.Logger
}

func NewOutboxRelayer(repo repository.OutboxRepository, events EventPublisher, log *zap.Logger) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      repo,
		events:    events,
		interval:  DefaultRelayInterval,
		batchSize: DefaultRelayBatch,
		maxRetry:  MaxRelayRetry,
		log:       log,
	}
}

// Run 阻塞直到 ctx 取消
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

// DrainOnce 返回本轮成功投递的条数
func (r *OutboxRelayer) DrainOnce(ctx context.Context) int {
	rows, err := r.repo.ListDue(ctx, r.batchSize, r.maxRetry)
	if err != nil {
		r.log.Warn("outbox query failed", zap.Error(err))
		return 0
	}
	sent := 0
	for i := range rows {
		ob := rows[i]
		if err := r.events.Publish(ctx, pkg.Event{Key: ob.Key, Type: ob.EventType, Payload: []byte(ob.Payload)}); err != nil {
			if err := r.repo.MarkRetry(ctx, ob.ID); err != nil {
				r.log.Warn("outbox mark retry failed", zap.Uint64("id", ob.ID), zap.Error(err))
			}
			if ob.Retry+1 >= r.maxRetry {
				r.log.Error("outbox event dropped after retries",
					zap.Uint64("id", ob.ID), zap.String("type", ob.EventType), zap.Uint64("task_id", ob.TaskID))
			}
			continue
		}
		if err := r.repo.MarkSent(ctx, ob.ID); err != nil {
			r.log.Warn("outbox mark sent failed", zap.Uint64("id", ob.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}
