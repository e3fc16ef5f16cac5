package mysql

import (
	"context"

	"Care_Community/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	DB *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{DB: db}
}

func (r *OutboxRepository) Enqueue(ctx context.Context, ob *model.TaskOutbox) error {
	ob.Status = model.OutboxPending
	return r.DB.WithContext(ctx).Create(ob).Error
}

// ListDue outbox查询，失败记录在重试上限内继续投递
func (r *OutboxRepository) ListDue(ctx context.Context, batchSize, maxRetry int) ([]model.TaskOutbox, error) {
	var list []model.TaskOutbox
	if err := r.DB.WithContext(ctx).
		Where("status IN ? AND retry < ?", []model.OutboxStatus{model.OutboxPending, model.OutboxFailed}, maxRetry).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// MarkRetry outbox记录消息失败重试
func (r *OutboxRepository) MarkRetry(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.TaskOutbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
}

// MarkSent outbox成功记录消息更新
func (r *OutboxRepository) MarkSent(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.TaskOutbox{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}
