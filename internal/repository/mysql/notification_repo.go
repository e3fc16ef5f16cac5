package mysql

import (
	"context"

	"Care_Community/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

// Create 通知与收件人关联在同一事务写入
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification, recipientIDs []uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Recipients").Create(n).Error; err != nil {
			return err
		}
		if len(recipientIDs) == 0 {
			return nil
		}
		rows := make([]map[string]any, 0, len(recipientIDs))
		for _, id := range recipientIDs {
			rows = append(rows, map[string]any{"notification_id": n.ID, "user_id": id})
		}
		return tx.Table("notification_recipients").
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(rows).Error
	})
}
