package mysql

import (
	"context"
	"errors"

	"Care_Community/internal/model"
	"Care_Community/internal/pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository struct {
	DB *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *model.Task) error {
	return r.DB.WithContext(ctx).Omit("AssignedUsers").Create(t).Error
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint64) (*model.Task, error) {
	var t model.Task
	err := r.DB.WithContext(ctx).Preload("AssignedUsers").First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrTaskNotFound
	}
	return &t, err
}

// ListByCommunity 按创建时间倒序分页
func (r *TaskRepository) ListByCommunity(ctx context.Context, communityID uint64, offset, limit int) ([]model.Task, error) {
	var list []model.Task
	err := r.DB.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

// Update 只写状态与计时字段
func (r *TaskRepository) Update(ctx context.Context, t *model.Task) error {
	return r.DB.WithContext(ctx).Model(t).Updates(map[string]any{
		"status":             t.Status,
		"priority_score":     t.PriorityScore,
		"response_date_time": t.ResponseDateTime,
		"response_time":      t.ResponseTime,
		"completed_by_id":    t.CompletedByID,
		"completion_time":    t.CompletionTime,
		"task_time_length":   t.TaskTimeLength,
	}).Error
}

// Assign 幂等：重复指派不报错
func (r *TaskRepository) Assign(ctx context.Context, taskID, userID uint64) error {
	return r.DB.WithContext(ctx).Table("task_assignments").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]any{"task_id": taskID, "user_id": userID}).Error
}
