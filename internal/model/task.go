package model

import (
	"time"

	"Care_Community/internal/pkg"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

const DefaultPriority = 1

type Task struct {
	ID               uint64     `gorm:"primaryKey" json:"id"`
	Title            string     `gorm:"size:128;index" json:"title"`
	Description      string     `gorm:"type:text" json:"description"`
	Status           TaskStatus `gorm:"size:16;not null;default:pending" json:"status"`
	PriorityScore    int        `gorm:"not null;default:1" json:"priority_score"`
	CommunityID      uint64     `gorm:"not null;index" json:"community_id"`
	RoomID           *uint64    `gorm:"index" json:"room_id"`
	AlexaDeviceID    *uint64    `gorm:"index" json:"alexa_device_id"`
	CreatedByID      *uint64    `json:"created_by_id"`
	AssignedUsers    []User     `gorm:"many2many:task_assignments" json:"assigned_users,omitempty"`
	ResponseDateTime *time.Time `json:"response_date_time"`
	ResponseTime     *float64   `json:"response_time"`
	CompletedByID    *uint64    `json:"completed_by_id"`
	CompletionTime   *time.Time `json:"completion_time"`
	TaskTimeLength   *float64   `json:"task_time_length"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"index" json:"updated_at"`
}

// RecordResponse pending -> in_progress，response_time 从创建时间起算
func (t *Task) RecordResponse(at time.Time) error {
	if t.Status != TaskPending {
		return pkg.ErrInvalidTransition
	}
	rt := minutesBetween(t.CreatedAt, at)
	t.ResponseDateTime = &at
	t.ResponseTime = &rt
	t.Status = TaskInProgress
	return nil
}

// Complete in_progress -> completed，完成后不再重算 task_time_length
func (t *Task) Complete(by uint64, at time.Time) error {
	if t.Status == TaskCompleted {
		return pkg.ErrInvalidTransition
	}
	if t.ResponseDateTime == nil {
		return pkg.ErrResponseNotRecorded
	}
	if t.Status != TaskInProgress {
		return pkg.ErrInvalidTransition
	}
	length := minutesBetween(*t.ResponseDateTime, at)
	t.CompletionTime = &at
	t.TaskTimeLength = &length
	t.CompletedByID = &by
	t.Status = TaskCompleted
	return nil
}

func minutesBetween(from, to time.Time) float64 {
	m := to.Sub(from).Minutes()
	if m < 0 {
		return 0
	}
	return m
}
