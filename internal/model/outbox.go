package model

import "time"

type OutboxStatus int8

const (
	OutboxPending OutboxStatus = 0
	OutboxSent    OutboxStatus = 1
	OutboxFailed  OutboxStatus = 2
)

// TaskOutbox 发送失败的任务事件，由 relayer 重投
type TaskOutbox struct {
	ID        uint64       `gorm:"primaryKey"`
	EventType string       `gorm:"size:32;not null"`
	TaskID    uint64       `gorm:"not null;index"`
	Key       string       `gorm:"size:64;not null"`
	Payload   string       `gorm:"type:json;not null"`
	Status    OutboxStatus `gorm:"not null;default:0;index;comment:'0=pending,1=sent,2=failed'"`
	Retry     int          `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TaskOutbox) TableName() string { return "task_outbox" }
