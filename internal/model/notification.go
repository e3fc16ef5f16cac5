package model

import "time"

type Notification struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	CommunityID uint64    `gorm:"not null;index" json:"community_id"`
	TaskID      *uint64   `gorm:"index" json:"task_id"`
	Message     string    `gorm:"type:text" json:"message"`
	Recipients  []User    `gorm:"many2many:notification_recipients" json:"recipients,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
