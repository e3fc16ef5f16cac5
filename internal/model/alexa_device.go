package model

import "time"

type DeviceStatus string

const (
	DeviceStatusActive   DeviceStatus = "active"
	DeviceStatusInactive DeviceStatus = "inactive"
	DeviceStatusOffline  DeviceStatus = "offline"
)

func (s DeviceStatus) Valid() bool {
	switch s {
	case DeviceStatusActive, DeviceStatusInactive, DeviceStatusOffline:
		return true
	}
	return false
}

// AlexaDevice device_id 由硬件厂商分配，只能注册一次
type AlexaDevice struct {
	ID                   uint64       `gorm:"primaryKey" json:"id"`
	DeviceID             string       `gorm:"uniqueIndex;size:255;not null" json:"device_id"`
	RoomID               uint64       `gorm:"not null;index" json:"room_id"`
	CommunityID          uint64       `gorm:"not null;index" json:"community_id"`
	Status               DeviceStatus `gorm:"size:16;not null;default:active" json:"status"`
	LastSynced           *time.Time   `json:"last_synced"`
	LastRequest          *time.Time   `json:"last_request"`
	TotalNumberRequested int64        `gorm:"not null;default:0" json:"total_number_requested"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

// DeviceContext 设备解析出的租户上下文
type DeviceContext struct {
	AlexaDeviceID uint64 `json:"alexa_device_id"`
	RoomID        uint64 `json:"room_id"`
	RoomNumber    string `json:"room_number"`
	CommunityID   uint64 `json:"community_id"`
	CommunityName string `json:"community_name"`
}
