package model

import "time"

// Room room_number 全局唯一（不是按社区唯一）
type Room struct {
	ID           uint64        `gorm:"primaryKey" json:"id"`
	RoomNumber   string        `gorm:"uniqueIndex;size:32;not null" json:"room_number"`
	CommunityID  uint64        `gorm:"not null;index" json:"community_id"`
	ResidentID   *uint64       `gorm:"uniqueIndex" json:"resident_id"`
	FloorNumber  *int          `json:"floor_number"`
	RoomType     string        `gorm:"size:32" json:"room_type,omitempty"`
	AlexaDevices []AlexaDevice `gorm:"foreignKey:RoomID" json:"alexa_devices,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type RoomPatch struct {
	RoomNumber  *string
	ResidentID  *uint64
	FloorNumber *int
	RoomType    *string
}

func (p RoomPatch) Apply(r *Room) {
	if p.RoomNumber != nil {
		r.RoomNumber = *p.RoomNumber
	}
	if p.ResidentID != nil {
		r.ResidentID = p.ResidentID
	}
	if p.FloorNumber != nil {
		r.FloorNumber = p.FloorNumber
	}
	if p.RoomType != nil {
		r.RoomType = *p.RoomType
	}
}
