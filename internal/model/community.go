package model

import "time"

type Community struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Address     string    `gorm:"size:255;not null" json:"address"`
	Email       string    `gorm:"size:128" json:"email,omitempty"`
	PhoneNumber string    `gorm:"size:16" json:"phone_number,omitempty"`
	PinCode     string    `gorm:"uniqueIndex;size:5;not null" json:"pin_code"`
	CreatedByID uint64    `gorm:"not null;index" json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CommunityPatch pin_code 与创建者不可修改
type CommunityPatch struct {
	Name        *string
	Address     *string
	Email       *string
	PhoneNumber *string
}

func (p CommunityPatch) Apply(c *Community) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.PhoneNumber != nil {
		c.PhoneNumber = *p.PhoneNumber
	}
}
