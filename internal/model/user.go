package model

import "time"

type User struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:64;index" json:"name"`
	Email       string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Role        Role      `gorm:"size:32;not null;default:resident" json:"role"`
	StaffID     string    `gorm:"size:64;index" json:"staff_id,omitempty"`
	Password    string    `gorm:"size:255;not null" json:"-"`
	CommunityID *uint64   `gorm:"index" json:"community_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InCommunity 无 community_id 时恒为 false
func (u *User) InCommunity(communityID uint64) bool {
	return u.CommunityID != nil && *u.CommunityID == communityID
}

// UserPatch 只更新非 nil 字段
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string // 已哈希
	StaffID  *string
}

func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.StaffID != nil {
		u.StaffID = *p.StaffID
	}
}

// PromoteToFounder 绑定社区并提升为经理；管理员保留原角色
func (u *User) PromoteToFounder(communityID uint64) {
	u.CommunityID = &communityID
	if u.Role != RoleAdministrator {
		u.Role = RoleManager
	}
}
