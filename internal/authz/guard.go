// Package authz is the single decision point for "may this caller perform this
// action on a resource of this tenancy". Every service routes its role and
// community checks through Authorize.
package authz

import (
	"Care_Community/internal/model"
	"Care_Community/internal/pkg"
)

type Action int

const (
	ActionCreate Action = iota + 1
	ActionRead
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionRead:
		return "read"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

type Resource int

const (
	ResourceCommunity Resource = iota + 1
	ResourceRoom
	ResourceCareStaff
	ResourceDevice
	ResourceTask
	ResourceUser
)

// Caller 发起请求的用户
type Caller struct {
	UserID      uint64
	Role        model.Role
	CommunityID *uint64
}

func CallerOf(u *model.User) Caller {
	return Caller{UserID: u.ID, Role: u.Role, CommunityID: u.CommunityID}
}

// Target 目标资源及其所属社区；CommunityID 为 nil 表示跨租户资源（如全量列表）
type Target struct {
	Resource    Resource
	CommunityID *uint64
}

func In(resource Resource, communityID uint64) Target {
	return Target{Resource: resource, CommunityID: &communityID}
}

func Global(resource Resource) Target {
	return Target{Resource: resource}
}

type Decision struct {
	Allowed bool
	Reason  string
}

// Err 拒绝时返回 Forbidden 错误
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return pkg.Forbidden(d.Reason)
}

const (
	ReasonOtherCommunity = "not authorized for this community"
	ReasonNoTenancy      = "no community context"
	ReasonRole           = "role not permitted for this action"
)

type grants map[Resource][]Action

var crud = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

// managerGrants 经理在本社区内的权限
var managerGrants = grants{
	ResourceCommunity: {ActionRead, ActionUpdate},
	ResourceRoom:      crud,
	ResourceCareStaff: crud,
	ResourceDevice:    crud,
	ResourceTask:      crud,
	ResourceUser:      {ActionRead},
}

// selfService 非管理角色在本社区内的自助权限
var selfService = map[model.Role]grants{
	model.RoleResident: {
		ResourceTask:      {ActionCreate, ActionRead},
		ResourceRoom:      {ActionRead},
		ResourceCommunity: {ActionRead},
	},
	model.RoleStaff: {
		ResourceTask:      {ActionCreate, ActionRead, ActionUpdate},
		ResourceRoom:      {ActionRead},
		ResourceCommunity: {ActionRead},
	},
	model.RoleCareStaff: {
		ResourceTask:      {ActionCreate, ActionRead, ActionUpdate},
		ResourceRoom:      {ActionRead},
		ResourceCommunity: {ActionRead},
		ResourceCareStaff: {ActionRead},
	},
}

func (g grants) permits(r Resource, a Action) bool {
	for _, x := range g[r] {
		if x == a {
			return true
		}
	}
	return false
}

// Authorize 规则按顺序匹配，先命中者生效
func Authorize(caller Caller, action Action, target Target) Decision {
	if caller.Role == model.RoleAdministrator {
		return allow()
	}

	sameCommunity := caller.CommunityID != nil && target.CommunityID != nil &&
		*caller.CommunityID == *target.CommunityID

	if caller.Role == model.RoleManager {
		if caller.CommunityID == nil || target.CommunityID == nil {
			return deny(ReasonNoTenancy)
		}
		if !sameCommunity {
			return deny(ReasonOtherCommunity)
		}
		if managerGrants.permits(target.Resource, action) {
			return allow()
		}
		return deny(ReasonRole)
	}

	if g, ok := selfService[caller.Role]; ok {
		if caller.CommunityID == nil || target.CommunityID == nil {
			return deny(ReasonNoTenancy)
		}
		if !sameCommunity {
			return deny(ReasonOtherCommunity)
		}
		if g.permits(target.Resource, action) {
			return allow()
		}
	}

	return deny(ReasonRole)
}

// Check Authorize 的便捷形式
func Check(caller Caller, action Action, target Target) error {
	return Authorize(caller, action, target).Err()
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }
