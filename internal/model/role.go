package model

// Role 用户角色，取值封闭
type Role string

const (
	RoleResident        Role = "resident"
	RoleStaff           Role = "staff"
	RoleCareStaff       Role = "care_staff"
	RoleManager         Role = "manager"
	RoleAdministrator   Role = "administrator"
	RoleCorporateLeader Role = "corporate_leader"
)

var roles = map[Role]struct{}{
	RoleResident:        {},
	RoleStaff:           {},
	RoleCareStaff:       {},
	RoleManager:         {},
	RoleAdministrator:   {},
	RoleCorporateLeader: {},
}

func (r Role) Valid() bool {
	_, ok := roles[r]
	return ok
}

// ParseRole 空字符串视为 resident
func ParseRole(s string) (Role, bool) {
	if s == "" {
		return RoleResident, true
	}
	r := Role(s)
	return r, r.Valid()
}
