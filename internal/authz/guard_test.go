package authz

import (
	"testing"

	"Care_Community/internal/model"
	"Care_Community/internal/pkg"

	"github.com/stretchr/testify/assert"
)

func community(id uint64) *uint64 { return &id }

func TestAuthorize(t *testing.T) {
	const a, b = 1, 2

	cases := []struct {
		name    string
		caller  Caller
		action  Action
		target  Target
		allowed bool
		reason  string
	}{
		{"admin anything", Caller{Role: model.RoleAdministrator}, ActionDelete, Global(ResourceCommunity), true, ""},
		{"admin other tenancy", Caller{Role: model.RoleAdministrator, CommunityID: community(a)}, ActionUpdate, In(ResourceRoom, b), true, ""},

		{"manager creates room", Caller{Role: model.RoleManager, CommunityID: community(a)}, ActionCreate, In(ResourceRoom, a), true, ""},
		{"manager deletes care staff", Caller{Role: model.RoleManager, CommunityID: community(a)}, ActionDelete, In(ResourceCareStaff, a), true, ""},
		{"manager updates device", Caller{Role: model.RoleManager, CommunityID: community(a)}, ActionUpdate, In(ResourceDevice, a), true, ""},
		{"manager reads own community", Caller{Role: model.RoleManager, CommunityID: community(a)}, ActionRead, In(ResourceCommunity, a), true, ""},
		{"manager cannot delete community", Caller{Role: model.RoleManager, CommunityID: community(a)}, ActionDelete, In(ResourceCommunity, a), false, ReasonRole},
		{"manager global listing", Caller{Role: model.RoleManager, CommunityID: community(a)}, ActionRead, Global(ResourceDevice), false, ReasonNoTenancy},
		{"manager without community", Caller{Role: model.RoleManager}, ActionCreate, In(ResourceRoom, a), false, ReasonNoTenancy},

		{"resident reads tasks", Caller{Role: model.RoleResident, CommunityID: community(a)}, ActionRead, In(ResourceTask, a), true, ""},
		{"resident raises task", Caller{Role: model.RoleResident, CommunityID: community(a)}, ActionCreate, In(ResourceTask, a), true, ""},
		{"resident reads room", Caller{Role: model.RoleResident, CommunityID: community(a)}, ActionRead, In(ResourceRoom, a), true, ""},
		{"resident cannot create room", Caller{Role: model.RoleResident, CommunityID: community(a)}, ActionCreate, In(ResourceRoom, a), false, ReasonRole},
		{"resident other community", Caller{Role: model.RoleResident, CommunityID: community(a)}, ActionRead, In(ResourceTask, b), false, ReasonOtherCommunity},
		{"care staff updates task", Caller{Role: model.RoleCareStaff, CommunityID: community(a)}, ActionUpdate, In(ResourceTask, a), true, ""},
		{"care staff cannot add device", Caller{Role: model.RoleCareStaff, CommunityID: community(a)}, ActionCreate, In(ResourceDevice, a), false, ReasonRole},
		{"staff cannot delete task", Caller{Role: model.RoleStaff, CommunityID: community(a)}, ActionDelete, In(ResourceTask, a), false, ReasonRole},
		{"staff without community", Caller{Role: model.RoleStaff}, ActionRead, In(ResourceTask, a), false, ReasonNoTenancy},

		{"corporate leader denied", Caller{Role: model.RoleCorporateLeader, CommunityID: community(a)}, ActionRead, In(ResourceTask, a), false, ReasonRole},
		{"unknown role denied", Caller{Role: model.Role("janitor"), CommunityID: community(a)}, ActionRead, In(ResourceTask, a), false, ReasonRole},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Authorize(tc.caller, tc.action, tc.target)
			assert.Equal(t, tc.allowed, d.Allowed)
			assert.Equal(t, tc.reason, d.Reason)
		})
	}
}

func TestAuthorize_ManagerNeverCrossesCommunity(t *testing.T) {
	caller := Caller{UserID: 7, Role: model.RoleManager, CommunityID: community(1)}
	resources := []Resource{ResourceRoom, ResourceDevice, ResourceCareStaff, ResourceTask, ResourceCommunity}

	for _, r := range resources {
		for _, action := range crud {
			err := Check(caller, action, In(r, 2))
			if assert.Error(t, err, "resource %d action %s", r, action) {
				assert.Equal(t, pkg.KindForbidden, pkg.KindOf(err))
				assert.Equal(t, ReasonOtherCommunity, err.Error())
			}
		}
	}
}

func TestCallerOf(t *testing.T) {
	u := &model.User{ID: 3, Role: model.RoleCareStaff, CommunityID: community(9)}
	c := CallerOf(u)
	assert.Equal(t, uint64(3), c.UserID)
	assert.Equal(t, model.RoleCareStaff, c.Role)
	assert.Equal(t, uint64(9), *c.CommunityID)
}
