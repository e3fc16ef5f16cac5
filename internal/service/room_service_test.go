package service

import (
	"context"
	"testing"
	"time"

	"Care_Community/internal/model"
	"Care_Community/internal/pkg"
	rediscache "Care_Community/internal/repository/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRooms_ManagerNeverCrossesCommunity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, oakManager := env.community(t, "Oak")
	pine, pineManager := env.community(t, "Pine")
	pineRoom := env.room(t, pineManager, "201")

	_, err := env.svc.Rooms.CreateRoom(ctx, oakManager, RoomInput{RoomNumber: "301", CommunityID: &pine.ID})
	assert.Equal(t, pkg.KindForbidden, pkg.KindOf(err))
	_, err = env.svc.Rooms.GetRoom(ctx, oakManager, pineRoom.ID)
	assert.Equal(t, pkg.KindForbidden, pkg.KindOf(err))
	_, err = env.svc.Rooms.UpdateRoom(ctx, oakManager, pineRoom.ID, model.RoomPatch{RoomType: ptr("suite")})
	assert.Equal(t, pkg.KindForbidden, pkg.KindOf(err))
	assert.Equal(t, pkg.KindForbidden, pkg.KindOf(env.svc.Rooms.DeleteRoom(ctx, oakManager, pineRoom.ID)))

	_, err = env.svc.CareStaff.CreateCareStaff(ctx, oakManager, CareStaffInput{Email: "c@example.com", Password: "pw", CommunityID: &pine.ID})
	assert.Equal(t, pkg.KindForbidden, pkg.KindOf(err))
}

func TestRooms_CRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	oak, manager := env.community(t, "Oak")
	resident := env.user(t, "r@example.com", model.RoleResident, &oak.ID)

	room, err := env.svc.Rooms.CreateRoom(ctx, manager, RoomInput{RoomNumber: " 101 ", ResidentID: &resident.ID, FloorNumber: ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, "101", room.RoomNumber)

	_, err = env.svc.Rooms.CreateRoom(ctx, manager, RoomInput{RoomNumber: "101"})
	assert.ErrorIs(t, err, pkg.ErrRoomNumberTaken)
	_, err = env.svc.Rooms.CreateRoom(ctx, manager, RoomInput{RoomNumber: "103", ResidentID: &resident.ID})
	assert.ErrorIs(t, err, pkg.ErrResidentAssigned)

	_, err = env.svc.Rooms.CreateRoom(ctx, resident, RoomInput{RoomNumber: "102"})
	assert.Equal(t, pkg.KindForbidden, pkg.KindOf(err))

	mine, err := env.svc.Rooms.MyRooms(ctx, resident)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	updated, err := env.svc.Rooms.UpdateRoom(ctx, manager, room.ID, model.RoomPatch{RoomType: ptr("suite")})
	require.NoError(t, err)
	assert.Equal(t, "suite", updated.RoomType)

	status, err := env.svc.Rooms.RoomAlexaStatus(ctx, manager, room.ID)
	require.NoError(t, err)
	assert.False(t, status.HasAlexa)

	_, err = env.svc.Devices.Pair(ctx, "dev-1", oak.PinCode, "101")
	require.NoError(t, err)
	status, err = env.svc.Rooms.RoomAlexaStatus(ctx, manager, room.ID)
	require.NoError(t, err)
	assert.True(t, status.HasAlexa)
	assert.Len(t, status.AlexaDevices, 1)

	empty := env.room(t, manager, "104")
	require.NoError(t, env.svc.Rooms.DeleteRoom(ctx, manager, empty.ID))
	_, err = env.svc.Rooms.GetRoom(ctx, manager, empty.ID)
	assert.ErrorIs(t, err, pkg.ErrRoomNotFound)
}

func TestDeleteRoom_RefusedWhileDevicePaired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	oak, manager := env.community(t, "Oak")
	room := env.room(t, manager, "204")
	_, err := env.svc.Devices.Pair(ctx, "dev-1", oak.PinCode, "204")
	require.NoError(t, err)

	err = env.svc.Rooms.DeleteRoom(ctx, manager, room.ID)
	assert.ErrorIs(t, err, pkg.ErrRoomHasDevices)
	assert.Equal(t, pkg.KindConflict, pkg.KindOf(err))

	// 房间与配对保持原样
	dc, err := env.svc.Devices.Resolve(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, room.ID, dc.RoomID)
	_, err = env.svc.Devices.Pair(ctx, "dev-1", oak.PinCode, "204")
	assert.ErrorIs(t, err, pkg.ErrAlreadyPaired)

	// 绕过 service 直接删也会被存储层拒绝
	assert.ErrorIs(t, env.store.Rooms.Delete(ctx, room.ID), pkg.ErrRoomHasDevices)
}

func TestRename_EvictsCachedDeviceContext(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cache := rediscache.NewDeviceCache(rdb, time.Minute)
	devices := NewDeviceService(env.store, cache, zap.NewNop())
	rooms := NewRoomService(env.store, cache, zap.NewNop())
	communities := NewCommunityService(env.store, nil, cache, zap.NewNop())

	oak, manager := env.community(t, "Oak")
	room := env.room(t, manager, "204")
	_, err := devices.Pair(ctx, "dev-1", oak.PinCode, "204")
	require.NoError(t, err)
	key := rediscache.DeviceCachePrefix + "dev-1"
	require.True(t, mr.Exists(key))

	// 改房型不影响缓存
	_, err = rooms.UpdateRoom(ctx, manager, room.ID, model.RoomPatch{RoomType: ptr("suite")})
	require.NoError(t, err)
	assert.True(t, mr.Exists(key))

	_, err = rooms.UpdateRoom(ctx, manager, room.ID, model.RoomPatch{RoomNumber: ptr("205")})
	require.NoError(t, err)
	assert.False(t, mr.Exists(key))
	dc, err := devices.Resolve(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, "205", dc.RoomNumber)
	require.True(t, mr.Exists(key))

	_, err = communities.UpdateCommunity(ctx, manager, oak.ID, model.CommunityPatch{Name: ptr("Oakview")})
	require.NoError(t, err)
	assert.False(t, mr.Exists(key))
	dc, err = devices.Resolve(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, "Oakview", dc.CommunityName)
}

func TestCareStaff_CRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	oak, manager := env.community(t, "Oak")

	staff, err := env.svc.CareStaff.CreateCareStaff(ctx, manager, CareStaffInput{Name: "Bo", Email: "Bo@example.com", Password: "pw", StaffID: "S1"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleCareStaff, staff.Role)
	assert.True(t, staff.InCommunity(oak.ID))

	list, err := env.svc.CareStaff.ListCareStaff(ctx, manager, oak.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	updated, err := env.svc.CareStaff.UpdateCareStaff(ctx, manager, staff.ID, CareStaffPatch{StaffID: ptr("S2"), Password: ptr("new")})
	require.NoError(t, err)
	assert.Equal(t, "S2", updated.StaffID)

	_, err = env.svc.Auth.Login(ctx, "bo@example.com", "new")
	require.NoError(t, err)

	_, err = env.svc.CareStaff.GetCareStaff(ctx, manager, manager.ID)
	assert.ErrorIs(t, err, pkg.ErrUserNotFound)

	require.NoError(t, env.svc.CareStaff.DeleteCareStaff(ctx, manager, staff.ID))
	_, err = env.svc.CareStaff.GetCareStaff(ctx, manager, staff.ID)
	assert.ErrorIs(t, err, pkg.ErrUserNotFound)
}
