package service

import (
	"context"
	"strings"
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

func TestPair(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	oak, manager := env.community(t, "Oakview")
	room := env.room(t, manager, "204")

	device, err := env.svc.Devices.Pair(ctx, "dev-123", strings.ToLower(oak.PinCode), "204")
	require.NoError(t, err)
	assert.Equal(t, room.ID, device.RoomID)
	assert.Equal(t, oak.ID, device.CommunityID)
	assert.Equal(t, model.DeviceStatusActive, device.Status)
	assert.Zero(t, device.TotalNumberRequested)

	dc, err := env.svc.Devices.Resolve(ctx, "dev-123")
	require.NoError(t, err)
	assert.Equal(t, room.ID, dc.RoomID)
	assert.Equal(t, "204", dc.RoomNumber)
	assert.Equal(t, "Oakview", dc.CommunityName)
}

func TestPair_SecondAttemptLeavesOriginal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	oak, oakManager := env.community(t, "Oak")
	pine, pineManager := env.community(t, "Pine")
	env.room(t, oakManager, "101")
	env.room(t, oakManager, "102")
	env.room(t, pineManager, "201")

	first, err := env.svc.Devices.Pair(ctx, "dev-1", oak.PinCode, "101")
	require.NoError(t, err)

	_, err = env.svc.Devices.Pair(ctx, "dev-1", oak.PinCode, "102")
	assert.ErrorIs(t, err, pkg.ErrAlreadyPaired)
	_, err = env.svc.Devices.Pair(ctx, "dev-1", pine.PinCode, "201")
	assert.ErrorIs(t, err, pkg.ErrAlreadyPaired)

	stored, err := env.store.Devices.FindByDeviceID(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, first.RoomID, stored.RoomID)
	assert.Equal(t, first.CommunityID, stored.CommunityID)
}

func TestPair_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	oak, manager := env.community(t, "Oak")
	env.room(t, manager, "101")
	_, otherManager := env.community(t, "Pine")
	env.room(t, otherManager, "999")

	cases := []struct {
		name      string
		device    string
		pin, room string
		want      error
	}{
		{"missing pin", "dev", "  ", "101", pkg.ErrMissingCredential},
		{"missing device", "", oak.PinCode, "101", pkg.ErrMissingDeviceID},
		{"unknown community", "dev", "ZZZZZ", "101", pkg.ErrUnknownCommunity},
		{"unknown room", "dev", oak.PinCode, "404", pkg.ErrUnknownRoom},
		{"room of another community", "dev", oak.PinCode, "999", pkg.ErrUnknownRoom},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Devices.Pair(ctx, tc.device, tc.pin, tc.room)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestResolve_Unpaired(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Devices.Resolve(context.Background(), "ghost")
	assert.ErrorIs(t, err, pkg.ErrDeviceNotPaired)
}

func TestResolve_UsesCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	svc := NewDeviceService(env.store, rediscache.NewDeviceCache(rdb, time.Minute), zap.NewNop())

	oak, manager := env.community(t, "Oak")
	env.room(t, manager, "101")
	_, err := svc.Pair(ctx, "dev-1", oak.PinCode, "101")
	require.NoError(t, err)
	assert.True(t, mr.Exists(rediscache.DeviceCachePrefix+"dev-1"))

	// 缓存命中时不回源
	svc.devices = nil
	dc, err := svc.Resolve(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, oak.ID, dc.CommunityID)
}

func TestListDevices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	oak, oakManager := env.community(t, "Oak")
	pine, pineManager := env.community(t, "Pine")
	env.room(t, oakManager, "101")
	admin := env.user(t, "admin@example.com", model.RoleAdministrator, nil)

	_, err := env.svc.Devices.ListDevices(ctx, oakManager)
	assert.ErrorIs(t, err, pkg.ErrNoDevices)

	_, err = env.svc.Devices.Pair(ctx, "dev-1", oak.PinCode, "101")
	require.NoError(t, err)

	list, err := env.svc.Devices.ListDevices(ctx, oakManager)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = env.svc.Devices.ListDevices(ctx, pineManager)
	assert.ErrorIs(t, err, pkg.ErrNoDevices)

	_, err = env.svc.Devices.ListCommunityDevices(ctx, pineManager, oak.ID)
	assert.Equal(t, pkg.KindForbidden, pkg.KindOf(err))

	all, err := env.svc.Devices.ListDevices(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	resident := env.user(t, "r@example.com", model.RoleResident, &pine.ID)
	_, err = env.svc.Devices.ListDevices(ctx, resident)
	assert.Equal(t, pkg.KindForbidden, pkg.KindOf(err))
}

func TestUpdateDeviceStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	oak, manager := env.community(t, "Oak")
	_, other := env.community(t, "Pine")
	env.room(t, manager, "101")
	d, err := env.svc.Devices.Pair(ctx, "dev-1", oak.PinCode, "101")
	require.NoError(t, err)

	_, err = env.svc.Devices.UpdateDeviceStatus(ctx, manager, d.ID, "broken")
	assert.ErrorIs(t, err, pkg.ErrInvalidStatus)

	_, err = env.svc.Devices.UpdateDeviceStatus(ctx, other, d.ID, model.DeviceStatusOffline)
	assert.Equal(t, pkg.KindForbidden, pkg.KindOf(err))

	updated, err := env.svc.Devices.UpdateDeviceStatus(ctx, manager, d.ID, model.DeviceStatusOffline)
	require.NoError(t, err)
	assert.Equal(t, model.DeviceStatusOffline, updated.Status)
}
