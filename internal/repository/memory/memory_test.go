package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"Care_Community/internal/model"
	"Care_Community/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWithFounder_PromotesFounder(t *testing.T) {
	store := NewStore(NewDB())
	ctx := context.Background()

	u := &model.User{Name: "ann", Email: "ann@example.com", Role: model.RoleResident}
	require.NoError(t, store.Users.Create(ctx, u))

	c := &model.Community{Name: "Oak", PinCode: "AB12C"}
	require.NoError(t, store.Communities.CreateWithFounder(ctx, c, u.ID))
	assert.NotZero(t, c.ID)

	got, err := store.Users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, got.Role)
	assert.True(t, got.InCommunity(c.ID))
}

func TestCreateWithFounder_MissingFounderLeavesNothing(t *testing.T) {
	store := NewStore(NewDB())
	ctx := context.Background()

	err := store.Communities.CreateWithFounder(ctx, &model.Community{Name: "Oak", PinCode: "AB12C"}, 99)
	assert.ErrorIs(t, err, pkg.ErrFounderNotFound)

	exists, err := store.Communities.PinExists(ctx, "AB12C")
	require.NoError(t, err)
	assert.False(t, exists)
	list, _ := store.Communities.List(ctx, 0, 10)
	assert.Empty(t, list)
}

func TestCreateWithFounder_DuplicatePin(t *testing.T) {
	store := NewStore(NewDB())
	ctx := context.Background()

	a := &model.User{Email: "a@example.com"}
	b := &model.User{Email: "b@example.com"}
	require.NoError(t, store.Users.Create(ctx, a))
	require.NoError(t, store.Users.Create(ctx, b))

	require.NoError(t, store.Communities.CreateWithFounder(ctx, &model.Community{PinCode: "ZZZZZ"}, a.ID))
	err := store.Communities.CreateWithFounder(ctx, &model.Community{PinCode: "ZZZZZ"}, b.ID)
	assert.ErrorIs(t, err, pkg.ErrPinTaken)

	got, _ := store.Users.FindByID(ctx, b.ID)
	assert.Nil(t, got.CommunityID)
}

func TestUniqueConstraints(t *testing.T) {
	store := NewStore(NewDB())
	ctx := context.Background()

	require.NoError(t, store.Users.Create(ctx, &model.User{Email: "x@example.com"}))
	assert.ErrorIs(t, store.Users.Create(ctx, &model.User{Email: "x@example.com"}), pkg.ErrEmailTaken)

	resident := uint64(42)
	require.NoError(t, store.Rooms.Create(ctx, &model.Room{RoomNumber: "101", CommunityID: 1, ResidentID: &resident}))
	assert.ErrorIs(t, store.Rooms.Create(ctx, &model.Room{RoomNumber: "101", CommunityID: 2}), pkg.ErrRoomNumberTaken)
	assert.ErrorIs(t, store.Rooms.Create(ctx, &model.Room{RoomNumber: "102", CommunityID: 1, ResidentID: &resident}), pkg.ErrResidentAssigned)

	require.NoError(t, store.Devices.Create(ctx, &model.AlexaDevice{DeviceID: "dev-1", RoomID: 1, CommunityID: 1}))
	assert.ErrorIs(t, store.Devices.Create(ctx, &model.AlexaDevice{DeviceID: "dev-1", RoomID: 2, CommunityID: 1}), pkg.ErrAlreadyPaired)
}

func TestDevices_ConcurrentPairingSingleWinner(t *testing.T) {
	store := NewStore(NewDB())
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.Devices.Create(ctx, &model.AlexaDevice{DeviceID: "dev-same", RoomID: uint64(i + 1), CommunityID: 1})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestDevices_RecordRequest(t *testing.T) {
	db := NewDB()
	store := NewStore(db)
	ctx := context.Background()

	d := &model.AlexaDevice{DeviceID: "dev-1", RoomID: 1, CommunityID: 1}
	require.NoError(t, store.Devices.Create(ctx, d))
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Devices.RecordRequest(ctx, d.ID, db.now()))
	}
	got, err := store.Devices.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.TotalNumberRequested)
	assert.NotNil(t, got.LastRequest)
}

func TestTasks_AssignIdempotentAndPaged(t *testing.T) {
	store := NewStore(NewDB())
	ctx := context.Background()

	u := &model.User{Email: "s@example.com", Role: model.RoleCareStaff}
	require.NoError(t, store.Users.Create(ctx, u))
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Tasks.Create(ctx, &model.Task{Title: fmt.Sprintf("t%d", i), CommunityID: 1}))
	}
	list, err := store.Tasks.ListByCommunity(ctx, 1, 0, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Greater(t, list[0].ID, list[1].ID)

	taskID := list[0].ID
	require.NoError(t, store.Tasks.Assign(ctx, taskID, u.ID))
	require.NoError(t, store.Tasks.Assign(ctx, taskID, u.ID))
	got, err := store.Tasks.FindByID(ctx, taskID)
	require.NoError(t, err)
	assert.Len(t, got.AssignedUsers, 1)
}

func TestCommunityDelete_UnbindsMembers(t *testing.T) {
	store := NewStore(NewDB())
	ctx := context.Background()

	u := &model.User{Email: "m@example.com"}
	require.NoError(t, store.Users.Create(ctx, u))
	c := &model.Community{PinCode: "QWERT"}
	require.NoError(t, store.Communities.CreateWithFounder(ctx, c, u.ID))

	require.NoError(t, store.Communities.Delete(ctx, c.ID))
	got, _ := store.Users.FindByID(ctx, u.ID)
	assert.Nil(t, got.CommunityID)
	assert.ErrorIs(t, store.Communities.Delete(ctx, c.ID), pkg.ErrCommunityNotFound)
}

func TestOutbox_ListDue(t *testing.T) {
	store := NewStore(NewDB())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Outbox.Enqueue(ctx, &model.TaskOutbox{EventType: "task.created", TaskID: uint64(i + 1)}))
	}
	due, err := store.Outbox.ListDue(ctx, 2, 3)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Less(t, due[0].ID, due[1].ID)

	require.NoError(t, store.Outbox.MarkSent(ctx, due[0].ID))
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Outbox.MarkRetry(ctx, due[1].ID))
	}
	due, err = store.Outbox.ListDue(ctx, 10, 3)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, uint64(3), due[0].TaskID)
}

func TestRoomDelete_BlockedByDevice(t *testing.T) {
	store := NewStore(NewDB())
	ctx := context.Background()

	room := &model.Room{RoomNumber: "101", CommunityID: 1}
	require.NoError(t, store.Rooms.Create(ctx, room))
	require.NoError(t, store.Devices.Create(ctx, &model.AlexaDevice{DeviceID: "dev-1", RoomID: room.ID, CommunityID: 1}))

	assert.ErrorIs(t, store.Rooms.Delete(ctx, room.ID), pkg.ErrRoomHasDevices)
	_, err := store.Rooms.FindByID(ctx, room.ID)
	assert.NoError(t, err)
}
