package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"Care_Community/internal/model"
	"Care_Community/internal/pkg"
	"Care_Community/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateCommunity_PromotesFounder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	founder := env.user(t, "f@example.com", model.RoleResident, nil)
	c, err := env.svc.Communities.CreateCommunity(ctx, founder, CommunityInput{Name: "Oakview", Address: "1 Oak St"})
	require.NoError(t, err)
	assert.True(t, pkg.ValidPin(c.PinCode))
	assert.Equal(t, founder.ID, c.CreatedByID)

	stored, err := env.store.Users.FindByID(ctx, founder.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, stored.Role)
	assert.True(t, stored.InCommunity(c.ID))

	found, err := env.svc.Communities.LookupByPin(ctx, " "+c.PinCode+" ")
	require.NoError(t, err)
	assert.Equal(t, c.ID, found.ID)
}

func TestCreateCommunity_AdministratorKeepsRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.user(t, "root@example.com", model.RoleAdministrator, nil)
	c, err := env.svc.Communities.CreateCommunity(ctx, admin, CommunityInput{Name: "A", Address: "B"})
	require.NoError(t, err)

	stored, _ := env.store.Users.FindByID(ctx, admin.ID)
	assert.Equal(t, model.RoleAdministrator, stored.Role)
	assert.True(t, stored.InCommunity(c.ID))
}

func TestCreateCommunity_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	founder := env.user(t, "f@example.com", model.RoleResident, nil)
	_, err := env.svc.Communities.CreateCommunity(ctx, founder, CommunityInput{Name: " ", Address: "x"})
	assert.Equal(t, pkg.KindValidation, pkg.KindOf(err))

	_, manager := env.community(t, "Oak")
	_, err = env.svc.Communities.CreateCommunity(ctx, manager, CommunityInput{Name: "Second", Address: "x"})
	assert.ErrorIs(t, err, pkg.ErrAlreadyMember)
}

func TestCreateCommunity_ConcurrentPinsAreUnique(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const n = 30
	founders := make([]*model.User, n)
	for i := range founders {
		founders[i] = env.user(t, fmt.Sprintf("f%d@example.com", i), model.RoleResident, nil)
	}

	var wg sync.WaitGroup
	pins := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := env.svc.Communities.CreateCommunity(ctx, founders[i], CommunityInput{Name: "C", Address: "A"})
			errs[i] = err
			if err == nil {
				pins[i] = c.PinCode
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.True(t, pkg.ValidPin(pins[i]))
		assert.False(t, seen[pins[i]], "duplicate pin %s", pins[i])
		seen[pins[i]] = true
	}
}

func TestCreateCommunity_RetriesOnCollision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _ = env.community(t, "First")
	first, _ := env.store.Communities.List(ctx, 0, 1)
	taken := first[0].PinCode

	candidates := []string{taken, taken, "NEW01"}
	env.svc.Communities.randPin = func() (string, error) {
		pin := candidates[0]
		candidates = candidates[1:]
		return pin, nil
	}

	founder := env.user(t, "second@example.com", model.RoleResident, nil)
	c, err := env.svc.Communities.CreateCommunity(ctx, founder, CommunityInput{Name: "Second", Address: "x"})
	require.NoError(t, err)
	assert.Equal(t, "NEW01", c.PinCode)
}

// alwaysTaken 预检查永远报告 PIN 已存在
type alwaysTaken struct {
	repository.CommunityRepository
}

func (alwaysTaken) PinExists(context.Context, string) (bool, error) { return true, nil }

func TestCreateCommunity_RetryCap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	calls := 0
	svc := env.svc.Communities
	svc.communities = alwaysTaken{env.store.Communities}
	svc.randPin = func() (string, error) {
		calls++
		return pkg.RandPin()
	}

	founder := env.user(t, "f@example.com", model.RoleResident, nil)
	_, err := svc.CreateCommunity(ctx, founder, CommunityInput{Name: "Oak", Address: "x"})
	assert.ErrorIs(t, err, pkg.ErrPinGeneration)
	assert.Equal(t, MaxPinAttempts, calls)

	list, _ := env.store.Communities.List(ctx, 0, 10)
	assert.Empty(t, list)
}

// failingFounder 模拟提升创建者时数据库出错（事务已回滚）
type failingFounder struct {
	repository.CommunityRepository
	err error
}

func (f failingFounder) CreateWithFounder(context.Context, *model.Community, uint64) error {
	return f.err
}

func TestCreateCommunity_FailureIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("missing founder", func(t *testing.T) {
		ghost := &model.User{ID: 999, Role: model.RoleResident}
		_, err := env.svc.Communities.CreateCommunity(ctx, ghost, CommunityInput{Name: "Oak", Address: "x"})
		assert.ErrorIs(t, err, pkg.ErrFounderNotFound)
		list, _ := env.store.Communities.List(ctx, 0, 10)
		assert.Empty(t, list)
	})

	t.Run("store failure", func(t *testing.T) {
		boom := errors.New("deadlock found")
		svc := NewCommunityService(env.store, nil, nil, zap.NewNop())
		svc.communities = failingFounder{env.store.Communities, boom}

		founder := env.user(t, "f@example.com", model.RoleResident, nil)
		_, err := svc.CreateCommunity(ctx, founder, CommunityInput{Name: "Oak", Address: "x"})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, pkg.KindTransaction, pkg.KindOf(err))
		assert.Nil(t, founder.CommunityID)
	})
}

func TestCommunityAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	oak, oakManager := env.community(t, "Oak")
	pine, _ := env.community(t, "Pine")
	admin := env.user(t, "admin@example.com", model.RoleAdministrator, nil)

	_, err := env.svc.Communities.UpdateCommunity(ctx, oakManager, pine.ID, model.CommunityPatch{Name: ptr("x")})
	assert.Equal(t, pkg.KindForbidden, pkg.KindOf(err))

	updated, err := env.svc.Communities.UpdateCommunity(ctx, oakManager, oak.ID, model.CommunityPatch{Name: ptr("Oakview")})
	require.NoError(t, err)
	assert.Equal(t, "Oakview", updated.Name)
	assert.Equal(t, oak.PinCode, updated.PinCode)

	_, err = env.svc.Communities.ListCommunities(ctx, oakManager, 1, 10)
	assert.Equal(t, pkg.KindForbidden, pkg.KindOf(err))
	list, err := env.svc.Communities.ListCommunities(ctx, admin, 1, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	mine, err := env.svc.Communities.ManagerCommunity(ctx, oakManager)
	require.NoError(t, err)
	assert.Equal(t, oak.ID, mine.ID)
}

func TestDeleteCommunity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	oak, manager := env.community(t, "Oak")
	admin := env.user(t, "admin@example.com", model.RoleAdministrator, nil)

	assert.Equal(t, pkg.KindForbidden, pkg.KindOf(env.svc.Communities.DeleteCommunity(ctx, manager, oak.ID)))

	room := env.room(t, manager, "101")
	assert.ErrorIs(t, env.svc.Communities.DeleteCommunity(ctx, admin, oak.ID), pkg.ErrCommunityNotEmpty)

	require.NoError(t, env.svc.Rooms.DeleteRoom(ctx, manager, room.ID))
	require.NoError(t, env.svc.Communities.DeleteCommunity(ctx, admin, oak.ID))

	stored, _ := env.store.Users.FindByID(ctx, manager.ID)
	assert.Nil(t, stored.CommunityID)
}
