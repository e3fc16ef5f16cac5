package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"Care_Community/internal/model"
	"Care_Community/internal/pkg"
	"Care_Community/internal/repository"
	"Care_Community/internal/repository/memory"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedEvent struct {
	key   string
	typ   string
	value []byte
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, ev pkg.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, recordedEvent{key: ev.Key, typ: ev.Type, value: ev.Payload})
	return nil
}

func (p *fakePublisher) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent [][]string
	err  error
}

func (m *fakeMailer) Send(to []string, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return m.err
}

type testEnv struct {
	db     *memory.DB
	store  *repository.Store
	svc    *Services
	events *fakePublisher
	mailer *fakeMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tokens, err := pkg.NewTokenIssuer("test-secret", "HS256", time.Minute)
	require.NoError(t, err)

	db := memory.NewDB()
	store := memory.NewStore(db)
	env := &testEnv{db: db, store: store, events: &fakePublisher{}, mailer: &fakeMailer{}}
	env.svc = New(Deps{
		Store:    store,
		Tokens:   tokens,
		Sessions: memory.NewSessionStore(time.Minute),
		Events:   env.events,
		Mailer:   env.mailer,
		Log:      zap.NewNop(),
	})
	return env
}

func (e *testEnv) user(t *testing.T, email string, role model.Role, communityID *uint64) *model.User {
	t.Helper()
	u := &model.User{Name: email, Email: email, Role: role, CommunityID: communityID}
	require.NoError(t, e.store.Users.Create(context.Background(), u))
	return u
}

// community 创建社区并返回其经理
func (e *testEnv) community(t *testing.T, name string) (*model.Community, *model.User) {
	t.Helper()
	manager := e.user(t, name+"-manager@example.com", model.RoleResident, nil)
	c, err := e.svc.Communities.CreateCommunity(context.Background(), manager, CommunityInput{Name: name, Address: name + " street"})
	require.NoError(t, err)
	return c, manager
}

func (e *testEnv) room(t *testing.T, manager *model.User, number string) *model.Room {
	t.Helper()
	r, err := e.svc.Rooms.CreateRoom(context.Background(), manager, RoomInput{RoomNumber: number})
	require.NoError(t, err)
	return r
}

func ptr[T any](v T) *T { return &v }
