// Package memory implements the repository contracts in process. Unique
// constraints are enforced under the store lock, so it is usable for local
// runs (database.driver=memory) and for tests.
package memory

import (
	"sort"
	"sync"
	"time"

	"Care_Community/internal/model"
	"Care_Community/internal/repository"
)

type DB struct {
	mu sync.RWMutex

	nextID        uint64
	users         map[uint64]model.User
	communities   map[uint64]model.Community
	rooms         map[uint64]model.Room
	devices       map[uint64]model.AlexaDevice
	tasks         map[uint64]model.Task
	assignments   map[uint64][]uint64 // task_id -> user_ids
	notifications map[uint64]model.Notification
	recipients    map[uint64][]uint64 // notification_id -> user_ids
	outbox        map[uint64]model.TaskOutbox

	now func() time.Time
}

func NewDB() *DB {
	return &DB{
		users:         map[uint64]model.User{},
		communities:   map[uint64]model.Community{},
		rooms:         map[uint64]model.Room{},
		devices:       map[uint64]model.AlexaDevice{},
		tasks:         map[uint64]model.Task{},
		assignments:   map[uint64][]uint64{},
		notifications: map[uint64]model.Notification{},
		recipients:    map[uint64][]uint64{},
		outbox:        map[uint64]model.TaskOutbox{},
		now:           time.Now,
	}
}

// NewStore 所有仓储共享同一把锁
func NewStore(db *DB) *repository.Store {
	return &repository.Store{
		Users:         &UserRepository{db: db},
		Communities:   &CommunityRepository{db: db},
		Rooms:         &RoomRepository{db: db},
		Devices:       &AlexaDeviceRepository{db: db},
		Tasks:         &TaskRepository{db: db},
		Notifications: &NotificationRepository{db: db},
		Outbox:        &OutboxRepository{db: db},
	}
}

// SetClock 测试中固定时间
func (db *DB) SetClock(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

// Recipients 返回通知的收件人
func (db *DB) Recipients(notificationID uint64) []uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return append([]uint64(nil), db.recipients[notificationID]...)
}

// Notifications 按 id 升序返回全部通知
func (db *DB) Notifications() []model.Notification {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]model.Notification, 0, len(db.notifications))
	for _, n := range db.notifications {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (db *DB) id() uint64 {
	db.nextID++
	return db.nextID
}

func page[T any](all []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset > len(all) {
		offset = len(all)
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}

func ptrCopy[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
