// Package repository declares the persistence contracts the services rely on.
// mysql is the production implementation; memory backs tests and local runs.
package repository

import (
	"context"
	"time"

	"Care_Community/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, offset, limit int) ([]model.User, error)
	ListByCommunity(ctx context.Context, communityID uint64, roles ...model.Role) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id uint64) error
}

type CommunityRepository interface {
	// CreateWithFounder inserts the community and promotes the founder in one
	// transaction. A duplicate pin surfaces as pkg.ErrPinTaken.
	CreateWithFounder(ctx context.Context, c *model.Community, founderID uint64) error
	FindByID(ctx context.Context, id uint64) (*model.Community, error)
	FindByPin(ctx context.Context, pin string) (*model.Community, error)
	PinExists(ctx context.Context, pin string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]model.Community, error)
	Update(ctx context.Context, c *model.Community) error
	Delete(ctx context.Context, id uint64) error
}

type RoomRepository interface {
	Create(ctx context.Context, r *model.Room) error
	FindByID(ctx context.Context, id uint64) (*model.Room, error)
	FindByNumber(ctx context.Context, number string, communityID uint64) (*model.Room, error)
	ListByCommunity(ctx context.Context, communityID uint64) ([]model.Room, error)
	Update(ctx context.Context, r *model.Room) error
	Delete(ctx context.Context, id uint64) error
}

type AlexaDeviceRepository interface {
	// Create surfaces a duplicate device_id as pkg.ErrAlreadyPaired.
	Create(ctx context.Context, d *model.AlexaDevice) error
	FindByID(ctx context.Context, id uint64) (*model.AlexaDevice, error)
	FindByDeviceID(ctx context.Context, deviceID string) (*model.AlexaDevice, error)
	List(ctx context.Context) ([]model.AlexaDevice, error)
	ListByCommunity(ctx context.Context, communityID uint64) ([]model.AlexaDevice, error)
	UpdateStatus(ctx context.Context, id uint64, status model.DeviceStatus) error
	RecordRequest(ctx context.Context, id uint64, at time.Time) error
}

type TaskRepository interface {
	Create(ctx context.Context, t *model.Task) error
	FindByID(ctx context.Context, id uint64) (*model.Task, error)
	ListByCommunity(ctx context.Context, communityID uint64, offset, limit int) ([]model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	Assign(ctx context.Context, taskID, userID uint64) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification, recipientIDs []uint64) error
}

// OutboxRepository holds task events whose first delivery failed.
type OutboxRepository interface {
	Enqueue(ctx context.Context, ob *model.TaskOutbox) error
	// ListDue returns undelivered rows with fewer than maxRetry attempts, oldest first.
	ListDue(ctx context.Context, batchSize, maxRetry int) ([]model.TaskOutbox, error)
	MarkSent(ctx context.Context, id uint64) error
	MarkRetry(ctx context.Context, id uint64) error
}

// Store groups the repositories of one backing engine.
type Store struct {
	Users         UserRepository
	Communities   CommunityRepository
	Rooms         RoomRepository
	Devices       AlexaDeviceRepository
	Tasks         TaskRepository
	Notifications NotificationRepository
	Outbox        OutboxRepository
}
