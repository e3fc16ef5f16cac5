package service

import (
	"context"
	"time"

	"Care_Community/internal/authz"
	"Care_Community/internal/model"
	"Care_Community/internal/pkg"
	"Care_Community/internal/repository"

	"go.uber.org/zap"
)

// SessionStore 每个用户一个活动 token
type SessionStore interface {
	Save(ctx context.Context, userID uint64, token string) error
	Get(ctx context.Context, userID uint64) (string, error)
	Extend(ctx context.Context, userID uint64) error
	Delete(ctx context.Context, userID uint64) error
}

// DeviceCache device_id -> 租户上下文
type DeviceCache interface {
	Get(ctx context.Context, deviceID string) (*model.DeviceContext, bool, error)
	Set(ctx context.Context, deviceID string, dc *model.DeviceContext) error
	Delete(ctx context.Context, deviceIDs ...string) error
}

// Locker 跨进程互斥，ok=false 表示被他人持有
type Locker interface {
	Acquire(ctx context.Context, name string) (release func(), ok bool, err error)
}

type EventPublisher interface {
	Publish(ctx context.Context, ev pkg.Event) error
}

type Mailer interface {
	Send(to []string, subject, htmlBody string) error
}

// Deps 由 main 构造后注入；可选依赖为 nil 时对应功能降级跳过
type Deps struct {
	Store    *repository.Store
	Tokens   TokenIssuer
	Sessions SessionStore
	Cache    DeviceCache
	Locker   Locker
	Events   EventPublisher
	Mailer   Mailer
	Log      *zap.Logger
}

type Services struct {
	Auth          *AuthService
	Users         *UserService
	Communities   *CommunityService
	Rooms         *RoomService
	CareStaff     *CareStaffService
	Devices       *DeviceService
	Tasks         *TaskService
	Notifications *NotificationService
	// Relayer 仅在配置了 EventPublisher 时存在
	Relayer *OutboxRelayer
}

func New(d Deps) *Services {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	devices := NewDeviceService(d.Store, d.Cache, d.Log)
	notifications := NewNotificationService(d.Store, d.Mailer, d.Log)
	var relayer *OutboxRelayer
	if d.Events != nil && d.Store.Outbox != nil {
		relayer = NewOutboxRelayer(d.Store.Outbox, d.Events, d.Log)
	}
	return &Services{
		Auth:          NewAuthService(d.Store.Users, d.Tokens, d.Sessions, d.Log),
		Users:         NewUserService(d.Store.Users, d.Log),
		Communities:   NewCommunityService(d.Store, d.Locker, d.Cache, d.Log),
		Rooms:         NewRoomService(d.Store, d.Cache, d.Log),
		CareStaff:     NewCareStaffService(d.Store.Users, d.Log),
		Devices:       devices,
		Tasks:         NewTaskService(d.Store, devices, notifications, d.Events, d.Log),
		Notifications: notifications,
		Relayer:       relayer,
	}
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// pageOffset page 从 1 开始
func pageOffset(page, size int) (offset, limit int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return (page - 1) * size, size
}

// targetOf 资源无社区时交给 guard 按“无租户”拒绝
func targetOf(resource authz.Resource, communityID *uint64) authz.Target {
	return authz.Target{Resource: resource, CommunityID: communityID}
}

// communityOr 显式指定优先，否则取调用者所在社区
func communityOr(explicit *uint64, caller *model.User) *uint64 {
	if explicit != nil {
		return explicit
	}
	return caller.CommunityID
}

func clock() time.Time { return time.Now().UTC() }

// evictDevices 房间号或社区名变更后丢弃缓存的租户上下文，失败只记日志
func evictDevices(ctx context.Context, cache DeviceCache, log *zap.Logger, devices []model.AlexaDevice) {
	if cache == nil || len(devices) == 0 {
		return
	}
	ids := make([]string, len(devices))
	for i, d := range devices {
		ids[i] = d.DeviceID
	}
	if err := cache.Delete(ctx, ids...); err != nil {
		log.Warn("device cache evict failed", zap.Strings("device_ids", ids), zap.Error(err))
	}
}
