package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"Care_Community/internal/authz"
	"Care_Community/internal/model"
	"Care_Community/internal/pkg"
	"Care_Community/internal/repository"

	"go.uber.org/zap"
)

const (
	TitleMaxRunes = 80

	EventTaskCreated       = "task.created"
	EventTaskAssigned      = "task.assigned"
	EventTaskStatusChanged = "task.status_changed"
)

type TaskService struct {
	tasks    repository.TaskRepository
	rooms    repository.RoomRepository
	users    repository.UserRepository
	devices  *DeviceService
	notifier *NotificationService
	events   EventPublisher
	outbox   repository.OutboxRepository
	now      func() time.Time
	log      *zap.Logger
}

func NewTaskService(store *repository.Store, devices *DeviceService, notifier *NotificationService, events EventPublisher, log *zap.Logger) *TaskService {
	return &TaskService{
		tasks:    store.Tasks,
		rooms:    store.Rooms,
		users:    store.Users,
		devices:  devices,
		notifier: notifier,
		events:   events,
		outbox:   store.Outbox,
		now:      clock,
		log:      log,
	}
}

type TaskInput struct {
	Description   string
	RoomID        *uint64
	PriorityScore *int
}

// TaskEvent 写入 kafka 的任务事件
type TaskEvent struct {
	Type        string           `json:"type"`
	TaskID      uint64           `json:"task_id"`
	CommunityID uint64           `json:"community_id"`
	RoomID      *uint64          `json:"room_id,omitempty"`
	Status      model.TaskStatus `json:"status"`
	ActorID     *uint64          `json:"actor_id,omitempty"`
	At          time.Time        `json:"at"`
}

// deriveTitle 取去掉首尾空白后的前 80 个字符
func deriveTitle(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= TitleMaxRunes {
		return text
	}
	return string([]rune(text)[:TitleMaxRunes])
}

// IntakeHuman 登录用户发起的请求，归属调用者所在社区
func (s *TaskService) IntakeHuman(ctx context.Context, caller *model.User, in TaskInput) (*model.Task, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, pkg.ErrEmptyDescription
	}
	if caller.CommunityID == nil {
		return nil, pkg.ErrNoCommunity
	}
	communityID := *caller.CommunityID
	if err := authz.Check(authz.CallerOf(caller), authz.ActionCreate, authz.In(authz.ResourceTask, communityID)); err != nil {
		return nil, err
	}

	roomNumber := ""
	if in.RoomID != nil {
		room, err := s.rooms.FindByID(ctx, *in.RoomID)
		if err != nil {
			return nil, err
		}
		if room.CommunityID != communityID {
			return nil, pkg.ErrRoomNotFound
		}
		roomNumber = room.RoomNumber
	}
	priority := model.DefaultPriority
	if in.PriorityScore != nil && *in.PriorityScore > 0 {
		priority = *in.PriorityScore
	}

	creator := caller.ID
	task := &model.Task{
		Title:         deriveTitle(desc),
		Description:   desc,
		Status:        model.TaskPending,
		PriorityScore: priority,
		CommunityID:   communityID,
		RoomID:        in.RoomID,
		CreatedByID:   &creator,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	s.afterCreate(ctx, task, roomNumber)
	return task, nil
}

// IntakeDevice 已配对设备发起的请求，继承设备的房间与社区
func (s *TaskService) IntakeDevice(ctx context.Context, deviceID, description string) (*model.Task, error) {
	desc := strings.TrimSpace(description)
	if desc == "" {
		return nil, pkg.ErrEmptyDescription
	}
	dc, err := s.devices.Resolve(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	roomID, alexaID := dc.RoomID, dc.AlexaDeviceID
	task := &model.Task{
		Title:         deriveTitle(desc),
		Description:   desc,
		Status:        model.TaskPending,
		PriorityScore: model.DefaultPriority,
		CommunityID:   dc.CommunityID,
		RoomID:        &roomID,
		AlexaDeviceID: &alexaID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	s.devices.RecordRequest(ctx, dc.AlexaDeviceID)
	s.afterCreate(ctx, task, dc.RoomNumber)
	return task, nil
}

func (s *TaskService) afterCreate(ctx context.Context, task *model.Task, roomNumber string) {
	s.log.Info("task created",
		zap.Uint64("task_id", task.ID),
		zap.Uint64("community_id", task.CommunityID),
		zap.Bool("from_device", task.AlexaDeviceID != nil))
	s.publish(ctx, EventTaskCreated, task, task.CreatedByID)
	if s.notifier != nil {
		s.notifier.NotifyTaskCreated(ctx, task, roomNumber)
	}
}

// publish 事件发送失败不影响任务写入，失败的事件进入 outbox 由 relayer 重投
func (s *TaskService) publish(ctx context.Context, typ string, task *model.Task, actor *uint64) {
	if s.events == nil {
		return
	}
	raw, err := json.Marshal(TaskEvent{
		Type:        typ,
		TaskID:      task.ID,
		CommunityID: task.CommunityID,
		RoomID:      task.RoomID,
		Status:      task.Status,
		ActorID:     actor,
		At:          s.now(),
	})
	if err != nil {
		s.log.Warn("marshal task event failed", zap.Error(err))
		return
	}
	key := pkg.MakeKeyFromID(task.CommunityID)
	if err := s.events.Publish(ctx, pkg.Event{Key: key, Type: typ, Payload: raw}); err != nil {
		s.log.Warn("publish task event failed", zap.String("type", typ), zap.Uint64("task_id", task.ID), zap.Error(err))
		if s.outbox == nil {
			return
		}
		ob := &model.TaskOutbox{EventType: typ, TaskID: task.ID, Key: key, Payload: string(raw)}
		if err := s.outbox.Enqueue(ctx, ob); err != nil {
			s.log.Error("enqueue task event failed", zap.Uint64("task_id", task.ID), zap.Error(err))
		}
	}
}

// ListTasks 默认调用者所在社区；只有管理员可以指定其他社区
func (s *TaskService) ListTasks(ctx context.Context, caller *model.User, communityID *uint64, page, size int) ([]model.Task, error) {
	cid := communityOr(communityID, caller)
	if err := authz.Check(authz.CallerOf(caller), authz.ActionRead, targetOf(authz.ResourceTask, cid)); err != nil {
		return nil, err
	}
	if cid == nil {
		return nil, pkg.ErrNoCommunity
	}
	offset, limit := pageOffset(page, size)
	return s.tasks.ListByCommunity(ctx, *cid, offset, limit)
}

func (s *TaskService) load(ctx context.Context, caller *model.User, action authz.Action, id uint64) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(authz.CallerOf(caller), action, authz.In(authz.ResourceTask, task.CommunityID)); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, caller *model.User, id uint64) (*model.Task, error) {
	return s.load(ctx, caller, authz.ActionRead, id)
}

// AssignTask 分派属于人员管理，按护理人员资源的更新权限判断
func (s *TaskService) AssignTask(ctx context.Context, caller *model.User, id, userID uint64) (*model.Task, error) {
	task, err := s.load(ctx, caller, authz.ActionRead, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(authz.CallerOf(caller), authz.ActionUpdate, authz.In(authz.ResourceCareStaff, task.CommunityID)); err != nil {
		return nil, err
	}
	assignee, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !assignee.InCommunity(task.CommunityID) {
		return nil, pkg.ErrAssigneeOutside
	}
	if err := s.tasks.Assign(ctx, task.ID, assignee.ID); err != nil {
		return nil, err
	}
	s.publish(ctx, EventTaskAssigned, task, &assignee.ID)
	return s.tasks.FindByID(ctx, task.ID)
}

// Respond pending -> in_progress
func (s *TaskService) Respond(ctx context.Context, caller *model.User, id uint64) (*model.Task, error) {
	task, err := s.load(ctx, caller, authz.ActionUpdate, id)
	if err != nil {
		return nil, err
	}
	if err := task.RecordResponse(s.now()); err != nil {
		return nil, err
	}
	return s.save(ctx, caller, task)
}

// Complete in_progress -> completed
func (s *TaskService) Complete(ctx context.Context, caller *model.User, id uint64) (*model.Task, error) {
	task, err := s.load(ctx, caller, authz.ActionUpdate, id)
	if err != nil {
		return nil, err
	}
	if err := task.Complete(caller.ID, s.now()); err != nil {
		return nil, err
	}
	return s.save(ctx, caller, task)
}

func (s *TaskService) save(ctx context.Context, caller *model.User, task *model.Task) (*model.Task, error) {
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	s.log.Info("task status changed",
		zap.Uint64("task_id", task.ID),
		zap.String("status", string(task.Status)),
		zap.Uint64("by", caller.ID))
	s.publish(ctx, EventTaskStatusChanged, task, &caller.ID)
	return task, nil
}
