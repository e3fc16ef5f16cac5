package service

import (
	"context"
	"fmt"

	"Care_Community/internal/model"
	"Care_Community/internal/pkg"
	"Care_Community/internal/repository"

	"go.uber.org/zap"
)

// NotificationService 新任务通知本社区护理人员与经理：落库 + 邮件
type NotificationService struct {
	users         repository.UserRepository
	communities   repository.CommunityRepository
	notifications repository.NotificationRepository
	mailer        Mailer
	log           *zap.Logger
}

func NewNotificationService(store *repository.Store, mailer Mailer, log *zap.Logger) *NotificationService {
	return &NotificationService{
		users:         store.Users,
		communities:   store.Communities,
		notifications: store.Notifications,
		mailer:        mailer,
		log:           log,
	}
}

// NotifyTaskCreated 尽力而为，任何失败都只记日志
func (s *NotificationService) NotifyTaskCreated(ctx context.Context, task *model.Task, roomNumber string) {
	recipients, err := s.users.ListByCommunity(ctx, task.CommunityID, model.RoleCareStaff, model.RoleManager)
	if err != nil {
		s.log.Warn("list notification recipients failed", zap.Uint64("task_id", task.ID), zap.Error(err))
		return
	}
	if len(recipients) == 0 {
		return
	}

	ids := make([]uint64, 0, len(recipients))
	emails := make([]string, 0, len(recipients))
	for _, u := range recipients {
		ids = append(ids, u.ID)
		if u.Email != "" {
			emails = append(emails, u.Email)
		}
	}

	taskID := task.ID
	msg := fmt.Sprintf("New task: %s", task.Title)
	if roomNumber != "" {
		msg = fmt.Sprintf("New task from room %s: %s", roomNumber, task.Title)
	}
	n := &model.Notification{CommunityID: task.CommunityID, TaskID: &taskID, Message: msg}
	if err := s.notifications.Create(ctx, n, ids); err != nil {
		s.log.Warn("save notification failed", zap.Uint64("task_id", task.ID), zap.Error(err))
	}

	if s.mailer == nil || len(emails) == 0 {
		return
	}
	communityName := ""
	if c, err := s.communities.FindByID(ctx, task.CommunityID); err == nil {
		communityName = c.Name
	}
	html := pkg.TaskEmailHTML(communityName, roomNumber, task.Description)
	if err := s.mailer.Send(emails, "New help request", html); err != nil {
		s.log.Warn("send task email failed", zap.Uint64("task_id", task.ID), zap.Error(err))
	}
}
