package service

import (
	"context"

	"Care_Community/internal/authz"
	"Care_Community/internal/model"
	"Care_Community/internal/repository"

	"go.uber.org/zap"
)

type UserService struct {
	users repository.UserRepository
	log   *zap.Logger
}

func NewUserService(users repository.UserRepository, log *zap.Logger) *UserService {
	return &UserService{users: users, log: log}
}

// ListUsers 仅管理员
func (s *UserService) ListUsers(ctx context.Context, caller *model.User, page, size int) ([]model.User, error) {
	if err := authz.Check(authz.CallerOf(caller), authz.ActionRead, authz.Global(authz.ResourceUser)); err != nil {
		return nil, err
	}
	offset, limit := pageOffset(page, size)
	return s.users.List(ctx, offset, limit)
}

func (s *UserService) GetUser(ctx context.Context, caller *model.User, id uint64) (*model.User, error) {
	if id == caller.ID {
		return caller, nil
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(authz.CallerOf(caller), authz.ActionRead, targetOf(authz.ResourceUser, u.CommunityID)); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) DeleteUser(ctx context.Context, caller *model.User, id uint64) error {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Check(authz.CallerOf(caller), authz.ActionDelete, targetOf(authz.ResourceUser, u.CommunityID)); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", zap.Uint64("user_id", id), zap.Uint64("by", caller.ID))
	return nil
}
