package service

import (
	"context"
	"strings"

	"Care_Community/internal/authz"
	"Care_Community/internal/model"
	"Care_Community/internal/pkg"
	"Care_Community/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CareStaffService 护理人员即 role=care_staff 的用户
type CareStaffService struct {
	users repository.UserRepository
	log   *zap.Logger
}

func NewCareStaffService(users repository.UserRepository, log *zap.Logger) *CareStaffService {
	return &CareStaffService{users: users, log: log}
}

type CareStaffInput struct {
	Name        string
	Email       string
	Password    string
	StaffID     string
	CommunityID *uint64
}

type CareStaffPatch struct {
	Name     *string
	Email    *string
	Password *string // 明文，写库前哈希
	StaffID  *string
}

func (s *CareStaffService) CreateCareStaff(ctx context.Context, caller *model.User, in CareStaffInput) (*model.User, error) {
	communityID := communityOr(in.CommunityID, caller)
	if err := authz.Check(authz.CallerOf(caller), authz.ActionCreate, targetOf(authz.ResourceCareStaff, communityID)); err != nil {
		return nil, err
	}
	if communityID == nil {
		return nil, pkg.ErrNoCommunity
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, pkg.Validation("email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	cid := *communityID
	staff := &model.User{
		Name:        strings.TrimSpace(in.Name),
		Email:       email,
		Role:        model.RoleCareStaff,
		StaffID:     in.StaffID,
		Password:    string(hash),
		CommunityID: &cid,
	}
	if err := s.users.Create(ctx, staff); err != nil {
		return nil, err
	}
	s.log.Info("care staff created", zap.Uint64("user_id", staff.ID), zap.Uint64("community_id", cid))
	return staff, nil
}

// find 非护理人员按不存在处理
func (s *CareStaffService) find(ctx context.Context, caller *model.User, action authz.Action, id uint64) (*model.User, error) {
	staff, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if staff.Role != model.RoleCareStaff {
		return nil, pkg.ErrUserNotFound
	}
	if err := authz.Check(authz.CallerOf(caller), action, targetOf(authz.ResourceCareStaff, staff.CommunityID)); err != nil {
		return nil, err
	}
	return staff, nil
}

func (s *CareStaffService) GetCareStaff(ctx context.Context, caller *model.User, id uint64) (*model.User, error) {
	return s.find(ctx, caller, authz.ActionRead, id)
}

func (s *CareStaffService) ListCareStaff(ctx context.Context, caller *model.User, communityID uint64) ([]model.User, error) {
	if err := authz.Check(authz.CallerOf(caller), authz.ActionRead, authz.In(authz.ResourceCareStaff, communityID)); err != nil {
		return nil, err
	}
	return s.users.ListByCommunity(ctx, communityID, model.RoleCareStaff)
}

func (s *CareStaffService) UpdateCareStaff(ctx context.Context, caller *model.User, id uint64, patch CareStaffPatch) (*model.User, error) {
	staff, err := s.find(ctx, caller, authz.ActionUpdate, id)
	if err != nil {
		return nil, err
	}
	up := model.UserPatch{Name: patch.Name, StaffID: patch.StaffID}
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		if email == "" {
			return nil, pkg.Validation("email required")
		}
		up.Email = &email
	}
	if patch.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hashed := string(hash)
		up.Password = &hashed
	}
	up.Apply(staff)
	if err := s.users.Update(ctx, staff); err != nil {
		return nil, err
	}
	return staff, nil
}

func (s *CareStaffService) DeleteCareStaff(ctx context.Context, caller *model.User, id uint64) error {
	if _, err := s.find(ctx, caller, authz.ActionDelete, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("care staff deleted", zap.Uint64("user_id", id), zap.Uint64("by", caller.ID))
	return nil
}
