package service

import (
	"context"
	"errors"
	"strings"

	"Care_Community/internal/authz"
	"Care_Community/internal/model"
	"Care_Community/internal/pkg"
	"Care_Community/internal/repository"

	"go.uber.org/zap"
)

// MaxPinAttempts PIN 生成的重试上限
const MaxPinAttempts = 10

type CommunityService struct {
	communities repository.CommunityRepository
	rooms       repository.RoomRepository
	devices     repository.AlexaDeviceRepository
	locker      Locker
	cache       DeviceCache
	randPin     func() (string, error)
	log         *zap.Logger
}

func NewCommunityService(store *repository.Store, locker Locker, cache DeviceCache, log *zap.Logger) *CommunityService {
	return &CommunityService{
		communities: store.Communities,
		rooms:       store.Rooms,
		devices:     store.Devices,
		locker:      locker,
		cache:       cache,
		randPin:     pkg.RandPin,
		log:         log,
	}
}

type CommunityInput struct {
	Name        string
	Address     string
	Email       string
	PhoneNumber string
}

// CreateCommunity 生成唯一 PIN，写入社区并把创建者提升为该社区经理（同一事务）
func (s *CommunityService) CreateCommunity(ctx context.Context, founder *model.User, in CommunityInput) (*model.Community, error) {
	name := strings.TrimSpace(in.Name)
	address := strings.TrimSpace(in.Address)
	if name == "" || address == "" {
		return nil, pkg.Validation("community name and address are required")
	}
	if founder.CommunityID != nil {
		return nil, pkg.ErrAlreadyMember
	}

	for attempt := 1; attempt <= MaxPinAttempts; attempt++ {
		pin, err := s.randPin()
		if err != nil {
			return nil, err
		}
		c := &model.Community{
			Name:        name,
			Address:     address,
			Email:       in.Email,
			PhoneNumber: in.PhoneNumber,
			PinCode:     pin,
			CreatedByID: founder.ID,
		}
		err = s.tryCreate(ctx, c, founder.ID)
		if errors.Is(err, pkg.ErrPinTaken) {
			s.log.Debug("pin collision, retrying", zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}

		founder.PromoteToFounder(c.ID)
		s.log.Info("community created",
			zap.Uint64("community_id", c.ID),
			zap.Uint64("founder_id", founder.ID))
		return c, nil
	}
	return nil, pkg.ErrPinGeneration
}

// tryCreate 预检查只是为了友好重试，唯一索引才是最终裁决
func (s *CommunityService) tryCreate(ctx context.Context, c *model.Community, founderID uint64) error {
	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, "community:pin:"+c.PinCode)
		if err != nil {
			s.log.Warn("pin reservation unavailable", zap.Error(err))
		} else if !ok {
			return pkg.ErrPinTaken
		} else {
			defer release()
		}
	}

	exists, err := s.communities.PinExists(ctx, c.PinCode)
	if err != nil {
		return err
	}
	if exists {
		return pkg.ErrPinTaken
	}

	err = s.communities.CreateWithFounder(ctx, c, founderID)
	var perr *pkg.Error
	if err != nil && !errors.As(err, &perr) {
		return pkg.Transaction("community creation rolled back", err)
	}
	return err
}

func (s *CommunityService) LookupByPin(ctx context.Context, pin string) (*model.Community, error) {
	pin = pkg.NormalizePin(pin)
	if pin == "" {
		return nil, pkg.ErrMissingCredential
	}
	return s.communities.FindByPin(ctx, pin)
}

func (s *CommunityService) GetCommunity(ctx context.Context, caller *model.User, id uint64) (*model.Community, error) {
	if err := authz.Check(authz.CallerOf(caller), authz.ActionRead, authz.In(authz.ResourceCommunity, id)); err != nil {
		return nil, err
	}
	return s.communities.FindByID(ctx, id)
}

// ListCommunities 仅管理员
func (s *CommunityService) ListCommunities(ctx context.Context, caller *model.User, page, size int) ([]model.Community, error) {
	if err := authz.Check(authz.CallerOf(caller), authz.ActionRead, authz.Global(authz.ResourceCommunity)); err != nil {
		return nil, err
	}
	offset, limit := pageOffset(page, size)
	return s.communities.List(ctx, offset, limit)
}

func (s *CommunityService) UpdateCommunity(ctx context.Context, caller *model.User, id uint64, patch model.CommunityPatch) (*model.Community, error) {
	if err := authz.Check(authz.CallerOf(caller), authz.ActionUpdate, authz.In(authz.ResourceCommunity, id)); err != nil {
		return nil, err
	}
	c, err := s.communities.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldName := c.Name
	patch.Apply(c)
	if strings.TrimSpace(c.Name) == "" {
		return nil, pkg.Validation("community name required")
	}
	if err := s.communities.Update(ctx, c); err != nil {
		return nil, err
	}
	if c.Name != oldName && s.cache != nil {
		devices, err := s.devices.ListByCommunity(ctx, c.ID)
		if err != nil {
			s.log.Warn("list devices for cache evict failed", zap.Uint64("community_id", c.ID), zap.Error(err))
		} else {
			evictDevices(ctx, s.cache, s.log, devices)
		}
	}
	return c, nil
}

// DeleteCommunity 仅管理员，且社区下已无房间
func (s *CommunityService) DeleteCommunity(ctx context.Context, caller *model.User, id uint64) error {
	if err := authz.Check(authz.CallerOf(caller), authz.ActionDelete, authz.In(authz.ResourceCommunity, id)); err != nil {
		return err
	}
	if _, err := s.communities.FindByID(ctx, id); err != nil {
		return err
	}
	rooms, err := s.rooms.ListByCommunity(ctx, id)
	if err != nil {
		return err
	}
	if len(rooms) > 0 {
		return pkg.ErrCommunityNotEmpty
	}
	if err := s.communities.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("community deleted", zap.Uint64("community_id", id), zap.Uint64("by", caller.ID))
	return nil
}

// ManagerCommunity 调用者所管理的社区
func (s *CommunityService) ManagerCommunity(ctx context.Context, caller *model.User) (*model.Community, error) {
	if caller.CommunityID == nil {
		return nil, pkg.ErrNoCommunity
	}
	if err := authz.Check(authz.CallerOf(caller), authz.ActionUpdate, authz.In(authz.ResourceCommunity, *caller.CommunityID)); err != nil {
		return nil, err
	}
	return s.communities.FindByID(ctx, *caller.CommunityID)
}
