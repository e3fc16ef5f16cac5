package service

import (
	"context"
	"strings"

	"Care_Community/internal/authz"
	"Care_Community/internal/model"
	"Care_Community/internal/pkg"
	"Care_Community/internal/repository"

	"go.uber.org/zap"
)

type RoomService struct {
	rooms       repository.RoomRepository
	users       repository.UserRepository
	communities repository.CommunityRepository
	cache       DeviceCache
	log         *zap.Logger
}

func NewRoomService(store *repository.Store, cache DeviceCache, log *zap.Logger) *RoomService {
	return &RoomService{rooms: store.Rooms, users: store.Users, communities: store.Communities, cache: cache, log: log}
}

type RoomInput struct {
	RoomNumber  string
	CommunityID *uint64 // 为空时取调用者所在社区
	ResidentID  *uint64
	FloorNumber *int
	RoomType    string
}

type RoomAlexaStatus struct {
	RoomID       uint64              `json:"room_id"`
	RoomNumber   string              `json:"room_number"`
	HasAlexa     bool                `json:"has_alexa"`
	AlexaDevices []model.AlexaDevice `json:"alexa_devices"`
}

func (s *RoomService) CreateRoom(ctx context.Context, caller *model.User, in RoomInput) (*model.Room, error) {
	communityID := communityOr(in.CommunityID, caller)
	if err := authz.Check(authz.CallerOf(caller), authz.ActionCreate, targetOf(authz.ResourceRoom, communityID)); err != nil {
		return nil, err
	}
	if communityID == nil {
		return nil, pkg.ErrNoCommunity
	}
	number := strings.TrimSpace(in.RoomNumber)
	if number == "" {
		return nil, pkg.Validation("room number required")
	}
	if _, err := s.communities.FindByID(ctx, *communityID); err != nil {
		return nil, err
	}
	if err := s.checkResident(ctx, in.ResidentID, *communityID); err != nil {
		return nil, err
	}

	room := &model.Room{
		RoomNumber:  number,
		CommunityID: *communityID,
		ResidentID:  in.ResidentID,
		FloorNumber: in.FloorNumber,
		RoomType:    in.RoomType,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	s.log.Info("room created", zap.Uint64("room_id", room.ID), zap.Uint64("community_id", room.CommunityID))
	return room, nil
}

// checkResident 住户必须属于同一社区
func (s *RoomService) checkResident(ctx context.Context, residentID *uint64, communityID uint64) error {
	if residentID == nil {
		return nil
	}
	resident, err := s.users.FindByID(ctx, *residentID)
	if err != nil {
		return err
	}
	if !resident.InCommunity(communityID) {
		return pkg.Validation("resident does not belong to this community")
	}
	return nil
}

func (s *RoomService) GetRoom(ctx context.Context, caller *model.User, id uint64) (*model.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(authz.CallerOf(caller), authz.ActionRead, authz.In(authz.ResourceRoom, room.CommunityID)); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *RoomService) ListRooms(ctx context.Context, caller *model.User, communityID uint64) ([]model.Room, error) {
	if err := authz.Check(authz.CallerOf(caller), authz.ActionRead, authz.In(authz.ResourceRoom, communityID)); err != nil {
		return nil, err
	}
	if _, err := s.communities.FindByID(ctx, communityID); err != nil {
		return nil, err
	}
	return s.rooms.ListByCommunity(ctx, communityID)
}

// MyRooms 调用者所在社区的房间及其设备
func (s *RoomService) MyRooms(ctx context.Context, caller *model.User) ([]model.Room, error) {
	if caller.CommunityID == nil {
		return nil, pkg.ErrNoCommunity
	}
	return s.ListRooms(ctx, caller, *caller.CommunityID)
}

func (s *RoomService) UpdateRoom(ctx context.Context, caller *model.User, id uint64, patch model.RoomPatch) (*model.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(authz.CallerOf(caller), authz.ActionUpdate, authz.In(authz.ResourceRoom, room.CommunityID)); err != nil {
		return nil, err
	}
	oldNumber := room.RoomNumber
	patch.Apply(room)
	room.RoomNumber = strings.TrimSpace(room.RoomNumber)
	if room.RoomNumber == "" {
		return nil, pkg.Validation("room number required")
	}
	if patch.ResidentID != nil {
		if err := s.checkResident(ctx, room.ResidentID, room.CommunityID); err != nil {
			return nil, err
		}
	}
	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, err
	}
	if room.RoomNumber != oldNumber {
		evictDevices(ctx, s.cache, s.log, room.AlexaDevices)
	}
	return room, nil
}

func (s *RoomService) DeleteRoom(ctx context.Context, caller *model.User, id uint64) error {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Check(authz.CallerOf(caller), authz.ActionDelete, authz.In(authz.ResourceRoom, room.CommunityID)); err != nil {
		return err
	}
	// 配对不可撤销，房间下仍有设备时拒绝删除
	if len(room.AlexaDevices) > 0 {
		return pkg.ErrRoomHasDevices
	}
	if err := s.rooms.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("room deleted", zap.Uint64("room_id", id), zap.Uint64("by", caller.ID))
	return nil
}

func (s *RoomService) RoomAlexaStatus(ctx context.Context, caller *model.User, id uint64) (*RoomAlexaStatus, error) {
	room, err := s.GetRoom(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	devices := room.AlexaDevices
	if devices == nil {
		devices = []model.AlexaDevice{}
	}
	return &RoomAlexaStatus{
		RoomID:       room.ID,
		RoomNumber:   room.RoomNumber,
		HasAlexa:     len(devices) > 0,
		AlexaDevices: devices,
	}, nil
}
