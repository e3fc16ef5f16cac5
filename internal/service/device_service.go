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

// DeviceService 设备配对与解析。状态只有 unpaired -> paired，不提供解绑
type DeviceService struct {
	devices     repository.AlexaDeviceRepository
	rooms       repository.RoomRepository
	communities repository.CommunityRepository
	cache       DeviceCache
	log         *zap.Logger
}

func NewDeviceService(store *repository.Store, cache DeviceCache, log *zap.Logger) *DeviceService {
	return &DeviceService{
		devices:     store.Devices,
		rooms:       store.Rooms,
		communities: store.Communities,
		cache:       cache,
		log:         log,
	}
}

// Pair 按 PIN 找社区、按房间号找房间，再登记设备；已登记的设备不会被覆盖
func (s *DeviceService) Pair(ctx context.Context, deviceID, pin, roomNumber string) (*model.AlexaDevice, error) {
	pin = pkg.NormalizePin(pin)
	if pin == "" {
		return nil, pkg.ErrMissingCredential
	}
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, pkg.ErrMissingDeviceID
	}

	community, err := s.communities.FindByPin(ctx, pin)
	if errors.Is(err, pkg.ErrCommunityNotFound) {
		return nil, pkg.ErrUnknownCommunity
	}
	if err != nil {
		return nil, err
	}

	room, err := s.rooms.FindByNumber(ctx, strings.TrimSpace(roomNumber), community.ID)
	if errors.Is(err, pkg.ErrRoomNotFound) {
		return nil, pkg.ErrUnknownRoom
	}
	if err != nil {
		return nil, err
	}

	_, err = s.devices.FindByDeviceID(ctx, deviceID)
	if err == nil {
		return nil, pkg.ErrAlreadyPaired
	}
	if !errors.Is(err, pkg.ErrDeviceNotFound) {
		return nil, err
	}

	now := clock()
	device := &model.AlexaDevice{
		DeviceID:    deviceID,
		RoomID:      room.ID,
		CommunityID: community.ID,
		Status:      model.DeviceStatusActive,
		LastSynced:  &now,
	}
	// 并发配对时由唯一索引裁决，失败方得到 ErrAlreadyPaired
	if err := s.devices.Create(ctx, device); err != nil {
		return nil, err
	}
	s.log.Info("alexa device paired",
		zap.String("device_id", deviceID),
		zap.Uint64("room_id", room.ID),
		zap.Uint64("community_id", community.ID))

	s.warm(ctx, deviceID, &model.DeviceContext{
		AlexaDeviceID: device.ID,
		RoomID:        room.ID,
		RoomNumber:    room.RoomNumber,
		CommunityID:   community.ID,
		CommunityName: community.Name,
	})
	return device, nil
}

// Resolve 由裸设备 id 还原租户上下文；缓存失败时回源
func (s *DeviceService) Resolve(ctx context.Context, deviceID string) (*model.DeviceContext, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, pkg.ErrDeviceNotPaired
	}
	if s.cache != nil {
		dc, hit, err := s.cache.Get(ctx, deviceID)
		if err != nil {
			s.log.Warn("device cache get failed", zap.String("device_id", deviceID), zap.Error(err))
		} else if hit {
			return dc, nil
		}
	}

	device, err := s.devices.FindByDeviceID(ctx, deviceID)
	if errors.Is(err, pkg.ErrDeviceNotFound) {
		return nil, pkg.ErrDeviceNotPaired
	}
	if err != nil {
		return nil, err
	}
	room, err := s.rooms.FindByID(ctx, device.RoomID)
	if err != nil {
		return nil, err
	}
	community, err := s.communities.FindByID(ctx, device.CommunityID)
	if err != nil {
		return nil, err
	}

	dc := &model.DeviceContext{
		AlexaDeviceID: device.ID,
		RoomID:        room.ID,
		RoomNumber:    room.RoomNumber,
		CommunityID:   community.ID,
		CommunityName: community.Name,
	}
	s.warm(ctx, deviceID, dc)
	return dc, nil
}

func (s *DeviceService) warm(ctx context.Context, deviceID string, dc *model.DeviceContext) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, deviceID, dc); err != nil {
		s.log.Warn("device cache set failed", zap.String("device_id", deviceID), zap.Error(err))
	}
}

// RecordRequest 更新 last_request / total_number_requested，失败只记日志
func (s *DeviceService) RecordRequest(ctx context.Context, alexaDeviceID uint64) {
	if err := s.devices.RecordRequest(ctx, alexaDeviceID, clock()); err != nil {
		s.log.Warn("record device request failed", zap.Uint64("alexa_device_id", alexaDeviceID), zap.Error(err))
	}
}

// ListDevices 管理员看全部，经理只看本社区
func (s *DeviceService) ListDevices(ctx context.Context, caller *model.User) ([]model.AlexaDevice, error) {
	if caller.Role == model.RoleAdministrator {
		return nonEmpty(s.devices.List(ctx))
	}
	if err := authz.Check(authz.CallerOf(caller), authz.ActionRead, targetOf(authz.ResourceDevice, caller.CommunityID)); err != nil {
		return nil, err
	}
	return nonEmpty(s.devices.ListByCommunity(ctx, *caller.CommunityID))
}

func (s *DeviceService) ListCommunityDevices(ctx context.Context, caller *model.User, communityID uint64) ([]model.AlexaDevice, error) {
	if err := authz.Check(authz.CallerOf(caller), authz.ActionRead, authz.In(authz.ResourceDevice, communityID)); err != nil {
		return nil, err
	}
	if _, err := s.communities.FindByID(ctx, communityID); err != nil {
		return nil, err
	}
	return nonEmpty(s.devices.ListByCommunity(ctx, communityID))
}

func (s *DeviceService) UpdateDeviceStatus(ctx context.Context, caller *model.User, id uint64, status model.DeviceStatus) (*model.AlexaDevice, error) {
	if !status.Valid() {
		return nil, pkg.ErrInvalidStatus
	}
	device, err := s.devices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(authz.CallerOf(caller), authz.ActionUpdate, authz.In(authz.ResourceDevice, device.CommunityID)); err != nil {
		return nil, err
	}
	if err := s.devices.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	device.Status = status
	return device, nil
}

// nonEmpty 空列表按 404 处理
func nonEmpty(list []model.AlexaDevice, err error) ([]model.AlexaDevice, error) {
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, pkg.ErrNoDevices
	}
	return list, nil
}
