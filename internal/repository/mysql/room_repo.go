package mysql

import (
	"context"
	"errors"

	"Care_Community/internal/model"
	"Care_Community/internal/pkg"

	"gorm.io/gorm"
)

type RoomRepository struct {
	DB *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{DB: db}
}

func (r *RoomRepository) Create(ctx context.Context, room *model.Room) error {
	err := r.DB.WithContext(ctx).Omit("AlexaDevices").Create(room).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return r.duplicateOf(ctx, room)
	}
	return err
}

// duplicateOf 唯一键冲突时区分是房间号还是住户
func (r *RoomRepository) duplicateOf(ctx context.Context, room *model.Room) error {
	if room.ResidentID == nil {
		return pkg.ErrRoomNumberTaken
	}
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Room{}).
		Where("resident_id = ? AND id <> ?", *room.ResidentID, room.ID).
		Count(&n).Error
	if err == nil && n > 0 {
		return pkg.ErrResidentAssigned
	}
	return pkg.ErrRoomNumberTaken
}

func (r *RoomRepository) FindByID(ctx context.Context, id uint64) (*model.Room, error) {
	var room model.Room
	err := r.DB.WithContext(ctx).Preload("AlexaDevices").First(&room, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrRoomNotFound
	}
	return &room, err
}

func (r *RoomRepository) FindByNumber(ctx context.Context, number string, communityID uint64) (*model.Room, error) {
	var room model.Room
	err := r.DB.WithContext(ctx).
		Where("room_number = ? AND community_id = ?", number, communityID).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrRoomNotFound
	}
	return &room, err
}

func (r *RoomRepository) ListByCommunity(ctx context.Context, communityID uint64) ([]model.Room, error) {
	var list []model.Room
	err := r.DB.WithContext(ctx).Preload("AlexaDevices").
		Where("community_id = ?", communityID).
		Order("room_number").
		Find(&list).Error
	return list, err
}

func (r *RoomRepository) Update(ctx context.Context, room *model.Room) error {
	err := r.DB.WithContext(ctx).Model(room).Updates(map[string]any{
		"room_number":  room.RoomNumber,
		"resident_id":  room.ResidentID,
		"floor_number": room.FloorNumber,
		"room_type":    room.RoomType,
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return r.duplicateOf(ctx, room)
	}
	return err
}

func (r *RoomRepository) Delete(ctx context.Context, id uint64) error {
	res := r.DB.WithContext(ctx).Delete(&model.Room{}, id)
	if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
		return pkg.ErrRoomHasDevices
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkg.ErrRoomNotFound
	}
	return nil
}
