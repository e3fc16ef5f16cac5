package mysql

import (
	"context"
	"errors"
	"time"

	"Care_Community/internal/model"
	"Care_Community/internal/pkg"

	"gorm.io/gorm"
)

type AlexaDeviceRepository struct {
	DB *gorm.DB
}

func NewAlexaDeviceRepository(db *gorm.DB) *AlexaDeviceRepository {
	return &AlexaDeviceRepository{DB: db}
}

// Create 唯一索引是并发配对的最终裁决
func (r *AlexaDeviceRepository) Create(ctx context.Context, d *model.AlexaDevice) error {
	err := r.DB.WithContext(ctx).Create(d).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkg.ErrAlreadyPaired
	}
	return err
}

func (r *AlexaDeviceRepository) FindByID(ctx context.Context, id uint64) (*model.AlexaDevice, error) {
	var d model.AlexaDevice
	err := r.DB.WithContext(ctx).First(&d, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrDeviceNotFound
	}
	return &d, err
}

func (r *AlexaDeviceRepository) FindByDeviceID(ctx context.Context, deviceID string) (*model.AlexaDevice, error) {
	var d model.AlexaDevice
	err := r.DB.WithContext(ctx).Where("device_id = ?", deviceID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrDeviceNotFound
	}
	return &d, err
}

func (r *AlexaDeviceRepository) List(ctx context.Context) ([]model.AlexaDevice, error) {
	var list []model.AlexaDevice
	err := r.DB.WithContext(ctx).Order("id").Find(&list).Error
	return list, err
}

func (r *AlexaDeviceRepository) ListByCommunity(ctx context.Context, communityID uint64) ([]model.AlexaDevice, error) {
	var list []model.AlexaDevice
	err := r.DB.WithContext(ctx).Where("community_id = ?", communityID).Order("id").Find(&list).Error
	return list, err
}

func (r *AlexaDeviceRepository) UpdateStatus(ctx context.Context, id uint64, status model.DeviceStatus) error {
	res := r.DB.WithContext(ctx).Model(&model.AlexaDevice{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkg.ErrDeviceNotFound
	}
	return nil
}

// RecordRequest 计数在库内自增，避免并发请求互相覆盖
func (r *AlexaDeviceRepository) RecordRequest(ctx context.Context, id uint64, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&model.AlexaDevice{}).Where("id = ?", id).Updates(map[string]any{
		"last_request":           at,
		"total_number_requested": gorm.Expr("total_number_requested + ?", 1),
	}).Error
}
