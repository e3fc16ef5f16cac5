package mysql

import (
	"context"
	"errors"

	"Care_Community/internal/model"
	"Care_Community/internal/pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommunityRepository struct {
	DB *gorm.DB
}

func NewCommunityRepository(db *gorm.DB) *CommunityRepository {
	return &CommunityRepository{DB: db}
}

// CreateWithFounder 同一事务内建社区并提升创建者；任一步失败整体回滚，错误原样返回
func (r *CommunityRepository) CreateWithFounder(ctx context.Context, c *model.Community, founderID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return pkg.ErrPinTaken
			}
			return err
		}

		// 锁住创建者行，同一用户并发建社区时后到者等待并看到已绑定的 community_id
		var founder model.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&founder, founderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkg.ErrFounderNotFound
		}
		if err != nil {
			return err
		}
		if founder.CommunityID != nil {
			return pkg.ErrAlreadyMember
		}

		founder.PromoteToFounder(c.ID)
		return tx.Model(&founder).Updates(map[string]any{
			"community_id": founder.CommunityID,
			"role":         founder.Role,
		}).Error
	})
}

func (r *CommunityRepository) FindByID(ctx context.Context, id uint64) (*model.Community, error) {
	var community model.Community
	err := r.DB.WithContext(ctx).First(&community, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrCommunityNotFound
	}
	return &community, err
}

func (r *CommunityRepository) FindByPin(ctx context.Context, pin string) (*model.Community, error) {
	var community model.Community
	err := r.DB.WithContext(ctx).Where("pin_code = ?", pin).First(&community).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrCommunityNotFound
	}
	return &community, err
}

func (r *CommunityRepository) PinExists(ctx context.Context, pin string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Community{}).Where("pin_code = ?", pin).Count(&count).Error
	return count > 0, err
}

func (r *CommunityRepository) List(ctx context.Context, offset, limit int) ([]model.Community, error) {
	var list []model.Community
	err := r.DB.WithContext(ctx).Order("id desc").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

func (r *CommunityRepository) Update(ctx context.Context, c *model.Community) error {
	return r.DB.WithContext(ctx).Model(c).Updates(map[string]any{
		"name":         c.Name,
		"address":      c.Address,
		"email":        c.Email,
		"phone_number": c.PhoneNumber,
	}).Error
}

// Delete 同时解绑社区成员，避免悬空的 community_id
func (r *CommunityRepository) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("community_id = ?", id).
			Update("community_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Community{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkg.ErrCommunityNotFound
		}
		return nil
	})
}
