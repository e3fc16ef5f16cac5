package mysql

import (
	"context"
	"errors"

	"Care_Community/internal/model"
	"Care_Community/internal/pkg"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	err := r.DB.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkg.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrUserNotFound
	}
	return &user, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrUserNotFound
	}
	return &user, err
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]model.User, error) {
	var list []model.User
	err := r.DB.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

// ListByCommunity roles 为空时返回社区全部成员
func (r *UserRepository) ListByCommunity(ctx context.Context, communityID uint64, roles ...model.Role) ([]model.User, error) {
	var list []model.User
	q := r.DB.WithContext(ctx).Where("community_id = ?", communityID)
	if len(roles) > 0 {
		q = q.Where("role IN ?", roles)
	}
	err := q.Order("id").Find(&list).Error
	return list, err
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	err := r.DB.WithContext(ctx).Model(user).Updates(map[string]any{
		"name":         user.Name,
		"email":        user.Email,
		"role":         user.Role,
		"staff_id":     user.StaffID,
		"password":     user.Password,
		"community_id": user.CommunityID,
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkg.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) Delete(ctx context.Context, id uint64) error {
	tx := r.DB.WithContext(ctx).Delete(&model.User{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return pkg.ErrUserNotFound
	}
	return nil
}
