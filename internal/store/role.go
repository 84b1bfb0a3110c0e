package store

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"gorm.io/gorm"
)

type roleStore struct {
	db *gorm.DB
}

// NewRoleStore 创建基于 gorm 的 RoleStore 实现。
func NewRoleStore(db *gorm.DB) RoleStore {
	return &roleStore{db: db}
}

func (s *roleStore) ListRoles(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := s.db.WithContext(ctx).Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *roleStore) GetRole(ctx context.Context, id uint) (*model.Role, error) {
	var role model.Role
	err := s.db.WithContext(ctx).First(&role, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (s *roleStore) CreateRole(ctx context.Context, role *model.Role) error {
	return s.db.WithContext(ctx).Create(role).Error
}

func (s *roleStore) UpdateRole(ctx context.Context, id uint, updates map[string]interface{}) error {
	var role model.Role
	if err := s.db.WithContext(ctx).First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&model.Role{}).Where("id = ?", id).Updates(updates).Error
}

func (s *roleStore) DeleteRole(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Role{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
