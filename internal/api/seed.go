package api

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedData 初始化 admin 角色与管理员账号。
//
// 新数据库上没有任何用户时，受角色守卫保护的接口都无法访问，
// 所以启动时保证存在一个 admin 角色的管理员。已存在则不做改动。
func (s *Server) SeedData(ctx context.Context) error {
	const adminUsername = "admin"

	var role model.Role
	err := s.db.WithContext(ctx).Where("name = ?", model.RoleAdmin).First(&role).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		role = model.Role{Name: model.RoleAdmin}
		if err := s.db.WithContext(ctx).Create(&role).Error; err != nil {
			return err
		}
	}

	var user model.User
	err = s.db.WithContext(ctx).Where("username = ?", adminUsername).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(s.cfg.Security.AdminPassword), bcrypt.DefaultCost)
		if hashErr != nil {
			return hashErr
		}
		user = model.User{
			Username: adminUsername,
			Password: string(hash),
			RoleID:   &role.ID,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return err
		}
	}

	return nil
}
