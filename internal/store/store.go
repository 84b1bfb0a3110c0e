package store

import (
	"context"
	"errors"

	"taskboard/internal/model"
)

// ErrNotFound 表示按 ID 查询不到对应记录。
var ErrNotFound = errors.New("record not found")

// UserStore 定义用户的持久化操作。
type UserStore interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUserWithTasks(ctx context.Context, id uint) (*model.User, error)
	GetUserWithRole(ctx context.Context, id uint) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UserExists(ctx context.Context, id uint) (bool, error)
	CreateUser(ctx context.Context, user *model.User) error
	// UpdateUser 只更新 updates 中出现的列。空 map 仅做存在性检查。
	UpdateUser(ctx context.Context, id uint, updates map[string]interface{}) error
	// DeleteUser 在同一事务中先删除用户的全部任务，再删除用户本身。
	DeleteUser(ctx context.Context, id uint) error
}

// TaskStore 定义任务的持久化操作。
type TaskStore interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	GetTask(ctx context.Context, id uint) (*model.Task, error)
	CreateTask(ctx context.Context, task *model.Task) error
	UpdateTask(ctx context.Context, id uint, updates map[string]interface{}) error
	DeleteTask(ctx context.Context, id uint) error
}

// RoleStore 定义角色的持久化操作。
type RoleStore interface {
	ListRoles(ctx context.Context) ([]model.Role, error)
	GetRole(ctx context.Context, id uint) (*model.Role, error)
	CreateRole(ctx context.Context, role *model.Role) error
	UpdateRole(ctx context.Context, id uint, updates map[string]interface{}) error
	DeleteRole(ctx context.Context, id uint) error
}
