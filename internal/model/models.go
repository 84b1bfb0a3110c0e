package model

// 角色名称常量。
const (
	RoleAdmin = "admin"
)

// User 表示系统用户。
//
// 一个用户拥有零个或多个任务，并可关联一个角色。
// Password 存储的是 bcrypt 哈希，绝不存明文。
type User struct {
	ID       uint   `gorm:"primaryKey"`                 // 用户 ID
	Username string `gorm:"type:varchar(191);not null"` // 用户名
	Password string `gorm:"not null"`                   // bcrypt 哈希
	RoleID   *uint  // 所属角色 ID（可为空）
	Role     *Role  `gorm:"foreignKey:RoleID"` // 所属角色

	Tasks []Task `gorm:"foreignKey:UserID"` // 用户拥有的任务
}

// Role 表示用户角色，用于接口的权限校验。
type Role struct {
	ID   uint   `gorm:"primaryKey"`                // 角色 ID
	Name string `gorm:"type:varchar(64);not null"` // 角色名称，如 "admin"

	Users []User `gorm:"foreignKey:RoleID"` // 引用该角色的用户
}

// Task 表示一条待办任务。
//
// 每个任务在创建时必须归属于一个存在的用户。
type Task struct {
	ID     uint   `gorm:"primaryKey"`        // 任务 ID
	UserID uint   `gorm:"not null"`          // 所属用户 ID
	User   User   `gorm:"foreignKey:UserID"` // 所属用户
	Title  string `gorm:"not null"`          // 任务标题
	Done   bool   `gorm:"not null"`          // 是否已完成
}
