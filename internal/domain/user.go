package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrUnknownRole        = errors.New("unknown role")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	UserID       string    `gorm:"column:user_id;primaryKey;size:32" json:"id"`
	Name         string    `gorm:"size:64;not null" json:"name"`
	PasswordHash string    `gorm:"size:100" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

type Role struct {
	RoleName        string `gorm:"column:role_name;primaryKey;size:32" json:"name"`
	RoleLevel       int    `gorm:"column:role_level;not null" json:"level"` // 越小越靠前
	RoleDescription string `gorm:"column:role_description;size:255" json:"description"`
}

func (Role) TableName() string { return "roles" }

type UserRole struct {
	UserID   string `gorm:"column:user_id;primaryKey;size:32"`
	RoleName string `gorm:"column:role_name;primaryKey;size:32"`
}

func (UserRole) TableName() string { return "user_roles" }

// UserRow 用户列表的一行（用户 × 角色）
type UserRow struct {
	ID          string `json:"id"          yaml:"id"`
	Name        string `json:"name"        yaml:"name"`
	Role        string `json:"role"        yaml:"role"`
	Description string `json:"description" yaml:"description"`
}

// UserUpdate 编辑用户；PasswordHash 为空表示不改密码。
// PrevRole 为被编辑的那一行的角色，只替换这条关联
type UserUpdate struct {
	UserID       string
	Name         string
	Role         string
	PrevRole     string
	PasswordHash string
}

type UserRepository interface {
	ListRows(ctx context.Context) ([]UserRow, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByName(ctx context.Context, name string) ([]User, error)
	RoleNames(ctx context.Context, userID string) ([]string, error)
	Roles(ctx context.Context) ([]Role, error)
	RoleExists(ctx context.Context, role string) (bool, error)
	Create(ctx context.Context, u *User, role string) error
	Update(ctx context.Context, in UserUpdate) error
	Delete(ctx context.Context, id string) (int64, error)
}
