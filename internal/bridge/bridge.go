// Package bridge is the typed channel between the user list view and the
// backend that owns user data.
package bridge

import (
	"context"
	"fmt"

	"go-user-admin/internal/domain"
)

// StatusOK 列表查询成功码
const StatusOK = 200

// ListUsers 查询全部可见用户（已按角色级别排序）
type ListUsers struct{}

// DeleteUser 删除命令
type DeleteUser struct{ ID string }

// Mutation 写命令：EditUser / AddUser
type Mutation interface{ mutation() }

type EditUser struct {
	ID       string
	Name     string
	Role     string
	PrevRole string // 编辑前该行的角色；同一用户的其它角色不受影响
	Password string // 为空不修改
}

type AddUser struct {
	ID       string
	Name     string
	Role     string
	Password string
}

func (EditUser) mutation() {}
func (AddUser) mutation()  {}

type QueryResult struct {
	Code    int
	Message string
	Data    []domain.UserRow
}

func (r QueryResult) OK() bool { return r.Code == StatusOK }

// Result 删除结果；OK=false 且 Message 非空表示被拒绝（文案可直接展示）
type Result struct {
	OK      bool
	Message string
}

// Bridge 视图只依赖这三个调用
type Bridge interface {
	Query(ctx context.Context, q ListUsers) (QueryResult, error)
	Execute(ctx context.Context, cmd DeleteUser) (Result, error)
	Mutate(ctx context.Context, m Mutation) (bool, error)
}

// RoleCatalog 表单校验用的角色目录
type RoleCatalog interface {
	Roles(ctx context.Context) ([]domain.Role, error)
}

// RemoteError 后端返回的非成功业务码
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote error %d", e.Code)
	}
	return e.Message
}

// RoleNames 取角色名，顺序不变
func RoleNames(roles []domain.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.RoleName)
	}
	return out
}
