package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-user-admin/internal/domain"
	"go-user-admin/internal/service"
	"go-user-admin/internal/transport/http/action"
)

// UserAdmin 由 *service.UserService 实现
type UserAdmin interface {
	List(ctx context.Context) ([]domain.UserRow, error)
	Roles(ctx context.Context) ([]domain.Role, error)
	Delete(ctx context.Context, id string) error
	Edit(ctx context.Context, in service.EditUserInput) error
	Add(ctx context.Context, in service.AddUserInput) error
}

type UserHandler struct{ svc UserAdmin }

func NewUserHandler(svc UserAdmin) *UserHandler { return &UserHandler{svc: svc} }

type ListOut struct {
	Total int              `json:"total"`
	Items []domain.UserRow `json:"items"`
}

type EditIn struct {
	Name     string `json:"name"     binding:"required,max=64"`
	Role     string `json:"role"     binding:"required,max=32"`
	PrevRole string `json:"prevRole" binding:"omitempty,max=32"`
	Password string `json:"password" binding:"omitempty,min=3,max=72"`
}

type AddIn struct {
	ID       string `json:"id"       binding:"required,max=32"`
	Name     string `json:"name"     binding:"required,max=64"`
	Role     string `json:"role"     binding:"required,max=32"`
	Password string `json:"password" binding:"required,min=3,max=72"`
}

// MutateOut 写操作统一出参
type MutateOut struct {
	ID string `json:"id"`
	OK bool   `json:"ok"`
}

func (h *UserHandler) Priority() int { return 10 }

// MountAdmin 挂在 /admin/v1（已鉴权）
func (h *UserHandler) MountAdmin(g *gin.RouterGroup) {
	// --- GET /users 用户列表（按角色级别排序） ---
	action.Register(g, action.Action[struct{}, ListOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: action.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (ListOut, error) {
			rows, err := h.svc.List(c.Request.Context())
			if err != nil {
				return ListOut{}, action.Internal("list users failed", err)
			}
			return ListOut{Total: len(rows), Items: rows}, nil
		},
	})

	// --- GET /roles 角色目录 ---
	action.Register(g, action.Action[struct{}, []domain.Role]{
		Method: http.MethodGet,
		Path:   "/roles",
		Binder: action.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Role, error) {
			roles, err := h.svc.Roles(c.Request.Context())
			if err != nil {
				return nil, action.Internal("list roles failed", err)
			}
			return roles, nil
		},
	})

	// --- DELETE /users/:id 删除；保护账号返回 403 + 文案 ---
	action.Register(g, action.Action[struct{}, MutateOut]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: action.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (MutateOut, error) {
			id := strings.TrimSpace(c.Param("id"))
			if id == "" {
				return MutateOut{}, action.BadRequest("missing id")
			}
			if err := h.svc.Delete(c.Request.Context(), id); err != nil {
				return MutateOut{}, mapErr("delete user failed", err)
			}
			return MutateOut{ID: id, OK: true}, nil
		},
	})

	// --- PUT /users/:id 编辑 ---
	action.Register(g, action.Action[EditIn, MutateOut]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: action.BindJSON,
		Handler: func(c *gin.Context, in *EditIn) (MutateOut, error) {
			id := strings.TrimSpace(c.Param("id"))
			err := h.svc.Edit(c.Request.Context(), service.EditUserInput{
				ID: id, Name: in.Name, Role: in.Role, PrevRole: in.PrevRole, Password: in.Password,
			})
			if err != nil {
				return MutateOut{}, mapErr("edit user failed", err)
			}
			return MutateOut{ID: id, OK: true}, nil
		},
	})

	// --- POST /users 新增 ---
	action.Register(g, action.Action[AddIn, MutateOut]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: action.BindJSON,
		Handler: func(c *gin.Context, in *AddIn) (MutateOut, error) {
			err := h.svc.Add(c.Request.Context(), service.AddUserInput{
				ID: in.ID, Name: in.Name, Role: in.Role, Password: in.Password,
			})
			if err != nil {
				return MutateOut{}, mapErr("add user failed", err)
			}
			return MutateOut{ID: in.ID, OK: true}, nil
		},
	})
}

func mapErr(msg string, err error) error {
	switch {
	case service.IsRefusal(err):
		return action.Forbidden(err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		return action.NotFound("user not found")
	case errors.Is(err, domain.ErrUserExists):
		return action.Conflict("user already exists")
	case errors.Is(err, domain.ErrUnknownRole):
		return action.BadRequest(err.Error())
	default:
		return action.Internal(msg, err)
	}
}
