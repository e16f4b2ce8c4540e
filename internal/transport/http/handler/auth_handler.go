package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-user-admin/internal/core/auth"
	"go-user-admin/internal/domain"
	"go-user-admin/internal/transport/http/action"
)

type Authenticator interface {
	Authenticate(ctx context.Context, idOrName, password string) (*domain.User, []string, error)
}

// AuthHandler 后台登录；只有持有 AdminRoles 之一的账号能拿到令牌
type AuthHandler struct {
	svc        Authenticator
	jwt        *auth.JWTer
	AdminRoles []string
}

func NewAuthHandler(svc Authenticator, j *auth.JWTer) *AuthHandler {
	return &AuthHandler{svc: svc, jwt: j, AdminRoles: []string{"developer", "admin"}}
}

type LoginIn struct {
	UserID   string `json:"userId"   binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginOut struct {
	Token string   `json:"token"`
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

func (h *AuthHandler) Priority() int { return 0 }

// MountPublic 挂在 /admin/v1（无需登录）
func (h *AuthHandler) MountPublic(g *gin.RouterGroup) {
	action.Register(g, action.Action[LoginIn, LoginOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: action.BindJSON,
		Handler: func(c *gin.Context, in *LoginIn) (LoginOut, error) {
			u, roles, err := h.svc.Authenticate(c.Request.Context(), in.UserID, in.Password)
			if errors.Is(err, domain.ErrInvalidCredentials) {
				return LoginOut{}, action.Unauthorized("invalid credentials")
			}
			if err != nil {
				return LoginOut{}, action.Internal("login failed", err)
			}
			if !h.isAdmin(roles) {
				return LoginOut{}, action.Forbidden("account has no administration role")
			}
			tok, err := h.jwt.Issue(u.UserID, roles)
			if err != nil || tok == "" {
				return LoginOut{}, action.Internal("issue token failed", err)
			}
			return LoginOut{Token: tok, ID: u.UserID, Name: u.Name, Roles: roles}, nil
		},
	})
}

func (h *AuthHandler) isAdmin(roles []string) bool {
	for _, r := range roles {
		for _, a := range h.AdminRoles {
			if r == a {
				return true
			}
		}
	}
	return false
}
