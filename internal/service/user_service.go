package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-user-admin/internal/core/cache"
	"go-user-admin/internal/domain"
	"go-user-admin/pkg/utils"
)

const rowsCacheKey = "users:rows"

// RefusalError 策略拒绝；Message 直接展示给操作者
type RefusalError struct {
	ID      string
	Message string
}

func (e *RefusalError) Error() string { return e.Message }

// IsRefusal 判断是否策略拒绝
func IsRefusal(err error) bool {
	var re *RefusalError
	return errors.As(err, &re)
}

// RowsCache 由 *cache.Cache 实现
type RowsCache interface {
	cache.Loader
	Invalidate(ctx context.Context, keys ...string) error
}

type EditUserInput struct {
	ID       string
	Name     string
	Role     string
	PrevRole string // 列表中该行原来的角色
	Password string // 为空不修改
}

type AddUserInput struct {
	ID       string
	Name     string
	Role     string
	Password string
}

type Option func(*UserService)

func WithCache(c RowsCache, ttl time.Duration) Option {
	return func(s *UserService) {
		s.cache = c
		s.ttl = ttl
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *UserService) { s.log = l }
}

// WithProtectedIDs 覆盖默认的不可删除账号
func WithProtectedIDs(ids ...string) Option {
	return func(s *UserService) {
		if len(ids) > 0 {
			s.protected = ids
		}
	}
}

type UserService struct {
	repo      domain.UserRepository
	cache     RowsCache
	ttl       time.Duration
	log       *zap.Logger
	protected []string
}

func NewUserService(repo domain.UserRepository, opts ...Option) *UserService {
	s := &UserService{
		repo:      repo,
		ttl:       time.Minute,
		log:       zap.NewNop(),
		protected: []string{"developer", "admin"},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// IsProtected 是否属于不可删除账号
func (s *UserService) IsProtected(id string) bool {
	for _, p := range s.protected {
		if p == id {
			return true
		}
	}
	return false
}

func (s *UserService) List(ctx context.Context) ([]domain.UserRow, error) {
	if s.cache == nil {
		return s.repo.ListRows(ctx)
	}
	rows, err := cache.GetOrLoadJSON(ctx, s.cache, rowsCacheKey, s.ttl, s.repo.ListRows)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.UserRow{}
	}
	return rows, nil
}

func (s *UserService) Roles(ctx context.Context) ([]domain.Role, error) {
	return s.repo.Roles(ctx)
}

// Delete 保护账号在访问仓储前即被拒绝
func (s *UserService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if s.IsProtected(id) {
		s.log.Warn("delete refused", zap.String("user_id", id))
		return &RefusalError{ID: id, Message: "cannot delete the developer or admin account"}
	}
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user %q: %w", id, err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	s.invalidate(ctx)
	s.log.Info("user deleted", zap.String("user_id", id))
	return nil
}

func (s *UserService) Edit(ctx context.Context, in EditUserInput) error {
	if in.Role != "" {
		if err := s.checkRole(ctx, in.Role); err != nil {
			return err
		}
	}
	upd := domain.UserUpdate{UserID: in.ID, Name: strings.TrimSpace(in.Name), Role: in.Role, PrevRole: in.PrevRole}
	if in.Password != "" {
		h, err := utils.HashPassword(in.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		upd.PasswordHash = h
	}
	if err := s.repo.Update(ctx, upd); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("edit user %q: %w", in.ID, err)
	}
	s.invalidate(ctx)
	s.log.Info("user edited", zap.String("user_id", in.ID), zap.String("role", in.Role))
	return nil
}

func (s *UserService) Add(ctx context.Context, in AddUserInput) error {
	id := strings.TrimSpace(in.ID)
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find user %q: %w", id, err)
	}
	if existing != nil {
		return domain.ErrUserExists
	}
	if err := s.checkRole(ctx, in.Role); err != nil {
		return err
	}
	h, err := utils.HashPassword(in.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{UserID: id, Name: strings.TrimSpace(in.Name), PasswordHash: h}
	if err := s.repo.Create(ctx, u, in.Role); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return err
		}
		return fmt.Errorf("create user %q: %w", id, err)
	}
	s.invalidate(ctx)
	s.log.Info("user added", zap.String("user_id", id), zap.String("role", in.Role))
	return nil
}

// Authenticate 先按 ID 再按名称匹配；名称重复时拒绝
func (s *UserService) Authenticate(ctx context.Context, idOrName, password string) (*domain.User, []string, error) {
	if idOrName == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}
	u, err := s.repo.FindByID(ctx, idOrName)
	if err != nil {
		return nil, nil, err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		byName, err := s.repo.FindByName(ctx, idOrName)
		if err != nil {
			return nil, nil, err
		}
		u = nil
		var matched int
		for i := range byName {
			if utils.CheckPassword(password, byName[i].PasswordHash) {
				u = &byName[i]
				matched++
			}
		}
		if matched != 1 {
			return nil, nil, domain.ErrInvalidCredentials
		}
	}
	roles, err := s.repo.RoleNames(ctx, u.UserID)
	if err != nil {
		return nil, nil, err
	}
	return u, roles, nil
}

func (s *UserService) checkRole(ctx context.Context, role string) error {
	ok, err := s.repo.RoleExists(ctx, role)
	if err != nil {
		return fmt.Errorf("check role %q: %w", role, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownRole, role)
	}
	return nil
}

func (s *UserService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, rowsCacheKey); err != nil {
		s.log.Warn("invalidate users cache", zap.Error(err))
	}
}
