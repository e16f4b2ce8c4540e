package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"go-user-admin/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserRepository = (*UserRepo)(nil)

// ListRows 用户 × 角色，隐藏 developer 的 admin 兼任行，按角色级别排序
func (r *UserRepo) ListRows(ctx context.Context) ([]domain.UserRow, error) {
	rows := make([]domain.UserRow, 0)
	err := r.db.WithContext(ctx).
		Table("users AS u").
		Select("u.user_id AS id, u.name AS name, COALESCE(ur.role_name, '') AS role, COALESCE(r.role_description, '') AS description").
		Joins("LEFT JOIN user_roles ur ON ur.user_id = u.user_id").
		Joins("LEFT JOIN roles r ON r.role_name = ur.role_name").
		Where("NOT (COALESCE(ur.role_name, '') = ? AND ur.user_id = ?)", domain.HiddenRow.RoleName, domain.HiddenRow.UserID).
		Order("r.role_level").
		Order("u.user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "user_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByName(ctx context.Context, name string) ([]domain.User, error) {
	var us []domain.User
	if err := r.db.WithContext(ctx).Where("name = ?", name).Find(&us).Error; err != nil {
		return nil, err
	}
	return us, nil
}

func (r *UserRepo) RoleNames(ctx context.Context, userID string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("user_roles AS ur").
		Joins("LEFT JOIN roles r ON r.role_name = ur.role_name").
		Where("ur.user_id = ?", userID).
		Order("r.role_level").
		Pluck("ur.role_name", &names).Error
	return names, err
}

func (r *UserRepo) Roles(ctx context.Context) ([]domain.Role, error) {
	var roles []domain.Role
	if err := r.db.WithContext(ctx).Order("role_level").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *UserRepo) RoleExists(ctx context.Context, role string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Role{}).Where("role_name = ?", role).Count(&n).Error
	return n > 0, err
}

// Create 用户 + 角色关联同一事务
func (r *UserRepo) Create(ctx context.Context, u *domain.User, role string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		return tx.Create(&domain.UserRole{UserID: u.UserID, RoleName: role}).Error
	})
	if err != nil && isDupKey(err) {
		return domain.ErrUserExists
	}
	return err
}

// Update 改名/改密码；Role 与 PrevRole 不同时只替换 PrevRole 这一条关联，其余角色保留
func (r *UserRepo) Update(ctx context.Context, in domain.UserUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"name": in.Name}
		if in.PasswordHash != "" {
			updates["password_hash"] = in.PasswordHash
		}
		res := tx.Model(&domain.User{}).Where("user_id = ?", in.UserID).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrUserNotFound
		}
		if in.Role == "" || in.Role == in.PrevRole {
			return nil
		}
		drop := []string{in.Role}
		if in.PrevRole != "" {
			drop = append(drop, in.PrevRole)
		}
		if err := tx.Where("user_id = ? AND role_name IN ?", in.UserID, drop).Delete(&domain.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Create(&domain.UserRole{UserID: in.UserID, RoleName: in.Role}).Error
	})
}

// Delete 先删角色关联再删用户，返回删除的用户行数
func (r *UserRepo) Delete(ctx context.Context, id string) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&domain.UserRole{}).Error; err != nil {
			return err
		}
		res := tx.Where("user_id = ?", id).Delete(&domain.User{})
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	return affected, err
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
