package repo

import (
	"context"

	"gorm.io/gorm"

	"go-user-admin/internal/domain"
	"go-user-admin/pkg/utils"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.User{}, &domain.Role{}, &domain.UserRole{})
}

// Seed 角色表为空时写入初始角色和用户；返回是否写入
func Seed(ctx context.Context, db *gorm.DB) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&domain.Role{}).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles := append([]domain.Role(nil), domain.SeedRoles...)
		if err := tx.Create(&roles).Error; err != nil {
			return err
		}
		hash, err := utils.HashPassword(domain.DefaultSeedPassword)
		if err != nil {
			return err
		}
		for _, su := range domain.SeedUsers {
			u := domain.User{UserID: su.UserID, Name: su.Name, PasswordHash: hash}
			if err := tx.Create(&u).Error; err != nil {
				return err
			}
			for _, role := range su.Roles {
				if err := tx.Create(&domain.UserRole{UserID: su.UserID, RoleName: role}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	return err == nil, err
}
