// Package users reads and maintains candidate profiles in Postgres.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/msvee3/Interview-prep/internal/apperr"
	"github.com/msvee3/Interview-prep/internal/models"
)

var ErrUserNotFound = fmt.Errorf("user %w", apperr.ErrNotFound)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetUserByID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).First(&user, "uid = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Touch records activity for uid.
func (r *UserRepository) Touch(ctx context.Context, uid string, at time.Time) error {
	result := r.DB.WithContext(ctx).Model(&models.User{}).Where("uid = ?", uid).Update("last_active", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
