package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/minimalblog/internal/entity"
	"anoa.com/minimalblog/pkg/apperror"
	"gorm.io/gorm"
)

type UserRepository interface {
	// Create inserts user. The first account created while no administrator
	// exists becomes the administrator.
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	err := r.create(ctx, user, true)
	if errors.Is(err, gorm.ErrDuplicatedKey) && user.IsAdmin {
		// A concurrent registration took the administrator slot first
		// (users_single_admin index); join as a reader instead.
		user.ID = 0
		err = r.create(ctx, user, false)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("email %s: %w", user.Email, apperror.ErrConflict)
	}
	return err
}

func (r *userRepository) create(ctx context.Context, user *entity.User, mayAdmin bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&entity.User{}).Where("email = ?", user.Email).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return fmt.Errorf("email %s: %w", user.Email, apperror.ErrConflict)
		}

		user.IsAdmin = false
		if mayAdmin {
			var admins int64
			if err := tx.Model(&entity.User{}).Where("is_admin = ?", true).Count(&admins).Error; err != nil {
				return err
			}
			user.IsAdmin = admins == 0
		}

		return tx.Create(user).Error
	})
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error; err != nil {
		return nil, notFound(err)
	}

	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, notFound(err)
	}

	return &user, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.ErrNotFound
	}
	return err
}
