package bootstrap

import (
	"errors"

	"anoa.com/minimalblog/internal/entity"
	"anoa.com/minimalblog/pkg/password"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.User{},
		&entity.BlogPost{},
		&entity.Comment{},
		&entity.Session{},
	); err != nil {
		return err
	}

	// At most one administrator, enforced by the database.
	return db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS users_single_admin ON users (is_admin) WHERE is_admin").Error
}

// SeedAdminUser creates the administrator account when no administrator
// exists yet. It is a no-op when email or plaintext is empty.
func SeedAdminUser(db *gorm.DB, hasher *password.Hasher, email, plaintext string) error {
	if email == "" || plaintext == "" {
		return nil
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("is_admin = ? OR email = ?", true, email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Info().Msg("Admin user already exists, skipping seed")
		return nil
	}

	hashed, err := hasher.Hash(plaintext)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hashed,
		IsAdmin:      true,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}

	log.Info().Str("email", email).Msg("Admin user seeded successfully")
	return nil
}
