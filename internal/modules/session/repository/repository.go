package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/minimalblog/internal/entity"
	"anoa.com/minimalblog/pkg/apperror"
	"gorm.io/gorm"
)

// Store persists server-side sessions. Find returns apperror.ErrNotFound for
// unknown or expired sessions.
type Store interface {
	Save(ctx context.Context, session *entity.Session) error
	Find(ctx context.Context, id string) (*entity.Session, error)
	Delete(ctx context.Context, id string) error
}

type gormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db, now: time.Now}
}

// Save stores session and purges sessions that have already expired.
func (s *gormStore) Save(ctx context.Context, session *entity.Session) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expires_at <= ?", s.now()).Delete(&entity.Session{}).Error; err != nil {
			return err
		}
		return tx.Omit("User").Create(session).Error
	})
}

func (s *gormStore) Find(ctx context.Context, id string) (*entity.Session, error) {
	var session entity.Session
	if err := s.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", id, s.now()).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return &session, nil
}

func (s *gormStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Session{}).Error
}
