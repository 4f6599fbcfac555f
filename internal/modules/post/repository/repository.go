package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/minimalblog/internal/entity"
	"anoa.com/minimalblog/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostUpdate carries the editable fields of a blog post.
type PostUpdate struct {
	Title    string
	Subtitle string
	Body     string
	ImgURL   string
}

type PostRepository interface {
	Create(ctx context.Context, post *entity.BlogPost) error
	FindByID(ctx context.Context, id uint) (*entity.BlogPost, error)
	FindAll(ctx context.Context) ([]*entity.BlogPost, error)
	FindByAuthorID(ctx context.Context, authorID uint) ([]*entity.BlogPost, error)
	Update(ctx context.Context, id uint, update PostUpdate) (*entity.BlogPost, error)
	// Delete removes the post and its comments.
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, limit int) ([]*entity.BlogPost, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *entity.BlogPost) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := titleAvailable(tx, post.Title, 0); err != nil {
			return err
		}

		var authors int64
		if err := tx.Model(&entity.User{}).Where("id = ?", post.AuthorID).Count(&authors).Error; err != nil {
			return err
		}
		if authors == 0 {
			return fmt.Errorf("author %d: %w", post.AuthorID, apperror.ErrNotFound)
		}

		return tx.Omit(clause.Associations).Create(post).Error
	})
	return conflict(err, post.Title)
}

func (r *postRepository) FindByID(ctx context.Context, id uint) (*entity.BlogPost, error) {
	var post entity.BlogPost
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post %d: %w", id, apperror.ErrNotFound)
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) FindAll(ctx context.Context) ([]*entity.BlogPost, error) {
	var posts []*entity.BlogPost
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order("id ASC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) FindByAuthorID(ctx context.Context, authorID uint) ([]*entity.BlogPost, error) {
	var posts []*entity.BlogPost
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("author_id = ?", authorID).
		Order("id ASC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Update(ctx context.Context, id uint, update PostUpdate) (*entity.BlogPost, error) {
	var post entity.BlogPost
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("post %d: %w", id, apperror.ErrNotFound)
			}
			return err
		}

		if err := titleAvailable(tx, update.Title, id); err != nil {
			return err
		}

		post.Title = update.Title
		post.Subtitle = update.Subtitle
		post.Body = update.Body
		post.ImgURL = update.ImgURL

		if err := tx.Model(&post).Select("Title", "Subtitle", "Body", "ImgURL", "UpdatedAt").Updates(&post).Error; err != nil {
			return err
		}

		return tx.Preload("Author").Where("id = ?", id).First(&post).Error
	})
	if err != nil {
		return nil, conflict(err, update.Title)
	}
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&entity.Comment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&entity.BlogPost{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("post %d: %w", id, apperror.ErrNotFound)
		}
		return nil
	})
}

func (r *postRepository) Search(ctx context.Context, query string, limit int) ([]*entity.BlogPost, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*entity.BlogPost{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	pattern := "%" + strings.ToLower(query) + "%"

	var posts []*entity.BlogPost
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("LOWER(title) LIKE ? OR LOWER(subtitle) LIKE ? OR LOWER(body) LIKE ?", pattern, pattern, pattern).
		Order("id ASC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// titleAvailable reports ErrConflict when another post (other than exceptID)
// already uses title.
func titleAvailable(tx *gorm.DB, title string, exceptID uint) error {
	q := tx.Model(&entity.BlogPost{}).Where("title = ?", title)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("title %q: %w", title, apperror.ErrConflict)
	}
	return nil
}

func conflict(err error, title string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("title %q: %w", title, apperror.ErrConflict)
	}
	return err
}
