package repository

import (
	"context"
	"fmt"

	"anoa.com/minimalblog/internal/entity"
	"anoa.com/minimalblog/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository interface {
	// Create inserts comment after checking that its post and author exist.
	Create(ctx context.Context, comment *entity.Comment) error
	FindByPostID(ctx context.Context, postID uint) ([]*entity.Comment, error)
	FindByAuthorID(ctx context.Context, authorID uint) ([]*entity.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entity.BlogPost{}).Where("id = ?", comment.PostID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("post %d: %w", comment.PostID, apperror.ErrNotFound)
		}

		if err := tx.Model(&entity.User{}).Where("id = ?", comment.AuthorID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("author %d: %w", comment.AuthorID, apperror.ErrNotFound)
		}

		return tx.Omit(clause.Associations).Create(comment).Error
	})
}

func (r *commentRepository) FindByPostID(ctx context.Context, postID uint) ([]*entity.Comment, error) {
	var comments []*entity.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) FindByAuthorID(ctx context.Context, authorID uint) ([]*entity.Comment, error) {
	var comments []*entity.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("author_id = ?", authorID).
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}
