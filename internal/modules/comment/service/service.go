package comment

import (
	"context"
	"strings"

	"anoa.com/minimalblog/internal/entity"
	"anoa.com/minimalblog/internal/modules/comment/repository"
	"anoa.com/minimalblog/internal/policy"
	"anoa.com/minimalblog/pkg/apperror"
	"github.com/microcosm-cc/bluemonday"
)

type CommentService interface {
	// AddComment attaches text to the post as principal. Anonymous callers
	// get ErrUnauthorized.
	AddComment(ctx context.Context, principal *entity.User, postID uint, text string) (*entity.Comment, error)
}

type commentService struct {
	repo      repository.CommentRepository
	sanitizer *bluemonday.Policy
}

func NewCommentService(repo repository.CommentRepository) CommentService {
	return &commentService{repo: repo, sanitizer: bluemonday.UGCPolicy()}
}

func (s *commentService) AddComment(ctx context.Context, principal *entity.User, postID uint, text string) (*entity.Comment, error) {
	if err := policy.RequireUser(principal); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(s.sanitizer.Sanitize(text))
	if text == "" {
		return nil, apperror.NewValidationError(map[string]string{"comment_text": "Comment is required"})
	}

	comment := &entity.Comment{
		PostID:   postID,
		AuthorID: principal.ID,
		Author:   *principal,
		Text:     text,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
