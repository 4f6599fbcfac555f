package search

import (
	"context"
	"errors"

	"anoa.com/minimalblog/internal/entity"
	postRepo "anoa.com/minimalblog/internal/modules/post/repository"
	"anoa.com/minimalblog/pkg/apperror"
)

const DefaultLimit = 20

// SearchService finds posts matching a free-text query and keeps any
// external index in step with post writes.
type SearchService interface {
	IndexPost(post *entity.BlogPost) error
	DeletePost(id uint) error
	Search(ctx context.Context, query string, limit int) ([]*entity.BlogPost, error)
}

type dbSearchService struct {
	posts postRepo.PostRepository
}

// NewDBSearchService answers queries straight from the posts table.
func NewDBSearchService(posts postRepo.PostRepository) SearchService {
	return &dbSearchService{posts: posts}
}

func (s *dbSearchService) IndexPost(*entity.BlogPost) error { return nil }

func (s *dbSearchService) DeletePost(uint) error { return nil }

func (s *dbSearchService) Search(ctx context.Context, query string, limit int) ([]*entity.BlogPost, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return s.posts.Search(ctx, query, limit)
}

// loadPosts resolves index hits to posts, skipping ids the index still holds
// for deleted posts.
func loadPosts(ctx context.Context, posts postRepo.PostRepository, ids []uint) ([]*entity.BlogPost, error) {
	result := make([]*entity.BlogPost, 0, len(ids))
	for _, id := range ids {
		post, err := posts.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				continue
			}
			return nil, err
		}
		result = append(result, post)
	}
	return result, nil
}
