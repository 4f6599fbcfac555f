package post

import (
	"context"
	"fmt"
	"strings"
	"time"

	"anoa.com/minimalblog/internal/entity"
	commentRepo "anoa.com/minimalblog/internal/modules/comment/repository"
	postDto "anoa.com/minimalblog/internal/modules/post/dto"
	postRepo "anoa.com/minimalblog/internal/modules/post/repository"
	search "anoa.com/minimalblog/internal/modules/search/service"
	"anoa.com/minimalblog/internal/policy"
	"anoa.com/minimalblog/pkg/apperror"
	"anoa.com/minimalblog/pkg/logger"
	"anoa.com/minimalblog/pkg/storage"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

type PostService interface {
	ListPosts(ctx context.Context) ([]*entity.BlogPost, error)
	GetPost(ctx context.Context, id uint) (*postDto.PostPage, error)
	CreatePost(ctx context.Context, principal *entity.User, form postDto.PostForm, cover *postDto.CoverFile) (*entity.BlogPost, error)
	UpdatePost(ctx context.Context, principal *entity.User, id uint, form postDto.PostForm, cover *postDto.CoverFile) (*entity.BlogPost, error)
	DeletePost(ctx context.Context, principal *entity.User, id uint) error
}

type postService struct {
	postRepo    postRepo.PostRepository
	commentRepo commentRepo.CommentRepository
	fileStorage storage.ImageStorage
	search      search.SearchService
	sanitizer   *bluemonday.Policy
	now         func() time.Time
	log         zerolog.Logger
}

type Option func(*postService)

// WithImageStorage enables cover uploads.
func WithImageStorage(s storage.ImageStorage) Option {
	return func(p *postService) { p.fileStorage = s }
}

// WithSearch keeps the search index in step with post writes.
func WithSearch(s search.SearchService) Option {
	return func(p *postService) { p.search = s }
}

// WithClock overrides the clock used to date new posts.
func WithClock(now func() time.Time) Option {
	return func(p *postService) { p.now = now }
}

func NewPostService(postRepo postRepo.PostRepository, commentRepo commentRepo.CommentRepository, opts ...Option) PostService {
	s := &postService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		sanitizer:   bluemonday.UGCPolicy(),
		now:         time.Now,
		log:         logger.Component("post"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *postService) ListPosts(ctx context.Context) ([]*entity.BlogPost, error) {
	return s.postRepo.FindAll(ctx)
}

func (s *postService) GetPost(ctx context.Context, id uint) (*postDto.PostPage, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.FindByPostID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &postDto.PostPage{Post: post, Comments: comments}, nil
}

func (s *postService) CreatePost(ctx context.Context, principal *entity.User, form postDto.PostForm, cover *postDto.CoverFile) (*entity.BlogPost, error) {
	if err := policy.RequireAdmin(principal); err != nil {
		return nil, err
	}

	fields, err := s.prepare(ctx, form, cover)
	if err != nil {
		return nil, err
	}

	post := &entity.BlogPost{
		AuthorID: principal.ID,
		Author:   *principal,
		Title:    fields.Title,
		Subtitle: fields.Subtitle,
		Date:     s.now().Format(entity.DateLayout),
		Body:     fields.Body,
		ImgURL:   fields.ImgURL,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		s.discardUpload(ctx, cover, fields.ImgURL)
		return nil, err
	}

	s.index(post)
	return post, nil
}

func (s *postService) UpdatePost(ctx context.Context, principal *entity.User, id uint, form postDto.PostForm, cover *postDto.CoverFile) (*entity.BlogPost, error) {
	if err := policy.RequireAdmin(principal); err != nil {
		return nil, err
	}

	existing, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, err := s.prepare(ctx, form, cover)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.Update(ctx, id, fields)
	if err != nil {
		s.discardUpload(ctx, cover, fields.ImgURL)
		return nil, err
	}

	if existing.ImgURL != post.ImgURL {
		s.deleteImage(ctx, existing.ImgURL)
	}

	s.index(post)
	return post, nil
}

func (s *postService) DeletePost(ctx context.Context, principal *entity.User, id uint) error {
	if err := policy.RequireAdmin(principal); err != nil {
		return err
	}

	existing, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.deleteImage(ctx, existing.ImgURL)
	if s.search != nil {
		if err := s.search.DeletePost(id); err != nil {
			s.log.Warn().Err(err).Uint("post_id", id).Msg("failed to remove post from search index")
		}
	}
	return nil
}

// prepare normalizes form input into repository fields, uploading cover when
// one was sent.
func (s *postService) prepare(ctx context.Context, form postDto.PostForm, cover *postDto.CoverFile) (postRepo.PostUpdate, error) {
	fields := postRepo.PostUpdate{
		Title:    strings.TrimSpace(form.Title),
		Subtitle: strings.TrimSpace(form.Subtitle),
		Body:     strings.TrimSpace(s.sanitizer.Sanitize(form.Body)),
		ImgURL:   strings.TrimSpace(form.ImgURL),
	}

	invalid := map[string]string{}
	if fields.Title == "" {
		invalid["title"] = "Blog post title is required"
	}
	if fields.Subtitle == "" {
		invalid["subtitle"] = "Subtitle is required"
	}
	if fields.Body == "" {
		invalid["body"] = "Blog content is required"
	}

	if cover != nil && s.fileStorage != nil {
		if !storage.IsImageFile(cover.FileName) {
			invalid["cover"] = "Cover must be an image"
		} else if len(invalid) == 0 {
			url, err := s.fileStorage.UploadImage(ctx, cover.Reader, cover.FileName)
			if err != nil {
				return postRepo.PostUpdate{}, fmt.Errorf("failed to upload cover: %w", err)
			}
			fields.ImgURL = url
		}
	}

	if fields.ImgURL == "" {
		invalid["img_url"] = "Blog image URL is required"
	}

	if len(invalid) > 0 {
		return postRepo.PostUpdate{}, apperror.NewValidationError(invalid)
	}
	return fields, nil
}
