package post

import (
	"context"

	"anoa.com/minimalblog/internal/entity"
	postDto "anoa.com/minimalblog/internal/modules/post/dto"
	"anoa.com/minimalblog/pkg/storage"
)

func (s *postService) index(post *entity.BlogPost) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexPost(post); err != nil {
		s.log.Warn().Err(err).Uint("post_id", post.ID).Msg("failed to index post")
	}
}

// discardUpload removes a cover uploaded for a write that then failed.
func (s *postService) discardUpload(ctx context.Context, cover *postDto.CoverFile, url string) {
	if cover == nil || s.fileStorage == nil {
		return
	}
	s.deleteImage(ctx, url)
}

// deleteImage removes url from storage when it is one of ours.
func (s *postService) deleteImage(ctx context.Context, url string) {
	if s.fileStorage == nil || storage.ExtractPublicID(url) == "" {
		return
	}
	if err := s.fileStorage.DeleteImage(ctx, url); err != nil {
		s.log.Warn().Err(err).Str("url", url).Msg("failed to delete cover image")
	}
}
