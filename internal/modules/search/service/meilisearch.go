package search

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"

	"anoa.com/minimalblog/internal/entity"
	postRepo "anoa.com/minimalblog/internal/modules/post/repository"
	"anoa.com/minimalblog/pkg/logger"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

const postsIndex = "blog_posts"

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	posts     postRepo.PostRepository
	sanitizer *bluemonday.Policy
	log       zerolog.Logger
}

type meiliPostDoc struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	Body      string `json:"body"`
	Author    string `json:"author"`
	Date      string `json:"date"`
	CreatedAt int64  `json:"created_at"`
}

type meiliSearchResult struct {
	Hits []struct {
		ID uint `json:"id"`
	} `json:"hits"`
}

// NewMeiliSearchService indexes posts in Meilisearch and resolves hits
// through the post repository.
func NewMeiliSearchService(client meilisearch.ServiceManager, posts postRepo.PostRepository) SearchService {
	s := &meiliSearchService{
		client:    client,
		posts:     posts,
		sanitizer: bluemonday.StrictPolicy(),
		log:       logger.Component("search"),
	}
	s.initIndex()
	return s
}

func (s *meiliSearchService) initIndex() {
	searchable := []string{"title", "subtitle", "body", "author"}
	if _, err := s.client.Index(postsIndex).UpdateSearchableAttributes(&searchable); err != nil {
		s.log.Warn().Err(err).Msg("failed to update searchable attributes")
	}

	sortable := []string{"created_at"}
	if _, err := s.client.Index(postsIndex).UpdateSortableAttributes(&sortable); err != nil {
		s.log.Warn().Err(err).Msg("failed to update sortable attributes")
	}
}

func (s *meiliSearchService) IndexPost(post *entity.BlogPost) error {
	doc := meiliPostDoc{
		ID:        post.ID,
		Title:     post.Title,
		Subtitle:  post.Subtitle,
		Body:      s.plainText(post.Body),
		Author:    post.Author.Name,
		Date:      post.Date,
		CreatedAt: post.CreatedAt.Unix(),
	}

	task, err := s.client.Index(postsIndex).AddDocuments([]meiliPostDoc{doc}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("failed to index post %d: %w", post.ID, err)
	}
	s.log.Debug().Uint("post_id", post.ID).Int64("task", task.TaskUID).Msg("post indexed")
	return nil
}

func (s *meiliSearchService) DeletePost(id uint) error {
	_, err := s.client.Index(postsIndex).DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

func (s *meiliSearchService) Search(ctx context.Context, query string, limit int) ([]*entity.BlogPost, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*entity.BlogPost{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	raw, err := s.client.Index(postsIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, fmt.Errorf("meilisearch query failed: %w", err)
	}

	ids, err := decodeHits(*raw)
	if err != nil {
		return nil, err
	}

	return loadPosts(ctx, s.posts, ids)
}

func decodeHits(raw []byte) ([]uint, error) {
	var result meiliSearchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode search hits: %w", err)
	}

	ids := make([]uint, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// plainText strips markup so the index holds searchable words only.
func (s *meiliSearchService) plainText(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	cleanText := html.UnescapeString(s.sanitizer.Sanitize(content))
	return strings.Join(strings.Fields(cleanText), " ")
}

func strPtr(s string) *string {
	return &s
}
