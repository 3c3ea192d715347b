package service

import (
	"context"
	"fmt"
	"time"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/pkg/cache"
	"github.com/skyyield/skyyield/pkg/logger"
)

// publicCacheTTL bounds how stale the public blog endpoints can be
const publicCacheTTL = time.Minute

// BlogService manages marketing site articles. The public read side is
// cached; authoring operations invalidate the cache.
type BlogService struct {
	repo   domain.BlogRepository
	cache  *cache.Cache
	logger logger.Logger
}

func NewBlogService(repo domain.BlogRepository, logger logger.Logger) *BlogService {
	return &BlogService{
		repo:   repo,
		cache:  cache.New(5 * time.Minute),
		logger: logger,
	}
}

// Stop ends the cache's background sweep. Safe to call more than once.
func (s *BlogService) Stop() {
	s.cache.Stop()
}

// Create adds a draft post. The slug is derived from the title when not
// given explicitly.
func (s *BlogService) Create(ctx context.Context, authorID string, req *domain.CreateBlogPostRequest) (*domain.BlogPost, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetBySlug(ctx, req.Slug); err == nil && existing != nil {
		return nil, fmt.Errorf("blog post with slug %s already exists", req.Slug)
	}

	post := &domain.BlogPost{
		Slug:     req.Slug,
		Title:    req.Title,
		Content:  req.Content,
		Excerpt:  req.Excerpt,
		AuthorID: authorID,
		Status:   domain.BlogStatusDraft,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// Get retrieves a post by id
func (s *BlogService) Get(ctx context.Context, id string) (*domain.BlogPost, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySlug retrieves a post by its URL slug
func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// GetPublishedBySlug retrieves a post by slug for the public site; drafts
// behave as not found
func (s *BlogService) GetPublishedBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	cached, err := s.cache.GetOrSet("post:"+slug, publicCacheTTL, func() (interface{}, error) {
		post, err := s.repo.GetBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if post.Status != domain.BlogStatusPublished {
			return nil, &domain.ErrBlogPostNotFound{Slug: slug}
		}
		return post, nil
	})
	if err != nil {
		return nil, err
	}
	return cached.(*domain.BlogPost), nil
}

// Update applies the mutable post fields. The slug never changes after
// creation; published URLs stay stable.
func (s *BlogService) Update(ctx context.Context, req *domain.UpdateBlogPostRequest) (*domain.BlogPost, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	post, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Excerpt != nil {
		post.Excerpt = *req.Excerpt
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}

	s.cache.Clear()
	return post, nil
}

// Publish makes a post publicly visible and stamps the publication time once
func (s *BlogService) Publish(ctx context.Context, id string) (*domain.BlogPost, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if post.Status != domain.BlogStatusPublished {
		post.Status = domain.BlogStatusPublished
		if post.PublishedAt == nil {
			now := time.Now().UTC()
			post.PublishedAt = &now
		}
		if err := s.repo.Update(ctx, post); err != nil {
			return nil, err
		}
		s.cache.Clear()
	}

	return post, nil
}

// List retrieves posts, optionally filtered by status
func (s *BlogService) List(ctx context.Context, status domain.BlogPostStatus, limit, offset int) ([]*domain.BlogPost, error) {
	if status != "" && !domain.ValidBlogStatus(status) {
		return nil, fmt.Errorf("invalid blog post status: %s", status)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, status, limit, offset)
}

// ListPublished retrieves published posts for the public site
func (s *BlogService) ListPublished(ctx context.Context, limit, offset int) ([]*domain.BlogPost, error) {
	key := fmt.Sprintf("list:%d:%d", limit, offset)
	cached, err := s.cache.GetOrSet(key, publicCacheTTL, func() (interface{}, error) {
		return s.List(ctx, domain.BlogStatusPublished, limit, offset)
	})
	if err != nil {
		return nil, err
	}
	return cached.([]*domain.BlogPost), nil
}
