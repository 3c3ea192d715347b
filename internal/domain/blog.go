package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

//go:generate mockgen -destination mocks/mock_blog_repository.go -package mocks github.com/skyyield/skyyield/internal/domain BlogRepository

// BlogPostStatus is the publication status of a post
type BlogPostStatus string

const (
	BlogStatusDraft     BlogPostStatus = "draft"
	BlogStatusPending   BlogPostStatus = "pending"
	BlogStatusPublished BlogPostStatus = "published"
)

// ValidBlogStatus reports whether s is a known blog post status
func ValidBlogStatus(s BlogPostStatus) bool {
	switch s {
	case BlogStatusDraft, BlogStatusPending, BlogStatusPublished:
		return true
	}
	return false
}

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a title
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// BlogPost is a marketing site article
type BlogPost struct {
	ID          string         `json:"id"`
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Excerpt     string         `json:"excerpt,omitempty"`
	AuthorID    string         `json:"author_id,omitempty"`
	Status      BlogPostStatus `json:"status"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ErrBlogPostNotFound is returned when a blog post is not found
type ErrBlogPostNotFound struct {
	Slug string
}

func (e *ErrBlogPostNotFound) Error() string {
	return fmt.Sprintf("blog post %s not found", e.Slug)
}

// CreateBlogPostRequest defines the parameters for creating a post
type CreateBlogPostRequest struct {
	Slug    string `json:"slug,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt,omitempty"`
}

func (r *CreateBlogPostRequest) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if r.Content == "" {
		return fmt.Errorf("content is required")
	}
	if r.Slug == "" {
		r.Slug = Slugify(r.Title)
	}
	if !slugRe.MatchString(r.Slug) {
		return fmt.Errorf("invalid slug format: %s", r.Slug)
	}
	return nil
}

// UpdateBlogPostRequest defines the mutable post fields
type UpdateBlogPostRequest struct {
	ID      string  `json:"id"`
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Excerpt *string `json:"excerpt,omitempty"`
}

func (r *UpdateBlogPostRequest) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if r.Title != nil && *r.Title == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if r.Content != nil && *r.Content == "" {
		return fmt.Errorf("content cannot be empty")
	}
	return nil
}

// BlogRepository is the interface for blog post persistence
type BlogRepository interface {
	Create(ctx context.Context, post *BlogPost) error
	GetByID(ctx context.Context, id string) (*BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*BlogPost, error)
	Update(ctx context.Context, post *BlogPost) error
	List(ctx context.Context, status BlogPostStatus, limit, offset int) ([]*BlogPost, error)
}
