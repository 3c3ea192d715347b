package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/skyyield/skyyield/internal/domain"
)

type blogRepository struct {
	db *sql.DB
}

// NewBlogRepository creates a new PostgreSQL repository for blog posts
func NewBlogRepository(db *sql.DB) domain.BlogRepository {
	return &blogRepository{db: db}
}

const blogColumns = `id, slug, title, content, excerpt, author_id, status,
	published_at, created_at, updated_at`

func scanBlogPost(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.BlogPost, error) {
	var post domain.BlogPost
	var excerpt, authorID sql.NullString
	var publishedAt sql.NullTime

	err := scanner.Scan(
		&post.ID,
		&post.Slug,
		&post.Title,
		&post.Content,
		&excerpt,
		&authorID,
		&post.Status,
		&publishedAt,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	post.Excerpt = excerpt.String
	post.AuthorID = authorID.String
	if publishedAt.Valid {
		post.PublishedAt = &publishedAt.Time
	}

	return &post, nil
}

// Create persists a new blog post
func (r *blogRepository) Create(ctx context.Context, post *domain.BlogPost) error {
	now := time.Now().UTC()
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	post.CreatedAt = now
	post.UpdatedAt = now

	query := `
		INSERT INTO blog_posts (
			id, slug, title, content, excerpt, author_id, status,
			published_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		post.ID,
		post.Slug,
		post.Title,
		post.Content,
		nullString(post.Excerpt),
		nullString(post.AuthorID),
		post.Status,
		post.PublishedAt,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create blog post: %w", err)
	}

	return nil
}

// GetByID retrieves a blog post by its ID
func (r *blogRepository) GetByID(ctx context.Context, id string) (*domain.BlogPost, error) {
	query := fmt.Sprintf(`SELECT %s FROM blog_posts WHERE id = $1`, blogColumns)

	post, err := scanBlogPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.ErrBlogPostNotFound{Slug: id}
		}
		return nil, fmt.Errorf("failed to get blog post: %w", err)
	}

	return post, nil
}

// GetBySlug retrieves a blog post by its URL slug
func (r *blogRepository) GetBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	query := fmt.Sprintf(`SELECT %s FROM blog_posts WHERE slug = $1`, blogColumns)

	post, err := scanBlogPost(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.ErrBlogPostNotFound{Slug: slug}
		}
		return nil, fmt.Errorf("failed to get blog post: %w", err)
	}

	return post, nil
}

// Update persists blog post changes
func (r *blogRepository) Update(ctx context.Context, post *domain.BlogPost) error {
	post.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE blog_posts SET
			title = $2,
			content = $3,
			excerpt = $4,
			status = $5,
			published_at = $6,
			updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		post.ID,
		post.Title,
		post.Content,
		nullString(post.Excerpt),
		post.Status,
		post.PublishedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update blog post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrBlogPostNotFound{Slug: post.Slug}
	}

	return nil
}

// List retrieves blog posts, optionally filtered by status. Published posts
// sort by publication date, everything else by creation date.
func (r *blogRepository) List(ctx context.Context, status domain.BlogPostStatus, limit, offset int) ([]*domain.BlogPost, error) {
	builder := sq.Select(blogColumns).
		From("blog_posts").
		PlaceholderFormat(sq.Dollar).
		OrderBy("COALESCE(published_at, created_at) DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	if status != "" {
		builder = builder.Where(sq.Eq{"status": status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build blog post list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list blog posts: %w", err)
	}
	defer rows.Close()

	var posts []*domain.BlogPost
	for rows.Next() {
		post, err := scanBlogPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blog post row: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating through blog posts: %w", err)
	}

	return posts, nil
}
