package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skyyield/skyyield/internal/domain"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new PostgreSQL repository for users
func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, clerk_user_id, email, name, is_admin, created_at, updated_at`

func scanUser(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.User, error) {
	var u domain.User
	var name sql.NullString

	err := scanner.Scan(
		&u.ID,
		&u.ClerkUserID,
		&u.Email,
		&name,
		&u.IsAdmin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Name = name.String

	return &u, nil
}

// Upsert inserts the user or updates the Clerk-synced fields when the Clerk
// user id already exists. The local is_admin flag is never touched by sync.
func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, clerk_user_id, email, name, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (clerk_user_id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.ClerkUserID,
		user.Email,
		nullString(user.Name),
		user.IsAdmin,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by its ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getByField(ctx, "id", id)
}

// GetByClerkID retrieves a user by its Clerk user id
func (r *userRepository) GetByClerkID(ctx context.Context, clerkUserID string) (*domain.User, error) {
	return r.getByField(ctx, "clerk_user_id", clerkUserID)
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getByField(ctx, "email", email)
}

func (r *userRepository) getByField(ctx context.Context, field, value string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, field)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.ErrUserNotFound{ID: value}
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// Delete removes a user row by Clerk user id
func (r *userRepository) Delete(ctx context.Context, clerkUserID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE clerk_user_id = $1`, clerkUserID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrUserNotFound{ID: clerkUserID}
	}

	return nil
}
