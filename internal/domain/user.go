package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_user_repository.go -package mocks github.com/skyyield/skyyield/internal/domain UserRepository

// User is a portal account. Identity lives in Clerk; rows here are synced
// from Clerk webhooks plus a local is_admin flag.
type User struct {
	ID          string    `json:"id"`
	ClerkUserID string    `json:"clerk_user_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name,omitempty"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ErrUserNotFound is returned when a user is not found
type ErrUserNotFound struct {
	ID string
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user %s not found", e.ID)
}

// ClerkUserEvent is the validated shape of a Clerk user webhook
type ClerkUserEvent struct {
	Type        string `json:"type"`
	ClerkUserID string `json:"clerk_user_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
}

func (e *ClerkUserEvent) Validate() error {
	switch e.Type {
	case "user.created", "user.updated", "user.deleted":
	default:
		return fmt.Errorf("unsupported clerk event type: %s", e.Type)
	}
	if e.ClerkUserID == "" {
		return fmt.Errorf("clerk user id is required")
	}
	if e.Type != "user.deleted" && !govalidator.IsEmail(e.Email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// UserRepository is the interface for user persistence
type UserRepository interface {
	Upsert(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByClerkID(ctx context.Context, clerkUserID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Delete(ctx context.Context, clerkUserID string) error
}
