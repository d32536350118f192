package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
// Implementations store only the hashed password; plaintext fields on
// domain.User are ignored.
type UserStore interface {
	// Create saves a new user.
	// Returns ErrEmailExists if the email is taken within the provider (case-insensitive).
	// Returns ErrAuthTokenExists if the auth token is already assigned.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by provider and email, ignoring email case.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, provider, email string) (*domain.User, error)

	// GetByAuthToken retrieves the single user holding token.
	// Returns ErrUserNotFound if no user holds it.
	GetByAuthToken(ctx context.Context, token string) (*domain.User, error)

	// AuthTokenExists reports whether any user currently holds token.
	AuthTokenExists(ctx context.Context, token string) (bool, error)

	// Update persists email, provider, hashed password and auth token.
	// Returns ErrUserNotFound, ErrEmailExists or ErrAuthTokenExists.
	Update(ctx context.Context, user *domain.User) error

	// UpdateAuthToken replaces the user's token, invalidating the previous one.
	// Returns ErrUserNotFound or ErrAuthTokenExists.
	UpdateAuthToken(ctx context.Context, id uuid.UUID, token string) error

	// Delete removes a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
