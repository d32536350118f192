package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
)

// TaskStore defines the interface for task persistence.
//
// Every read and write except Create is scoped to an owner: a task that
// exists but belongs to another user is reported as ErrTaskNotFound.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves one of userID's tasks.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error)

	// List returns userID's tasks filtered and ordered by query.
	List(ctx context.Context, userID uuid.UUID, query domain.TaskQuery) ([]*domain.Task, error)

	// Update persists a task's title and updated_at.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes one of userID's tasks.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// DeleteAllByUser removes every task owned by userID and returns how many were removed.
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// CountByUser returns the number of tasks owned by userID.
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
