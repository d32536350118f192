package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// PostgresTaskStore implements store.TaskStore on PostgreSQL.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a task store over a connection pool or transaction.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

// Create implements store.TaskStore.Create.
// Returns store.ErrInvalidEntity if the owner does not exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Debug("task validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrInvalidEntity) {
			log.Warn("task rejected by constraint",
				slog.String("task_id", task.ID.String()),
				slog.String("user_id", task.UserID.String()),
				slog.String("error", err.Error()))
			return mapped
		}
		log.Error("failed to create task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("task", "create", "insert failed", mapped)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrNotFound) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
			slog.String("task_id", id.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "get", "query failed", mapped)
	}
	return task, nil
}

// List implements store.TaskStore.List.
func (s *PostgresTaskStore) List(ctx context.Context, userID uuid.UUID, q domain.TaskQuery) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := buildTaskListQuery(userID, q)
	if err != nil {
		return nil, store.NewStoreError("task", "list", "invalid query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, store.NewStoreError("task", "list", "scan failed", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "list", "row iteration failed", MapError(err))
	}

	log.Debug("tasks listed",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// Update implements store.TaskStore.Update.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`,
		task.Title, task.UpdatedAt, task.ID, task.UserID,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrInvalidEntity) {
			return mapped
		}
		return store.NewStoreError("task", "update", "update failed", mapped)
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete.
func (s *PostgresTaskStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return store.NewStoreError("task", "delete", "delete failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// DeleteAllByUser implements store.TaskStore.DeleteAllByUser.
func (s *PostgresTaskStore) DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1`, userID)
	if err != nil {
		return 0, store.NewStoreError("task", "delete all", "delete failed", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("task", "delete all", "rows affected unavailable", err)
	}
	return n, nil
}

// CountByUser implements store.TaskStore.CountByUser.
func (s *PostgresTaskStore) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM tasks WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, store.NewStoreError("task", "count", "query failed", MapError(err))
	}
	return n, nil
}
