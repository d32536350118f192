package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// TaskService manages the tasks of a single owner. Tasks owned by anyone
// else are indistinguishable from missing ones: both yield
// store.ErrTaskNotFound.
type TaskService interface {
	// ListTasks returns the owner's tasks filtered and ordered by query.
	ListTasks(ctx context.Context, ownerID uuid.UUID, query domain.TaskQuery) ([]*domain.Task, error)
	GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
	CreateTask(ctx context.Context, ownerID uuid.UUID, title string) (*domain.Task, error)

	// UpdateTask renames a task. An invalid title leaves the stored task unchanged.
	UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, title string) (*domain.Task, error)
	DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error
}

type taskServiceImpl struct {
	store  store.Manager
	logger *slog.Logger
}

// NewTaskService creates a TaskService over manager.
func NewTaskService(manager store.Manager, logger *slog.Logger) TaskService {
	if manager == nil {
		panic("store manager cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &taskServiceImpl{
		store:  manager,
		logger: logger.With("component", "task_service"),
	}
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, ownerID uuid.UUID, query domain.TaskQuery) ([]*domain.Task, error) {
	if ownerID == uuid.Nil {
		return nil, ErrMissingOwner
	}

	tasks, err := s.store.Tasks().List(ctx, ownerID, query)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("user_id", ownerID.String()),
			slog.Any("error", err))
		return nil, newTaskServiceError("list", "failed to list tasks", err)
	}
	return tasks, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.store.Tasks().GetByID(ctx, ownerID, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, newTaskServiceError("get", "failed to load task", err)
	}
	return task, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, ownerID uuid.UUID, title string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(ownerID, title)
	if err != nil {
		log.Debug("task rejected", slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.store.Tasks().Create(ctx, task); err != nil {
		if errors.Is(err, store.ErrInvalidEntity) {
			return nil, domain.NewValidationError("user", domain.MsgMustExist)
		}
		return nil, newTaskServiceError("create", "failed to save task", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", ownerID.String()))
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, title string) (*domain.Task, error) {
	var updated *domain.Task
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Manager) error {
		task, err := tx.Tasks().GetByID(ctx, ownerID, taskID)
		if err != nil {
			return err
		}
		if err := task.Rename(title); err != nil {
			return err
		}
		if err := tx.Tasks().Update(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) || store.IsNotFoundError(err) {
			return nil, err
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
			slog.String("task_id", taskID.String()),
			slog.Any("error", err))
		return nil, newTaskServiceError("update", "failed to update task", err)
	}
	return updated, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error {
	if err := s.store.Tasks().Delete(ctx, ownerID, taskID); err != nil {
		if store.IsNotFoundError(err) {
			return err
		}
		return newTaskServiceError("delete", "failed to delete task", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", ownerID.String()))
	return nil
}
