package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

type taskStore struct {
	lock func() func()
	data func() *dataset
}

var _ store.TaskStore = (*taskStore)(nil)

func (s *taskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := task.Validate(); err != nil {
		return err
	}

	defer s.lock()()
	d := s.data()

	if _, ok := d.users[task.UserID]; !ok {
		return fmt.Errorf("%w: owner %s does not exist", store.ErrInvalidEntity, task.UserID)
	}
	if _, ok := d.tasks[task.ID]; ok {
		return store.ErrDuplicate
	}

	d.tasks[task.ID] = *task
	return nil
}

func (s *taskStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer s.lock()()

	t, ok := s.data().tasks[id]
	if !ok || t.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	return &t, nil
}

func (s *taskStore) List(ctx context.Context, userID uuid.UUID, q domain.TaskQuery) ([]*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, f := range q.Filters {
		if !f.Field.Filterable() {
			return nil, store.NewStoreError("task", "list", "invalid query",
				fmt.Errorf("field %q cannot be filtered", f.Field))
		}
	}

	defer s.lock()()

	owned := make([]*domain.Task, 0)
	for _, t := range s.data().tasks {
		if t.UserID == userID {
			t := t
			owned = append(owned, &t)
		}
	}
	return q.Apply(owned), nil
}

func (s *taskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := task.Validate(); err != nil {
		return err
	}

	defer s.lock()()
	d := s.data()

	existing, ok := d.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return store.ErrTaskNotFound
	}
	existing.Title = task.Title
	existing.UpdatedAt = task.UpdatedAt
	d.tasks[task.ID] = existing
	return nil
}

func (s *taskStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer s.lock()()
	d := s.data()

	t, ok := d.tasks[id]
	if !ok || t.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(d.tasks, id)
	return nil
}

func (s *taskStore) DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	defer s.lock()()
	d := s.data()

	var n int64
	for id, t := range d.tasks {
		if t.UserID == userID {
			delete(d.tasks, id)
			n++
		}
	}
	return n, nil
}

func (s *taskStore) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	defer s.lock()()

	var n int64
	for _, t := range s.data().tasks {
		if t.UserID == userID {
			n++
		}
	}
	return n, nil
}
