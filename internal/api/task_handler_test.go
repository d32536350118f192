package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTaskService struct {
	mock.Mock
}

func (m *mockTaskService) ListTasks(ctx context.Context, ownerID uuid.UUID, query domain.TaskQuery) ([]*domain.Task, error) {
	args := m.Called(ctx, ownerID, query)
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Error(1)
}

func (m *mockTaskService) GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, ownerID, taskID)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *mockTaskService) CreateTask(ctx context.Context, ownerID uuid.UUID, title string) (*domain.Task, error) {
	args := m.Called(ctx, ownerID, title)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *mockTaskService) UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, title string) (*domain.Task, error) {
	args := m.Called(ctx, ownerID, taskID, title)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *mockTaskService) DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error {
	return m.Called(ctx, ownerID, taskID).Error(0)
}

// authedRequest builds a request carrying owner and, if id is set, a chi
// route param.
func authedRequest(method, target string, owner uuid.UUID, id string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := shared.WithUser(req.Context(), &domain.User{ID: owner})
	ctx = shared.SetTraceID(ctx)
	if id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func TestTaskHandlerList(t *testing.T) {
	log, _ := logger.NewTestLogger(t)
	owner := uuid.New()

	t.Run("forwards the parsed query", func(t *testing.T) {
		svc := &mockTaskService{}
		h := NewTaskHandler(svc, log)
		want := domain.TaskQuery{
			Filters: []domain.TaskFilter{{Field: domain.TaskFieldTitle, Op: domain.FilterEquals, Value: "Hold the door"}},
			Sorts:   []domain.TaskSort{{Field: domain.TaskFieldCreatedAt, Direction: domain.SortDesc}},
		}
		task, err := domain.NewTask(owner, "Hold the door")
		require.NoError(t, err)
		svc.On("ListTasks", mock.Anything, owner, want).Return([]*domain.Task{task}, nil)

		rr := httptest.NewRecorder()
		h.List(rr, authedRequest(http.MethodGet,
			"/tasks?q%5Btitle_eq%5D=Hold+the+door&q%5Bs%5D=created_at+desc", owner, ""))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"user-id":"`+owner.String()+`"`)
		svc.AssertExpectations(t)
	})

	t.Run("store failure is an opaque 500", func(t *testing.T) {
		svc := &mockTaskService{}
		h := NewTaskHandler(svc, log)
		svc.On("ListTasks", mock.Anything, owner, mock.Anything).
			Return(nil, errors.New("pq: relation tasks does not exist at postgres://app:secret@db/tasks"))

		rr := httptest.NewRecorder()
		h.List(rr, authedRequest(http.MethodGet, "/tasks", owner, ""))

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		var body shared.ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "Failed to list tasks", body.Error)
		assert.NotEmpty(t, body.TraceID)
		assert.NotContains(t, rr.Body.String(), "secret")
	})
}

func TestTaskHandlerErrors(t *testing.T) {
	log, _ := logger.NewTestLogger(t)
	owner := uuid.New()
	taskID := uuid.New()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"validation", domain.NewValidationError("title", domain.MsgBlank), http.StatusUnprocessableEntity},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockTaskService{}
			h := NewTaskHandler(svc, log)
			svc.On("DeleteTask", mock.Anything, owner, taskID).Return(tt.err)

			rr := httptest.NewRecorder()
			h.Delete(rr, authedRequest(http.MethodDelete, "/tasks/"+taskID.String(), owner, taskID.String()))

			assert.Equal(t, tt.wantStatus, rr.Code)
			svc.AssertExpectations(t)
		})
	}

	t.Run("missing user in context", func(t *testing.T) {
		svc := &mockTaskService{}
		h := NewTaskHandler(svc, log)

		rr := httptest.NewRecorder()
		h.List(rr, httptest.NewRequest(http.MethodGet, "/tasks", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		svc.AssertNotCalled(t, "ListTasks", mock.Anything, mock.Anything, mock.Anything)
	})
}
