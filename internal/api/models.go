package api

import (
	"time"

	"github.com/phrazzld/taskmanager-api/internal/domain"
)

// Resource type names used in documents.
const (
	resourceTypeUsers = "users"
	resourceTypeTasks = "tasks"
)

// UserParams is the body of POST /users and PUT /users/{id}.
type UserParams struct {
	Email                *string `json:"email"`
	Provider             string  `json:"provider"`
	Password             *string `json:"password"`
	PasswordConfirmation *string `json:"password_confirmation"`
}

// UserRequest wraps UserParams as {"user": {...}}.
type UserRequest struct {
	User *UserParams `json:"user" validate:"required"`
}

// SessionParams is the body of POST /sessions.
type SessionParams struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
	Provider string `json:"provider"`
}

// SessionRequest wraps SessionParams as {"session": {...}}.
type SessionRequest struct {
	Session *SessionParams `json:"session" validate:"required"`
}

// TaskParams is the body of POST /tasks and PUT /tasks/{id}.
type TaskParams struct {
	Title string `json:"title"`
}

// TaskRequest wraps TaskParams as {"task": {...}}.
type TaskRequest struct {
	Task *TaskParams `json:"task" validate:"required"`
}

// Resource is a single JSON:API resource object.
type Resource struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes any    `json:"attributes"`
}

// Document is a top-level JSON:API document. Data holds a Resource or a
// slice of them.
type Document struct {
	Data any `json:"data"`
}

// UserAttributes are the serialized fields of a user.
type UserAttributes struct {
	Email     string    `json:"email"`
	Provider  string    `json:"provider"`
	AuthToken string    `json:"auth-token"`
	CreatedAt time.Time `json:"created-at"`
	UpdatedAt time.Time `json:"updated-at"`
}

// TaskAttributes are the serialized fields of a task.
type TaskAttributes struct {
	Title     string    `json:"title"`
	UserID    string    `json:"user-id"`
	CreatedAt time.Time `json:"created-at"`
	UpdatedAt time.Time `json:"updated-at"`
}

func userResource(u *domain.User) Resource {
	return Resource{
		ID:   u.ID.String(),
		Type: resourceTypeUsers,
		Attributes: UserAttributes{
			Email:     u.Email,
			Provider:  u.Provider,
			AuthToken: u.AuthToken,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		},
	}
}

func taskResource(t *domain.Task) Resource {
	return Resource{
		ID:   t.ID.String(),
		Type: resourceTypeTasks,
		Attributes: TaskAttributes{
			Title:     t.Title,
			UserID:    t.UserID.String(),
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		},
	}
}

func userDocument(u *domain.User) Document {
	return Document{Data: userResource(u)}
}

func taskDocument(t *domain.Task) Document {
	return Document{Data: taskResource(t)}
}

func taskListDocument(tasks []*domain.Task) Document {
	data := make([]Resource, 0, len(tasks))
	for _, t := range tasks {
		data = append(data, taskResource(t))
	}
	return Document{Data: data}
}
