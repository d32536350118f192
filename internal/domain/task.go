package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTitleLength is the longest title, in characters, a task may carry.
const MaxTitleLength = 255

// Task is a single to-do item owned by exactly one user.
//
// IDs are UUIDv7 so that ID order follows creation order; together with
// CreatedAt this gives listings a stable insertion order.
type Task struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTask creates a validated task for the given owner.
func NewTask(userID uuid.UUID, title string) (*Task, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	// Postgres stores microseconds; truncate so stored and in-memory values agree.
	now := time.Now().UTC().Truncate(time.Microsecond)
	task := &Task{
		ID:        id,
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks the task's fields and returns a *ValidationError or nil.
func (t *Task) Validate() error {
	verr := &ValidationError{}

	if t.ID == uuid.Nil {
		verr.Add("id", MsgBlank)
	}

	if t.UserID == uuid.Nil {
		verr.Add("user", MsgMustExist)
	}

	validateTitle(verr, t.Title)

	return verr.Err()
}

// Rename replaces the title after validating it. On failure the task is left untouched.
func (t *Task) Rename(title string) error {
	verr := &ValidationError{}
	validateTitle(verr, title)
	if err := verr.Err(); err != nil {
		return err
	}

	t.Title = title
	t.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	return nil
}

func validateTitle(verr *ValidationError, title string) {
	switch {
	case strings.TrimSpace(title) == "":
		verr.Add("title", MsgBlank)
	case utf8.RuneCountInString(title) > MaxTitleLength:
		verr.Add("title", TooLong(MaxTitleLength))
	}
}
