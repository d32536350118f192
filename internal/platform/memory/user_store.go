package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

type userStore struct {
	lock func() func()
	data func() *dataset
}

var _ store.UserStore = (*userStore)(nil)

// persisted strips plaintext fields before a user is stored.
func persisted(u *domain.User) domain.User {
	c := *u
	c.ClearPassword()
	return c
}

func (s *userStore) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := user.Validate(); err != nil {
		return err
	}

	defer s.lock()()
	d := s.data()

	if _, ok := d.users[user.ID]; ok {
		return store.ErrDuplicate
	}
	if d.hasEmail(user.Provider, user.Email, user.ID) {
		return store.ErrEmailExists
	}
	if d.hasToken(user.AuthToken, user.ID) {
		return store.ErrAuthTokenExists
	}

	d.users[user.ID] = persisted(user)
	return nil
}

func (s *userStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer s.lock()()

	u, ok := s.data().users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &u, nil
}

func (s *userStore) GetByEmail(ctx context.Context, provider, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer s.lock()()

	key := emailKey(provider, email)
	for _, u := range s.data().users {
		if emailKey(u.Provider, u.Email) == key {
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *userStore) GetByAuthToken(ctx context.Context, token string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, store.ErrUserNotFound
	}
	defer s.lock()()

	for _, u := range s.data().users {
		if u.AuthToken == token {
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *userStore) AuthTokenExists(ctx context.Context, token string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	defer s.lock()()

	return s.data().hasToken(token, uuid.Nil), nil
}

func (s *userStore) Update(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := user.Validate(); err != nil {
		return err
	}

	defer s.lock()()
	d := s.data()

	if _, ok := d.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	if d.hasEmail(user.Provider, user.Email, user.ID) {
		return store.ErrEmailExists
	}
	if d.hasToken(user.AuthToken, user.ID) {
		return store.ErrAuthTokenExists
	}

	user.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	d.users[user.ID] = persisted(user)
	return nil
}

func (s *userStore) UpdateAuthToken(ctx context.Context, id uuid.UUID, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer s.lock()()
	d := s.data()

	u, ok := d.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	if d.hasToken(token, id) {
		return store.ErrAuthTokenExists
	}

	u.AuthToken = token
	u.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	d.users[id] = u
	return nil
}

// Delete removes the user only. Tasks are removed by the caller inside the
// same transaction.
func (s *userStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer s.lock()()
	d := s.data()

	if _, ok := d.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(d.users, id)
	return nil
}
