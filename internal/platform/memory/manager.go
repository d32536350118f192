package memory

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// dataset holds every record of the backend. Stored values are private
// copies and are never handed out directly.
type dataset struct {
	users map[uuid.UUID]domain.User
	tasks map[uuid.UUID]domain.Task
}

func newDataset() *dataset {
	return &dataset{
		users: make(map[uuid.UUID]domain.User),
		tasks: make(map[uuid.UUID]domain.Task),
	}
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		users: make(map[uuid.UUID]domain.User, len(d.users)),
		tasks: make(map[uuid.UUID]domain.Task, len(d.tasks)),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.tasks {
		c.tasks[k] = v
	}
	return c
}

func emailKey(provider, email string) string {
	return provider + "\x00" + domain.NormalizeEmail(email)
}

// Manager is the in-memory store.Manager. All operations are serialized by
// a single mutex, and RunInTx holds it for the whole transaction.
type Manager struct {
	mu     sync.Mutex
	data   *dataset
	logger *slog.Logger
}

var _ store.Manager = (*Manager)(nil)

// NewManager creates an empty backend.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		data:   newDataset(),
		logger: logger.With(slog.String("component", "memory_store")),
	}
}

// Users returns the user store.
func (m *Manager) Users() store.UserStore {
	return &userStore{lock: m.lock, data: m.current}
}

// Tasks returns the task store.
func (m *Manager) Tasks() store.TaskStore {
	return &taskStore{lock: m.lock, data: m.current}
}

func (m *Manager) lock() func() {
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *Manager) current() *dataset {
	return m.data
}

// RunInTx runs fn against a snapshot of the data and publishes the snapshot
// only when fn returns nil. Other callers block until the transaction ends.
func (m *Manager) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Manager) error) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := m.data.clone()
	tx := &txManager{data: snapshot}

	defer func() {
		if p := recover(); p != nil {
			m.logger.Error("panic in transaction, discarding changes")
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		m.logger.Debug("transaction rolled back", slog.String("error", err.Error()))
		return err
	}

	m.data = snapshot
	return nil
}

// txManager exposes stores over one uncommitted snapshot. The owning Manager's
// mutex is already held, so its stores do not lock.
type txManager struct {
	data *dataset
}

func noLock() func() { return func() {} }

func (t *txManager) Users() store.UserStore {
	return &userStore{lock: noLock, data: func() *dataset { return t.data }}
}

func (t *txManager) Tasks() store.TaskStore {
	return &taskStore{lock: noLock, data: func() *dataset { return t.data }}
}

// RunInTx joins the enclosing transaction.
func (t *txManager) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Manager) error) error {
	return fn(ctx, t)
}

// hasEmail reports whether another user already holds provider+email.
func (d *dataset) hasEmail(provider, email string, except uuid.UUID) bool {
	key := emailKey(provider, email)
	for id, u := range d.users {
		if id != except && emailKey(u.Provider, u.Email) == key {
			return true
		}
	}
	return false
}

// hasToken reports whether another user already holds token.
func (d *dataset) hasToken(token string, except uuid.UUID) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}
	for id, u := range d.users {
		if id != except && u.AuthToken == token {
			return true
		}
	}
	return false
}
