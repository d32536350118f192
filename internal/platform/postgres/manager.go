package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/taskmanager-api/internal/store"
)

// Manager is the PostgreSQL store.Manager. Stores returned outside RunInTx
// use the connection pool.
type Manager struct {
	db     *sql.DB
	logger *slog.Logger
	users  *PostgresUserStore
	tasks  *PostgresTaskStore
}

var _ store.Manager = (*Manager)(nil)

// NewManager creates a Manager over db.
func NewManager(db *sql.DB, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		db:     db,
		logger: logger,
		users:  NewPostgresUserStore(db, logger),
		tasks:  NewPostgresTaskStore(db, logger),
	}
}

// Users returns the pool-backed user store.
func (m *Manager) Users() store.UserStore { return m.users }

// Tasks returns the pool-backed task store.
func (m *Manager) Tasks() store.TaskStore { return m.tasks }

// RunInTx implements store.Manager.RunInTx.
func (m *Manager) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Manager) error) error {
	return store.RunInTransaction(ctx, m.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, &txManager{
			users: NewPostgresUserStore(tx, m.logger),
			tasks: NewPostgresTaskStore(tx, m.logger),
		})
	})
}

// txManager exposes stores bound to one open transaction.
type txManager struct {
	users store.UserStore
	tasks store.TaskStore
}

func (m *txManager) Users() store.UserStore { return m.users }
func (m *txManager) Tasks() store.TaskStore { return m.tasks }

// RunInTx joins the enclosing transaction.
func (m *txManager) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Manager) error) error {
	return fn(ctx, m)
}
