package store

import "context"

// Manager groups the stores of one storage backend.
type Manager interface {
	Users() UserStore
	Tasks() TaskStore

	// RunInTx calls fn with a Manager whose stores share one transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Manager) error) error
}
