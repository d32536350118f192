package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

const userColumns = `id, email, provider, hashed_password, auth_token, created_at, updated_at`

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a user store over a connection pool or transaction.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*PostgresUserStore)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Provider,
		&u.HashedPassword,
		&u.AuthToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

// Create implements store.UserStore.Create.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Debug("user validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Provider,
		user.HashedPassword,
		user.AuthToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			log.Debug("duplicate user rejected",
				slog.String("user_id", user.ID.String()),
				slog.String("error", err.Error()))
			return mapped
		}
		log.Error("failed to create user",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("user", "create", "insert failed", mapped)
	}

	log.Info("user created", slog.String("user_id", user.ID.String()))
	return nil
}

func (s *PostgresUserStore) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrNotFound) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get user",
			slog.String("where", where),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "get", "query failed", mapped)
	}
	return user, nil
}

// GetByID implements store.UserStore.GetByID.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, `id = $1`, id)
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, provider, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE provider = $1 AND lower(email) = $2`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, provider, domain.NormalizeEmail(email)))
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrNotFound) {
			return nil, store.ErrUserNotFound
		}
		return nil, store.NewStoreError("user", "get", "query by email failed", mapped)
	}
	return user, nil
}

// GetByAuthToken implements store.UserStore.GetByAuthToken.
func (s *PostgresUserStore) GetByAuthToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, store.ErrUserNotFound
	}
	return s.getOne(ctx, `auth_token = $1`, token)
}

// AuthTokenExists implements store.UserStore.AuthTokenExists.
func (s *PostgresUserStore) AuthTokenExists(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE auth_token = $1)`, token,
	).Scan(&exists)
	if err != nil {
		return false, store.NewStoreError("user", "token lookup", "query failed", MapError(err))
	}
	return exists, nil
}

// Update implements store.UserStore.Update.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return err
	}

	user.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	query := `
		UPDATE users
		SET email = $1, provider = $2, hashed_password = $3, auth_token = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := s.db.ExecContext(ctx, query,
		user.Email,
		user.Provider,
		user.HashedPassword,
		user.AuthToken,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			return mapped
		}
		log.Error("failed to update user",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("user", "update", "update failed", mapped)
	}

	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// UpdateAuthToken implements store.UserStore.UpdateAuthToken.
func (s *PostgresUserStore) UpdateAuthToken(ctx context.Context, id uuid.UUID, token string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET auth_token = $1, updated_at = $2 WHERE id = $3`,
		token, time.Now().UTC().Truncate(time.Microsecond), id,
	)
	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			return mapped
		}
		return store.NewStoreError("user", "update token", "update failed", mapped)
	}

	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// Delete implements store.UserStore.Delete.
// The tasks foreign key cascades, but callers delete tasks explicitly first.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return store.NewStoreError("user", "delete", "delete failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user deleted", slog.String("user_id", id.String()))
	return nil
}
