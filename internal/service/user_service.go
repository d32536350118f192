package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
	"github.com/phrazzld/taskmanager-api/internal/store"
	"github.com/sethvargo/go-retry"
)

// DefaultTokenPersistRetries bounds how often an issue+persist step is
// repeated after losing a race for a token at write time.
const DefaultTokenPersistRetries = 3

// UserUpdate carries the mutable user fields. Nil fields are left unchanged.
type UserUpdate struct {
	Email                *string
	Password             *string
	PasswordConfirmation *string
}

// UserService provides registration, sessions and self-service account
// operations. Account operations only succeed when requesterID equals the
// target userID; any other id is reported as store.ErrUserNotFound.
type UserService interface {
	// Register creates a user and issues their first auth token.
	Register(ctx context.Context, email, provider, password, confirmation string) (*domain.User, error)

	// Login verifies credentials and rotates the user's token.
	// Returns auth.ErrInvalidCredentials for an unknown email or wrong password.
	Login(ctx context.Context, provider, email, password string) (*domain.User, error)

	// Logout rotates the token of whoever holds token, revoking it.
	// Returns ErrSessionNotFound if no user holds it.
	Logout(ctx context.Context, token string) error

	// Authenticate resolves a bearer token to its user.
	// Returns auth.ErrInvalidToken if no user holds it.
	Authenticate(ctx context.Context, token string) (*domain.User, error)

	GetUser(ctx context.Context, requesterID, userID uuid.UUID) (*domain.User, error)
	UpdateUser(ctx context.Context, requesterID, userID uuid.UUID, update UserUpdate) (*domain.User, error)

	// RegenerateToken replaces the user's token with a fresh one.
	RegenerateToken(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// DeleteUser removes the user and every task they own in one transaction.
	DeleteUser(ctx context.Context, requesterID, userID uuid.UUID) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	store          store.Manager
	tokens         *auth.TokenIssuer
	hasher         auth.PasswordHasher
	verifier       auth.PasswordVerifier
	persistRetries uint64
	logger         *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	manager store.Manager,
	tokens *auth.TokenIssuer,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) *UserServiceImpl {
	if manager == nil || tokens == nil || hasher == nil || verifier == nil {
		panic("user service dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserServiceImpl{
		store:          manager,
		tokens:         tokens,
		hasher:         hasher,
		verifier:       verifier,
		persistRetries: DefaultTokenPersistRetries,
		logger:         logger.With("component", "user_service"),
	}
}

// withFreshToken issues a token and hands it to persist. When persist loses
// the race for the token to a concurrent writer, the whole step is retried
// with a new token.
func (s *UserServiceImpl) withFreshToken(
	ctx context.Context,
	persist func(ctx context.Context, token string) error,
) (string, error) {
	var issued string
	backoff := retry.WithMaxRetries(s.persistRetries, retry.NewConstant(time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		token, err := s.tokens.Issue(ctx, s.store.Users())
		if err != nil {
			return err
		}
		if err := persist(ctx, token); err != nil {
			if errors.Is(err, store.ErrAuthTokenExists) {
				logger.FromContextOrDefault(ctx, s.logger).Warn("auth token taken at write time, retrying")
				return retry.RetryableError(err)
			}
			return err
		}
		issued = token
		return nil
	})
	if err != nil {
		return "", err
	}
	return issued, nil
}

// Register implements UserService.Register.
func (s *UserServiceImpl) Register(
	ctx context.Context,
	email, provider, password, confirmation string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, provider, password, confirmation)
	if err != nil {
		log.Debug("registration rejected", slog.String("error", err.Error()))
		return nil, err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, newUserServiceError("register", "failed to hash password", err)
	}
	user.HashedPassword = hashed
	user.ClearPassword()

	_, err = s.withFreshToken(ctx, func(ctx context.Context, token string) error {
		user.AuthToken = token
		return s.store.Users().Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration with taken email", slog.String("provider", user.Provider))
			return nil, domain.NewValidationError("email", domain.MsgTaken)
		}
		log.Error("failed to register user", slog.Any("error", err))
		return nil, newUserServiceError("register", "failed to save user", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Login implements UserService.Login.
func (s *UserServiceImpl) Login(ctx context.Context, provider, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if provider == "" {
		provider = domain.DefaultProvider
	}

	user, err := s.store.Users().GetByEmail(ctx, provider, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown email")
			return nil, auth.ErrInvalidCredentials
		}
		return nil, newUserServiceError("login", "failed to look up user", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login with wrong password", slog.String("user_id", user.ID.String()))
		return nil, auth.ErrInvalidCredentials
	}

	token, err := s.withFreshToken(ctx, func(ctx context.Context, token string) error {
		return s.store.Users().UpdateAuthToken(ctx, user.ID, token)
	})
	if err != nil {
		log.Error("failed to rotate token on login",
			slog.String("user_id", user.ID.String()),
			slog.Any("error", err))
		return nil, newUserServiceError("login", "failed to issue token", err)
	}
	user.AuthToken = token

	log.Info("user logged in", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Logout implements UserService.Logout.
func (s *UserServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrSessionNotFound
	}

	user, err := s.store.Users().GetByAuthToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrSessionNotFound
		}
		return newUserServiceError("logout", "failed to look up session", err)
	}

	if _, err := s.withFreshToken(ctx, func(ctx context.Context, next string) error {
		return s.store.Users().UpdateAuthToken(ctx, user.ID, next)
	}); err != nil {
		return newUserServiceError("logout", "failed to revoke token", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("session revoked",
		slog.String("user_id", user.ID.String()))
	return nil
}

// Authenticate implements UserService.Authenticate.
func (s *UserServiceImpl) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, auth.ErrInvalidToken
	}

	user, err := s.store.Users().GetByAuthToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, newUserServiceError("authenticate", "failed to look up token", err)
	}
	return user, nil
}

// GetUser implements UserService.GetUser.
func (s *UserServiceImpl) GetUser(ctx context.Context, requesterID, userID uuid.UUID) (*domain.User, error) {
	if requesterID != userID {
		return nil, store.ErrUserNotFound
	}

	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// UpdateUser implements UserService.UpdateUser.
// A new password is validated against its confirmation before hashing.
func (s *UserServiceImpl) UpdateUser(
	ctx context.Context,
	requesterID, userID uuid.UUID,
	update UserUpdate,
) (*domain.User, error) {
	if requesterID != userID {
		return nil, store.ErrUserNotFound
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.User
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Manager) error {
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to retrieve user for update: %w", err)
		}

		if update.Email != nil {
			user.Email = *update.Email
		}
		if update.Password != nil {
			user.Password = *update.Password
			if update.PasswordConfirmation != nil {
				user.PasswordConfirmation = *update.PasswordConfirmation
			}
		}
		if err := user.Validate(); err != nil {
			return err
		}

		if user.Password != "" {
			hashed, err := s.hasher.Hash(user.Password)
			if err != nil {
				return newUserServiceError("update", "failed to hash password", err)
			}
			user.HashedPassword = hashed
			user.ClearPassword()
		}

		if err := tx.Users().Update(ctx, user); err != nil {
			if errors.Is(err, store.ErrEmailExists) {
				return domain.NewValidationError("email", domain.MsgTaken)
			}
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrValidation) && !store.IsNotFoundError(err) {
			log.Error("failed to update user",
				slog.String("user_id", userID.String()),
				slog.Any("error", err))
		}
		return nil, err
	}

	log.Info("user updated", slog.String("user_id", userID.String()))
	return updated, nil
}

// RegenerateToken implements UserService.RegenerateToken.
func (s *UserServiceImpl) RegenerateToken(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	_, err := s.withFreshToken(ctx, func(ctx context.Context, token string) error {
		return s.store.Users().UpdateAuthToken(ctx, userID, token)
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, newUserServiceError("regenerate_token", "failed to issue token", err)
	}

	return s.store.Users().GetByID(ctx, userID)
}

// DeleteUser implements UserService.DeleteUser.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, requesterID, userID uuid.UUID) error {
	if requesterID != userID {
		return store.ErrUserNotFound
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	var removed int64
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Manager) error {
		n, err := tx.Tasks().DeleteAllByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to delete tasks: %w", err)
		}
		removed = n
		return tx.Users().Delete(ctx, userID)
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			return err
		}
		log.Error("failed to delete user",
			slog.String("user_id", userID.String()),
			slog.Any("error", err))
		return newUserServiceError("delete", "transaction failed", err)
	}

	log.Info("user deleted",
		slog.String("user_id", userID.String()),
		slog.Int64("tasks_deleted", removed))
	return nil
}
