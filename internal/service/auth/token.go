package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
)

// DefaultTokenLength is the number of characters in an issued token.
const DefaultTokenLength = 20

// DefaultMaxTokenAttempts bounds the generate-check loop in Issue.
const DefaultMaxTokenAttempts = 10

var friendlyReplacer = strings.NewReplacer("l", "s", "I", "x", "O", "y", "0", "z")

// FriendlyToken returns length characters of URL-safe base64 drawn from
// crypto/rand, with l, I, O and 0 mapped to s, x, y and z.
func FriendlyToken(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("token length must be positive, got %d", length)
	}

	// 3 random bytes encode to 4 characters.
	buf := make([]byte, (length*3+3)/4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(buf)
	return friendlyReplacer.Replace(encoded[:length]), nil
}

// TokenGenerator produces candidate tokens.
type TokenGenerator func() (string, error)

// TokenLookup reports whether a token is already held by some user.
// store.UserStore satisfies it.
type TokenLookup interface {
	AuthTokenExists(ctx context.Context, token string) (bool, error)
}

// TokenIssuer generates tokens that no user currently holds. It never
// modifies users; the caller persists the token, and the storage unique
// index stays the final arbiter for races between check and write.
type TokenIssuer struct {
	generate    TokenGenerator
	maxAttempts int
	onCollision func()
	logger      *slog.Logger
}

// TokenIssuerOption configures a TokenIssuer.
type TokenIssuerOption func(*TokenIssuer)

// WithGenerator replaces the random generator, mainly for tests.
func WithGenerator(g TokenGenerator) TokenIssuerOption {
	return func(i *TokenIssuer) {
		i.generate = g
	}
}

// WithCollisionObserver registers fn to be called for every candidate that
// was already taken.
func WithCollisionObserver(fn func()) TokenIssuerOption {
	return func(i *TokenIssuer) {
		i.onCollision = fn
	}
}

// NewTokenIssuer creates an issuer producing tokens of length characters and
// giving up after maxAttempts collisions. Non-positive values fall back to
// the defaults.
func NewTokenIssuer(length, maxAttempts int, logger *slog.Logger, opts ...TokenIssuerOption) *TokenIssuer {
	if length <= 0 {
		length = DefaultTokenLength
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxTokenAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}

	i := &TokenIssuer{
		generate: func() (string, error) {
			return FriendlyToken(length)
		},
		maxAttempts: maxAttempts,
		onCollision: func() {},
		logger:      logger.With(slog.String("component", "token_issuer")),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue returns a token not held by any user according to lookup.
// Returns ErrTokenRetriesExhausted when every attempt collides.
func (i *TokenIssuer) Issue(ctx context.Context, lookup TokenLookup) (string, error) {
	log := logger.FromContextOrDefault(ctx, i.logger)

	for attempt := 1; attempt <= i.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		candidate, err := i.generate()
		if err != nil {
			return "", fmt.Errorf("failed to generate token: %w", err)
		}

		taken, err := lookup.AuthTokenExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check token uniqueness: %w", err)
		}
		if !taken {
			return candidate, nil
		}

		i.onCollision()
		log.Warn("generated token collided with an issued token",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", i.maxAttempts))
	}

	log.Error("token generation retries exhausted", slog.Int("max_attempts", i.maxAttempts))
	return "", ErrTokenRetriesExhausted
}
