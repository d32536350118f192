package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/redact"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
)

// Authenticator resolves an opaque token to the user holding it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// AuthMiddleware provides token authentication for routes.
type AuthMiddleware struct {
	authenticator Authenticator
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
	}
}

// Authenticate resolves the Authorization header to a user and stores the
// user in the request context. The header carries the raw token; a
// "Bearer " prefix is accepted too.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromHeader(r.Header.Get("Authorization"))
		if token == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Not authorized")
			return
		}

		user, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Not authorized")
				return
			}
			logger.FromContextOrDefault(r.Context(), slog.Default()).
				Error("failed to authenticate token", "error", redact.Error(err))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			return
		}

		ctx := shared.WithUser(r.Context(), user)
		log := logger.FromContextOrDefault(ctx, slog.Default()).
			With(slog.String("user_id", user.ID.String()))
		ctx = logger.WithLogger(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TokenFromHeader extracts the token from an Authorization header value.
func TokenFromHeader(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > len("Bearer ") && strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		header = strings.TrimSpace(header[len("Bearer "):])
	}
	if strings.ContainsAny(header, " \t") {
		return ""
	}
	return header
}
