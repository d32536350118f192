package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/service"
)

// SessionHandler serves /sessions. A session is the user's current token:
// creating one rotates the token, destroying one revokes it.
type SessionHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(users service.UserService, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}

	return &SessionHandler{
		users:  users,
		logger: logger.With(slog.String("component", "session_handler")),
	}
}

// Create handles POST /sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	p := req.Session
	user, err := h.users.Login(r.Context(), p.Provider, p.Email, p.Password)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userDocument(user))
}

// Destroy handles DELETE /sessions/{token}.
func (h *SessionHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Logout(r.Context(), chi.URLParam(r, "token")); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondNoContent(w)
}
