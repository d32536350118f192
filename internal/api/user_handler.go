package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/service"
)

// UserHandler serves /users.
type UserHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}

	return &UserHandler{
		users:  users,
		logger: logger.With(slog.String("component", "user_handler")),
	}
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	p := req.User
	user, err := h.users.Register(r.Context(),
		deref(p.Email), p.Provider, deref(p.Password), deref(p.PasswordConfirmation))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, userDocument(user))
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	requesterID, userID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), requesterID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userDocument(user))
}

// Update handles PUT /users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	requesterID, userID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req UserRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.users.UpdateUser(r.Context(), requesterID, userID, service.UserUpdate{
		Email:                req.User.Email,
		Password:             req.User.Password,
		PasswordConfirmation: req.User.PasswordConfirmation,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userDocument(user))
}

// Delete handles DELETE /users/{id}. Owned tasks are removed with the user.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	requesterID, userID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.users.DeleteUser(r.Context(), requesterID, userID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondNoContent(w)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
