package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"suits-world/internal/middleware"
	"suits-world/internal/models"
	"suits-world/internal/repository"
)

// AccountService registers and logs in users.
type AccountService interface {
	Register(ctx context.Context, in models.RegisterInput) (*models.User, error)
	Login(ctx context.Context, in models.LoginInput) (*models.User, string, error)
}

// UserStore is what the user endpoints need from persistence.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, page, limit int) (repository.Page[models.User], error)
	Update(ctx context.Context, id string, patch *models.UserPatch, privileged bool) (*models.User, error)
	Deactivate(ctx context.Context, id string) (*models.User, error)
}

type UserHandler struct {
	errorResponder
	accounts AccountService
	users    UserStore
}

func NewUserHandler(accounts AccountService, users UserStore, exposeErrors bool) *UserHandler {
	return &UserHandler{
		errorResponder: errorResponder{exposeErrors: exposeErrors},
		accounts:       accounts,
		users:          users,
	}
}

// Create serves POST /users: registration, or login with ?action=login.
func (h *UserHandler) Create(c *gin.Context) {
	if c.Query("action") == "login" {
		h.login(c)
		return
	}
	h.register(c)
}

func (h *UserHandler) register(c *gin.Context) {
	var in models.RegisterInput
	if !bindJSON(c, &in) {
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err, "", "Error creating user")
		return
	}
	succeed(c, http.StatusCreated, "User created successfully", user)
}

func (h *UserHandler) login(c *gin.Context) {
	var in models.LoginInput
	if !bindJSON(c, &in) {
		return
	}
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		fail(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, token, err := h.accounts.Login(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err, "", "Error logging in")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Message: "Login successful", Data: user, Token: token})
}

// Get serves GET /users: the caller's own account with ?action=me, otherwise
// the active user list for administrators.
func (h *UserHandler) Get(c *gin.Context) {
	current, found := middleware.CurrentUser(c)
	if !found {
		fail(c, http.StatusUnauthorized, "No token provided")
		return
	}
	if c.Query("action") == "me" {
		h.respondUser(c, current.ID.Hex())
		return
	}
	if !current.IsAdmin() {
		fail(c, http.StatusForbidden, "Access denied")
		return
	}

	page, limit := repository.ParsePagination(c.Request.URL.Query())
	result, err := h.users.List(c.Request.Context(), page, limit)
	if err != nil {
		h.respondError(c, err, "", "Error fetching users")
		return
	}
	c.JSON(http.StatusOK, pageResponse(result))
}

// GetByID serves GET /users/:id for the account owner or an administrator.
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.allowed(c)
	if !ok {
		return
	}
	h.respondUser(c, id)
}

func (h *UserHandler) respondUser(c *gin.Context, id string) {
	user, err := h.users.FindByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "User not found", "Error fetching user")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: user})
}

// Update serves PUT /users/:id. Only administrators may change role or isActive.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.allowed(c)
	if !ok {
		return
	}

	var patch models.UserPatch
	if !bindJSON(c, &patch) {
		return
	}
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		h.respondError(c, err, "", "Error updating user")
		return
	}
	if patch.IsEmpty() {
		fail(c, http.StatusBadRequest, "No valid fields to update")
		return
	}

	current, _ := middleware.CurrentUser(c)
	if !current.IsAdmin() && (patch.Role != nil || patch.IsActive != nil) {
		fail(c, http.StatusForbidden, "Only administrators can change role or status")
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, &patch, current.IsAdmin())
	if err != nil {
		h.respondError(c, err, "User not found", "Error updating user")
		return
	}
	succeed(c, http.StatusOK, "User updated successfully", user)
}

// Delete serves DELETE /users/:id. Accounts are deactivated, never removed.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.allowed(c)
	if !ok {
		return
	}

	user, err := h.users.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "User not found", "Error deactivating user")
		return
	}
	succeed(c, http.StatusOK, "User deactivated successfully", user)
}

// allowed resolves :id and lets administrators act on any account and users
// on their own.
func (h *UserHandler) allowed(c *gin.Context) (string, bool) {
	current, found := middleware.CurrentUser(c)
	if !found {
		fail(c, http.StatusUnauthorized, "No token provided")
		return "", false
	}
	id, err := repository.CanonicalID(c.Param("id"))
	if err != nil {
		h.respondError(c, err, "User not found", "Error fetching user")
		return "", false
	}
	if current.IsAdmin() || current.ID.Hex() == id {
		return id, true
	}
	fail(c, http.StatusForbidden, "Access denied")
	return "", false
}
