package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/internal/services"
)

// UserHandler serves the admin user directory
type UserHandler struct {
	users *services.UserService
	audit *AdminAudit
}

func NewUserHandler(users *services.UserService, audit *AdminAudit) *UserHandler {
	return &UserHandler{users: users, audit: audit}
}

// Create handles POST /api/v1/users (JSON or multipart with photo)
func (h *UserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if !bind(c, &req) {
		return
	}
	photo, err := optionalPhoto(c)
	if err != nil {
		respondError(c, err)
		return
	}
	user, err := h.users.Create(c.Request.Context(), req, photo)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "User created", user)
}

func (h *UserHandler) List(c *gin.Context) {
	var f models.UserFilter
	if !bindQuery(c, &f) {
		return
	}
	users, meta, err := h.users.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, "Users retrieved", users, meta)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User retrieved", user)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.UpdateUserRequest
	if !bind(c, &req) {
		return
	}
	photo, err := optionalPhoto(c)
	if err != nil {
		respondError(c, err)
		return
	}
	user, err := h.users.Update(c.Request.Context(), id, req, photo)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User updated", user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	h.audit.deleted(c, "user", id)
	respond(c, http.StatusOK, "User deleted", nil)
}

// DeleteAll handles DELETE /api/v1/users. The caller's own account is kept.
func (h *UserHandler) DeleteAll(c *gin.Context) {
	var f models.UserFilter
	if !bindQuery(c, &f) {
		return
	}
	n, err := h.users.DeleteAll(c.Request.Context(), actorFrom(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit.bulkDeleted(c, "user", n)
	respond(c, http.StatusOK, "Users deleted", gin.H{"deleted": n})
}
