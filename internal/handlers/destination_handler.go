package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/internal/services"
)

// DestinationHandler handles destination CRUD
type DestinationHandler struct {
	destinations *services.DestinationService
	audit        *AdminAudit
}

func NewDestinationHandler(destinations *services.DestinationService, audit *AdminAudit) *DestinationHandler {
	return &DestinationHandler{destinations: destinations, audit: audit}
}

// Create handles POST /api/v1/destinations (JSON or multipart with photo)
func (h *DestinationHandler) Create(c *gin.Context) {
	var req models.CreateDestinationRequest
	if !bind(c, &req) {
		return
	}
	photo, err := optionalPhoto(c)
	if err != nil {
		respondError(c, err)
		return
	}
	d, err := h.destinations.Create(c.Request.Context(), req, photo)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Destination created", d)
}

func (h *DestinationHandler) List(c *gin.Context) {
	var f models.DestinationFilter
	if !bindQuery(c, &f) {
		return
	}
	items, meta, err := h.destinations.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, "Destinations retrieved", items, meta)
}

func (h *DestinationHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	d, err := h.destinations.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Destination retrieved", d)
}

func (h *DestinationHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.UpdateDestinationRequest
	if !bind(c, &req) {
		return
	}
	photo, err := optionalPhoto(c)
	if err != nil {
		respondError(c, err)
		return
	}
	d, err := h.destinations.Update(c.Request.Context(), id, req, photo)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Destination updated", d)
}

// Delete cascades to hotels, rooms and flights of the destination
func (h *DestinationHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.destinations.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.audit.deleted(c, "destination", id)
	respond(c, http.StatusOK, "Destination deleted", nil)
}

func (h *DestinationHandler) DeleteAll(c *gin.Context) {
	var f models.DestinationFilter
	if !bindQuery(c, &f) {
		return
	}
	n, err := h.destinations.DeleteAll(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit.bulkDeleted(c, "destination", n)
	respond(c, http.StatusOK, "Destinations deleted", gin.H{"deleted": n})
}
