package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/internal/services"
)

// TourHandler handles tour CRUD and full text search
type TourHandler struct {
	tours *services.TourService
	audit *AdminAudit
}

func NewTourHandler(tours *services.TourService, audit *AdminAudit) *TourHandler {
	return &TourHandler{tours: tours, audit: audit}
}

func (h *TourHandler) Create(c *gin.Context) {
	var req models.CreateTourRequest
	if !bind(c, &req) {
		return
	}
	t, err := h.tours.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Tour created", t)
}

func (h *TourHandler) List(c *gin.Context) {
	var f models.TourFilter
	if !bindQuery(c, &f) {
		return
	}
	items, meta, err := h.tours.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, "Tours retrieved", items, meta)
}

// Search handles GET /api/v1/tours/search?q=
func (h *TourHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		respondError(c, apperr.Validation(map[string]string{"q": "q is required"}))
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	hits, err := h.tours.Search(c.Request.Context(), q, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Search results", hits)
}

func (h *TourHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := h.tours.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Tour retrieved", t)
}

func (h *TourHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.UpdateTourRequest
	if !bind(c, &req) {
		return
	}
	t, err := h.tours.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Tour updated", t)
}

func (h *TourHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.tours.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.audit.deleted(c, "tour", id)
	respond(c, http.StatusOK, "Tour deleted", nil)
}

func (h *TourHandler) DeleteAll(c *gin.Context) {
	var f models.TourFilter
	if !bindQuery(c, &f) {
		return
	}
	n, err := h.tours.DeleteAll(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit.bulkDeleted(c, "tour", n)
	respond(c, http.StatusOK, "Tours deleted", gin.H{"deleted": n})
}

// Reindex handles POST /api/v1/tours/reindex
func (h *TourHandler) Reindex(c *gin.Context) {
	if err := h.tours.Reindex(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Search index rebuilt", nil)
}
