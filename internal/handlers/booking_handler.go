package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/internal/services"
)

// BookingHandler handles booking requests. Customers only ever see their
// own bookings; the service enforces the scoping.
type BookingHandler struct {
	bookings *services.BookingService
	audit    *AdminAudit
}

func NewBookingHandler(bookings *services.BookingService, audit *AdminAudit) *BookingHandler {
	return &BookingHandler{bookings: bookings, audit: audit}
}

// Create handles POST /api/v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req models.CreateBookingRequest
	if !bind(c, &req) {
		return
	}
	b, err := h.bookings.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Booking created", b)
}

func (h *BookingHandler) List(c *gin.Context) {
	var f models.BookingFilter
	if !bindQuery(c, &f) {
		return
	}
	items, meta, err := h.bookings.List(c.Request.Context(), actorFrom(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, "Bookings retrieved", items, meta)
}

// ListMine handles GET /api/v1/bookings/me
func (h *BookingHandler) ListMine(c *gin.Context) {
	var f models.BookingFilter
	if !bindQuery(c, &f) {
		return
	}
	items, meta, err := h.bookings.ListMine(c.Request.Context(), actorFrom(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, "Bookings retrieved", items, meta)
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.bookings.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Booking retrieved", b)
}

// UpdateStatus handles PUT and PATCH /api/v1/bookings/:id
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.UpdateBookingStatusRequest
	if !bind(c, &req) {
		return
	}
	b, err := h.bookings.UpdateStatus(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Booking updated", b)
}

// Delete removes a booking and its payments, releasing held capacity
func (h *BookingHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.bookings.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.audit.deleted(c, "booking", id)
	respond(c, http.StatusOK, "Booking deleted", nil)
}

func (h *BookingHandler) DeleteAll(c *gin.Context) {
	var f models.BookingFilter
	if !bindQuery(c, &f) {
		return
	}
	n, err := h.bookings.DeleteAll(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit.bulkDeleted(c, "booking", n)
	respond(c, http.StatusOK, "Bookings deleted", gin.H{"deleted": n})
}
