package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/internal/services"
)

// FlightHandler handles flight CRUD
type FlightHandler struct {
	flights *services.FlightService
	audit   *AdminAudit
}

func NewFlightHandler(flights *services.FlightService, audit *AdminAudit) *FlightHandler {
	return &FlightHandler{flights: flights, audit: audit}
}

func (h *FlightHandler) Create(c *gin.Context) {
	var req models.CreateFlightRequest
	if !bind(c, &req) {
		return
	}
	f, err := h.flights.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Flight created", f)
}

func (h *FlightHandler) List(c *gin.Context) {
	var f models.FlightFilter
	if !bindQuery(c, &f) {
		return
	}
	items, meta, err := h.flights.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, "Flights retrieved", items, meta)
}

func (h *FlightHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	f, err := h.flights.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Flight retrieved", f)
}

func (h *FlightHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.UpdateFlightRequest
	if !bind(c, &req) {
		return
	}
	f, err := h.flights.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Flight updated", f)
}

func (h *FlightHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.flights.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.audit.deleted(c, "flight", id)
	respond(c, http.StatusOK, "Flight deleted", nil)
}

func (h *FlightHandler) DeleteAll(c *gin.Context) {
	var f models.FlightFilter
	if !bindQuery(c, &f) {
		return
	}
	n, err := h.flights.DeleteAll(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit.bulkDeleted(c, "flight", n)
	respond(c, http.StatusOK, "Flights deleted", gin.H{"deleted": n})
}
