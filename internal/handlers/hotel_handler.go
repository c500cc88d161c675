package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/internal/services"
)

// HotelHandler handles hotel and room CRUD
type HotelHandler struct {
	hotels *services.HotelService
	audit  *AdminAudit
}

func NewHotelHandler(hotels *services.HotelService, audit *AdminAudit) *HotelHandler {
	return &HotelHandler{hotels: hotels, audit: audit}
}

// Create handles POST /api/v1/hotels (JSON or multipart with photo)
func (h *HotelHandler) Create(c *gin.Context) {
	var req models.CreateHotelRequest
	if !bind(c, &req) {
		return
	}
	photo, err := optionalPhoto(c)
	if err != nil {
		respondError(c, err)
		return
	}
	hotel, err := h.hotels.Create(c.Request.Context(), req, photo)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Hotel created", hotel)
}

func (h *HotelHandler) List(c *gin.Context) {
	var f models.HotelFilter
	if !bindQuery(c, &f) {
		return
	}
	items, meta, err := h.hotels.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, "Hotels retrieved", items, meta)
}

func (h *HotelHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	hotel, err := h.hotels.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Hotel retrieved", hotel)
}

func (h *HotelHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.UpdateHotelRequest
	if !bind(c, &req) {
		return
	}
	photo, err := optionalPhoto(c)
	if err != nil {
		respondError(c, err)
		return
	}
	hotel, err := h.hotels.Update(c.Request.Context(), id, req, photo)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Hotel updated", hotel)
}

func (h *HotelHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.hotels.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.audit.deleted(c, "hotel", id)
	respond(c, http.StatusOK, "Hotel deleted", nil)
}

func (h *HotelHandler) DeleteAll(c *gin.Context) {
	var f models.HotelFilter
	if !bindQuery(c, &f) {
		return
	}
	n, err := h.hotels.DeleteAll(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit.bulkDeleted(c, "hotel", n)
	respond(c, http.StatusOK, "Hotels deleted", gin.H{"deleted": n})
}

// CreateRoom handles POST /api/v1/rooms
func (h *HotelHandler) CreateRoom(c *gin.Context) {
	var req models.CreateRoomRequest
	if !bind(c, &req) {
		return
	}
	room, err := h.hotels.CreateRoom(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Room created", room)
}

func (h *HotelHandler) ListRooms(c *gin.Context) {
	var f models.RoomFilter
	if !bindQuery(c, &f) {
		return
	}
	items, meta, err := h.hotels.ListRooms(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, "Rooms retrieved", items, meta)
}

func (h *HotelHandler) GetRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	room, err := h.hotels.GetRoom(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Room retrieved", room)
}

func (h *HotelHandler) UpdateRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.UpdateRoomRequest
	if !bind(c, &req) {
		return
	}
	room, err := h.hotels.UpdateRoom(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Room updated", room)
}

func (h *HotelHandler) DeleteRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.hotels.DeleteRoom(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.audit.deleted(c, "room", id)
	respond(c, http.StatusOK, "Room deleted", nil)
}

func (h *HotelHandler) DeleteAllRooms(c *gin.Context) {
	var f models.RoomFilter
	if !bindQuery(c, &f) {
		return
	}
	n, err := h.hotels.DeleteAllRooms(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit.bulkDeleted(c, "room", n)
	respond(c, http.StatusOK, "Rooms deleted", gin.H{"deleted": n})
}
