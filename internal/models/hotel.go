package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Hotel belongs to one destination
type Hotel struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	DestinationID uuid.UUID      `json:"destination_id" db:"destination_id"`
	Name          string         `json:"name" db:"name"`
	Address       string         `json:"address" db:"address"`
	Rating        int            `json:"rating" db:"rating"`
	Amenities     pq.StringArray `json:"amenities" db:"amenities"`
	Photo         *string        `json:"photo,omitempty" db:"photo"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

type CreateHotelRequest struct {
	DestinationID string   `json:"destination_id" form:"destination_id" validate:"required,uuid"`
	Name          string   `json:"name" form:"name" validate:"required,min=2,max=150"`
	Address       string   `json:"address" form:"address" validate:"required,min=5,max=255"`
	Rating        int      `json:"rating" form:"rating" validate:"required,min=1,max=5"`
	Amenities     []string `json:"amenities" form:"amenities" validate:"omitempty,max=50,dive,min=2,max=50"`
}

type UpdateHotelRequest struct {
	DestinationID *string  `json:"destination_id" form:"destination_id" validate:"omitempty,uuid"`
	Name          *string  `json:"name" form:"name" validate:"omitempty,min=2,max=150"`
	Address       *string  `json:"address" form:"address" validate:"omitempty,min=5,max=255"`
	Rating        *int     `json:"rating" form:"rating" validate:"omitempty,min=1,max=5"`
	Amenities     []string `json:"amenities" form:"amenities" validate:"omitempty,max=50,dive,min=2,max=50"`
}

func (r CreateHotelRequest) ToHotel() *Hotel {
	return &Hotel{
		ID:            uuid.New(),
		DestinationID: ParseID(r.DestinationID),
		Name:          r.Name,
		Address:       r.Address,
		Rating:        r.Rating,
		Amenities:     pq.StringArray(UniqueStrings(r.Amenities)),
	}
}

func (r UpdateHotelRequest) ApplyTo(h *Hotel) {
	if r.DestinationID != nil {
		h.DestinationID = ParseID(*r.DestinationID)
	}
	if r.Name != nil {
		h.Name = *r.Name
	}
	if r.Address != nil {
		h.Address = *r.Address
	}
	if r.Rating != nil {
		h.Rating = *r.Rating
	}
	if r.Amenities != nil {
		h.Amenities = pq.StringArray(UniqueStrings(r.Amenities))
	}
}

// HotelFilter holds the typed list filters for hotels
type HotelFilter struct {
	ListParams
	DestinationID string `form:"destination_id"`
	MinRating     int    `form:"min_rating"`
	Search        string `form:"search"`
}

// ParseID parses an id that has already passed the uuid validation rule
func ParseID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// UniqueStrings drops duplicates while keeping first-seen order.
// Amenities are a set.
func UniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
