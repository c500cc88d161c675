package models

import (
	"time"

	"github.com/google/uuid"
)

type RoomType string

const (
	RoomTypeSingle RoomType = "SINGLE"
	RoomTypeDouble RoomType = "DOUBLE"
	RoomTypeTwin   RoomType = "TWIN"
	RoomTypeSuite  RoomType = "SUITE"
	RoomTypeDeluxe RoomType = "DELUXE"
	RoomTypeFamily RoomType = "FAMILY"
)

// Room belongs to one hotel. Available flips to false while a booking holds it.
type Room struct {
	ID        uuid.UUID `json:"id" db:"id"`
	HotelID   uuid.UUID `json:"hotel_id" db:"hotel_id"`
	RoomType  RoomType  `json:"room_type" db:"room_type"`
	Price     float64   `json:"price" db:"price"`
	Capacity  int       `json:"capacity" db:"capacity"`
	Available bool      `json:"available" db:"available"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CreateRoomRequest struct {
	HotelID   string   `json:"hotel_id" validate:"required,uuid"`
	RoomType  RoomType `json:"room_type" validate:"required,oneof=SINGLE DOUBLE TWIN SUITE DELUXE FAMILY"`
	Price     float64  `json:"price" validate:"required,gt=0"`
	Capacity  int      `json:"capacity" validate:"required,min=1,max=20"`
	Available *bool    `json:"available"`
}

type UpdateRoomRequest struct {
	HotelID   *string   `json:"hotel_id" validate:"omitempty,uuid"`
	RoomType  *RoomType `json:"room_type" validate:"omitempty,oneof=SINGLE DOUBLE TWIN SUITE DELUXE FAMILY"`
	Price     *float64  `json:"price" validate:"omitempty,gt=0"`
	Capacity  *int      `json:"capacity" validate:"omitempty,min=1,max=20"`
	Available *bool     `json:"available"`
}

func (r CreateRoomRequest) ToRoom() *Room {
	available := true
	if r.Available != nil {
		available = *r.Available
	}
	return &Room{
		ID:        uuid.New(),
		HotelID:   ParseID(r.HotelID),
		RoomType:  r.RoomType,
		Price:     r.Price,
		Capacity:  r.Capacity,
		Available: available,
	}
}

func (r UpdateRoomRequest) ApplyTo(room *Room) {
	if r.HotelID != nil {
		room.HotelID = ParseID(*r.HotelID)
	}
	if r.RoomType != nil {
		room.RoomType = *r.RoomType
	}
	if r.Price != nil {
		room.Price = *r.Price
	}
	if r.Capacity != nil {
		room.Capacity = *r.Capacity
	}
	if r.Available != nil {
		room.Available = *r.Available
	}
}

// RoomFilter holds the typed list filters for rooms
type RoomFilter struct {
	ListParams
	HotelID   string   `form:"hotel_id"`
	RoomType  string   `form:"room_type"`
	Available *bool    `form:"available"`
	MinPrice  *float64 `form:"min_price"`
	MaxPrice  *float64 `form:"max_price"`
}
