package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/voyagehub/travel-backend/internal/apperr"
)

// BookingType tags which kind of item a booking holds
type BookingType string

const (
	BookingTypeTour   BookingType = "TOUR"
	BookingTypeRoom   BookingType = "ROOM"
	BookingTypeFlight BookingType = "FLIGHT"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

// CanTransitionTo reports whether next is a legal successor of s
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// HoldsCapacity is true while the booking keeps a guest slot, room or seat reserved
func (s BookingStatus) HoldsCapacity() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// IsTerminal is true for statuses that can never change again
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

// BookableRef is the tagged variant a booking points at: exactly one tour,
// room or flight, selected by Type.
type BookableRef struct {
	Type BookingType
	ID   uuid.UUID
}

func TourRef(id uuid.UUID) BookableRef   { return BookableRef{Type: BookingTypeTour, ID: id} }
func RoomRef(id uuid.UUID) BookableRef   { return BookableRef{Type: BookingTypeRoom, ID: id} }
func FlightRef(id uuid.UUID) BookableRef { return BookableRef{Type: BookingTypeFlight, ID: id} }

// Columns spreads the ref into the nullable storage columns (tour_id, room_id, flight_id)
func (r BookableRef) Columns() (tourID, roomID, flightID *uuid.UUID) {
	id := r.ID
	switch r.Type {
	case BookingTypeTour:
		return &id, nil, nil
	case BookingTypeRoom:
		return nil, &id, nil
	case BookingTypeFlight:
		return nil, nil, &id
	}
	return nil, nil, nil
}

// RefFromColumns rebuilds the variant from storage, rejecting rows that do
// not carry exactly one reference.
func RefFromColumns(tourID, roomID, flightID *uuid.UUID) (BookableRef, error) {
	var refs []BookableRef
	if tourID != nil {
		refs = append(refs, TourRef(*tourID))
	}
	if roomID != nil {
		refs = append(refs, RoomRef(*roomID))
	}
	if flightID != nil {
		refs = append(refs, FlightRef(*flightID))
	}
	if len(refs) != 1 {
		return BookableRef{}, apperr.InvalidInput("exactly one of tour_id, room_id or flight_id is required, got %d", len(refs))
	}
	return refs[0], nil
}

// Booking belongs to one user and holds one bookable item
type Booking struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	Item        BookableRef   `json:"-"`
	Quantity    int           `json:"quantity"`
	UnitPrice   float64       `json:"unit_price"`
	TotalPrice  float64       `json:"total_price"`
	Status      BookingStatus `json:"status"`
	Notes       string        `json:"notes,omitempty"`
	BookingDate time.Time     `json:"booking_date"`
	CancelledAt *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// MarshalJSON emits the variant tag and exactly one of tour_id, room_id, flight_id
func (b Booking) MarshalJSON() ([]byte, error) {
	type alias Booking
	tourID, roomID, flightID := b.Item.Columns()
	return json.Marshal(struct {
		alias
		Type     BookingType `json:"type"`
		TourID   *uuid.UUID  `json:"tour_id,omitempty"`
		RoomID   *uuid.UUID  `json:"room_id,omitempty"`
		FlightID *uuid.UUID  `json:"flight_id,omitempty"`
	}{alias(b), b.Item.Type, tourID, roomID, flightID})
}

// CreateBookingRequest must name exactly one of TourID, RoomID or FlightID
type CreateBookingRequest struct {
	TourID   *string `json:"tour_id" validate:"omitempty,uuid"`
	RoomID   *string `json:"room_id" validate:"omitempty,uuid"`
	FlightID *string `json:"flight_id" validate:"omitempty,uuid"`
	// Quantity is tour guests, room nights or flight seats
	Quantity int    `json:"quantity" validate:"omitempty,min=1,max=50"`
	Notes    string `json:"notes" validate:"max=1000"`
	// UserID lets admins and agents book on behalf of a customer
	UserID *string `json:"user_id" validate:"omitempty,uuid"`
}

// Ref returns the single bookable reference in the request
func (r CreateBookingRequest) Ref() (BookableRef, error) {
	var tourID, roomID, flightID *uuid.UUID
	if r.TourID != nil && *r.TourID != "" {
		id := ParseID(*r.TourID)
		tourID = &id
	}
	if r.RoomID != nil && *r.RoomID != "" {
		id := ParseID(*r.RoomID)
		roomID = &id
	}
	if r.FlightID != nil && *r.FlightID != "" {
		id := ParseID(*r.FlightID)
		flightID = &id
	}
	return RefFromColumns(tourID, roomID, flightID)
}

// QuantityOrDefault treats a missing quantity as one unit
func (r CreateBookingRequest) QuantityOrDefault() int {
	if r.Quantity < 1 {
		return 1
	}
	return r.Quantity
}

type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status" validate:"required,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
}

// BookingFilter holds the typed list filters for bookings
type BookingFilter struct {
	ListParams
	Status string     `form:"status"`
	Type   string     `form:"type"`
	UserID string     `form:"user_id"`
	From   *time.Time `form:"from" time_format:"2006-01-02"`
	To     *time.Time `form:"to" time_format:"2006-01-02"`
}
