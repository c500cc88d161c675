package models

import (
	"time"

	"github.com/google/uuid"
)

type FlightClass string

const (
	FlightClassEconomy        FlightClass = "ECONOMY"
	FlightClassBusiness       FlightClass = "BUSINESS"
	FlightClassFirst          FlightClass = "FIRST_CLASS"
	FlightClassPremiumEconomy FlightClass = "PREMIUM_ECONOMY"
)

// Flight connects two destinations. SeatsBooked never exceeds SeatCapacity.
type Flight struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	FlightNumber  string      `json:"flight_number" db:"flight_number"`
	Airline       string      `json:"airline" db:"airline"`
	OriginID      uuid.UUID   `json:"origin_id" db:"origin_id"`
	DestinationID uuid.UUID   `json:"destination_id" db:"destination_id"`
	DepartureTime time.Time   `json:"departure_time" db:"departure_time"`
	ArrivalTime   time.Time   `json:"arrival_time" db:"arrival_time"`
	Price         float64     `json:"price" db:"price"`
	SeatCapacity  int         `json:"seat_capacity" db:"seat_capacity"`
	SeatsBooked   int         `json:"seats_booked" db:"seats_booked"`
	Class         FlightClass `json:"class" db:"class"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// SeatsAvailable is the number of seats still open for booking
func (f *Flight) SeatsAvailable() int {
	return f.SeatCapacity - f.SeatsBooked
}

type CreateFlightRequest struct {
	FlightNumber  string      `json:"flight_number" validate:"required,flight_number"`
	Airline       string      `json:"airline" validate:"required,min=2,max=100"`
	OriginID      string      `json:"origin_id" validate:"required,uuid"`
	DestinationID string      `json:"destination_id" validate:"required,uuid,nefield=OriginID"`
	DepartureTime time.Time   `json:"departure_time" validate:"required"`
	ArrivalTime   time.Time   `json:"arrival_time" validate:"required,gtfield=DepartureTime"`
	Price         float64     `json:"price" validate:"required,gt=0"`
	SeatCapacity  int         `json:"seat_capacity" validate:"required,min=1,max=1000"`
	Class         FlightClass `json:"class" validate:"required,oneof=ECONOMY BUSINESS FIRST_CLASS PREMIUM_ECONOMY"`
}

type UpdateFlightRequest struct {
	FlightNumber  *string      `json:"flight_number" validate:"omitempty,flight_number"`
	Airline       *string      `json:"airline" validate:"omitempty,min=2,max=100"`
	OriginID      *string      `json:"origin_id" validate:"omitempty,uuid"`
	DestinationID *string      `json:"destination_id" validate:"omitempty,uuid"`
	DepartureTime *time.Time   `json:"departure_time"`
	ArrivalTime   *time.Time   `json:"arrival_time"`
	Price         *float64     `json:"price" validate:"omitempty,gt=0"`
	SeatCapacity  *int         `json:"seat_capacity" validate:"omitempty,min=1,max=1000"`
	Class         *FlightClass `json:"class" validate:"omitempty,oneof=ECONOMY BUSINESS FIRST_CLASS PREMIUM_ECONOMY"`
}

func (r CreateFlightRequest) ToFlight() *Flight {
	return &Flight{
		ID:            uuid.New(),
		FlightNumber:  r.FlightNumber,
		Airline:       r.Airline,
		OriginID:      ParseID(r.OriginID),
		DestinationID: ParseID(r.DestinationID),
		DepartureTime: r.DepartureTime.UTC(),
		ArrivalTime:   r.ArrivalTime.UTC(),
		Price:         r.Price,
		SeatCapacity:  r.SeatCapacity,
		Class:         r.Class,
	}
}

func (r UpdateFlightRequest) ApplyTo(f *Flight) {
	if r.FlightNumber != nil {
		f.FlightNumber = *r.FlightNumber
	}
	if r.Airline != nil {
		f.Airline = *r.Airline
	}
	if r.OriginID != nil {
		f.OriginID = ParseID(*r.OriginID)
	}
	if r.DestinationID != nil {
		f.DestinationID = ParseID(*r.DestinationID)
	}
	if r.DepartureTime != nil {
		f.DepartureTime = r.DepartureTime.UTC()
	}
	if r.ArrivalTime != nil {
		f.ArrivalTime = r.ArrivalTime.UTC()
	}
	if r.Price != nil {
		f.Price = *r.Price
	}
	if r.SeatCapacity != nil {
		f.SeatCapacity = *r.SeatCapacity
	}
	if r.Class != nil {
		f.Class = *r.Class
	}
}

// CheckInvariants reports field errors on a merged flight
func (f *Flight) CheckInvariants() map[string]string {
	errs := map[string]string{}
	if f.OriginID == f.DestinationID {
		errs["destination_id"] = "destination_id must differ from origin_id"
	}
	if !f.ArrivalTime.After(f.DepartureTime) {
		errs["arrival_time"] = "arrival_time must be after departure_time"
	}
	if f.SeatCapacity < f.SeatsBooked {
		errs["seat_capacity"] = "seat_capacity cannot be lower than seats already booked"
	}
	return errs
}

// FlightFilter holds the typed list filters for flights
type FlightFilter struct {
	ListParams
	OriginID      string     `form:"origin_id"`
	DestinationID string     `form:"destination_id"`
	Airline       string     `form:"airline"`
	Class         string     `form:"class"`
	DepartureFrom *time.Time `form:"departure_from" time_format:"2006-01-02"`
	DepartureTo   *time.Time `form:"departure_to" time_format:"2006-01-02"`
	MinPrice      *float64   `form:"min_price"`
	MaxPrice      *float64   `form:"max_price"`
}
