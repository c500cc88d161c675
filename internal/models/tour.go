package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TourType string

const (
	TourTypeAdventure TourType = "ADVENTURE"
	TourTypeCultural  TourType = "CULTURAL"
	TourTypeBeach     TourType = "BEACH"
	TourTypeCity      TourType = "CITY"
	TourTypeWildlife  TourType = "WILDLIFE"
	TourTypeCruise    TourType = "CRUISE"
)

type TourStatus string

const (
	TourStatusUpcoming  TourStatus = "UPCOMING"
	TourStatusOngoing   TourStatus = "ONGOING"
	TourStatusCompleted TourStatus = "COMPLETED"
	TourStatusCancelled TourStatus = "CANCELLED"
)

// Tour is a guided package with a fixed guest allowance
type Tour struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Description  string     `json:"description" db:"description"`
	Type         TourType   `json:"type" db:"type"`
	Status       TourStatus `json:"status" db:"status"`
	Price        float64    `json:"price" db:"price"`
	MaxGuests    int        `json:"max_guests" db:"max_guests"`
	GuestsBooked int        `json:"guests_booked" db:"guests_booked"`
	StartDate    time.Time  `json:"start_date" db:"start_date"`
	EndDate      time.Time  `json:"end_date" db:"end_date"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// DurationDays counts both the start and end day
func (t *Tour) DurationDays() int {
	days := int(t.EndDate.Sub(t.StartDate).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// MarshalJSON adds the derived duration
func (t Tour) MarshalJSON() ([]byte, error) {
	type alias Tour
	return json.Marshal(struct {
		alias
		Duration int `json:"duration"`
	}{alias(t), t.DurationDays()})
}

type CreateTourRequest struct {
	Name        string     `json:"name" validate:"required,min=3,max=150"`
	Description string     `json:"description" validate:"max=5000"`
	Type        TourType   `json:"type" validate:"required,oneof=ADVENTURE CULTURAL BEACH CITY WILDLIFE CRUISE"`
	Status      TourStatus `json:"status" validate:"omitempty,oneof=UPCOMING ONGOING COMPLETED CANCELLED"`
	Price       float64    `json:"price" validate:"required,gt=0"`
	MaxGuests   int        `json:"max_guests" validate:"required,min=1,max=500"`
	StartDate   time.Time  `json:"start_date" validate:"required"`
	EndDate     time.Time  `json:"end_date" validate:"required,gtfield=StartDate"`
}

type UpdateTourRequest struct {
	Name        *string     `json:"name" validate:"omitempty,min=3,max=150"`
	Description *string     `json:"description" validate:"omitempty,max=5000"`
	Type        *TourType   `json:"type" validate:"omitempty,oneof=ADVENTURE CULTURAL BEACH CITY WILDLIFE CRUISE"`
	Status      *TourStatus `json:"status" validate:"omitempty,oneof=UPCOMING ONGOING COMPLETED CANCELLED"`
	Price       *float64    `json:"price" validate:"omitempty,gt=0"`
	MaxGuests   *int        `json:"max_guests" validate:"omitempty,min=1,max=500"`
	StartDate   *time.Time  `json:"start_date"`
	EndDate     *time.Time  `json:"end_date"`
}

func (r CreateTourRequest) ToTour() *Tour {
	status := r.Status
	if status == "" {
		status = TourStatusUpcoming
	}
	return &Tour{
		ID:          uuid.New(),
		Name:        r.Name,
		Description: r.Description,
		Type:        r.Type,
		Status:      status,
		Price:       r.Price,
		MaxGuests:   r.MaxGuests,
		StartDate:   r.StartDate.UTC(),
		EndDate:     r.EndDate.UTC(),
	}
}

func (r UpdateTourRequest) ApplyTo(t *Tour) {
	if r.Name != nil {
		t.Name = *r.Name
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.Type != nil {
		t.Type = *r.Type
	}
	if r.Status != nil {
		t.Status = *r.Status
	}
	if r.Price != nil {
		t.Price = *r.Price
	}
	if r.MaxGuests != nil {
		t.MaxGuests = *r.MaxGuests
	}
	if r.StartDate != nil {
		t.StartDate = r.StartDate.UTC()
	}
	if r.EndDate != nil {
		t.EndDate = r.EndDate.UTC()
	}
}

// CheckInvariants reports field errors on a merged tour
func (t *Tour) CheckInvariants() map[string]string {
	errs := map[string]string{}
	if !t.EndDate.After(t.StartDate) {
		errs["end_date"] = "end_date must be after start_date"
	}
	if t.MaxGuests < t.GuestsBooked {
		errs["max_guests"] = "max_guests cannot be lower than guests already booked"
	}
	return errs
}

// TourFilter holds the typed list filters for tours
type TourFilter struct {
	ListParams
	Type      string     `form:"type"`
	Status    string     `form:"status"`
	MinPrice  *float64   `form:"min_price"`
	MaxPrice  *float64   `form:"max_price"`
	StartFrom *time.Time `form:"start_from" time_format:"2006-01-02"`
	StartTo   *time.Time `form:"start_to" time_format:"2006-01-02"`
	Search    string     `form:"search"`
}

// TourSearchHit is one tour search result
type TourSearchHit struct {
	ID     uuid.UUID  `json:"id"`
	Name   string     `json:"name"`
	Type   TourType   `json:"type"`
	Status TourStatus `json:"status"`
	Price  float64    `json:"price"`
	Score  float64    `json:"score"`
}
