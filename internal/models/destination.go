package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Destination is a city-level place that hotels belong to and flights connect
type Destination struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Country     string    `json:"country" db:"country"`
	City        string    `json:"city" db:"city"`
	Photo       *string   `json:"photo,omitempty" db:"photo"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CreateDestinationRequest is accepted as JSON or multipart form
type CreateDestinationRequest struct {
	Name        string `json:"name" form:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" form:"description" validate:"max=2000"`
	Country     string `json:"country" form:"country" validate:"required,min=2,max=100"`
	City        string `json:"city" form:"city" validate:"required,min=2,max=100"`
}

// UpdateDestinationRequest applies only the supplied fields
type UpdateDestinationRequest struct {
	Name        *string `json:"name" form:"name" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description" form:"description" validate:"omitempty,max=2000"`
	Country     *string `json:"country" form:"country" validate:"omitempty,min=2,max=100"`
	City        *string `json:"city" form:"city" validate:"omitempty,min=2,max=100"`
}

// ToDestination builds a new entity from the request
func (r CreateDestinationRequest) ToDestination() *Destination {
	return &Destination{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		Country:     strings.TrimSpace(r.Country),
		City:        strings.TrimSpace(r.City),
	}
}

// ApplyTo merges the request into d
func (r UpdateDestinationRequest) ApplyTo(d *Destination) {
	if r.Name != nil {
		d.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		d.Description = *r.Description
	}
	if r.Country != nil {
		d.Country = strings.TrimSpace(*r.Country)
	}
	if r.City != nil {
		d.City = strings.TrimSpace(*r.City)
	}
}

// DestinationFilter holds the typed list filters for destinations
type DestinationFilter struct {
	ListParams
	Country string `form:"country"`
	City    string `form:"city"`
	Search  string `form:"search"`
}
