package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/internal/validation"
)

// FlightService manages flights between destinations
type FlightService struct {
	flights      FlightStore
	destinations DestinationStore
	validator    *validation.Validator
}

func NewFlightService(flights FlightStore, destinations DestinationStore, validator *validation.Validator) *FlightService {
	return &FlightService{flights: flights, destinations: destinations, validator: validator}
}

func (s *FlightService) endpointExists(field, id string) validation.Check {
	return referenceExists(field, "destination", func(ctx context.Context) error {
		_, err := s.destinations.GetByID(ctx, models.ParseID(id))
		return err
	})
}

func (s *FlightService) Create(ctx context.Context, req models.CreateFlightRequest) (*models.Flight, error) {
	err := s.validator.Validate(ctx, req,
		s.endpointExists("origin_id", req.OriginID),
		s.endpointExists("destination_id", req.DestinationID),
	)
	if err != nil {
		return nil, err
	}
	f := req.ToFlight()
	if err := invariants(f.CheckInvariants()); err != nil {
		return nil, err
	}
	if err := s.flights.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FlightService) Get(ctx context.Context, id uuid.UUID) (*models.Flight, error) {
	return s.flights.GetByID(ctx, id)
}

func (s *FlightService) List(ctx context.Context, f models.FlightFilter) ([]models.Flight, models.PageMeta, error) {
	f.Normalize()
	if err := checkRange(f.DepartureFrom, f.DepartureTo); err != nil {
		return nil, models.PageMeta{}, err
	}
	items, total, err := s.flights.List(ctx, f)
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	return items, models.NewPageMeta(total, f.ListParams), nil
}

// Update merges the request and re-checks the cross-field rules on the
// result, so a partial update cannot put arrival before departure
func (s *FlightService) Update(ctx context.Context, id uuid.UUID, req models.UpdateFlightRequest) (*models.Flight, error) {
	f, err := s.flights.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var checks []validation.Check
	if req.OriginID != nil {
		checks = append(checks, s.endpointExists("origin_id", *req.OriginID))
	}
	if req.DestinationID != nil {
		checks = append(checks, s.endpointExists("destination_id", *req.DestinationID))
	}
	if err := s.validator.Validate(ctx, req, checks...); err != nil {
		return nil, err
	}
	req.ApplyTo(f)
	if err := invariants(f.CheckInvariants()); err != nil {
		return nil, err
	}
	if err := s.flights.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FlightService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.flights.Delete(ctx, id)
}

func (s *FlightService) DeleteAll(ctx context.Context, f models.FlightFilter) (int64, error) {
	return s.flights.DeleteAll(ctx, f)
}
