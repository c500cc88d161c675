package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/internal/search"
	"github.com/voyagehub/travel-backend/internal/validation"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// TourService manages tours and keeps the search index in step. Index
// failures are logged; the database stays the source of truth.
type TourService struct {
	tours     TourStore
	index     search.TourIndex
	validator *validation.Validator
	logger    *logrus.Logger
}

// NewTourService creates a tour service. index may be nil, in which case
// search runs against the database.
func NewTourService(tours TourStore, index search.TourIndex, validator *validation.Validator, logger *logrus.Logger) *TourService {
	return &TourService{tours: tours, index: index, validator: validator, logger: logger}
}

func (s *TourService) Create(ctx context.Context, req models.CreateTourRequest) (*models.Tour, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	t := req.ToTour()
	if err := invariants(t.CheckInvariants()); err != nil {
		return nil, err
	}
	if err := s.tours.Create(ctx, t); err != nil {
		return nil, err
	}
	s.indexTour(ctx, t)
	return t, nil
}

func (s *TourService) Get(ctx context.Context, id uuid.UUID) (*models.Tour, error) {
	return s.tours.GetByID(ctx, id)
}

func (s *TourService) List(ctx context.Context, f models.TourFilter) ([]models.Tour, models.PageMeta, error) {
	f.Normalize()
	if err := checkRange(f.StartFrom, f.StartTo); err != nil {
		return nil, models.PageMeta{}, err
	}
	items, total, err := s.tours.List(ctx, f)
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	return items, models.NewPageMeta(total, f.ListParams), nil
}

// Update merges the request and re-checks dates and the guest allowance
// against guests already booked
func (s *TourService) Update(ctx context.Context, id uuid.UUID, req models.UpdateTourRequest) (*models.Tour, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	t, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.ApplyTo(t)
	if err := invariants(t.CheckInvariants()); err != nil {
		return nil, err
	}
	if err := s.tours.Update(ctx, t); err != nil {
		return nil, err
	}
	s.indexTour(ctx, t)
	return t, nil
}

func (s *TourService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.tours.Delete(ctx, id); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.DeleteTour(ctx, id); err != nil {
			s.logger.WithError(err).WithField("tour_id", id).Warn("Failed to remove tour from search index")
		}
	}
	return nil
}

func (s *TourService) DeleteAll(ctx context.Context, f models.TourFilter) (int64, error) {
	n, err := s.tours.DeleteAll(ctx, f)
	if err != nil {
		return 0, err
	}
	if n > 0 && s.index != nil {
		if err := s.Reindex(ctx); err != nil {
			s.logger.WithError(err).Warn("Failed to rebuild search index after bulk delete")
		}
	}
	return n, nil
}

// Search runs a full-text query on the index, falling back to the
// database when no index is configured or the index call fails
func (s *TourService) Search(ctx context.Context, q string, limit int) ([]models.TourSearchHit, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	q = strings.TrimSpace(q)

	if s.index != nil {
		hits, err := s.index.SearchTours(ctx, q, limit)
		if err == nil {
			return hits, nil
		}
		s.logger.WithError(err).Warn("Search index unavailable, falling back to database")
	}
	return s.tours.Search(ctx, q, limit)
}

// Reindex rebuilds the search index from the database
func (s *TourService) Reindex(ctx context.Context) error {
	if s.index == nil {
		return nil
	}
	tours, err := s.tours.ListAll(ctx)
	if err != nil {
		return err
	}
	return s.index.Reindex(ctx, tours)
}

func (s *TourService) indexTour(ctx context.Context, t *models.Tour) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexTour(ctx, t); err != nil {
		s.logger.WithError(err).WithField("tour_id", t.ID).Warn("Failed to index tour")
	}
}
