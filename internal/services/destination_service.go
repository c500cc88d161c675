package services

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/internal/storage"
	"github.com/voyagehub/travel-backend/internal/validation"
)

// DestinationService manages destinations. Deleting one cascades to its
// hotels, rooms and flights unless those are still booked.
type DestinationService struct {
	destinations DestinationStore
	validator    *validation.Validator
	photo        photoSlot
}

func NewDestinationService(destinations DestinationStore, photos storage.PhotoStore, validator *validation.Validator, logger *logrus.Logger) *DestinationService {
	return &DestinationService{
		destinations: destinations,
		validator:    validator,
		photo:        photoSlot{photos: photos, folder: "destinations", logger: logger},
	}
}

// uniqueName rejects a (name, country, city) combination already in use,
// ignoring case
func (s *DestinationService) uniqueName(d *models.Destination) validation.Check {
	return validation.Check{Field: "name", Fn: func(ctx context.Context) (string, error) {
		exists, err := s.destinations.ExistsByNameCountryCity(ctx, d.Name, d.Country, d.City, d.ID)
		if err != nil {
			return "", err
		}
		if exists {
			return "a destination with this name already exists in " + d.City + ", " + d.Country, nil
		}
		return "", nil
	}}
}

func (s *DestinationService) Create(ctx context.Context, req models.CreateDestinationRequest, photo *multipart.FileHeader) (*models.Destination, error) {
	d := req.ToDestination()
	if err := s.validator.Validate(ctx, req, s.uniqueName(d)); err != nil {
		return nil, err
	}
	if photo != nil {
		url, err := s.photo.photos.Save(photo, s.photo.folder)
		if err != nil {
			return nil, err
		}
		d.Photo = &url
	}
	if err := s.destinations.Create(ctx, d); err != nil {
		s.photo.discard(d.Photo)
		return nil, err
	}
	return d, nil
}

func (s *DestinationService) Get(ctx context.Context, id uuid.UUID) (*models.Destination, error) {
	return s.destinations.GetByID(ctx, id)
}

func (s *DestinationService) List(ctx context.Context, f models.DestinationFilter) ([]models.Destination, models.PageMeta, error) {
	f.Normalize()
	items, total, err := s.destinations.List(ctx, f)
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	return items, models.NewPageMeta(total, f.ListParams), nil
}

func (s *DestinationService) Update(ctx context.Context, id uuid.UUID, req models.UpdateDestinationRequest, photo *multipart.FileHeader) (*models.Destination, error) {
	d, err := s.destinations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.ApplyTo(d)

	var checks []validation.Check
	if req.Name != nil || req.Country != nil || req.City != nil {
		checks = append(checks, s.uniqueName(d))
	}
	if err := s.validator.Validate(ctx, req, checks...); err != nil {
		return nil, err
	}

	oldPhoto := d.Photo
	if photo != nil {
		url, err := s.photo.photos.Save(photo, s.photo.folder)
		if err != nil {
			return nil, err
		}
		d.Photo = &url
	}
	if err := s.destinations.Update(ctx, d); err != nil {
		if photo != nil {
			s.photo.discard(d.Photo)
		}
		return nil, err
	}
	if photo != nil {
		s.photo.discard(oldPhoto)
	}
	return d, nil
}

func (s *DestinationService) Delete(ctx context.Context, id uuid.UUID) error {
	d, err := s.destinations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.destinations.Delete(ctx, id); err != nil {
		return err
	}
	s.photo.discard(d.Photo)
	return nil
}

func (s *DestinationService) DeleteAll(ctx context.Context, f models.DestinationFilter) (int64, error) {
	return s.destinations.DeleteAll(ctx, f)
}
