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

// HotelService manages hotels and their rooms
type HotelService struct {
	hotels       HotelStore
	rooms        RoomStore
	destinations DestinationStore
	validator    *validation.Validator
	photo        photoSlot
}

func NewHotelService(hotels HotelStore, rooms RoomStore, destinations DestinationStore, photos storage.PhotoStore, validator *validation.Validator, logger *logrus.Logger) *HotelService {
	return &HotelService{
		hotels:       hotels,
		rooms:        rooms,
		destinations: destinations,
		validator:    validator,
		photo:        photoSlot{photos: photos, folder: "hotels", logger: logger},
	}
}

func (s *HotelService) destinationExists(id string) validation.Check {
	return referenceExists("destination_id", "destination", func(ctx context.Context) error {
		_, err := s.destinations.GetByID(ctx, models.ParseID(id))
		return err
	})
}

func (s *HotelService) hotelExists(id string) validation.Check {
	return referenceExists("hotel_id", "hotel", func(ctx context.Context) error {
		_, err := s.hotels.GetByID(ctx, models.ParseID(id))
		return err
	})
}

func (s *HotelService) Create(ctx context.Context, req models.CreateHotelRequest, photo *multipart.FileHeader) (*models.Hotel, error) {
	if err := s.validator.Validate(ctx, req, s.destinationExists(req.DestinationID)); err != nil {
		return nil, err
	}
	h := req.ToHotel()
	if photo != nil {
		url, err := s.photo.photos.Save(photo, s.photo.folder)
		if err != nil {
			return nil, err
		}
		h.Photo = &url
	}
	if err := s.hotels.Create(ctx, h); err != nil {
		s.photo.discard(h.Photo)
		return nil, err
	}
	return h, nil
}

func (s *HotelService) Get(ctx context.Context, id uuid.UUID) (*models.Hotel, error) {
	return s.hotels.GetByID(ctx, id)
}

func (s *HotelService) List(ctx context.Context, f models.HotelFilter) ([]models.Hotel, models.PageMeta, error) {
	f.Normalize()
	items, total, err := s.hotels.List(ctx, f)
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	return items, models.NewPageMeta(total, f.ListParams), nil
}

func (s *HotelService) Update(ctx context.Context, id uuid.UUID, req models.UpdateHotelRequest, photo *multipart.FileHeader) (*models.Hotel, error) {
	h, err := s.hotels.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var checks []validation.Check
	if req.DestinationID != nil {
		checks = append(checks, s.destinationExists(*req.DestinationID))
	}
	if err := s.validator.Validate(ctx, req, checks...); err != nil {
		return nil, err
	}
	req.ApplyTo(h)

	oldPhoto := h.Photo
	if photo != nil {
		url, err := s.photo.photos.Save(photo, s.photo.folder)
		if err != nil {
			return nil, err
		}
		h.Photo = &url
	}
	if err := s.hotels.Update(ctx, h); err != nil {
		if photo != nil {
			s.photo.discard(h.Photo)
		}
		return nil, err
	}
	if photo != nil {
		s.photo.discard(oldPhoto)
	}
	return h, nil
}

func (s *HotelService) Delete(ctx context.Context, id uuid.UUID) error {
	h, err := s.hotels.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.hotels.Delete(ctx, id); err != nil {
		return err
	}
	s.photo.discard(h.Photo)
	return nil
}

func (s *HotelService) DeleteAll(ctx context.Context, f models.HotelFilter) (int64, error) {
	return s.hotels.DeleteAll(ctx, f)
}

// Rooms

func (s *HotelService) CreateRoom(ctx context.Context, req models.CreateRoomRequest) (*models.Room, error) {
	if err := s.validator.Validate(ctx, req, s.hotelExists(req.HotelID)); err != nil {
		return nil, err
	}
	room := req.ToRoom()
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *HotelService) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	return s.rooms.GetByID(ctx, id)
}

func (s *HotelService) ListRooms(ctx context.Context, f models.RoomFilter) ([]models.Room, models.PageMeta, error) {
	f.Normalize()
	items, total, err := s.rooms.List(ctx, f)
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	return items, models.NewPageMeta(total, f.ListParams), nil
}

func (s *HotelService) UpdateRoom(ctx context.Context, id uuid.UUID, req models.UpdateRoomRequest) (*models.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var checks []validation.Check
	if req.HotelID != nil {
		checks = append(checks, s.hotelExists(*req.HotelID))
	}
	if err := s.validator.Validate(ctx, req, checks...); err != nil {
		return nil, err
	}
	req.ApplyTo(room)
	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *HotelService) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	return s.rooms.Delete(ctx, id)
}

func (s *HotelService) DeleteAllRooms(ctx context.Context, f models.RoomFilter) (int64, error) {
	return s.rooms.DeleteAll(ctx, f)
}
