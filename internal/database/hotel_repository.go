package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/models"
)

const hotelColumns = `id, destination_id, name, address, rating, amenities, photo, created_at, updated_at`

var hotelSortColumns = map[string]string{
	"name":      "name",
	"rating":    "rating",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// HotelRepository handles hotel database operations
type HotelRepository struct {
	db DB
}

// NewHotelRepository creates a new hotel repository
func NewHotelRepository(db DB) *HotelRepository {
	return &HotelRepository{db: db}
}

// Create inserts a hotel. A missing destination surfaces as a Conflict.
func (r *HotelRepository) Create(ctx context.Context, h *models.Hotel) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.Amenities == nil {
		h.Amenities = []string{}
	}
	query := `
		INSERT INTO hotels (id, destination_id, name, address, rating, amenities, photo)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, h.ID, h.DestinationID, h.Name, h.Address, h.Rating, h.Amenities, h.Photo).
		Scan(&h.CreatedAt, &h.UpdatedAt)
	return translateError("failed to create hotel", err)
}

// GetByID retrieves a hotel by ID
func (r *HotelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Hotel, error) {
	var h models.Hotel
	if err := r.db.GetContext(ctx, &h, `SELECT `+hotelColumns+` FROM hotels WHERE id = $1`, id); err != nil {
		return nil, notFoundOr("Hotel", id, "failed to get hotel", err)
	}
	return &h, nil
}

func (r *HotelRepository) Update(ctx context.Context, h *models.Hotel) error {
	if h.Amenities == nil {
		h.Amenities = []string{}
	}
	query := `
		UPDATE hotels
		SET destination_id = $2, name = $3, address = $4, rating = $5, amenities = $6, photo = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query, h.ID, h.DestinationID, h.Name, h.Address, h.Rating, h.Amenities, h.Photo).
		Scan(&h.UpdatedAt)
	return notFoundOr("Hotel", h.ID, "failed to update hotel", err)
}

// Delete removes a hotel and its rooms unless a room is booked
func (r *HotelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM hotels WHERE id = $1`, id)
	if err != nil {
		return translateError("failed to delete hotel", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return translateError("failed to get rows affected", err)
	}
	if rows == 0 {
		return apperr.NotFound("Hotel", id)
	}
	return nil
}

func (r *HotelRepository) DeleteAll(ctx context.Context, f models.HotelFilter) (int64, error) {
	return deleteWhere(ctx, r.db, "hotels", hotelWhere(f))
}

func (r *HotelRepository) List(ctx context.Context, f models.HotelFilter) ([]models.Hotel, int, error) {
	hotels := []models.Hotel{}
	total, err := listPage(ctx, r.db, &hotels, "hotels", hotelColumns,
		hotelWhere(f), orderBy(f.ListParams, hotelSortColumns, "created_at"), f.ListParams)
	if err != nil {
		return nil, 0, err
	}
	return hotels, total, nil
}

func hotelWhere(f models.HotelFilter) *whereBuilder {
	w := &whereBuilder{}
	w.addIf(f.DestinationID != "", "destination_id = ?", f.DestinationID)
	w.addIf(f.MinRating > 0, "rating >= ?", f.MinRating)
	if f.Search != "" {
		pattern := likePattern(f.Search)
		w.add("(name ILIKE ? OR address ILIKE ?)", pattern, pattern)
	}
	return w
}
