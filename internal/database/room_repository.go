package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/models"
)

const roomColumns = `id, hotel_id, room_type, price, capacity, available, created_at, updated_at`

var roomSortColumns = map[string]string{
	"price":     "price",
	"capacity":  "capacity",
	"roomType":  "room_type",
	"createdAt": "created_at",
}

// RoomRepository handles room database operations
type RoomRepository struct {
	db DB
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	query := `
		INSERT INTO rooms (id, hotel_id, room_type, price, capacity, available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, room.ID, room.HotelID, room.RoomType, room.Price, room.Capacity, room.Available).
		Scan(&room.CreatedAt, &room.UpdatedAt)
	return translateError("failed to create room", err)
}

func (r *RoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var room models.Room
	if err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id); err != nil {
		return nil, notFoundOr("Room", id, "failed to get room", err)
	}
	return &room, nil
}

// Update writes the room. Availability of a held room is owned by the
// booking service, so an update cannot reopen a room that a live booking holds.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	query := `
		UPDATE rooms
		SET hotel_id = $2, room_type = $3, price = $4, capacity = $5,
		    available = $6 AND NOT EXISTS (
		        SELECT 1 FROM bookings b
		        WHERE b.room_id = rooms.id AND b.status IN ('PENDING', 'CONFIRMED')
		    ),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING available, updated_at`

	err := r.db.QueryRowxContext(ctx, query, room.ID, room.HotelID, room.RoomType, room.Price, room.Capacity, room.Available).
		Scan(&room.Available, &room.UpdatedAt)
	return notFoundOr("Room", room.ID, "failed to update room", err)
}

func (r *RoomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return translateError("failed to delete room", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return translateError("failed to get rows affected", err)
	}
	if rows == 0 {
		return apperr.NotFound("Room", id)
	}
	return nil
}

func (r *RoomRepository) DeleteAll(ctx context.Context, f models.RoomFilter) (int64, error) {
	return deleteWhere(ctx, r.db, "rooms", roomWhere(f))
}

func (r *RoomRepository) List(ctx context.Context, f models.RoomFilter) ([]models.Room, int, error) {
	rooms := []models.Room{}
	total, err := listPage(ctx, r.db, &rooms, "rooms", roomColumns,
		roomWhere(f), orderBy(f.ListParams, roomSortColumns, "created_at"), f.ListParams)
	if err != nil {
		return nil, 0, err
	}
	return rooms, total, nil
}

func roomWhere(f models.RoomFilter) *whereBuilder {
	w := &whereBuilder{}
	w.addIf(f.HotelID != "", "hotel_id = ?", f.HotelID)
	w.addIf(f.RoomType != "", "room_type = ?", f.RoomType)
	if f.Available != nil {
		w.add("available = ?", *f.Available)
	}
	if f.MinPrice != nil {
		w.add("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		w.add("price <= ?", *f.MaxPrice)
	}
	return w
}
