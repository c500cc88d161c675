package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/voyagehub/travel-backend/internal/models"
)

const bookingColumns = `id, user_id, booking_type, tour_id, room_id, flight_id, quantity, unit_price,
	total_price, status, notes, booking_date, cancelled_at, created_at, updated_at`

var bookingSortColumns = map[string]string{
	"bookingDate": "booking_date",
	"totalPrice":  "total_price",
	"status":      "status",
	"createdAt":   "created_at",
}

// bookingRow mirrors the bookings table. The three nullable references are
// folded into models.BookableRef on the way out.
type bookingRow struct {
	ID          uuid.UUID            `db:"id"`
	UserID      uuid.UUID            `db:"user_id"`
	BookingType models.BookingType   `db:"booking_type"`
	TourID      *uuid.UUID           `db:"tour_id"`
	RoomID      *uuid.UUID           `db:"room_id"`
	FlightID    *uuid.UUID           `db:"flight_id"`
	Quantity    int                  `db:"quantity"`
	UnitPrice   float64              `db:"unit_price"`
	TotalPrice  float64              `db:"total_price"`
	Status      models.BookingStatus `db:"status"`
	Notes       string               `db:"notes"`
	BookingDate time.Time            `db:"booking_date"`
	CancelledAt *time.Time           `db:"cancelled_at"`
	CreatedAt   time.Time            `db:"created_at"`
	UpdatedAt   time.Time            `db:"updated_at"`
}

func (r bookingRow) toModel() (*models.Booking, error) {
	ref, err := models.RefFromColumns(r.TourID, r.RoomID, r.FlightID)
	if err != nil {
		return nil, err
	}
	return &models.Booking{
		ID:          r.ID,
		UserID:      r.UserID,
		Item:        ref,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		TotalPrice:  r.TotalPrice,
		Status:      r.Status,
		Notes:       r.Notes,
		BookingDate: r.BookingDate,
		CancelledAt: r.CancelledAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func rowsToBookings(rows []bookingRow) ([]models.Booking, error) {
	bookings := make([]models.Booking, 0, len(rows))
	for _, row := range rows {
		b, err := row.toModel()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, nil
}

// BookingRepository handles booking reads. Writes that touch capacity go
// through TxManager so they share a transaction with the inventory rows.
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var row bookingRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id); err != nil {
		return nil, notFoundOr("Booking", id, "failed to get booking", err)
	}
	return row.toModel()
}

// List returns a page of bookings and the total match count
func (r *BookingRepository) List(ctx context.Context, f models.BookingFilter) ([]models.Booking, int, error) {
	var rows []bookingRow
	total, err := listPage(ctx, r.db, &rows, "bookings", bookingColumns,
		bookingWhere(f), orderBy(f.ListParams, bookingSortColumns, "booking_date"), f.ListParams)
	if err != nil {
		return nil, 0, err
	}
	bookings, err := rowsToBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func bookingWhere(f models.BookingFilter) *whereBuilder {
	w := &whereBuilder{}
	w.addIf(f.Status != "", "status = ?", f.Status)
	w.addIf(f.Type != "", "booking_type = ?", f.Type)
	w.addIf(f.UserID != "", "user_id = ?", f.UserID)
	if f.From != nil {
		w.add("booking_date >= ?", *f.From)
	}
	if f.To != nil {
		w.add("booking_date < ?", f.To.Add(24*time.Hour))
	}
	return w
}
