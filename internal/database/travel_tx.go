package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/models"
)

// TravelTx is the set of row-locking operations the booking and payment
// lifecycles run inside a single transaction. Every Lock* call takes a
// FOR UPDATE lock held until the transaction ends.
type TravelTx interface {
	LockInventory(ctx context.Context, ref models.BookableRef) (*models.Inventory, error)
	// AdjustInventory reserves (delta > 0) or releases (delta < 0) units
	AdjustInventory(ctx context.Context, ref models.BookableRef, delta int) error

	InsertBooking(ctx context.Context, b *models.Booking) error
	LockBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	LockBookings(ctx context.Context, f models.BookingFilter) ([]models.Booking, error)
	UpdateBookingStatus(ctx context.Context, b *models.Booking) error
	DeleteBooking(ctx context.Context, id uuid.UUID) error

	LockPaymentByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	LockPaymentByReference(ctx context.Context, reference string) (*models.Payment, error)
	UpdatePayment(ctx context.Context, p *models.Payment) error
	HasCompletedPayment(ctx context.Context, bookingID uuid.UUID) (bool, error)
}

// TxManager opens TravelTx transactions on the pool
type TxManager struct {
	db DB
}

// NewTxManager creates a new transaction manager
func NewTxManager(db DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx runs fn in one transaction, committing only when fn succeeds
func (m *TxManager) WithinTx(ctx context.Context, fn func(tx TravelTx) error) error {
	return WithTx(ctx, m.db, func(tx *sqlx.Tx) error {
		return fn(&sqlTravelTx{tx: tx})
	})
}

type sqlTravelTx struct {
	tx *sqlx.Tx
}

func (t *sqlTravelTx) LockInventory(ctx context.Context, ref models.BookableRef) (*models.Inventory, error) {
	inv := &models.Inventory{Ref: ref}
	switch ref.Type {
	case models.BookingTypeTour:
		var row struct {
			Name         string            `db:"name"`
			Price        float64           `db:"price"`
			MaxGuests    int               `db:"max_guests"`
			GuestsBooked int               `db:"guests_booked"`
			Status       models.TourStatus `db:"status"`
		}
		query := `SELECT name, price, max_guests, guests_booked, status FROM tours WHERE id = $1 FOR UPDATE`
		if err := t.tx.GetContext(ctx, &row, query, ref.ID); err != nil {
			return nil, notFoundOr("Tour", ref.ID, "failed to lock tour", err)
		}
		inv.Name, inv.UnitPrice = row.Name, row.Price
		inv.Capacity, inv.Used = row.MaxGuests, row.GuestsBooked
		inv.Open = row.Status == models.TourStatusUpcoming || row.Status == models.TourStatusOngoing

	case models.BookingTypeRoom:
		var row struct {
			RoomType  string  `db:"room_type"`
			Price     float64 `db:"price"`
			Available bool    `db:"available"`
		}
		query := `SELECT room_type, price, available FROM rooms WHERE id = $1 FOR UPDATE`
		if err := t.tx.GetContext(ctx, &row, query, ref.ID); err != nil {
			return nil, notFoundOr("Room", ref.ID, "failed to lock room", err)
		}
		inv.Name, inv.UnitPrice = row.RoomType, row.Price
		inv.Capacity, inv.Open = 1, true
		if !row.Available {
			inv.Used = 1
		}

	case models.BookingTypeFlight:
		var row struct {
			FlightNumber  string    `db:"flight_number"`
			Price         float64   `db:"price"`
			SeatCapacity  int       `db:"seat_capacity"`
			SeatsBooked   int       `db:"seats_booked"`
			DepartureTime time.Time `db:"departure_time"`
		}
		query := `SELECT flight_number, price, seat_capacity, seats_booked, departure_time FROM flights WHERE id = $1 FOR UPDATE`
		if err := t.tx.GetContext(ctx, &row, query, ref.ID); err != nil {
			return nil, notFoundOr("Flight", ref.ID, "failed to lock flight", err)
		}
		inv.Name, inv.UnitPrice = row.FlightNumber, row.Price
		inv.Capacity, inv.Used = row.SeatCapacity, row.SeatsBooked
		inv.Open = row.DepartureTime.After(time.Now())

	default:
		return nil, apperr.InvalidInput("unknown booking type %q", ref.Type)
	}
	return inv, nil
}

func (t *sqlTravelTx) AdjustInventory(ctx context.Context, ref models.BookableRef, delta int) error {
	var query string
	var arg interface{} = delta
	switch ref.Type {
	case models.BookingTypeTour:
		query = `UPDATE tours SET guests_booked = GREATEST(guests_booked + $2, 0), updated_at = NOW() WHERE id = $1`
	case models.BookingTypeFlight:
		query = `UPDATE flights SET seats_booked = GREATEST(seats_booked + $2, 0), updated_at = NOW() WHERE id = $1`
	case models.BookingTypeRoom:
		query = `UPDATE rooms SET available = $2, updated_at = NOW() WHERE id = $1`
		arg = delta < 0
	default:
		return apperr.InvalidInput("unknown booking type %q", ref.Type)
	}
	if _, err := t.tx.ExecContext(ctx, query, ref.ID, arg); err != nil {
		return translateError("failed to adjust inventory", err)
	}
	return nil
}

func (t *sqlTravelTx) InsertBooking(ctx context.Context, b *models.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	tourID, roomID, flightID := b.Item.Columns()
	query := `
		INSERT INTO bookings (id, user_id, booking_type, tour_id, room_id, flight_id, quantity,
			unit_price, total_price, status, notes, booking_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		RETURNING booking_date, created_at, updated_at`

	err := t.tx.QueryRowxContext(ctx, query,
		b.ID, b.UserID, b.Item.Type, tourID, roomID, flightID, b.Quantity,
		b.UnitPrice, b.TotalPrice, b.Status, b.Notes,
	).Scan(&b.BookingDate, &b.CreatedAt, &b.UpdatedAt)
	return translateError("failed to create booking", err)
}

func (t *sqlTravelTx) LockBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var row bookingRow
	if err := t.tx.GetContext(ctx, &row, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id); err != nil {
		return nil, notFoundOr("Booking", id, "failed to lock booking", err)
	}
	return row.toModel()
}

func (t *sqlTravelTx) LockBookings(ctx context.Context, f models.BookingFilter) ([]models.Booking, error) {
	var rows []bookingRow
	where := bookingWhere(f)
	query := sqlx.Rebind(sqlx.DOLLAR, `SELECT `+bookingColumns+` FROM bookings`+where.String()+` ORDER BY id FOR UPDATE`)
	if err := t.tx.SelectContext(ctx, &rows, query, where.args...); err != nil {
		return nil, translateError("failed to lock bookings", err)
	}
	return rowsToBookings(rows)
}

func (t *sqlTravelTx) UpdateBookingStatus(ctx context.Context, b *models.Booking) error {
	query := `UPDATE bookings SET status = $2, cancelled_at = $3, updated_at = NOW() WHERE id = $1 RETURNING updated_at`
	err := t.tx.QueryRowxContext(ctx, query, b.ID, b.Status, b.CancelledAt).Scan(&b.UpdatedAt)
	return notFoundOr("Booking", b.ID, "failed to update booking status", err)
}

func (t *sqlTravelTx) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	result, err := t.tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return translateError("failed to delete booking", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return translateError("failed to get rows affected", err)
	}
	if rows == 0 {
		return apperr.NotFound("Booking", id)
	}
	return nil
}

func (t *sqlTravelTx) LockPaymentByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	if err := t.tx.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id); err != nil {
		return nil, notFoundOr("Payment", id, "failed to lock payment", err)
	}
	return &p, nil
}

func (t *sqlTravelTx) LockPaymentByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var p models.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_reference = $1 FOR UPDATE`
	if err := t.tx.GetContext(ctx, &p, query, reference); err != nil {
		return nil, notFoundOr("Payment with reference", reference, "failed to lock payment", err)
	}
	return &p, nil
}

// UpdatePayment writes the lifecycle columns of p
func (t *sqlTravelTx) UpdatePayment(ctx context.Context, p *models.Payment) error {
	query := `
		UPDATE payments
		SET status = $2, gateway_status = $3, failure_reason = $4, refund_reason = $5,
		    paid_at = $6, refunded_at = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := t.tx.QueryRowxContext(ctx, query,
		p.ID, p.Status, p.GatewayStatus, p.FailureReason, p.RefundReason, p.PaidAt, p.RefundedAt,
	).Scan(&p.UpdatedAt)
	return notFoundOr("Payment", p.ID, "failed to update payment", err)
}

func (t *sqlTravelTx) HasCompletedPayment(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE booking_id = $1 AND status = 'COMPLETED')`
	if err := t.tx.GetContext(ctx, &exists, query, bookingID); err != nil {
		return false, translateError("failed to check booking payment", err)
	}
	return exists, nil
}
