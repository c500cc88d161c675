package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/models"
)

const flightColumns = `id, flight_number, airline, origin_id, destination_id, departure_time, arrival_time,
	price, seat_capacity, seats_booked, class, created_at, updated_at`

var flightSortColumns = map[string]string{
	"price":         "price",
	"departureTime": "departure_time",
	"arrivalTime":   "arrival_time",
	"airline":       "airline",
	"flightNumber":  "flight_number",
	"createdAt":     "created_at",
}

// FlightRepository handles flight database operations
type FlightRepository struct {
	db DB
}

// NewFlightRepository creates a new flight repository
func NewFlightRepository(db DB) *FlightRepository {
	return &FlightRepository{db: db}
}

func (r *FlightRepository) Create(ctx context.Context, f *models.Flight) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	query := `
		INSERT INTO flights (id, flight_number, airline, origin_id, destination_id, departure_time, arrival_time,
			price, seat_capacity, seats_booked, class)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10)
		RETURNING seats_booked, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		f.ID, f.FlightNumber, f.Airline, f.OriginID, f.DestinationID, f.DepartureTime, f.ArrivalTime,
		f.Price, f.SeatCapacity, f.Class,
	).Scan(&f.SeatsBooked, &f.CreatedAt, &f.UpdatedAt)
	return translateError("failed to create flight", err)
}

func (r *FlightRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Flight, error) {
	var f models.Flight
	if err := r.db.GetContext(ctx, &f, `SELECT `+flightColumns+` FROM flights WHERE id = $1`, id); err != nil {
		return nil, notFoundOr("Flight", id, "failed to get flight", err)
	}
	return &f, nil
}

// Update writes the mutable columns. seats_booked is owned by bookings and
// the table constraint rejects a capacity below it.
func (r *FlightRepository) Update(ctx context.Context, f *models.Flight) error {
	query := `
		UPDATE flights
		SET flight_number = $2, airline = $3, origin_id = $4, destination_id = $5,
		    departure_time = $6, arrival_time = $7, price = $8, seat_capacity = $9, class = $10,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING seats_booked, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		f.ID, f.FlightNumber, f.Airline, f.OriginID, f.DestinationID, f.DepartureTime, f.ArrivalTime,
		f.Price, f.SeatCapacity, f.Class,
	).Scan(&f.SeatsBooked, &f.UpdatedAt)
	return notFoundOr("Flight", f.ID, "failed to update flight", err)
}

func (r *FlightRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM flights WHERE id = $1`, id)
	if err != nil {
		return translateError("failed to delete flight", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return translateError("failed to get rows affected", err)
	}
	if rows == 0 {
		return apperr.NotFound("Flight", id)
	}
	return nil
}

func (r *FlightRepository) DeleteAll(ctx context.Context, f models.FlightFilter) (int64, error) {
	return deleteWhere(ctx, r.db, "flights", flightWhere(f))
}

func (r *FlightRepository) List(ctx context.Context, f models.FlightFilter) ([]models.Flight, int, error) {
	flights := []models.Flight{}
	total, err := listPage(ctx, r.db, &flights, "flights", flightColumns,
		flightWhere(f), orderBy(f.ListParams, flightSortColumns, "departure_time"), f.ListParams)
	if err != nil {
		return nil, 0, err
	}
	return flights, total, nil
}

func flightWhere(f models.FlightFilter) *whereBuilder {
	w := &whereBuilder{}
	w.addIf(f.OriginID != "", "origin_id = ?", f.OriginID)
	w.addIf(f.DestinationID != "", "destination_id = ?", f.DestinationID)
	w.addIf(f.Airline != "", "airline ILIKE ?", likePattern(f.Airline))
	w.addIf(f.Class != "", "class = ?", f.Class)
	if f.DepartureFrom != nil {
		w.add("departure_time >= ?", *f.DepartureFrom)
	}
	if f.DepartureTo != nil {
		// inclusive of the whole end day
		w.add("departure_time < ?", f.DepartureTo.Add(24*time.Hour))
	}
	if f.MinPrice != nil {
		w.add("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		w.add("price <= ?", *f.MaxPrice)
	}
	return w
}
