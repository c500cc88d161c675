package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/voyagehub/travel-backend/internal/models"
)

// ReportRepository runs the grouped reads behind the reporting endpoints.
// Rows come back grouped; folding into summaries happens in the service.
type ReportRepository struct {
	db DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// BookingAggregates groups bookings by status, and by month when requested
func (r *ReportRepository) BookingAggregates(ctx context.Context, f models.ReportFilter) ([]models.BookingAggregateRow, error) {
	month := `''`
	if f.GroupByMonth {
		month = `TO_CHAR(booking_date, 'YYYY-MM')`
	}
	where := reportBookingWhere(f)
	query := sqlx.Rebind(sqlx.DOLLAR, `
		SELECT status, `+month+` AS month, COUNT(*) AS count, COALESCE(SUM(total_price), 0) AS value
		FROM bookings`+where.String()+`
		GROUP BY status, month
		ORDER BY month, status`)

	rows := []models.BookingAggregateRow{}
	if err := r.db.SelectContext(ctx, &rows, query, where.args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings: %w", err)
	}
	return rows, nil
}

// PaymentAggregates groups payments by status and method
func (r *ReportRepository) PaymentAggregates(ctx context.Context, f models.ReportFilter) ([]models.PaymentAggregateRow, error) {
	where := &whereBuilder{}
	where.addIf(f.Status != "", "p.status = ?", f.Status)
	where.addIf(f.PaymentMethod != "", "p.payment_method = ?", f.PaymentMethod)
	where.addIf(f.UserID != "", "p.user_id = ?", f.UserID)
	where.addIf(f.TourID != "", "b.tour_id = ?", f.TourID)
	if f.From != nil {
		where.add("p.created_at >= ?", *f.From)
	}
	if f.To != nil {
		where.add("p.created_at < ?", f.To.Add(24*time.Hour))
	}

	query := sqlx.Rebind(sqlx.DOLLAR, `
		SELECT p.status, p.payment_method, COUNT(*) AS count, COALESCE(SUM(p.amount), 0) AS amount
		FROM payments p
		JOIN bookings b ON b.id = p.booking_id`+where.String()+`
		GROUP BY p.status, p.payment_method
		ORDER BY p.status, p.payment_method`)

	rows := []models.PaymentAggregateRow{}
	if err := r.db.SelectContext(ctx, &rows, query, where.args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate payments: %w", err)
	}
	return rows, nil
}

// TopTours ranks tours by booking count or revenue. Without a status
// filter, cancelled bookings are left out of the ranking.
func (r *ReportRepository) TopTours(ctx context.Context, f models.TopToursFilter) ([]models.TopTour, error) {
	where := &whereBuilder{}
	where.add("b.booking_type = ?", models.BookingTypeTour)
	if f.Status != "" {
		where.add("b.status = ?", f.Status)
	} else {
		where.add("b.status <> ?", models.BookingStatusCancelled)
	}
	if f.From != nil {
		where.add("b.booking_date >= ?", *f.From)
	}
	if f.To != nil {
		where.add("b.booking_date < ?", f.To.Add(24*time.Hour))
	}

	order := "booking_count DESC, revenue DESC"
	if f.RankBy == "revenue" {
		order = "revenue DESC, booking_count DESC"
	}

	args := append(append([]interface{}{}, where.args...), f.MinBookings, f.Limit)
	query := sqlx.Rebind(sqlx.DOLLAR, `
		SELECT t.id AS tour_id, t.name,
		       COUNT(b.id) AS booking_count,
		       COALESCE(SUM(b.quantity), 0) AS guest_count,
		       COALESCE(SUM(b.total_price), 0) AS revenue
		FROM bookings b
		JOIN tours t ON t.id = b.tour_id`+where.String()+`
		GROUP BY t.id, t.name
		HAVING COUNT(b.id) >= ?
		ORDER BY `+order+`, t.name
		LIMIT ?`)

	tours := []models.TopTour{}
	if err := r.db.SelectContext(ctx, &tours, query, args...); err != nil {
		return nil, fmt.Errorf("failed to rank tours: %w", err)
	}
	return tours, nil
}

func reportBookingWhere(f models.ReportFilter) *whereBuilder {
	w := &whereBuilder{}
	w.addIf(f.Status != "", "status = ?", f.Status)
	w.addIf(f.TourID != "", "tour_id = ?", f.TourID)
	w.addIf(f.UserID != "", "user_id = ?", f.UserID)
	if f.From != nil {
		w.add("booking_date >= ?", *f.From)
	}
	if f.To != nil {
		w.add("booking_date < ?", f.To.Add(24*time.Hour))
	}
	return w
}
