package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportFilter narrows every report to a slice of the store
type ReportFilter struct {
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	TourID        string     `form:"tour_id"`
	UserID        string     `form:"user_id"`
	Status        string     `form:"status"`
	PaymentMethod string     `form:"payment_method"`
	GroupByMonth  bool       `form:"group_by_month"`
}

// TopToursFilter parameterizes the top tours ranking
type TopToursFilter struct {
	From        *time.Time `form:"from" time_format:"2006-01-02"`
	To          *time.Time `form:"to" time_format:"2006-01-02"`
	Status      string     `form:"status"`
	MinBookings int        `form:"min_bookings"`
	Limit       int        `form:"limit"`
	RankBy      string     `form:"rank_by"` // bookings or revenue
}

// BookingAggregateRow is one grouped row read from the store
type BookingAggregateRow struct {
	Status BookingStatus `db:"status"`
	Month  string        `db:"month"` // YYYY-MM, empty when not grouped
	Count  int           `db:"count"`
	Value  float64       `db:"value"`
}

// PaymentAggregateRow is one grouped row read from the store
type PaymentAggregateRow struct {
	Status PaymentStatus `db:"status"`
	Method PaymentMethod `db:"payment_method"`
	Count  int           `db:"count"`
	Amount float64       `db:"amount"`
}

type CountValue struct {
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

type MonthlyBookingSummary struct {
	Month    string                       `json:"month"`
	Count    int                          `json:"count"`
	Value    float64                      `json:"value"`
	ByStatus map[BookingStatus]CountValue `json:"by_status"`
}

type BookingSummary struct {
	TotalBookings int                          `json:"total_bookings"`
	TotalValue    float64                      `json:"total_value"`
	AverageValue  float64                      `json:"average_value"`
	ByStatus      map[BookingStatus]CountValue `json:"by_status"`
	Monthly       []MonthlyBookingSummary      `json:"monthly,omitempty"`
}

type PaymentSummary struct {
	Currency       string                       `json:"currency"`
	TotalPayments  int                          `json:"total_payments"`
	TotalRevenue   float64                      `json:"total_revenue"`
	PendingAmount  float64                      `json:"pending_amount"`
	RefundedAmount float64                      `json:"refunded_amount"`
	FailedAmount   float64                      `json:"failed_amount"`
	ByMethod       map[PaymentMethod]CountValue `json:"by_method"`
	ByStatus       map[PaymentStatus]CountValue `json:"by_status"`
}

type TopTour struct {
	TourID       uuid.UUID `json:"tour_id" db:"tour_id"`
	Name         string    `json:"name" db:"name"`
	BookingCount int       `json:"booking_count" db:"booking_count"`
	GuestCount   int       `json:"guest_count" db:"guest_count"`
	Revenue      float64   `json:"revenue" db:"revenue"`
}
