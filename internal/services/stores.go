package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/voyagehub/travel-backend/internal/database"
	"github.com/voyagehub/travel-backend/internal/models"
)

// The interfaces below are the slices of the database repositories each
// service needs. The *database repositories satisfy them; tests use fakes.

// TxRunner opens the row-locking transactions of the booking and payment lifecycles
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx database.TravelTx) error) error
}

type BookingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, f models.BookingFilter) ([]models.Booking, int, error)
}

type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByReference(ctx context.Context, reference string) (*models.Payment, error)
	FindActiveByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error)
	List(ctx context.Context, f models.PaymentFilter) ([]models.Payment, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context, f models.PaymentFilter) (int64, error)
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]models.Payment, error)
}

type PaymentAuditStore interface {
	Log(ctx context.Context, audit *models.PaymentAudit) error
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context, f models.UserFilter, keepID uuid.UUID) (int64, error)
	List(ctx context.Context, f models.UserFilter) ([]models.User, int, error)
}

type RefreshTokenStore interface {
	Store(ctx context.Context, userID uuid.UUID, token, ipAddress, userAgent string, expiresAt time.Time) error
	Get(ctx context.Context, token string) (*models.RefreshToken, error)
	Touch(ctx context.Context, token string) error
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type AuditLogStore interface {
	Insert(ctx context.Context, entry *models.AuditLog) error
	DeleteOlderThan(ctx context.Context, olderThan time.Duration) (int64, error)
}

type LoginAttemptStore interface {
	CountFailures(ctx context.Context, identifier, identifierType string, windowStart time.Time) (int, time.Time, error)
	Record(ctx context.Context, identifier, identifierType string, success bool) error
	ClearFailures(ctx context.Context, identifier, identifierType string) error
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ReportStore interface {
	BookingAggregates(ctx context.Context, f models.ReportFilter) ([]models.BookingAggregateRow, error)
	PaymentAggregates(ctx context.Context, f models.ReportFilter) ([]models.PaymentAggregateRow, error)
	TopTours(ctx context.Context, f models.TopToursFilter) ([]models.TopTour, error)
}

type DestinationStore interface {
	Create(ctx context.Context, d *models.Destination) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Destination, error)
	Update(ctx context.Context, d *models.Destination) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context, f models.DestinationFilter) (int64, error)
	List(ctx context.Context, f models.DestinationFilter) ([]models.Destination, int, error)
	ExistsByNameCountryCity(ctx context.Context, name, country, city string, excludeID uuid.UUID) (bool, error)
}

type HotelStore interface {
	Create(ctx context.Context, h *models.Hotel) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Hotel, error)
	Update(ctx context.Context, h *models.Hotel) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context, f models.HotelFilter) (int64, error)
	List(ctx context.Context, f models.HotelFilter) ([]models.Hotel, int, error)
}

type RoomStore interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error)
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context, f models.RoomFilter) (int64, error)
	List(ctx context.Context, f models.RoomFilter) ([]models.Room, int, error)
}

type FlightStore interface {
	Create(ctx context.Context, f *models.Flight) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Flight, error)
	Update(ctx context.Context, f *models.Flight) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context, f models.FlightFilter) (int64, error)
	List(ctx context.Context, f models.FlightFilter) ([]models.Flight, int, error)
}

type TourStore interface {
	Create(ctx context.Context, t *models.Tour) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tour, error)
	Update(ctx context.Context, t *models.Tour) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context, f models.TourFilter) (int64, error)
	List(ctx context.Context, f models.TourFilter) ([]models.Tour, int, error)
	Search(ctx context.Context, q string, limit int) ([]models.TourSearchHit, error)
	ListAll(ctx context.Context) ([]models.Tour, error)
}

// Actor is the authenticated caller a service acts for
type Actor struct {
	UserID uuid.UUID
	Email  string
	Role   models.UserRole
}

// IsStaff reports whether the caller may act on other users' records
func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

// RequestMeta carries client details recorded in audit trails
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
