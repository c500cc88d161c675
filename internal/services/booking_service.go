package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/database"
	"github.com/voyagehub/travel-backend/internal/messaging"
	"github.com/voyagehub/travel-backend/internal/metrics"
	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/internal/validation"
)

// BookingService owns the booking lifecycle and the capacity it reserves.
// Capacity is taken when a booking is created and given back when it is
// cancelled or deleted while still PENDING or CONFIRMED.
type BookingService struct {
	tx        TxRunner
	bookings  BookingStore
	validator *validation.Validator
	events    messaging.Publisher
	metrics   *metrics.Metrics
	logger    *logrus.Logger
	now       func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(
	tx TxRunner,
	bookings BookingStore,
	validator *validation.Validator,
	events messaging.Publisher,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		tx:        tx,
		bookings:  bookings,
		validator: validator,
		events:    events,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Create reserves capacity on the referenced tour, room or flight and
// stores a PENDING booking, both in one transaction
func (s *BookingService) Create(ctx context.Context, actor Actor, req models.CreateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	ref, err := req.Ref()
	if err != nil {
		return nil, err
	}

	userID := actor.UserID
	if req.UserID != nil && *req.UserID != "" {
		if !actor.IsStaff() {
			return nil, apperr.Forbidden("Only staff can book on behalf of another user")
		}
		userID = models.ParseID(*req.UserID)
	}

	booking := &models.Booking{
		ID:       uuid.New(),
		UserID:   userID,
		Item:     ref,
		Quantity: req.QuantityOrDefault(),
		Status:   models.BookingStatusPending,
		Notes:    req.Notes,
	}

	err = s.tx.WithinTx(ctx, func(tx database.TravelTx) error {
		inv, err := tx.LockInventory(ctx, ref)
		if err != nil {
			return err
		}
		if !inv.Open {
			return apperr.Conflict("%s %s is not open for booking", titleType(ref.Type), inv.Name).WithCode("NOT_BOOKABLE")
		}
		units := booking.ReservedUnits()
		if inv.Remaining() < units {
			return apperr.CapacityExceeded("%s %s has %d of %d units left, %d requested",
				titleType(ref.Type), inv.Name, max(inv.Remaining(), 0), inv.Capacity, units)
		}

		booking.UnitPrice = inv.UnitPrice
		booking.TotalPrice = roundMoney(inv.UnitPrice * float64(booking.Quantity))

		if err := tx.InsertBooking(ctx, booking); err != nil {
			return err
		}
		return tx.AdjustInventory(ctx, ref, units)
	})
	if err != nil {
		if apperr.IsKind(err, apperr.KindCapacityExceeded) {
			s.metrics.CapacityRejected(string(ref.Type))
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"type":       ref.Type,
		"item_id":    ref.ID,
		"quantity":   booking.Quantity,
		"total":      booking.TotalPrice,
	}).Info("Booking created")

	s.metrics.BookingTransition(string(ref.Type), string(booking.Status))
	s.publish(ctx, messaging.EventBookingCreated, booking.ID, booking)
	return booking, nil
}

// UpdateStatus moves a booking along PENDING -> CONFIRMED|CANCELLED and
// CONFIRMED -> COMPLETED|CANCELLED. Customers may only cancel their own.
func (s *BookingService) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, req models.UpdateBookingStatusRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	next := req.Status
	if !actor.IsStaff() && next != models.BookingStatusCancelled {
		return nil, apperr.Forbidden("Customers can only cancel bookings")
	}

	var booking *models.Booking
	err := s.tx.WithinTx(ctx, func(tx database.TravelTx) error {
		b, err := tx.LockBooking(ctx, id)
		if err != nil {
			return err
		}
		if !actor.IsStaff() && b.UserID != actor.UserID {
			return apperr.NotFound("Booking", id)
		}
		if err := s.transition(ctx, tx, b, next); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"status":     booking.Status,
		"actor":      actor.UserID,
	}).Info("Booking status updated")

	s.metrics.BookingTransition(string(booking.Item.Type), string(booking.Status))
	s.publish(ctx, messaging.EventBookingStatus, booking.ID, booking)
	return booking, nil
}

// transition applies one status change to a locked booking, releasing its
// capacity on cancellation. Shared with the payment lifecycle.
func (s *BookingService) transition(ctx context.Context, tx database.TravelTx, b *models.Booking, next models.BookingStatus) error {
	if !b.Status.CanTransitionTo(next) {
		return apperr.InvalidTransition("Booking", string(b.Status), string(next))
	}

	switch next {
	case models.BookingStatusCompleted:
		paid, err := tx.HasCompletedPayment(ctx, b.ID)
		if err != nil {
			return err
		}
		if !paid {
			return apperr.Conflict("Booking %s has no completed payment", b.ID).WithCode("PAYMENT_REQUIRED")
		}
	case models.BookingStatusCancelled:
		if err := tx.AdjustInventory(ctx, b.Item, -b.ReservedUnits()); err != nil {
			return err
		}
		now := s.now()
		b.CancelledAt = &now
	}

	b.Status = next
	return tx.UpdateBookingStatus(ctx, b)
}

// Get returns one booking. Customers only see their own.
func (s *BookingService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && b.UserID != actor.UserID {
		return nil, apperr.NotFound("Booking", id)
	}
	return b, nil
}

// List returns a filtered page. Customers are always scoped to themselves.
func (s *BookingService) List(ctx context.Context, actor Actor, f models.BookingFilter) ([]models.Booking, models.PageMeta, error) {
	f.Normalize()
	if !actor.IsStaff() {
		f.UserID = actor.UserID.String()
	}
	bookings, total, err := s.bookings.List(ctx, f)
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	return bookings, models.NewPageMeta(total, f.ListParams), nil
}

// ListMine returns the caller's own bookings whatever their role
func (s *BookingService) ListMine(ctx context.Context, actor Actor, f models.BookingFilter) ([]models.Booking, models.PageMeta, error) {
	f.UserID = actor.UserID.String()
	return s.List(ctx, Actor{UserID: actor.UserID, Role: models.RoleCustomer}, f)
}

// Delete removes a booking and its payments. Capacity held by a PENDING or
// CONFIRMED booking is released.
func (s *BookingService) Delete(ctx context.Context, id uuid.UUID) error {
	var deleted *models.Booking
	err := s.tx.WithinTx(ctx, func(tx database.TravelTx) error {
		b, err := tx.LockBooking(ctx, id)
		if err != nil {
			return err
		}
		if err := s.releaseIfHeld(ctx, tx, b); err != nil {
			return err
		}
		deleted = b
		return tx.DeleteBooking(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.WithField("booking_id", id).Info("Booking deleted")
	s.publish(ctx, messaging.EventBookingDeleted, id, deleted)
	return nil
}

// DeleteAll removes every booking matching f, releasing held capacity
func (s *BookingService) DeleteAll(ctx context.Context, f models.BookingFilter) (int64, error) {
	var deleted []models.Booking
	err := s.tx.WithinTx(ctx, func(tx database.TravelTx) error {
		bookings, err := tx.LockBookings(ctx, f)
		if err != nil {
			return err
		}
		for i := range bookings {
			if err := s.releaseIfHeld(ctx, tx, &bookings[i]); err != nil {
				return err
			}
			if err := tx.DeleteBooking(ctx, bookings[i].ID); err != nil {
				return err
			}
		}
		deleted = bookings
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.WithField("count", len(deleted)).Info("Bookings deleted")
	for i := range deleted {
		s.publish(ctx, messaging.EventBookingDeleted, deleted[i].ID, &deleted[i])
	}
	return int64(len(deleted)), nil
}

func (s *BookingService) releaseIfHeld(ctx context.Context, tx database.TravelTx, b *models.Booking) error {
	if !b.Status.HoldsCapacity() {
		return nil
	}
	return tx.AdjustInventory(ctx, b.Item, -b.ReservedUnits())
}

func (s *BookingService) publish(ctx context.Context, eventType string, id uuid.UUID, data interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, messaging.NewEvent(eventType, id, data)); err != nil {
		s.logger.WithError(err).WithField("event", eventType).Warn("Failed to publish booking event")
	}
}

func titleType(t models.BookingType) string {
	switch t {
	case models.BookingTypeTour:
		return "Tour"
	case models.BookingTypeRoom:
		return "Room"
	case models.BookingTypeFlight:
		return "Flight"
	}
	return string(t)
}

// roundMoney rounds to cents
func roundMoney(v float64) float64 {
	return models.FromMinorUnits(models.ToMinorUnits(v))
}
