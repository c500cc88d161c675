package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/cache"
	"github.com/voyagehub/travel-backend/internal/config"
	"github.com/voyagehub/travel-backend/internal/database"
	"github.com/voyagehub/travel-backend/internal/messaging"
	"github.com/voyagehub/travel-backend/internal/metrics"
	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/internal/utils"
	"github.com/voyagehub/travel-backend/internal/validation"
)

// UserLookup resolves the customer a payment is charged to
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// PaymentService runs the payment state machine:
//
//	PENDING -> COMPLETED | FAILED   (gateway callback, webhook, reconciliation or admin)
//	COMPLETED -> REFUNDED           (admin refund)
//
// Gateway calls happen outside database transactions. The state change is
// then applied under a row lock on the payment, re-checking that it is still
// in the expected state, so concurrent callbacks apply side effects once.
type PaymentService struct {
	tx        TxRunner
	payments  PaymentStore
	bookings  BookingStore
	users     UserLookup
	audits    PaymentAuditStore
	gateway   PaymentGateway
	locker    cache.Locker
	lifecycle *BookingService
	validator *validation.Validator
	events    messaging.Publisher
	metrics   *metrics.Metrics
	config    config.PaymentConfig
	logger    *logrus.Logger
	now       func() time.Time
}

// PaymentServiceDeps groups the collaborators of PaymentService
type PaymentServiceDeps struct {
	Tx        TxRunner
	Payments  PaymentStore
	Bookings  BookingStore
	Users     UserLookup
	Audits    PaymentAuditStore
	Gateway   PaymentGateway
	Locker    cache.Locker
	Lifecycle *BookingService
	Validator *validation.Validator
	Events    messaging.Publisher
	Metrics   *metrics.Metrics
	Config    config.PaymentConfig
	Logger    *logrus.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(d PaymentServiceDeps) *PaymentService {
	return &PaymentService{
		tx:        d.Tx,
		payments:  d.Payments,
		bookings:  d.Bookings,
		users:     d.Users,
		audits:    d.Audits,
		gateway:   d.Gateway,
		locker:    d.Locker,
		lifecycle: d.Lifecycle,
		validator: d.Validator,
		events:    d.Events,
		metrics:   d.Metrics,
		config:    d.Config,
		logger:    d.Logger,
		now:       time.Now,
	}
}

// Create initializes a checkout for an unpaid booking. When the gateway call
// fails nothing is stored, a payment_failed audit entry is written and the
// booking stays as it was so the client can retry.
func (s *PaymentService) Create(ctx context.Context, actor Actor, req models.CreatePaymentRequest, meta RequestMeta) (*models.InitializePaymentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	bookingID := models.ParseID(req.BookingID)

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && booking.UserID != actor.UserID {
		return nil, apperr.NotFound("Booking", bookingID)
	}
	if !booking.Status.HoldsCapacity() {
		return nil, apperr.Conflict("Booking is %s and cannot be paid", booking.Status).WithCode("BOOKING_NOT_PAYABLE")
	}

	release, err := s.locker.Acquire(ctx, "payment:booking:"+bookingID.String(), s.config.LockTTL)
	if err != nil {
		if errors.Is(err, cache.ErrLocked) {
			return nil, apperr.Conflict("A payment for this booking is already being initialized").WithCode("PAYMENT_IN_PROGRESS")
		}
		return nil, apperr.External("Lock service", err)
	}
	defer func() {
		if err := release(context.Background()); err != nil {
			s.logger.WithError(err).WithField("booking_id", bookingID).Warn("Failed to release payment lock")
		}
	}()

	active, err := s.payments.FindActiveByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		if active.Status == models.PaymentStatusCompleted {
			return nil, apperr.Conflict("Booking is already paid").WithCode("ALREADY_PAID")
		}
		// resume the open checkout instead of charging twice
		if active.AuthorizationURL != nil {
			return initializeResponse(active), nil
		}
		return nil, apperr.Conflict("Booking already has a pending payment").WithCode("PAYMENT_PENDING")
	}

	user, err := s.users.GetByID(ctx, booking.UserID)
	if err != nil {
		return nil, err
	}

	reference := utils.GenerateReference(PaymentReferencePrefix)
	start := s.now()

	gctx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
	checkout, err := s.gateway.Initialize(gctx, GatewayInitRequest{
		Reference: reference,
		Email:     user.Email,
		Amount:    booking.TotalPrice,
		Currency:  s.config.Currency,
		Method:    req.PaymentMethod,
		Metadata: map[string]string{
			"booking_id":   booking.ID.String(),
			"booking_type": string(booking.Item.Type),
		},
	})
	cancel()
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"booking_id": bookingID,
			"reference":  reference,
		}).Error("Payment initialization failed")
		s.audit(ctx, models.NewPaymentAudit(models.PaymentEventFailed, models.PaymentSourceGateway).
			ForBooking(bookingID, reference).SetError(err).SetProcessingTime(start).SetMetadata(meta.IPAddress, meta.UserAgent))
		s.metrics.PaymentEvent("initialize", "failed")
		return nil, apperr.External("Payment gateway", err)
	}

	authURL, accessCode := checkout.AuthorizationURL, checkout.AccessCode
	payment := &models.Payment{
		ID:                   uuid.New(),
		BookingID:            booking.ID,
		UserID:               booking.UserID,
		Amount:               booking.TotalPrice,
		Currency:             s.config.Currency,
		PaymentMethod:        req.PaymentMethod,
		Status:               models.PaymentStatusPending,
		TransactionReference: reference,
		AuthorizationURL:     &authURL,
		GatewayAccessCode:    &accessCode,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.audit(ctx, models.NewPaymentAudit(models.PaymentEventInitiated, models.PaymentSourceBackend).
		ForPayment(payment).SetProcessingTime(start).SetMetadata(meta.IPAddress, meta.UserAgent))
	s.metrics.PaymentEvent("initialize", string(payment.Status))
	s.publish(ctx, messaging.EventPaymentInitiated, payment.ID, payment)

	s.logger.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"booking_id": booking.ID,
		"reference":  reference,
		"amount":     payment.Amount,
	}).Info("Payment initialized")

	return initializeResponse(payment), nil
}

// HandleCallback reconciles the payment behind reference with the gateway.
// Calling it again for a payment that is already terminal changes nothing.
func (s *PaymentService) HandleCallback(ctx context.Context, reference string, meta RequestMeta) (*models.CallbackResult, error) {
	if reference == "" {
		return nil, apperr.Validation(map[string]string{"reference": "reference is required"})
	}
	s.audit(ctx, models.NewPaymentAudit(models.PaymentEventCallbackReceived, models.PaymentSourceCallback).
		ForReference(reference).SetMetadata(meta.IPAddress, meta.UserAgent))
	return s.reconcile(ctx, reference, models.PaymentSourceCallback, meta)
}

// HandleWebhook authenticates a gateway webhook and then reconciles the
// payment it names. The webhook body is never trusted for the outcome; the
// gateway is asked again.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string, meta RequestMeta) (*models.CallbackResult, error) {
	if !s.gateway.VerifySignature(body, signature) {
		s.audit(ctx, models.NewPaymentAudit(models.PaymentEventInvalidSignature, models.PaymentSourceWebhook).
			SetMetadata(meta.IPAddress, meta.UserAgent))
		return nil, apperr.Unauthorized("Invalid webhook signature").WithCode("INVALID_SIGNATURE")
	}
	reference, err := s.gateway.ParseWebhook(body)
	if err != nil {
		return nil, apperr.InvalidInput("%s", err.Error())
	}
	s.audit(ctx, models.NewPaymentAudit(models.PaymentEventWebhookReceived, models.PaymentSourceWebhook).
		ForReference(reference).SetMetadata(meta.IPAddress, meta.UserAgent))
	return s.reconcile(ctx, reference, models.PaymentSourceWebhook, meta)
}

func (s *PaymentService) reconcile(ctx context.Context, reference string, source models.PaymentEventSource, meta RequestMeta) (*models.CallbackResult, error) {
	start := s.now()

	current, err := s.payments.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if current.Status != models.PaymentStatusPending {
		return s.alreadySettled(ctx, current, source, meta)
	}

	gctx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
	result, err := s.gateway.Verify(gctx, reference)
	cancel()
	if err != nil {
		s.audit(ctx, models.NewPaymentAudit(models.PaymentEventVerifyResponse, models.PaymentSourceGateway).
			ForPayment(current).SetError(err).SetProcessingTime(start))
		s.metrics.PaymentEvent("verify", "error")
		// the payment stays PENDING and a later callback or reconciliation resolves it
		return nil, apperr.External("Payment gateway", err)
	}

	if result.Outcome == models.GatewayOutcomePending {
		return &models.CallbackResult{
			Payment:       current,
			BookingStatus: s.bookingStatus(ctx, current.BookingID),
			Outcome:       models.GatewayOutcomePending,
		}, nil
	}

	var (
		payment        *models.Payment
		bookingStatus  models.BookingStatus
		outcome        models.GatewayOutcome
		mismatch       bool
		duplicate      bool
		refundRequired bool
	)
	err = s.tx.WithinTx(ctx, func(tx database.TravelTx) error {
		p, err := tx.LockPaymentByReference(ctx, reference)
		if err != nil {
			return err
		}
		payment = p
		if p.Status != models.PaymentStatusPending {
			// a concurrent callback won the lock first
			duplicate = true
			return nil
		}

		gatewayStatus := result.GatewayStatus
		p.GatewayStatus = &gatewayStatus

		outcome = result.Outcome
		if outcome == models.GatewayOutcomeSuccess &&
			(models.ToMinorUnits(result.Amount) != models.ToMinorUnits(p.Amount) || !sameCurrency(result.Currency, p.Currency)) {
			mismatch = true
			outcome = models.GatewayOutcomeFailed
		}

		b, err := tx.LockBooking(ctx, p.BookingID)
		if err != nil {
			return err
		}

		switch outcome {
		case models.GatewayOutcomeSuccess:
			p.Status = models.PaymentStatusCompleted
			paidAt := s.now()
			if result.PaidAt != nil {
				paidAt = *result.PaidAt
			}
			p.PaidAt = &paidAt
			if err := tx.UpdatePayment(ctx, p); err != nil {
				return err
			}
			switch b.Status {
			case models.BookingStatusPending:
				if err := s.lifecycle.transition(ctx, tx, b, models.BookingStatusConfirmed); err != nil {
					return err
				}
			case models.BookingStatusCancelled:
				// money was captured for a booking cancelled during checkout
				refundRequired = true
			}
		default:
			p.Status = models.PaymentStatusFailed
			reason := result.Message
			if mismatch {
				reason = fmt.Sprintf("amount mismatch: expected %.2f %s, gateway reported %.2f %s",
					p.Amount, p.Currency, result.Amount, result.Currency)
			}
			if reason == "" {
				reason = "declined by gateway"
			}
			p.FailureReason = &reason
			if err := tx.UpdatePayment(ctx, p); err != nil {
				return err
			}
		}
		bookingStatus = b.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	if duplicate {
		return s.alreadySettled(ctx, payment, source, meta)
	}

	entry := models.NewPaymentAudit(models.PaymentEventSuccess, source).
		ForPayment(payment).SetGatewayStatus(result.GatewayStatus).SetProcessingTime(start).SetMetadata(meta.IPAddress, meta.UserAgent)
	entry.SetAmounts(payment.Amount, result.Amount, payment.Currency)
	if payment.Status == models.PaymentStatusFailed {
		entry.EventType = models.PaymentEventFailed
		if mismatch {
			entry.EventType = models.PaymentEventAmountMismatch
		}
	}
	s.audit(ctx, entry)
	if refundRequired {
		s.audit(ctx, models.NewPaymentAudit(models.PaymentEventRefundRequired, source).ForPayment(payment).
			SetPayload(map[string]interface{}{"booking_status": bookingStatus}))
		s.metrics.PaymentEvent("refund_required", string(payment.Status))
		s.logger.WithFields(logrus.Fields{
			"payment_id": payment.ID,
			"booking_id": payment.BookingID,
			"reference":  reference,
		}).Warn("Payment captured for a cancelled booking, refund required")
	}
	if payment.Status == models.PaymentStatusCompleted && bookingStatus == models.BookingStatusConfirmed {
		s.audit(ctx, models.NewPaymentAudit(models.PaymentEventBookingConfirmed, source).ForPayment(payment))
		s.metrics.BookingTransition(s.bookingType(ctx, payment.BookingID), string(bookingStatus))
	}

	s.metrics.PaymentEvent("settle", string(payment.Status))
	s.publish(ctx, messaging.EventPaymentSettled, payment.ID, payment)

	s.logger.WithFields(logrus.Fields{
		"payment_id":     payment.ID,
		"reference":      reference,
		"status":         payment.Status,
		"booking_status": bookingStatus,
		"source":         source,
	}).Info("Payment reconciled")

	return &models.CallbackResult{
		Payment:       payment,
		BookingStatus: bookingStatus,
		Outcome:       outcome,
		Applied:       true,
	}, nil
}

func (s *PaymentService) alreadySettled(ctx context.Context, p *models.Payment, source models.PaymentEventSource, meta RequestMeta) (*models.CallbackResult, error) {
	s.audit(ctx, models.NewPaymentAudit(models.PaymentEventDuplicateCallback, source).
		ForPayment(p).MarkAsDuplicate().SetMetadata(meta.IPAddress, meta.UserAgent))

	outcome := models.GatewayOutcomeFailed
	if p.Status == models.PaymentStatusCompleted || p.Status == models.PaymentStatusRefunded {
		outcome = models.GatewayOutcomeSuccess
	}
	return &models.CallbackResult{
		Payment:       p,
		BookingStatus: s.bookingStatus(ctx, p.BookingID),
		Outcome:       outcome,
	}, nil
}

// UpdateStatus is the admin override. It follows the same transitions as
// the gateway flow; REFUNDED goes through Refund so the gateway is charged back.
func (s *PaymentService) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, req models.UpdatePaymentStatusRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	if req.Status == models.PaymentStatusRefunded {
		return s.Refund(ctx, actor, id, models.RefundPaymentRequest{Reason: req.Reason})
	}

	var payment *models.Payment
	var previous models.PaymentStatus
	err := s.tx.WithinTx(ctx, func(tx database.TravelTx) error {
		p, err := tx.LockPaymentByID(ctx, id)
		if err != nil {
			return err
		}
		if !p.Status.CanTransitionTo(req.Status) {
			return apperr.InvalidTransition("Payment", string(p.Status), string(req.Status))
		}
		previous = p.Status

		switch req.Status {
		case models.PaymentStatusCompleted:
			paidAt := s.now()
			p.PaidAt = &paidAt
		case models.PaymentStatusFailed:
			reason := req.Reason
			if reason == "" {
				reason = "marked failed by administrator"
			}
			p.FailureReason = &reason
		}
		p.Status = req.Status
		if err := tx.UpdatePayment(ctx, p); err != nil {
			return err
		}

		if p.Status == models.PaymentStatusCompleted {
			b, err := tx.LockBooking(ctx, p.BookingID)
			if err != nil {
				return err
			}
			if b.Status == models.BookingStatusPending {
				if err := s.lifecycle.transition(ctx, tx, b, models.BookingStatusConfirmed); err != nil {
					return err
				}
			}
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	entry := models.NewPaymentAudit(models.PaymentEventStatusOverride, models.PaymentSourceAdmin).ForPayment(payment)
	entry.SetPayload(map[string]interface{}{
		"previous_status": previous,
		"new_status":      payment.Status,
		"admin_id":        actor.UserID.String(),
		"reason":          req.Reason,
	})
	s.audit(ctx, entry)
	s.metrics.PaymentEvent("override", string(payment.Status))
	s.publish(ctx, messaging.EventPaymentOverride, payment.ID, payment)

	s.logger.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"from":       previous,
		"to":         payment.Status,
		"admin_id":   actor.UserID,
	}).Warn("Payment status overridden")

	return payment, nil
}

// Refund charges a COMPLETED payment back through the gateway and marks it
// REFUNDED. A CONFIRMED booking paid by it is cancelled and its capacity
// released. Payments of COMPLETED bookings are not refundable.
func (s *PaymentService) Refund(ctx context.Context, actor Actor, id uuid.UUID, req models.RefundPaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	current, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(models.PaymentStatusRefunded) {
		return nil, apperr.InvalidTransition("Payment", string(current.Status), string(models.PaymentStatusRefunded))
	}
	booking, err := s.bookings.GetByID(ctx, current.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == models.BookingStatusCompleted {
		return nil, errBookingCompleted()
	}

	release, err := s.locker.Acquire(ctx, "payment:refund:"+id.String(), s.config.LockTTL)
	if err != nil {
		if errors.Is(err, cache.ErrLocked) {
			return nil, apperr.Conflict("A refund for this payment is already in progress").WithCode("REFUND_IN_PROGRESS")
		}
		return nil, apperr.External("Lock service", err)
	}
	defer func() {
		if err := release(context.Background()); err != nil {
			s.logger.WithError(err).WithField("payment_id", id).Warn("Failed to release refund lock")
		}
	}()

	start := s.now()
	s.audit(ctx, models.NewPaymentAudit(models.PaymentEventRefundInitiated, models.PaymentSourceAdmin).ForPayment(current))

	gctx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
	refund, err := s.gateway.Refund(gctx, current.TransactionReference, current.Amount, req.Reason)
	cancel()
	if err != nil {
		s.audit(ctx, models.NewPaymentAudit(models.PaymentEventRefundFailed, models.PaymentSourceGateway).
			ForPayment(current).SetError(err).SetProcessingTime(start))
		s.metrics.PaymentEvent("refund", "failed")
		return nil, apperr.External("Payment gateway", err)
	}

	var payment *models.Payment
	var bookingStatus models.BookingStatus
	err = s.tx.WithinTx(ctx, func(tx database.TravelTx) error {
		p, err := tx.LockPaymentByID(ctx, id)
		if err != nil {
			return err
		}
		if !p.Status.CanTransitionTo(models.PaymentStatusRefunded) {
			return apperr.InvalidTransition("Payment", string(p.Status), string(models.PaymentStatusRefunded))
		}

		now := s.now()
		p.Status = models.PaymentStatusRefunded
		p.RefundedAt = &now
		if req.Reason != "" {
			reason := req.Reason
			p.RefundReason = &reason
		}
		if err := tx.UpdatePayment(ctx, p); err != nil {
			return err
		}

		b, err := tx.LockBooking(ctx, p.BookingID)
		if err != nil {
			return err
		}
		if b.Status == models.BookingStatusCompleted {
			s.logger.WithFields(logrus.Fields{
				"payment_id": p.ID,
				"booking_id": b.ID,
				"reference":  p.TransactionReference,
			}).Error("Booking completed while the refund was in flight, gateway refund needs manual review")
			return errBookingCompleted()
		}
		if b.Status == models.BookingStatusConfirmed {
			if err := s.lifecycle.transition(ctx, tx, b, models.BookingStatusCancelled); err != nil {
				return err
			}
		}
		payment, bookingStatus = p, b.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, models.NewPaymentAudit(models.PaymentEventRefundCompleted, models.PaymentSourceAdmin).
		ForPayment(payment).SetGatewayStatus(refund.Status).SetProcessingTime(start).
		SetPayload(map[string]interface{}{"admin_id": actor.UserID.String(), "reason": req.Reason}))
	s.metrics.PaymentEvent("refund", string(payment.Status))
	s.publish(ctx, messaging.EventPaymentRefunded, payment.ID, payment)

	s.logger.WithFields(logrus.Fields{
		"payment_id":     payment.ID,
		"amount":         payment.Amount,
		"booking_status": bookingStatus,
		"admin_id":       actor.UserID,
	}).Info("Payment refunded")

	return payment, nil
}

// A COMPLETED booking must keep a COMPLETED payment
func errBookingCompleted() *apperr.Error {
	return apperr.Conflict("The booking paid by this payment is completed and cannot be refunded").WithCode("BOOKING_COMPLETED")
}

// Reconcile verifies payments left PENDING longer than the configured age,
// covering callbacks that never arrived. Returns how many were settled.
func (s *PaymentService) Reconcile(ctx context.Context, olderThan time.Duration, batch int) (int, error) {
	stale, err := s.payments.ListStalePending(ctx, s.now().Add(-olderThan), batch)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, p := range stale {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}
		result, err := s.reconcile(ctx, p.TransactionReference, models.PaymentSourceCron, RequestMeta{})
		if err != nil {
			s.logger.WithError(err).WithField("reference", p.TransactionReference).Warn("Reconciliation failed")
			continue
		}
		if result.Applied {
			settled++
			s.audit(ctx, models.NewPaymentAudit(models.PaymentEventReconciled, models.PaymentSourceCron).ForPayment(result.Payment))
		}
	}
	return settled, nil
}

func (s *PaymentService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Payment, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && p.UserID != actor.UserID {
		return nil, apperr.NotFound("Payment", id)
	}
	return p, nil
}

func (s *PaymentService) GetByReference(ctx context.Context, actor Actor, reference string) (*models.Payment, error) {
	p, err := s.payments.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && p.UserID != actor.UserID {
		return nil, apperr.NotFound("Payment with reference", reference)
	}
	return p, nil
}

func (s *PaymentService) List(ctx context.Context, actor Actor, f models.PaymentFilter) ([]models.Payment, models.PageMeta, error) {
	f.Normalize()
	if !actor.IsStaff() {
		f.UserID = actor.UserID.String()
	}
	payments, total, err := s.payments.List(ctx, f)
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	return payments, models.NewPageMeta(total, f.ListParams), nil
}

// Delete removes a payment row. Its audit trail is kept.
func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.payments.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("payment_id", id).Info("Payment deleted")
	return nil
}

func (s *PaymentService) DeleteAll(ctx context.Context, f models.PaymentFilter) (int64, error) {
	n, err := s.payments.DeleteAll(ctx, f)
	if err != nil {
		return 0, err
	}
	s.logger.WithField("count", n).Info("Payments deleted")
	return n, nil
}

func (s *PaymentService) bookingStatus(ctx context.Context, id uuid.UUID) models.BookingStatus {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return ""
	}
	return b.Status
}

func (s *PaymentService) bookingType(ctx context.Context, id uuid.UUID) string {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return ""
	}
	return string(b.Item.Type)
}

// audit never fails the operation it records
func (s *PaymentService) audit(ctx context.Context, entry *models.PaymentAudit) {
	if err := s.audits.Log(ctx, entry); err != nil {
		s.logger.WithError(err).WithField("event_type", entry.EventType).Warn("Payment audit not recorded")
	}
}

func (s *PaymentService) publish(ctx context.Context, eventType string, id uuid.UUID, data interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, messaging.NewEvent(eventType, id, data)); err != nil {
		s.logger.WithError(err).WithField("event", eventType).Warn("Failed to publish payment event")
	}
}

func initializeResponse(p *models.Payment) *models.InitializePaymentResponse {
	resp := &models.InitializePaymentResponse{
		PaymentID:            p.ID,
		TransactionReference: p.TransactionReference,
		Status:               p.Status,
		Amount:               p.Amount,
		Currency:             p.Currency,
	}
	if p.AuthorizationURL != nil {
		resp.AuthorizationURL = *p.AuthorizationURL
	}
	return resp
}

func sameCurrency(a, b string) bool {
	return a == "" || b == "" || strings.EqualFold(a, b)
}
