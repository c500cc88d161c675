package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/models"
)

const paymentColumns = `id, booking_id, user_id, amount, currency, payment_method, status, transaction_reference,
	authorization_url, gateway_access_code, gateway_status, failure_reason, refund_reason,
	paid_at, refunded_at, created_at, updated_at`

var paymentSortColumns = map[string]string{
	"amount":    "amount",
	"status":    "status",
	"createdAt": "created_at",
	"paidAt":    "paid_at",
}

// PaymentRepository handles payment database operations
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create stores a PENDING payment. A second active payment for the same
// booking violates payments_booking_active_key and returns Conflict.
func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `
		INSERT INTO payments (id, booking_id, user_id, amount, currency, payment_method, status,
			transaction_reference, authorization_url, gateway_access_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.BookingID, p.UserID, p.Amount, p.Currency, p.PaymentMethod, p.Status,
		p.TransactionReference, p.AuthorizationURL, p.GatewayAccessCode,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return translateError("failed to create payment", err)
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id); err != nil {
		return nil, notFoundOr("Payment", id, "failed to get payment", err)
	}
	return &p, nil
}

func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var p models.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_reference = $1`
	if err := r.db.GetContext(ctx, &p, query, reference); err != nil {
		return nil, notFoundOr("Payment with reference", reference, "failed to get payment", err)
	}
	return &p, nil
}

// FindActiveByBooking returns the PENDING or COMPLETED payment of a booking, nil if none
func (r *PaymentRepository) FindActiveByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE booking_id = $1 AND status IN ('PENDING', 'COMPLETED')
		ORDER BY created_at DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &p, query, bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, translateError("failed to find active payment", err)
	}
	return &p, nil
}

func (r *PaymentRepository) List(ctx context.Context, f models.PaymentFilter) ([]models.Payment, int, error) {
	payments := []models.Payment{}
	total, err := listPage(ctx, r.db, &payments, "payments", paymentColumns,
		paymentWhere(f), orderBy(f.ListParams, paymentSortColumns, "created_at"), f.ListParams)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return translateError("failed to delete payment", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return translateError("failed to get rows affected", err)
	}
	if rows == 0 {
		return apperr.NotFound("Payment", id)
	}
	return nil
}

func (r *PaymentRepository) DeleteAll(ctx context.Context, f models.PaymentFilter) (int64, error) {
	return deleteWhere(ctx, r.db, "payments", paymentWhere(f))
}

// ListStalePending returns PENDING payments created before olderThan, oldest first
func (r *PaymentRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]models.Payment, error) {
	payments := []models.Payment{}
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE status = 'PENDING' AND created_at < $1
		ORDER BY created_at ASC LIMIT $2`
	if err := r.db.SelectContext(ctx, &payments, query, olderThan, limit); err != nil {
		return nil, translateError("failed to list stale payments", err)
	}
	return payments, nil
}

func paymentWhere(f models.PaymentFilter) *whereBuilder {
	w := &whereBuilder{}
	w.addIf(f.Status != "", "status = ?", f.Status)
	w.addIf(f.PaymentMethod != "", "payment_method = ?", f.PaymentMethod)
	w.addIf(f.BookingID != "", "booking_id = ?", f.BookingID)
	w.addIf(f.UserID != "", "user_id = ?", f.UserID)
	if f.From != nil {
		w.add("created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("created_at < ?", f.To.Add(24*time.Hour))
	}
	return w
}
