package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentMethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// PaymentStatus represents the lifecycle state of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusCompleted: {PaymentStatusRefunded},
}

// CanTransitionTo reports whether next is a legal successor of s
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Payment belongs to one booking and one user
type Payment struct {
	ID                   uuid.UUID     `json:"id" db:"id"`
	BookingID            uuid.UUID     `json:"booking_id" db:"booking_id"`
	UserID               uuid.UUID     `json:"user_id" db:"user_id"`
	Amount               float64       `json:"amount" db:"amount"`
	Currency             string        `json:"currency" db:"currency"`
	PaymentMethod        PaymentMethod `json:"payment_method" db:"payment_method"`
	Status               PaymentStatus `json:"status" db:"status"`
	TransactionReference string        `json:"transaction_reference" db:"transaction_reference"`
	AuthorizationURL     *string       `json:"authorization_url,omitempty" db:"authorization_url"`
	GatewayAccessCode    *string       `json:"-" db:"gateway_access_code"`
	GatewayStatus        *string       `json:"gateway_status,omitempty" db:"gateway_status"`
	FailureReason        *string       `json:"failure_reason,omitempty" db:"failure_reason"`
	RefundReason         *string       `json:"refund_reason,omitempty" db:"refund_reason"`
	PaidAt               *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
	RefundedAt           *time.Time    `json:"refunded_at,omitempty" db:"refunded_at"`
	CreatedAt            time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at" db:"updated_at"`
}

type CreatePaymentRequest struct {
	BookingID     string        `json:"booking_id" validate:"required,uuid"`
	PaymentMethod PaymentMethod `json:"payment_method" validate:"required,oneof=CREDIT_CARD DEBIT_CARD MOBILE_MONEY BANK_TRANSFER"`
}

// InitializePaymentResponse is returned to the client for redirecting to checkout
type InitializePaymentResponse struct {
	PaymentID            uuid.UUID     `json:"payment_id"`
	AuthorizationURL     string        `json:"authorization_url"`
	TransactionReference string        `json:"transaction_reference"`
	Status               PaymentStatus `json:"status"`
	Amount               float64       `json:"amount"`
	Currency             string        `json:"currency"`
}

type UpdatePaymentStatusRequest struct {
	Status PaymentStatus `json:"status" validate:"required,oneof=PENDING COMPLETED FAILED REFUNDED"`
	Reason string        `json:"reason" validate:"max=500"`
}

type RefundPaymentRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// PaymentFilter holds the typed list filters for payments
type PaymentFilter struct {
	ListParams
	Status        string     `form:"status"`
	PaymentMethod string     `form:"payment_method"`
	BookingID     string     `form:"booking_id"`
	UserID        string     `form:"user_id"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
}

// GatewayOutcome is the normalized verdict of a gateway verification
type GatewayOutcome string

const (
	GatewayOutcomeSuccess GatewayOutcome = "success"
	GatewayOutcomeFailed  GatewayOutcome = "failed"
	// GatewayOutcomePending means the customer has not finished checkout yet
	GatewayOutcomePending GatewayOutcome = "pending"
)

// GatewayResult is what the payment service applies to a stored payment
type GatewayResult struct {
	Reference     string
	Outcome       GatewayOutcome
	GatewayStatus string
	Amount        float64
	Currency      string
	Message       string
	PaidAt        *time.Time
}

// CallbackResult is returned by callback and webhook reconciliation
type CallbackResult struct {
	Payment       *Payment       `json:"payment"`
	BookingStatus BookingStatus  `json:"booking_status"`
	Outcome       GatewayOutcome `json:"outcome"`
	// Applied is false when the payment was already terminal and nothing changed
	Applied bool `json:"applied"`
}
