package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEventType represents the type of payment event
type PaymentEventType string

const (
	PaymentEventInitiated         PaymentEventType = "payment_initiated"
	PaymentEventVerifyRequest     PaymentEventType = "verify_request"
	PaymentEventVerifyResponse    PaymentEventType = "verify_response"
	PaymentEventCallbackReceived  PaymentEventType = "callback_received"
	PaymentEventWebhookReceived   PaymentEventType = "webhook_received"
	PaymentEventSuccess           PaymentEventType = "payment_success"
	PaymentEventFailed            PaymentEventType = "payment_failed"
	PaymentEventDuplicateCallback PaymentEventType = "duplicate_callback"
	PaymentEventBookingConfirmed  PaymentEventType = "booking_confirmed"
	PaymentEventStatusOverride    PaymentEventType = "status_override"
	PaymentEventRefundInitiated   PaymentEventType = "refund_initiated"
	PaymentEventRefundCompleted   PaymentEventType = "refund_completed"
	PaymentEventRefundFailed      PaymentEventType = "refund_failed"
	PaymentEventRefundRequired    PaymentEventType = "payment_refund_required"
	PaymentEventAmountMismatch    PaymentEventType = "amount_mismatch"
	PaymentEventReconciled        PaymentEventType = "reconciled"
	PaymentEventInvalidSignature  PaymentEventType = "invalid_signature"
)

// PaymentEventSource identifies where the event originated
type PaymentEventSource string

const (
	PaymentSourceBackend  PaymentEventSource = "backend"
	PaymentSourceCallback PaymentEventSource = "gateway_callback"
	PaymentSourceWebhook  PaymentEventSource = "gateway_webhook"
	PaymentSourceGateway  PaymentEventSource = "gateway_api"
	PaymentSourceAdmin    PaymentEventSource = "admin"
	PaymentSourceCron     PaymentEventSource = "reconciliation"
)

// PaymentAudit represents an immutable audit log entry for payment events
type PaymentAudit struct {
	ID                   uuid.UUID          `json:"id" db:"id"`
	PaymentID            *uuid.UUID         `json:"payment_id,omitempty" db:"payment_id"`
	BookingID            *uuid.UUID         `json:"booking_id,omitempty" db:"booking_id"`
	TransactionReference *string            `json:"transaction_reference,omitempty" db:"transaction_reference"`
	EventType            PaymentEventType   `json:"event_type" db:"event_type"`
	EventSource          PaymentEventSource `json:"event_source" db:"event_source"`

	ExpectedAmount *float64 `json:"expected_amount,omitempty" db:"expected_amount"`
	ReceivedAmount *float64 `json:"received_amount,omitempty" db:"received_amount"`
	Currency       *string  `json:"currency,omitempty" db:"currency"`
	AmountsMatch   *bool    `json:"amounts_match,omitempty" db:"amounts_match"`

	PaymentStatus *string `json:"payment_status,omitempty" db:"payment_status"`
	GatewayStatus *string `json:"gateway_status,omitempty" db:"gateway_status"`

	Payload        JSONB   `json:"payload,omitempty" db:"payload"`
	HTTPStatusCode *int    `json:"http_status_code,omitempty" db:"http_status_code"`
	ErrorMessage   *string `json:"error_message,omitempty" db:"error_message"`

	ProcessingTimeMs *int    `json:"processing_time_ms,omitempty" db:"processing_time_ms"`
	IsDuplicate      bool    `json:"is_duplicate" db:"is_duplicate"`
	IPAddress        *string `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent        *string `json:"user_agent,omitempty" db:"user_agent"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewPaymentAudit creates a new payment audit entry with required fields
func NewPaymentAudit(eventType PaymentEventType, source PaymentEventSource) *PaymentAudit {
	return &PaymentAudit{
		ID:          uuid.New(),
		EventType:   eventType,
		EventSource: source,
		CreatedAt:   time.Now(),
	}
}

// ForPayment copies the payment identifiers into the entry
func (pa *PaymentAudit) ForPayment(p *Payment) *PaymentAudit {
	if p == nil {
		return pa
	}
	paymentID, bookingID, ref := p.ID, p.BookingID, p.TransactionReference
	status := string(p.Status)
	pa.PaymentID = &paymentID
	pa.BookingID = &bookingID
	pa.TransactionReference = &ref
	pa.PaymentStatus = &status
	return pa
}

// ForBooking is used before a payment row exists
func (pa *PaymentAudit) ForBooking(bookingID uuid.UUID, reference string) *PaymentAudit {
	pa.BookingID = &bookingID
	if reference != "" {
		pa.TransactionReference = &reference
	}
	return pa
}

// ForReference is used when only the gateway reference is known yet
func (pa *PaymentAudit) ForReference(reference string) *PaymentAudit {
	if reference != "" {
		pa.TransactionReference = &reference
	}
	return pa
}

// SetAmounts records expected vs received and returns whether they match to the cent
func (pa *PaymentAudit) SetAmounts(expected, received float64, currency string) bool {
	pa.ExpectedAmount = &expected
	pa.ReceivedAmount = &received
	pa.Currency = &currency
	match := ToMinorUnits(expected) == ToMinorUnits(received)
	pa.AmountsMatch = &match
	return match
}

func (pa *PaymentAudit) SetGatewayStatus(status string) *PaymentAudit {
	if status != "" {
		pa.GatewayStatus = &status
	}
	return pa
}

func (pa *PaymentAudit) SetError(err error) *PaymentAudit {
	if err != nil {
		msg := err.Error()
		pa.ErrorMessage = &msg
	}
	return pa
}

func (pa *PaymentAudit) SetHTTPStatus(code int) *PaymentAudit {
	pa.HTTPStatusCode = &code
	return pa
}

func (pa *PaymentAudit) SetPayload(payload map[string]interface{}) *PaymentAudit {
	pa.Payload = JSONB(payload)
	return pa
}

// SetMetadata sets request metadata
func (pa *PaymentAudit) SetMetadata(ip, userAgent string) *PaymentAudit {
	if ip != "" {
		pa.IPAddress = &ip
	}
	if userAgent != "" {
		pa.UserAgent = &userAgent
	}
	return pa
}

func (pa *PaymentAudit) SetProcessingTime(start time.Time) *PaymentAudit {
	ms := int(time.Since(start).Milliseconds())
	pa.ProcessingTimeMs = &ms
	return pa
}

func (pa *PaymentAudit) MarkAsDuplicate() *PaymentAudit {
	pa.IsDuplicate = true
	return pa
}

// ToMinorUnits converts an amount to integer cents, the unit gateways charge in
func ToMinorUnits(amount float64) int64 {
	if amount < 0 {
		return -int64(-amount*100 + 0.5)
	}
	return int64(amount*100 + 0.5)
}

// FromMinorUnits converts gateway cents back to a decimal amount
func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}
