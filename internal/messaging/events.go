// Package messaging publishes booking and payment domain events.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/stan.go"
	"github.com/sirupsen/logrus"

	"github.com/voyagehub/travel-backend/internal/config"
)

// Event types published on the travel subject
const (
	EventBookingCreated   = "booking.created"
	EventBookingStatus    = "booking.status_changed"
	EventBookingDeleted   = "booking.deleted"
	EventPaymentInitiated = "payment.initiated"
	EventPaymentSettled   = "payment.settled"
	EventPaymentRefunded  = "payment.refunded"
	EventPaymentOverride  = "payment.status_overridden"
)

// Event is the envelope every message carries
type Event struct {
	ID         uuid.UUID   `json:"id"`
	Type       string      `json:"type"`
	EntityID   uuid.UUID   `json:"entity_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// NewEvent stamps an event with an id and the current time
func NewEvent(eventType string, entityID uuid.UUID, data interface{}) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Publisher delivers events. Publishing happens after commit and a failure
// never rolls back the state change that produced the event.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// StanPublisher publishes to NATS Streaming
type StanPublisher struct {
	conn    stan.Conn
	subject string
	logger  *logrus.Logger
}

// NewStanPublisher connects to the streaming cluster. The client id gets a
// random suffix so several replicas can run side by side.
func NewStanPublisher(cfg config.NATSConfig, logger *logrus.Logger) (*StanPublisher, error) {
	clientID := fmt.Sprintf("%s-%s", cfg.ClientID, uuid.NewString()[:8])

	conn, err := stan.Connect(cfg.ClusterID, clientID,
		stan.NatsURL(cfg.URL),
		stan.SetConnectionLostHandler(func(_ stan.Conn, reason error) {
			logger.WithError(reason).Error("NATS streaming connection lost")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS Streaming: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"url":       cfg.URL,
		"cluster":   cfg.ClusterID,
		"client_id": clientID,
	}).Info("Connected to NATS Streaming")

	return &StanPublisher{conn: conn, subject: cfg.Subject, logger: logger}, nil
}

func (p *StanPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := p.subject + "." + event.Type
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}

	p.logger.WithFields(logrus.Fields{
		"subject":   subject,
		"event_id":  event.ID,
		"entity_id": event.EntityID,
	}).Debug("Published event")
	return nil
}

func (p *StanPublisher) Close() error {
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// LogPublisher writes events to the log, used when NATS is not configured
type LogPublisher struct {
	logger *logrus.Logger
}

// NewLogPublisher creates a publisher that only logs
func NewLogPublisher(logger *logrus.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.logger.WithFields(logrus.Fields{
		"event_type": event.Type,
		"event_id":   event.ID,
		"entity_id":  event.EntityID,
	}).Debug("Domain event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
