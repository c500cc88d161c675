package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	entityID := uuid.New()
	event := NewEvent(EventBookingCreated, entityID, map[string]string{"status": "PENDING"})

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, entityID, event.EntityID)
	assert.False(t, event.OccurredAt.IsZero())

	raw, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"booking.created"`)
}

func TestLogPublisher(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	publisher := NewLogPublisher(logger)
	require.NoError(t, publisher.Publish(context.Background(), NewEvent(EventPaymentSettled, uuid.New(), nil)))

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, EventPaymentSettled, hook.LastEntry().Data["event_type"])
	assert.NoError(t, publisher.Close())
}
