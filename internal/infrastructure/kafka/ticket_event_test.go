package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	topic string
	msgs  []domain.Message
	err   error
}

func (c *capturePublisher) Publish(_ context.Context, topic string, msgs ...domain.Message) error {
	c.topic = topic
	c.msgs = append(c.msgs, msgs...)
	return c.err
}

func TestEventPublisher_PublishEvent(t *testing.T) {
	pub := &capturePublisher{}
	ep := NewEventPublisher(pub, "ticket-events")
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := ep.PublishEvent(context.Background(), domain.Event{
		Type:         domain.EventTicketIssued,
		OrderID:      "order-1",
		UserID:       "user-1",
		TicketID:     "ticket-1",
		TicketNumber: "TKT-ABC",
		OccurredAt:   at,
	})
	require.NoError(t, err)

	assert.Equal(t, "ticket-events", pub.topic)
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, []byte("order-1"), pub.msgs[0].Key)

	var ev TicketEvent
	require.NoError(t, json.Unmarshal(pub.msgs[0].Value, &ev))
	assert.Equal(t, "ticket.issued", ev.Type)
	assert.Equal(t, "TKT-ABC", ev.TicketNumber)
	assert.True(t, at.Equal(ev.OccurredAt))
}

func TestEventPublisher_PropagatesError(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker down")}
	ep := NewEventPublisher(pub, "ticket-events")

	err := ep.PublishEvent(context.Background(), domain.Event{Type: domain.EventOrderPaid, OrderID: "o"})
	assert.Error(t, err)
}
