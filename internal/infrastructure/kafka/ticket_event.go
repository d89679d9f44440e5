package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
)

type TicketEvent struct {
	Type         string    `json:"type"`
	OrderID      string    `json:"order_id"`
	UserID       string    `json:"user_id,omitempty"`
	EventID      string    `json:"event_id,omitempty"`
	Status       string    `json:"status,omitempty"`
	Amount       int64     `json:"amount,omitempty"`
	Currency     string    `json:"currency,omitempty"`
	TicketID     string    `json:"ticket_id,omitempty"`
	TicketNumber string    `json:"ticket_number,omitempty"`
	RefundID     string    `json:"refund_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventPublisher turns domain events into JSON messages keyed by order id.
type EventPublisher struct {
	publisher domain.PublisherPort
	topic     string
}

func NewEventPublisher(publisher domain.PublisherPort, topic string) *EventPublisher {
	return &EventPublisher{publisher: publisher, topic: topic}
}

func (p *EventPublisher) PublishEvent(ctx context.Context, event domain.Event) error {
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}

	v, err := json.Marshal(TicketEvent{
		Type:         string(event.Type),
		OrderID:      event.OrderID,
		UserID:       event.UserID,
		EventID:      event.EventID,
		Status:       event.Status,
		Amount:       event.Amount,
		Currency:     event.Currency,
		TicketID:     event.TicketID,
		TicketNumber: event.TicketNumber,
		RefundID:     event.RefundID,
		OccurredAt:   occurred,
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	return p.publisher.Publish(ctx, p.topic, domain.Message{Key: []byte(event.OrderID), Value: v})
}
