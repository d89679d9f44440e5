package domain

import (
	"context"
	"time"
)

type Message struct {
	Key   []byte
	Value []byte
}

type PublisherPort interface {
	Publish(ctx context.Context, topic string, msgs ...Message) error
}

type EventType string

const (
	EventOrderCreated    EventType = "order.created"
	EventOrderPaid       EventType = "order.paid"
	EventOrderFailed     EventType = "order.failed"
	EventOrderRefunded   EventType = "order.refunded"
	EventTicketIssued    EventType = "ticket.issued"
	EventRefundRequested EventType = "refund.requested"
)

// Event is a state change announced to downstream consumers.
type Event struct {
	Type         EventType
	OrderID      string
	UserID       string
	EventID      string
	Status       string
	Amount       int64
	Currency     string
	TicketID     string
	TicketNumber string
	RefundID     string
	OccurredAt   time.Time
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, event Event) error
}
