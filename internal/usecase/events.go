package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/sirupsen/logrus"
)

const defaultPublishTimeout = 5 * time.Second

// EventEmitter publishes domain events off the request path. Publish
// failures are logged and never reach the caller.
type EventEmitter struct {
	publisher domain.EventPublisher
	timeout   time.Duration
	wg        sync.WaitGroup
}

func NewEventEmitter(publisher domain.EventPublisher, timeout time.Duration) *EventEmitter {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &EventEmitter{publisher: publisher, timeout: timeout}
}

func (e *EventEmitter) Emit(event domain.Event) {
	if e == nil || e.publisher == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()

		if err := e.publisher.PublishEvent(ctx, event); err != nil {
			logrus.WithFields(logrus.Fields{
				"event":    event.Type,
				"order_id": event.OrderID,
			}).WithError(err).Warn("failed to publish event")
		}
	}()
}

// Wait blocks until in-flight publishes finish.
func (e *EventEmitter) Wait() {
	if e == nil {
		return
	}
	e.wg.Wait()
}
