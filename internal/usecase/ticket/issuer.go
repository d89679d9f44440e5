package ticket

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-ticket-service/internal/usecase"
	"github.com/sirupsen/logrus"
)

// DefaultTicketIssuer is the only path from a paid order to a ticket, shared
// by the verify endpoint and the webhook dispatcher.
type DefaultTicketIssuer struct {
	ledger  domain.InventoryLedger
	tickets domain.TicketRepository
	emitter *usecase.EventEmitter
	metrics *metrics.TicketMetrics
}

func NewDefaultTicketIssuer(
	ledger domain.InventoryLedger,
	tickets domain.TicketRepository,
	emitter *usecase.EventEmitter,
	ticketMetrics *metrics.TicketMetrics,
) *DefaultTicketIssuer {
	return &DefaultTicketIssuer{
		ledger:  ledger,
		tickets: tickets,
		emitter: emitter,
		metrics: ticketMetrics,
	}
}

// IssueForOrder returns the order's ticket, allocating seats from the order
// notes when none exists yet. Calling it again for the same order is a no-op.
func (i *DefaultTicketIssuer) IssueForOrder(ctx context.Context, order *domain.Order, gatewayPaymentID string, source domain.TransitionSource) (*domain.Ticket, error) {
	existing, err := i.tickets.GetTicketByOrderID(ctx, order.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrTicketNotFound) {
		return nil, err
	}

	if order.Status != domain.StatusPaid {
		return nil, &domain.TransitionError{OrderID: order.ID, From: order.Status, To: domain.StatusPaid}
	}

	allocation, err := i.ledger.Allocate(ctx, domain.AllocationRequest{
		OrderID:          order.ID,
		UserID:           order.UserID,
		EventID:          order.EventID,
		CategoryID:       order.Notes.CategoryID,
		Quantity:         order.Notes.Quantity,
		UnitPrice:        order.Notes.UnitPrice,
		GatewayPaymentID: gatewayPaymentID,
		PaymentStatus:    domain.TicketPaymentCaptured,
	})
	if errors.Is(err, domain.ErrTicketAlreadyIssued) {
		// lost the race to a concurrent issuer for the same order
		return i.tickets.GetTicketByOrderID(ctx, order.ID)
	}
	if err != nil {
		i.recordAllocationFailure(err)
		logrus.WithFields(logrus.Fields{
			"order_id":    order.ID,
			"category_id": order.Notes.CategoryID,
			"quantity":    order.Notes.Quantity,
			"source":      source,
		}).WithError(err).Error("ticket allocation failed")
		return nil, fmt.Errorf("allocate seats for order %s: %w", order.ID, err)
	}

	ticket := allocation.Ticket
	i.recordTicketIssued(source, order.EventID, ticket.Quantity)
	logrus.WithFields(logrus.Fields{
		"order_id":        order.ID,
		"ticket_number":   ticket.TicketNumber,
		"remaining_seats": allocation.RemainingSeats,
		"source":          source,
	}).Info("ticket issued")

	i.emitter.Emit(domain.Event{
		Type:         domain.EventTicketIssued,
		OrderID:      order.ID,
		UserID:       order.UserID,
		EventID:      order.EventID,
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
	})
	return ticket, nil
}

func (i *DefaultTicketIssuer) recordTicketIssued(source domain.TransitionSource, eventID string, seats int) {
	if i.metrics == nil {
		return
	}
	i.metrics.RecordTicketIssued(string(source), eventID, seats)
}

func (i *DefaultTicketIssuer) recordAllocationFailure(err error) {
	if i.metrics == nil {
		return
	}
	reason := "store"
	switch {
	case errors.Is(err, domain.ErrInsufficientInventory):
		reason = "insufficient_inventory"
	case errors.Is(err, domain.ErrCategoryNotFound):
		reason = "category_not_found"
	case errors.Is(err, domain.ErrInvalidQuantity):
		reason = "invalid_quantity"
	}
	i.metrics.RecordAllocationFailure(reason)
}
