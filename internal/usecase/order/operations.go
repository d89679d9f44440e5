package order

import (
	"context"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/sirupsen/logrus"
)

var transitionEvents = map[domain.OrderStatus]domain.EventType{
	domain.StatusPaid:     domain.EventOrderPaid,
	domain.StatusFailed:   domain.EventOrderFailed,
	domain.StatusRefunded: domain.EventOrderRefunded,
}

func (uc *DefaultOrderUsecase) MarkPaid(ctx context.Context, gatewayOrderID string, source domain.TransitionSource) (*domain.Order, error) {
	order, err := uc.orders.GetOrderByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return nil, err
	}
	return uc.transition(ctx, order, domain.StatusPaid, source, "")
}

func (uc *DefaultOrderUsecase) MarkFailed(ctx context.Context, gatewayOrderID, reason string, source domain.TransitionSource) (*domain.Order, error) {
	order, err := uc.orders.GetOrderByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return nil, err
	}
	return uc.transition(ctx, order, domain.StatusFailed, source, reason)
}

func (uc *DefaultOrderUsecase) MarkRefunded(ctx context.Context, orderID string, source domain.TransitionSource) (*domain.Order, error) {
	order, err := uc.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return uc.transition(ctx, order, domain.StatusRefunded, source, "")
}

// transition applies one edge of the state machine. Reaching a status the
// order already has is a successful no-op.
func (uc *DefaultOrderUsecase) transition(
	ctx context.Context,
	order *domain.Order,
	to domain.OrderStatus,
	source domain.TransitionSource,
	reason string,
) (*domain.Order, error) {
	if order.Status == to {
		return order, nil
	}
	if !domain.CanTransition(order.Status, to) {
		return nil, uc.rejectTransition(order.ID, order.Status, to, source)
	}

	applied, err := uc.orders.CompareAndSetStatus(ctx, domain.OrderStatusChange{
		OrderID:   order.ID,
		From:      order.Status,
		To:        to,
		Source:    source,
		Reason:    reason,
		CreatedAt: uc.now(),
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		// another writer moved the order first
		current, err := uc.orders.GetOrderByID(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		if current.Status == to {
			return current, nil
		}
		return nil, uc.rejectTransition(order.ID, current.Status, to, source)
	}

	from := order.Status
	order.Status = to
	order.UpdatedAt = uc.now()
	uc.recordTransitionMetrics(from, to, source)
	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"from":     from,
		"to":       to,
		"source":   source,
		"reason":   reason,
	}).Info("order status changed")

	uc.emitter.Emit(domain.Event{
		Type:     transitionEvents[to],
		OrderID:  order.ID,
		UserID:   order.UserID,
		EventID:  order.EventID,
		Status:   string(to),
		Amount:   order.Amount,
		Currency: order.Currency,
	})
	return order, nil
}

func (uc *DefaultOrderUsecase) rejectTransition(orderID string, from, to domain.OrderStatus, source domain.TransitionSource) error {
	uc.recordTransitionRejected(from, to, source)
	logrus.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     from,
		"to":       to,
		"source":   source,
	}).Warn("illegal order status transition")
	return &domain.TransitionError{OrderID: orderID, From: from, To: to}
}
