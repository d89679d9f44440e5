package order

import (
	"context"
	"fmt"
	"strconv"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var minorUnits = decimal.NewFromInt(100)

// CreateOrder registers the order with the gateway first and persists it only
// after the gateway answered, so a gateway failure leaves nothing behind.
func (uc *DefaultOrderUsecase) CreateOrder(ctx context.Context, userID string, input CreateOrderInput) (*domain.Order, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if input.EventID == "" || input.CategoryID == "" || input.UnitPrice.IsZero() {
		return nil, domain.ErrMissingFields
	}
	if input.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if !input.TotalPrice.IsPositive() || !input.UnitPrice.IsPositive() {
		return nil, domain.ErrInvalidPrice
	}

	category, err := uc.ledger.GetCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category.EventID != input.EventID {
		return nil, domain.ErrCategoryNotFound
	}

	orderID := uuid.NewString()
	amount := input.TotalPrice.Mul(minorUnits).Round(0).IntPart()

	gatewayOrderID, err := uc.gateway.CreateOrder(ctx, domain.GatewayOrderRequest{
		Amount:   amount,
		Currency: uc.currency,
		Receipt:  orderID,
		Notes: map[string]string{
			"userId":     userID,
			"eventId":    input.EventID,
			"categoryId": input.CategoryID,
			"quantity":   strconv.Itoa(input.Quantity),
		},
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id":  userID,
			"event_id": input.EventID,
			"amount":   amount,
		}).WithError(err).Error("gateway order creation failed")
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	var paymentMethod *string
	if input.PaymentMethod != "" {
		paymentMethod = &input.PaymentMethod
	}
	order := &domain.Order{
		ID:             orderID,
		UserID:         userID,
		EventID:        input.EventID,
		GatewayOrderID: gatewayOrderID,
		Amount:         amount,
		Currency:       uc.currency,
		Status:         domain.StatusCreated,
		PaymentMethod:  paymentMethod,
		Notes: domain.OrderNotes{
			CategoryID: input.CategoryID,
			Quantity:   input.Quantity,
			UnitPrice:  input.UnitPrice,
		},
	}
	if err := uc.orders.CreateOrder(ctx, order); err != nil {
		logrus.WithFields(logrus.Fields{
			"order_id":         orderID,
			"gateway_order_id": gatewayOrderID,
		}).WithError(err).Error("failed to persist order after gateway creation")
		return nil, err
	}

	uc.recordOrderCreatedMetrics(order)
	logrus.WithFields(logrus.Fields{
		"order_id":         order.ID,
		"gateway_order_id": order.GatewayOrderID,
		"amount":           order.Amount,
	}).Info("order created")

	uc.emitter.Emit(domain.Event{
		Type:     domain.EventOrderCreated,
		OrderID:  order.ID,
		UserID:   order.UserID,
		EventID:  order.EventID,
		Status:   string(order.Status),
		Amount:   order.Amount,
		Currency: order.Currency,
	})
	return order, nil
}
