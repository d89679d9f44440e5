package order

import (
	"context"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
)

func (uc *DefaultOrderUsecase) GetOrder(ctx context.Context, callerID, orderID string) (*domain.Order, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthorized
	}
	order, err := uc.orders.GetOrderWithPayments(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != callerID {
		return nil, domain.ErrForbidden
	}
	return order, nil
}
