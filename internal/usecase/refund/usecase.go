package refund

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-ticket-service/internal/usecase"
	"github.com/sirupsen/logrus"
)

type RefundUsecase interface {
	RequestRefund(ctx context.Context, callerID string, input RefundInput) (*domain.Refund, error)
	GetRefund(ctx context.Context, callerID, refundID string) (*domain.Refund, error)
}

type RefundInput struct {
	OrderID string
	Reason  domain.RefundReason
	Notes   *string
}

type DefaultRefundUsecase struct {
	orders   domain.OrderRepository
	payments domain.PaymentRepository
	refunds  domain.RefundRepository
	gateway  domain.PaymentGateway
	emitter  *usecase.EventEmitter
	metrics  *metrics.TicketMetrics
}

func NewDefaultRefundUsecase(
	orders domain.OrderRepository,
	payments domain.PaymentRepository,
	refunds domain.RefundRepository,
	gateway domain.PaymentGateway,
	emitter *usecase.EventEmitter,
	ticketMetrics *metrics.TicketMetrics,
) *DefaultRefundUsecase {
	return &DefaultRefundUsecase{
		orders:   orders,
		payments: payments,
		refunds:  refunds,
		gateway:  gateway,
		emitter:  emitter,
		metrics:  ticketMetrics,
	}
}

// RequestRefund asks the gateway to refund the order's full amount. A pending
// refund row is reserved under the order's unique key before the gateway call,
// so two concurrent requests can never both reach the gateway. Order and ticket
// state only change when the refund.processed webhook arrives.
func (uc *DefaultRefundUsecase) RequestRefund(ctx context.Context, callerID string, input RefundInput) (*domain.Refund, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if input.OrderID == "" {
		return nil, domain.ErrMissingFields
	}
	if !input.Reason.Valid() {
		return nil, domain.ErrInvalidRefundReason
	}

	order, err := uc.orders.GetOrderByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != callerID {
		return nil, domain.ErrOrderNotFound
	}
	if order.Status != domain.StatusPaid {
		uc.recordRequested(input.Reason, "not_eligible")
		return nil, domain.ErrRefundNotEligible
	}

	if _, err := uc.refunds.GetRefundByOrderID(ctx, order.ID); err == nil {
		uc.recordRequested(input.Reason, "duplicate")
		return nil, domain.ErrRefundAlreadyExists
	} else if !errors.Is(err, domain.ErrRefundNotFound) {
		return nil, err
	}

	payment, err := uc.payments.GetCapturedPayment(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	refund := &domain.Refund{
		OrderID:     order.ID,
		PaymentID:   payment.ID,
		Reason:      input.Reason,
		Amount:      order.Amount,
		Status:      domain.RefundPending,
		RequestedBy: callerID,
		Notes:       input.Notes,
	}
	if err := uc.refunds.CreateRefund(ctx, refund); err != nil {
		if errors.Is(err, domain.ErrRefundAlreadyExists) {
			uc.recordRequested(input.Reason, "duplicate")
		}
		return nil, err
	}

	log := logrus.WithFields(logrus.Fields{
		"order_id":           order.ID,
		"refund_id":          refund.ID,
		"gateway_payment_id": payment.GatewayPaymentID,
	})

	gatewayRefundID, err := uc.gateway.IssueRefund(ctx, domain.GatewayRefundRequest{
		PaymentID: payment.GatewayPaymentID,
		Amount:    order.Amount,
		Notes: map[string]string{
			"orderId": order.ID,
			"reason":  string(input.Reason),
		},
	})
	if err != nil {
		if delErr := uc.refunds.DeleteRefund(ctx, refund.ID); delErr != nil {
			log.WithError(delErr).Error("failed to release refund reservation")
		}
		uc.recordRequested(input.Reason, "gateway_error")
		log.WithError(err).Error("gateway refund failed")
		return nil, fmt.Errorf("failed to issue refund: %w", err)
	}

	if err := uc.refunds.SetGatewayRefundID(ctx, refund.ID, gatewayRefundID); err != nil {
		// the webhook resolves the refund through the payment when the id is missing
		log.WithError(err).Error("failed to store gateway refund id")
	}
	refund.GatewayRefundID = gatewayRefundID

	if stored, err := uc.refunds.GetRefundByOrderID(ctx, order.ID); err == nil {
		refund = stored
	}

	uc.recordRequested(input.Reason, "requested")
	log.WithField("gateway_refund_id", gatewayRefundID).Info("refund requested")

	uc.emitter.Emit(domain.Event{
		Type:     domain.EventRefundRequested,
		OrderID:  order.ID,
		UserID:   order.UserID,
		EventID:  order.EventID,
		Status:   string(refund.Status),
		Amount:   refund.Amount,
		Currency: order.Currency,
		RefundID: refund.ID,
	})
	return refund, nil
}

func (uc *DefaultRefundUsecase) GetRefund(ctx context.Context, callerID, refundID string) (*domain.Refund, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthorized
	}
	return uc.refunds.GetRefundForRequester(ctx, refundID, callerID)
}

func (uc *DefaultRefundUsecase) recordRequested(reason domain.RefundReason, outcome string) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.RecordRefundRequested(string(reason), outcome)
}
