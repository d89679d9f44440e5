package order

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/sirupsen/logrus"
)

// VerifyPayment is the synchronous confirmation sent by the client after
// checkout. The signature is checked before anything is read or written.
func (uc *DefaultOrderUsecase) VerifyPayment(ctx context.Context, callerID string, input VerifyInput) (*VerifyResult, error) {
	if input.GatewayOrderID == "" || input.GatewayPaymentID == "" || input.Signature == "" {
		return nil, domain.ErrMissingFields
	}
	if err := uc.verifier.VerifyPayment(input.GatewayOrderID, input.GatewayPaymentID, input.Signature); err != nil {
		logrus.WithFields(logrus.Fields{
			"gateway_order_id":   input.GatewayOrderID,
			"gateway_payment_id": input.GatewayPaymentID,
		}).Warn("payment signature rejected")
		return nil, err
	}

	order, err := uc.orders.GetOrderByGatewayOrderID(ctx, input.GatewayOrderID)
	if err != nil {
		return nil, err
	}
	if callerID != "" && order.UserID != callerID {
		return nil, domain.ErrForbidden
	}

	order, err = uc.transition(ctx, order, domain.StatusPaid, domain.SourceVerify, "")
	if err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		OrderID:          order.ID,
		GatewayPaymentID: input.GatewayPaymentID,
		GatewaySignature: input.Signature,
		Status:           domain.PaymentCaptured,
		Amount:           order.Amount,
	}
	if err := uc.payments.UpsertPayment(ctx, payment); err != nil {
		// the order row is authoritative, the webhook will record the payment
		logrus.WithFields(logrus.Fields{
			"order_id":           order.ID,
			"gateway_payment_id": input.GatewayPaymentID,
		}).WithError(err).Error("failed to record payment")
	}

	ticket, err := uc.issuer.IssueForOrder(ctx, order, input.GatewayPaymentID, domain.SourceVerify)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"order_id":           order.ID,
			"gateway_payment_id": input.GatewayPaymentID,
		}).WithError(err).Error("payment captured but ticket issuance failed, manual follow-up required")
		return &VerifyResult{Order: order}, fmt.Errorf("%w: %w", domain.ErrTicketIssuance, err)
	}

	return &VerifyResult{Order: order, Ticket: ticket}, nil
}
