package reconcile

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/razorpay"
	"github.com/sirupsen/logrus"
)

// OrderStateMachine is the part of the order usecase the dispatcher drives.
type OrderStateMachine interface {
	MarkPaid(ctx context.Context, gatewayOrderID string, source domain.TransitionSource) (*domain.Order, error)
	MarkFailed(ctx context.Context, gatewayOrderID, reason string, source domain.TransitionSource) (*domain.Order, error)
	MarkRefunded(ctx context.Context, orderID string, source domain.TransitionSource) (*domain.Order, error)
}

type Dispatcher interface {
	HandleWebhook(ctx context.Context, body []byte, signature, eventID string) error
}

type DefaultDispatcher struct {
	verifier domain.WebhookSignatureVerifier
	events   domain.WebhookEventRepository
	machine  OrderStateMachine
	orders   domain.OrderRepository
	payments domain.PaymentRepository
	tickets  domain.TicketRepository
	refunds  domain.RefundRepository
	issuer   domain.TicketIssuer
	metrics  *metrics.TicketMetrics
	now      func() time.Time
}

type Deps struct {
	Verifier domain.WebhookSignatureVerifier
	Events   domain.WebhookEventRepository
	Machine  OrderStateMachine
	Orders   domain.OrderRepository
	Payments domain.PaymentRepository
	Tickets  domain.TicketRepository
	Refunds  domain.RefundRepository
	Issuer   domain.TicketIssuer
	Metrics  *metrics.TicketMetrics
}

func NewDefaultDispatcher(deps Deps) *DefaultDispatcher {
	return &DefaultDispatcher{
		verifier: deps.Verifier,
		events:   deps.Events,
		machine:  deps.Machine,
		orders:   deps.Orders,
		payments: deps.Payments,
		tickets:  deps.Tickets,
		refunds:  deps.Refunds,
		issuer:   deps.Issuer,
		metrics:  deps.Metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// HandleWebhook authenticates, records and applies one gateway delivery.
// A returned error means the gateway should redeliver; inconsistencies that a
// redelivery cannot fix are logged and acknowledged instead.
func (d *DefaultDispatcher) HandleWebhook(ctx context.Context, body []byte, signature, eventID string) error {
	if err := d.verifier.VerifyWebhook(body, signature); err != nil {
		d.recordEvent("unknown", "unauthorized")
		logrus.WithError(err).Warn("webhook signature rejected")
		return err
	}

	envelope, err := razorpay.ParseWebhook(body)
	if err != nil {
		d.recordEvent("unknown", "malformed")
		return err
	}

	if eventID == "" {
		sum := sha256.Sum256(body)
		eventID = hex.EncodeToString(sum[:])
	}
	log := logrus.WithFields(logrus.Fields{
		"event":    envelope.Event,
		"event_id": eventID,
	})

	alreadyProcessed, err := d.events.RecordEvent(ctx, &domain.WebhookEvent{
		EventID:    eventID,
		Kind:       envelope.Event,
		Payload:    string(body),
		ReceivedAt: d.now(),
	})
	if err != nil {
		d.recordEvent(envelope.Event, "error")
		return err
	}
	if alreadyProcessed {
		d.recordEvent(envelope.Event, "duplicate")
		log.Info("webhook already processed")
		return nil
	}

	outcome, processErr := d.dispatch(ctx, envelope)
	if err := d.events.MarkProcessed(ctx, eventID, processErr); err != nil {
		log.WithError(err).Error("failed to update webhook event")
	}
	if processErr != nil {
		d.recordEvent(envelope.Event, "error")
		log.WithError(processErr).Error("webhook processing failed")
		return processErr
	}

	d.recordEvent(envelope.Event, outcome)
	return nil
}

func (d *DefaultDispatcher) dispatch(ctx context.Context, envelope *domain.WebhookEnvelope) (string, error) {
	switch envelope.Event {
	case domain.WebhookPaymentCaptured:
		if envelope.Payload.Payment == nil {
			return d.inconsistent(envelope.Event, "missing_entity", logrus.Fields{})
		}
		return d.handleCaptured(ctx, envelope.Payload.Payment.Entity)
	case domain.WebhookPaymentFailed:
		if envelope.Payload.Payment == nil {
			return d.inconsistent(envelope.Event, "missing_entity", logrus.Fields{})
		}
		return d.handleFailed(ctx, envelope.Payload.Payment.Entity)
	case domain.WebhookRefundProcessed:
		if envelope.Payload.Refund == nil {
			return d.inconsistent(envelope.Event, "missing_entity", logrus.Fields{})
		}
		return d.handleRefundProcessed(ctx, envelope.Payload.Refund.Entity)
	}

	logrus.WithField("event", envelope.Event).Debug("ignoring webhook event")
	return "ignored", nil
}

func (d *DefaultDispatcher) handleCaptured(ctx context.Context, p domain.PaymentEntity) (string, error) {
	event := domain.WebhookPaymentCaptured
	fields := logrus.Fields{"gateway_order_id": p.OrderID, "gateway_payment_id": p.ID}

	order, err := d.orders.GetOrderByGatewayOrderID(ctx, p.OrderID)
	if errors.Is(err, domain.ErrOrderNotFound) {
		return d.inconsistent(event, "order_not_found", fields)
	}
	if err != nil {
		return "", err
	}
	fields["order_id"] = order.ID

	// the capture is recorded even when the order cannot move, so that the
	// money stays traceable
	if err := d.payments.UpsertPayment(ctx, &domain.Payment{
		OrderID:          order.ID,
		GatewayPaymentID: p.ID,
		Status:           domain.PaymentCaptured,
		Amount:           p.Amount,
	}); err != nil {
		return "", err
	}

	paid, err := d.machine.MarkPaid(ctx, order.GatewayOrderID, domain.SourceWebhook)
	if errors.Is(err, domain.ErrInvalidTransition) {
		fields["status"] = order.Status
		return d.inconsistent(event, "invalid_transition", fields)
	}
	if err != nil {
		return "", err
	}

	if _, err := d.tickets.SetPaymentStatusByOrder(ctx, order.ID, domain.TicketPaymentCaptured); err != nil {
		return "", err
	}

	if _, err := d.issuer.IssueForOrder(ctx, paid, p.ID, domain.SourceWebhook); err != nil {
		// not retried inline, the audit task reports paid orders without a ticket
		logrus.WithFields(fields).WithError(err).Error("payment captured but ticket issuance failed, manual follow-up required")
		return d.inconsistent(event, "ticket_issuance", fields)
	}
	return "processed", nil
}

func (d *DefaultDispatcher) handleFailed(ctx context.Context, p domain.PaymentEntity) (string, error) {
	event := domain.WebhookPaymentFailed
	fields := logrus.Fields{"gateway_order_id": p.OrderID, "gateway_payment_id": p.ID}

	order, err := d.orders.GetOrderByGatewayOrderID(ctx, p.OrderID)
	if errors.Is(err, domain.ErrOrderNotFound) {
		return d.inconsistent(event, "order_not_found", fields)
	}
	if err != nil {
		return "", err
	}
	fields["order_id"] = order.ID

	reason := p.ErrorDescription
	if reason == "" {
		reason = p.ErrorCode
	}
	if err := d.payments.UpsertPayment(ctx, &domain.Payment{
		OrderID:          order.ID,
		GatewayPaymentID: p.ID,
		Status:           domain.PaymentFailed,
		Amount:           p.Amount,
		ErrorMessage:     reason,
	}); err != nil {
		return "", err
	}

	_, err = d.machine.MarkFailed(ctx, order.GatewayOrderID, reason, domain.SourceWebhook)
	if errors.Is(err, domain.ErrInvalidTransition) {
		fields["status"] = order.Status
		return d.inconsistent(event, "invalid_transition", fields)
	}
	if err != nil {
		return "", err
	}
	return "processed", nil
}

// handleRefundProcessed settles a refund. The refund row is found by gateway
// refund id, or through the payment's order when the webhook overtook the
// request that is still waiting to store that id.
func (d *DefaultDispatcher) handleRefundProcessed(ctx context.Context, r domain.RefundEntity) (string, error) {
	event := domain.WebhookRefundProcessed
	fields := logrus.Fields{"gateway_refund_id": r.ID, "gateway_payment_id": r.PaymentID}

	refund, err := d.refunds.GetRefundByGatewayID(ctx, r.ID)
	if errors.Is(err, domain.ErrRefundNotFound) {
		refund, err = d.refundForPayment(ctx, r)
		if errors.Is(err, domain.ErrPaymentNotFound) || errors.Is(err, domain.ErrOrderNotFound) {
			return d.inconsistent(event, "payment_not_found", fields)
		}
	}
	if err != nil {
		return "", err
	}
	fields["order_id"] = refund.OrderID
	fields["refund_id"] = refund.ID

	if refund.Status != domain.RefundProcessed {
		if err := d.refunds.MarkProcessed(ctx, refund.ID, r.ID, d.now()); err != nil {
			return "", err
		}
	}

	outcome := "processed"
	if _, err := d.machine.MarkRefunded(ctx, refund.OrderID, domain.SourceWebhook); err != nil {
		if !errors.Is(err, domain.ErrInvalidTransition) {
			return "", err
		}
		outcome, _ = d.inconsistent(event, "invalid_transition", fields)
	}

	if _, err := d.tickets.CancelByOrder(ctx, refund.OrderID); err != nil {
		return "", err
	}
	logrus.WithFields(fields).Info("refund settled")
	return outcome, nil
}

func (d *DefaultDispatcher) refundForPayment(ctx context.Context, r domain.RefundEntity) (*domain.Refund, error) {
	payment, err := d.payments.GetPaymentByGatewayID(ctx, r.PaymentID)
	if err != nil {
		return nil, err
	}

	refund, err := d.refunds.GetRefundByOrderID(ctx, payment.OrderID)
	if err == nil || !errors.Is(err, domain.ErrRefundNotFound) {
		return refund, err
	}

	// refund issued outside this service, e.g. from the gateway dashboard
	order, err := d.orders.GetOrderByID(ctx, payment.OrderID)
	if err != nil {
		return nil, err
	}
	now := d.now()
	refund = &domain.Refund{
		OrderID:         order.ID,
		PaymentID:       payment.ID,
		GatewayRefundID: r.ID,
		Reason:          domain.ReasonOther,
		Amount:          r.Amount,
		Status:          domain.RefundProcessed,
		RequestedBy:     order.UserID,
		ProcessedAt:     &now,
	}
	if err := d.refunds.CreateRefund(ctx, refund); err != nil {
		if errors.Is(err, domain.ErrRefundAlreadyExists) {
			return d.refunds.GetRefundByOrderID(ctx, payment.OrderID)
		}
		return nil, err
	}
	return refund, nil
}

func (d *DefaultDispatcher) inconsistent(event, reason string, fields logrus.Fields) (string, error) {
	if d.metrics != nil {
		d.metrics.RecordInconsistency(event, reason)
	}
	logrus.WithFields(fields).WithFields(logrus.Fields{
		"event":  event,
		"reason": reason,
	}).Warn("webhook reconciliation inconsistency")
	return "inconsistent", nil
}

func (d *DefaultDispatcher) recordEvent(event, outcome string) {
	if d.metrics == nil {
		return
	}
	d.metrics.RecordWebhookEvent(event, outcome)
}
