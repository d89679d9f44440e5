package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/signature"
	"github.com/LavaJover/shvark-ticket-service/internal/usecase/order"
	"github.com/LavaJover/shvark-ticket-service/internal/usecase/refund"
	"github.com/LavaJover/shvark-ticket-service/internal/usecase/ticket"
	"github.com/LavaJover/shvark-ticket-service/internal/usecase/usecasetest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	keySecret     = "key_secret"
	webhookSecret = "webhook_secret"
)

type flakyPayments struct {
	domain.PaymentRepository
	failures int
}

func (p *flakyPayments) UpsertPayment(ctx context.Context, payment *domain.Payment) error {
	if p.failures > 0 {
		p.failures--
		return errors.New("connection reset")
	}
	return p.PaymentRepository.UpsertPayment(ctx, payment)
}

type fixture struct {
	store      *usecasetest.Store
	gateway    *usecasetest.Gateway
	metrics    *metrics.TicketMetrics
	payments   *flakyPayments
	orders     *order.DefaultOrderUsecase
	refunds    *refund.DefaultRefundUsecase
	dispatcher *DefaultDispatcher
	category   domain.TicketCategory
}

func newFixture(t *testing.T, seats int) *fixture {
	t.Helper()

	store := usecasetest.NewStore()
	gateway := &usecasetest.Gateway{}
	m := metrics.NewTicketMetrics(prometheus.NewRegistry())
	verifier := signature.NewVerifier(keySecret, webhookSecret)
	payments := &flakyPayments{PaymentRepository: store.Payments()}
	issuer := ticket.NewDefaultTicketIssuer(store.Ledger(), store.Tickets(), nil, m)
	orders := order.NewDefaultOrderUsecase(store.Orders(), payments, store.Ledger(), gateway, verifier, issuer, nil, m, "INR")

	return &fixture{
		store:    store,
		gateway:  gateway,
		metrics:  m,
		payments: payments,
		orders:   orders,
		refunds:  refund.NewDefaultRefundUsecase(store.Orders(), payments, store.Refunds(), gateway, nil, m),
		dispatcher: NewDefaultDispatcher(Deps{
			Verifier: verifier,
			Events:   store.WebhookEvents(),
			Machine:  orders,
			Orders:   store.Orders(),
			Payments: payments,
			Tickets:  store.Tickets(),
			Refunds:  store.Refunds(),
			Issuer:   issuer,
			Metrics:  m,
		}),
		category: store.AddCategory("event-1", seats, "200.00"),
	}
}

func (f *fixture) createOrder(t *testing.T, quantity int) *domain.Order {
	t.Helper()
	created, err := f.orders.CreateOrder(context.Background(), "user-1", order.CreateOrderInput{
		EventID:       f.category.EventID,
		CategoryID:    f.category.ID,
		Quantity:      quantity,
		UnitPrice:     f.category.Price,
		TotalPrice:    f.category.Price.Mul(decimal.NewFromInt(int64(quantity))),
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	return created
}

func (f *fixture) deliver(body []byte, eventID string) error {
	sig := signature.Sign([]byte(webhookSecret), body)
	return f.dispatcher.HandleWebhook(context.Background(), body, sig, eventID)
}

func capturedBody(o *domain.Order, paymentID string) []byte {
	return []byte(fmt.Sprintf(
		`{"event":"payment.captured","payload":{"payment":{"entity":{"id":%q,"order_id":%q,"amount":%d,"currency":"INR","status":"captured","method":"upi"}}}}`,
		paymentID, o.GatewayOrderID, o.Amount,
	))
}

func failedBody(o *domain.Order, paymentID string) []byte {
	return []byte(fmt.Sprintf(
		`{"event":"payment.failed","payload":{"payment":{"entity":{"id":%q,"order_id":%q,"amount":%d,"status":"failed","error_code":"BAD_REQUEST_ERROR","error_description":"Payment declined by bank"}}}}`,
		paymentID, o.GatewayOrderID, o.Amount,
	))
}

func refundBody(refundID, paymentID string, amount int64) []byte {
	return []byte(fmt.Sprintf(
		`{"event":"refund.processed","payload":{"refund":{"entity":{"id":%q,"payment_id":%q,"amount":%d,"status":"processed"}}}}`,
		refundID, paymentID, amount,
	))
}

func TestHandleWebhook_PaymentCaptured(t *testing.T) {
	f := newFixture(t, 10)
	o := f.createOrder(t, 2)

	require.NoError(t, f.deliver(capturedBody(o, "pay_1"), "evt_1"))

	assert.Equal(t, domain.StatusPaid, f.store.Order(o.ID).Status)
	payments := f.store.PaymentsFor(o.ID)
	require.Len(t, payments, 1)
	assert.Equal(t, domain.PaymentCaptured, payments[0].Status)

	issued, ok := f.store.Ticket(o.ID)
	require.True(t, ok)
	assert.Equal(t, domain.TicketPaymentCaptured, issued.PaymentStatus)
	assert.Equal(t, "pay_1", issued.GatewayPaymentID)
	assert.Equal(t, 8, f.store.Category(f.category.ID).AvailableSeats)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.WebhookEventsTotal.WithLabelValues("payment.captured", "processed")))
}

func TestHandleWebhook_CapturedReplayIsIdempotent(t *testing.T) {
	f := newFixture(t, 10)
	o := f.createOrder(t, 1)
	body := capturedBody(o, "pay_1")

	// same delivery twice, then a redelivery under a new id
	require.NoError(t, f.deliver(body, ""))
	require.NoError(t, f.deliver(body, ""))
	require.NoError(t, f.deliver(body, "evt_other"))

	assert.Equal(t, domain.StatusPaid, f.store.Order(o.ID).Status)
	assert.Len(t, f.store.History(o.ID), 1)
	assert.Len(t, f.store.PaymentsFor(o.ID), 1)
	assert.Equal(t, 1, f.store.CountTickets())
	assert.Equal(t, 9, f.store.Category(f.category.ID).AvailableSeats)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.WebhookEventsTotal.WithLabelValues("payment.captured", "duplicate")))
}

func TestHandleWebhook_CapturedRedeliveryKeepsRefundedTicket(t *testing.T) {
	f := newFixture(t, 10)
	o := f.createOrder(t, 1)

	require.NoError(t, f.deliver(capturedBody(o, "pay_1"), "evt_1"))
	_, err := f.store.Tickets().CancelByOrder(context.Background(), o.ID)
	require.NoError(t, err)

	require.NoError(t, f.deliver(capturedBody(o, "pay_1"), "evt_2"))

	issued, ok := f.store.Ticket(o.ID)
	require.True(t, ok)
	assert.Equal(t, domain.TicketCancelled, issued.Status)
	assert.Equal(t, domain.TicketPaymentRefunded, issued.PaymentStatus)
	assert.Equal(t, 1, f.store.CountTickets())
}

func TestHandleWebhook_CapturedAfterVerify(t *testing.T) {
	f := newFixture(t, 10)
	o := f.createOrder(t, 1)

	sig := signature.Sign([]byte(keySecret), []byte(o.GatewayOrderID+"|pay_1"))
	verified, err := f.orders.VerifyPayment(context.Background(), "user-1", order.VerifyInput{
		GatewayOrderID:   o.GatewayOrderID,
		GatewayPaymentID: "pay_1",
		Signature:        sig,
	})
	require.NoError(t, err)

	require.NoError(t, f.deliver(capturedBody(o, "pay_1"), "evt_1"))

	issued, ok := f.store.Ticket(o.ID)
	require.True(t, ok)
	assert.Equal(t, verified.Ticket.ID, issued.ID)
	assert.Equal(t, 1, f.store.CountTickets())
	assert.NotEmpty(t, f.store.PaymentsFor(o.ID)[0].GatewaySignature)
}

func TestHandleWebhook_RejectsBadSignature(t *testing.T) {
	f := newFixture(t, 10)
	o := f.createOrder(t, 1)
	body := capturedBody(o, "pay_1")

	err := f.dispatcher.HandleWebhook(context.Background(), body, "deadbeef", "evt_1")
	assert.ErrorIs(t, err, domain.ErrSignatureInvalid)

	err = f.dispatcher.HandleWebhook(context.Background(), body, "", "evt_1")
	assert.ErrorIs(t, err, domain.ErrSignatureMissing)

	assert.Equal(t, domain.StatusCreated, f.store.Order(o.ID).Status)
	assert.Zero(t, f.store.CountTickets())
}

func TestHandleWebhook_MalformedBody(t *testing.T) {
	f := newFixture(t, 10)

	err := f.deliver([]byte(`{"event":`), "evt_1")
	assert.ErrorIs(t, err, domain.ErrMissingFields)
}

func TestHandleWebhook_UnknownEventIgnored(t *testing.T) {
	f := newFixture(t, 10)

	require.NoError(t, f.deliver([]byte(`{"event":"order.paid","payload":{}}`), "evt_1"))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.WebhookEventsTotal.WithLabelValues("order.paid", "ignored")))
}

func TestHandleWebhook_CapturedForUnknownOrder(t *testing.T) {
	f := newFixture(t, 10)
	ghost := &domain.Order{GatewayOrderID: "order_ghost", Amount: 100}

	require.NoError(t, f.deliver(capturedBody(ghost, "pay_1"), "evt_1"))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ReconcileInconsistencies.WithLabelValues("payment.captured", "order_not_found")))
	assert.Zero(t, f.store.CountTickets())
}

func TestHandleWebhook_CapturedButSoldOut(t *testing.T) {
	f := newFixture(t, 1)
	o := f.createOrder(t, 2)

	require.NoError(t, f.deliver(capturedBody(o, "pay_1"), "evt_1"))

	assert.Equal(t, domain.StatusPaid, f.store.Order(o.ID).Status)
	assert.Zero(t, f.store.CountTickets())
	assert.Equal(t, 1, f.store.Category(f.category.ID).AvailableSeats)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ReconcileInconsistencies.WithLabelValues("payment.captured", "ticket_issuance")))
}

func TestHandleWebhook_PaymentFailed(t *testing.T) {
	f := newFixture(t, 10)
	o := f.createOrder(t, 1)

	require.NoError(t, f.deliver(failedBody(o, "pay_1"), "evt_1"))

	assert.Equal(t, domain.StatusFailed, f.store.Order(o.ID).Status)
	payments := f.store.PaymentsFor(o.ID)
	require.Len(t, payments, 1)
	assert.Equal(t, domain.PaymentFailed, payments[0].Status)
	assert.Equal(t, "Payment declined by bank", payments[0].ErrorMessage)

	history := f.store.History(o.ID)
	require.Len(t, history, 1)
	assert.Equal(t, domain.SourceWebhook, history[0].Source)
}

func TestHandleWebhook_FailedAfterCaptureIsInconsistency(t *testing.T) {
	f := newFixture(t, 10)
	o := f.createOrder(t, 1)

	require.NoError(t, f.deliver(capturedBody(o, "pay_1"), "evt_1"))
	require.NoError(t, f.deliver(failedBody(o, "pay_2"), "evt_2"))

	assert.Equal(t, domain.StatusPaid, f.store.Order(o.ID).Status)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ReconcileInconsistencies.WithLabelValues("payment.failed", "invalid_transition")))
}

func TestHandleWebhook_StoreFailureIsRedelivered(t *testing.T) {
	f := newFixture(t, 10)
	o := f.createOrder(t, 1)
	body := capturedBody(o, "pay_1")

	f.payments.failures = 1
	err := f.deliver(body, "evt_1")
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Equal(t, domain.StatusCreated, f.store.Order(o.ID).Status)

	require.NoError(t, f.deliver(body, "evt_1"))
	assert.Equal(t, domain.StatusPaid, f.store.Order(o.ID).Status)
	assert.Equal(t, 1, f.store.CountTickets())
}

func paidWithTicket(t *testing.T, f *fixture) *domain.Order {
	t.Helper()
	o := f.createOrder(t, 2)
	require.NoError(t, f.deliver(capturedBody(o, "pay_"+o.ID[:8]), "evt_cap_"+o.ID))
	_, ok := f.store.Ticket(o.ID)
	require.True(t, ok)
	return o
}

func assertRefundSettled(t *testing.T, f *fixture, o *domain.Order) {
	t.Helper()

	assert.Equal(t, domain.StatusRefunded, f.store.Order(o.ID).Status)

	issued, ok := f.store.Ticket(o.ID)
	require.True(t, ok)
	assert.Equal(t, domain.TicketCancelled, issued.Status)
	assert.Equal(t, domain.TicketPaymentRefunded, issued.PaymentStatus)

	stored, ok := f.store.Refund(o.ID)
	require.True(t, ok)
	assert.Equal(t, domain.RefundProcessed, stored.Status)
	assert.NotEmpty(t, stored.GatewayRefundID)
	assert.NotNil(t, stored.ProcessedAt)
}

func TestRefundProcessed_AfterRequestBookkeeping(t *testing.T) {
	f := newFixture(t, 10)
	o := paidWithTicket(t, f)

	requested, err := f.refunds.RequestRefund(context.Background(), "user-1", refund.RefundInput{
		OrderID: o.ID,
		Reason:  domain.ReasonCustomerRequest,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RefundPending, requested.Status)

	require.NoError(t, f.deliver(refundBody(requested.GatewayRefundID, "pay_"+o.ID[:8], o.Amount), "evt_rfnd"))
	assertRefundSettled(t, f, o)
}

func TestRefundProcessed_BeforeRequestBookkeeping(t *testing.T) {
	f := newFixture(t, 10)
	o := paidWithTicket(t, f)

	// the webhook lands while the refund request still waits on the gateway
	f.gateway.BeforeRefundReply = func(gatewayRefundID string) {
		require.NoError(t, f.deliver(refundBody(gatewayRefundID, "pay_"+o.ID[:8], o.Amount), "evt_rfnd"))
	}

	requested, err := f.refunds.RequestRefund(context.Background(), "user-1", refund.RefundInput{
		OrderID: o.ID,
		Reason:  domain.ReasonCustomerRequest,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RefundProcessed, requested.Status)

	assertRefundSettled(t, f, o)
}

func TestRefundProcessed_WithoutLocalRequest(t *testing.T) {
	f := newFixture(t, 10)
	o := paidWithTicket(t, f)

	require.NoError(t, f.deliver(refundBody("rfnd_dashboard", "pay_"+o.ID[:8], o.Amount), "evt_rfnd"))

	assertRefundSettled(t, f, o)
	stored, _ := f.store.Refund(o.ID)
	assert.Equal(t, "rfnd_dashboard", stored.GatewayRefundID)
	assert.Equal(t, domain.ReasonOther, stored.Reason)
}

func TestRefundProcessed_UnknownPayment(t *testing.T) {
	f := newFixture(t, 10)

	require.NoError(t, f.deliver(refundBody("rfnd_x", "pay_unknown", 100), "evt_rfnd"))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ReconcileInconsistencies.WithLabelValues("refund.processed", "payment_not_found")))
}
