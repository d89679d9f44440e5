package refund

import (
	"context"
	"testing"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-ticket-service/internal/usecase/usecasetest"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *usecasetest.Store
	gateway *usecasetest.Gateway
	metrics *metrics.TicketMetrics
	uc      *DefaultRefundUsecase
}

func newFixture() *fixture {
	store := usecasetest.NewStore()
	gateway := &usecasetest.Gateway{}
	m := metrics.NewTicketMetrics(prometheus.NewRegistry())
	return &fixture{
		store:   store,
		gateway: gateway,
		metrics: m,
		uc:      NewDefaultRefundUsecase(store.Orders(), store.Payments(), store.Refunds(), gateway, nil, m),
	}
}

func (f *fixture) order(t *testing.T, status domain.OrderStatus, withPayment bool) domain.Order {
	t.Helper()
	order := domain.Order{
		ID:             uuid.NewString(),
		UserID:         "user-1",
		EventID:        "event-1",
		GatewayOrderID: "order_" + uuid.NewString()[:8],
		Amount:         50000,
		Currency:       "INR",
		Status:         status,
	}
	f.store.PutOrder(order)
	if withPayment {
		require.NoError(t, f.store.Payments().UpsertPayment(context.Background(), &domain.Payment{
			OrderID:          order.ID,
			GatewayPaymentID: "pay_" + order.ID[:8],
			Status:           domain.PaymentCaptured,
			Amount:           order.Amount,
		}))
	}
	return order
}

func TestRequestRefund(t *testing.T) {
	f := newFixture()
	order := f.order(t, domain.StatusPaid, true)
	notes := "cannot attend"

	refund, err := f.uc.RequestRefund(context.Background(), "user-1", RefundInput{
		OrderID: order.ID,
		Reason:  domain.ReasonCustomerRequest,
		Notes:   &notes,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RefundPending, refund.Status)
	assert.Equal(t, "rfnd_gw_1", refund.GatewayRefundID)
	assert.Equal(t, order.Amount, refund.Amount)
	assert.Equal(t, "user-1", refund.RequestedBy)

	require.Len(t, f.gateway.RefundRequests, 1)
	assert.Equal(t, "pay_"+order.ID[:8], f.gateway.RefundRequests[0].PaymentID)
	assert.Equal(t, order.Amount, f.gateway.RefundRequests[0].Amount)

	// the order only moves when the gateway confirms
	assert.Equal(t, domain.StatusPaid, f.store.Order(order.ID).Status)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RefundsRequestedTotal.WithLabelValues("customer_request", "requested")))
}

func TestRequestRefund_SecondRequestNeverReachesGateway(t *testing.T) {
	f := newFixture()
	order := f.order(t, domain.StatusPaid, true)
	input := RefundInput{OrderID: order.ID, Reason: domain.ReasonEventCancelled}

	_, err := f.uc.RequestRefund(context.Background(), "user-1", input)
	require.NoError(t, err)

	_, err = f.uc.RequestRefund(context.Background(), "user-1", input)
	assert.ErrorIs(t, err, domain.ErrRefundAlreadyExists)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Equal(t, 1, f.gateway.RefundCalls())
}

func TestRequestRefund_PreconditionOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	paidNoPayment := f.order(t, domain.StatusPaid, false)
	createdNoPayment := f.order(t, domain.StatusCreated, false)
	refunded := f.order(t, domain.StatusPaid, true)
	_, err := f.uc.RequestRefund(ctx, "user-1", RefundInput{OrderID: refunded.ID, Reason: domain.ReasonOther})
	require.NoError(t, err)
	f.gateway.RefundRequests = nil

	tests := []struct {
		name   string
		caller string
		input  RefundInput
		want   error
	}{
		{"invalid reason wins over missing order", "user-1", RefundInput{OrderID: "missing", Reason: "changed_mind"}, domain.ErrInvalidRefundReason},
		{"missing order", "user-1", RefundInput{OrderID: "missing", Reason: domain.ReasonOther}, domain.ErrOrderNotFound},
		{"someone else's order", "user-2", RefundInput{OrderID: refunded.ID, Reason: domain.ReasonOther}, domain.ErrOrderNotFound},
		{"not eligible before payment lookup", "user-1", RefundInput{OrderID: createdNoPayment.ID, Reason: domain.ReasonOther}, domain.ErrRefundNotEligible},
		{"already requested", "user-1", RefundInput{OrderID: refunded.ID, Reason: domain.ReasonOther}, domain.ErrRefundAlreadyExists},
		{"payment not found", "user-1", RefundInput{OrderID: paidNoPayment.ID, Reason: domain.ReasonOther}, domain.ErrPaymentNotFound},
		{"missing order id", "user-1", RefundInput{Reason: domain.ReasonOther}, domain.ErrMissingFields},
		{"no caller", "", RefundInput{OrderID: refunded.ID, Reason: domain.ReasonOther}, domain.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.RequestRefund(ctx, tt.caller, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, f.gateway.RefundCalls())
}

func TestRequestRefund_GatewayFailureReleasesReservation(t *testing.T) {
	f := newFixture()
	order := f.order(t, domain.StatusPaid, true)
	input := RefundInput{OrderID: order.ID, Reason: domain.ReasonCustomerRequest}

	f.gateway.IssueRefundErr = &domain.GatewayError{Operation: "issue_refund", StatusCode: 400, Description: "The amount is invalid"}
	_, err := f.uc.RequestRefund(context.Background(), "user-1", input)
	require.Error(t, err)
	assert.Equal(t, domain.KindUpstream, domain.KindOf(err))

	_, reserved := f.store.Refund(order.ID)
	assert.False(t, reserved)

	f.gateway.IssueRefundErr = nil
	_, err = f.uc.RequestRefund(context.Background(), "user-1", input)
	assert.NoError(t, err)
}

func TestGetRefund(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order := f.order(t, domain.StatusPaid, true)

	refund, err := f.uc.RequestRefund(ctx, "user-1", RefundInput{OrderID: order.ID, Reason: domain.ReasonOther})
	require.NoError(t, err)

	loaded, err := f.uc.GetRefund(ctx, "user-1", refund.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Order)
	assert.Equal(t, order.ID, loaded.Order.ID)

	_, err = f.uc.GetRefund(ctx, "user-2", refund.ID)
	assert.ErrorIs(t, err, domain.ErrRefundNotFound)

	_, err = f.uc.GetRefund(ctx, "", refund.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
