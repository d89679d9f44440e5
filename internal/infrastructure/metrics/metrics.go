package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TicketMetrics holds all counters of the order/ticket pipeline.
type TicketMetrics struct {
	OrdersCreatedTotal       *prometheus.CounterVec
	OrdersCreatedAmountTotal *prometheus.CounterVec
	OrderTransitionsTotal    *prometheus.CounterVec
	OrderTransitionRejected  *prometheus.CounterVec

	TicketsIssuedTotal      *prometheus.CounterVec
	SeatsAllocatedTotal     *prometheus.CounterVec
	AllocationFailuresTotal *prometheus.CounterVec
	PaidOrdersWithoutTicket prometheus.Gauge

	WebhookEventsTotal       *prometheus.CounterVec
	ReconcileInconsistencies *prometheus.CounterVec
	RefundsRequestedTotal    *prometheus.CounterVec
	GatewayRequestDuration   *prometheus.HistogramVec
	RateLimitedRequestsTotal *prometheus.CounterVec
}

func NewTicketMetrics(reg prometheus.Registerer) *TicketMetrics {
	factory := promauto.With(reg)

	return &TicketMetrics{
		OrdersCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_orders_created_total",
				Help: "Orders created after the gateway minted an order",
			},
			[]string{"currency"},
		),
		OrdersCreatedAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_orders_created_amount_minor_total",
				Help: "Sum of created order amounts in minor units",
			},
			[]string{"currency"},
		),
		OrderTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_order_transitions_total",
				Help: "Applied order status transitions",
			},
			[]string{"from", "to", "source"},
		),
		OrderTransitionRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_order_transitions_rejected_total",
				Help: "Order status transitions refused by the state machine",
			},
			[]string{"from", "to", "source"},
		),
		TicketsIssuedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_tickets_issued_total",
				Help: "Tickets issued",
			},
			[]string{"source"},
		),
		SeatsAllocatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_seats_allocated_total",
				Help: "Seats taken from categories",
			},
			[]string{"event_id"},
		),
		AllocationFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_allocation_failures_total",
				Help: "Ticket issuances that failed after payment",
			},
			[]string{"reason"},
		),
		PaidOrdersWithoutTicket: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ticket_paid_orders_without_ticket",
				Help: "Paid orders found without a ticket by the last audit",
			},
		),
		WebhookEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_webhook_events_total",
				Help: "Gateway webhook deliveries by kind and outcome",
			},
			[]string{"event", "outcome"},
		),
		ReconcileInconsistencies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_reconcile_inconsistencies_total",
				Help: "Webhook events that did not match stored state",
			},
			[]string{"event", "reason"},
		),
		RefundsRequestedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_refunds_requested_total",
				Help: "Refund requests by outcome",
			},
			[]string{"reason", "outcome"},
		),
		GatewayRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ticket_gateway_request_duration_seconds",
				Help:    "Latency of payment gateway calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "outcome"},
		),
		RateLimitedRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_rate_limited_requests_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"scope"},
		),
	}
}

func (m *TicketMetrics) RecordOrderCreated(currency string, amountMinor int64) {
	m.OrdersCreatedTotal.WithLabelValues(currency).Inc()
	m.OrdersCreatedAmountTotal.WithLabelValues(currency).Add(float64(amountMinor))
}

func (m *TicketMetrics) RecordTransition(from, to, source string) {
	m.OrderTransitionsTotal.WithLabelValues(from, to, source).Inc()
}

func (m *TicketMetrics) RecordTransitionRejected(from, to, source string) {
	m.OrderTransitionRejected.WithLabelValues(from, to, source).Inc()
}

func (m *TicketMetrics) RecordTicketIssued(source, eventID string, seats int) {
	m.TicketsIssuedTotal.WithLabelValues(source).Inc()
	m.SeatsAllocatedTotal.WithLabelValues(eventID).Add(float64(seats))
}

func (m *TicketMetrics) RecordAllocationFailure(reason string) {
	m.AllocationFailuresTotal.WithLabelValues(reason).Inc()
}

func (m *TicketMetrics) SetPaidOrdersWithoutTicket(n int) {
	m.PaidOrdersWithoutTicket.Set(float64(n))
}

func (m *TicketMetrics) RecordWebhookEvent(event, outcome string) {
	m.WebhookEventsTotal.WithLabelValues(event, outcome).Inc()
}

func (m *TicketMetrics) RecordInconsistency(event, reason string) {
	m.ReconcileInconsistencies.WithLabelValues(event, reason).Inc()
}

func (m *TicketMetrics) RecordRefundRequested(reason, outcome string) {
	m.RefundsRequestedTotal.WithLabelValues(reason, outcome).Inc()
}

func (m *TicketMetrics) RecordRateLimited(scope string) {
	m.RateLimitedRequestsTotal.WithLabelValues(scope).Inc()
}

// ObserveGatewayCall satisfies the gateway client's observer.
func (m *TicketMetrics) ObserveGatewayCall(operation, outcome string, duration time.Duration) {
	m.GatewayRequestDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}
