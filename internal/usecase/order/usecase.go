package order

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-ticket-service/internal/usecase"
	"github.com/shopspring/decimal"
)

type OrderUsecase interface {
	CreateOrder(ctx context.Context, userID string, input CreateOrderInput) (*domain.Order, error)
	VerifyPayment(ctx context.Context, callerID string, input VerifyInput) (*VerifyResult, error)

	MarkPaid(ctx context.Context, gatewayOrderID string, source domain.TransitionSource) (*domain.Order, error)
	MarkFailed(ctx context.Context, gatewayOrderID, reason string, source domain.TransitionSource) (*domain.Order, error)
	MarkRefunded(ctx context.Context, orderID string, source domain.TransitionSource) (*domain.Order, error)

	GetOrder(ctx context.Context, callerID, orderID string) (*domain.Order, error)
}

type CreateOrderInput struct {
	EventID       string
	CategoryID    string
	Quantity      int
	UnitPrice     decimal.Decimal
	TotalPrice    decimal.Decimal
	PaymentMethod string
}

type VerifyInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

type VerifyResult struct {
	Order  *domain.Order
	Ticket *domain.Ticket
}

type DefaultOrderUsecase struct {
	orders   domain.OrderRepository
	payments domain.PaymentRepository
	ledger   domain.InventoryLedger
	gateway  domain.PaymentGateway
	verifier domain.PaymentSignatureVerifier
	issuer   domain.TicketIssuer
	emitter  *usecase.EventEmitter
	Metrics  *metrics.TicketMetrics
	currency string
	now      func() time.Time
}

func NewDefaultOrderUsecase(
	orders domain.OrderRepository,
	payments domain.PaymentRepository,
	ledger domain.InventoryLedger,
	gateway domain.PaymentGateway,
	verifier domain.PaymentSignatureVerifier,
	issuer domain.TicketIssuer,
	emitter *usecase.EventEmitter,
	ticketMetrics *metrics.TicketMetrics,
	currency string,
) *DefaultOrderUsecase {
	if currency == "" {
		currency = "INR"
	}
	return &DefaultOrderUsecase{
		orders:   orders,
		payments: payments,
		ledger:   ledger,
		gateway:  gateway,
		verifier: verifier,
		issuer:   issuer,
		emitter:  emitter,
		Metrics:  ticketMetrics,
		currency: currency,
		now:      func() time.Time { return time.Now().UTC() },
	}
}
