package domain

import (
	"context"
	"time"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByID(ctx context.Context, orderID string) (*Order, error)
	GetOrderByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Order, error)
	GetOrderWithPayments(ctx context.Context, orderID string) (*Order, error)
	// CompareAndSetStatus moves the order only if it is still in from.
	// It reports false when another writer got there first.
	CompareAndSetStatus(ctx context.Context, change OrderStatusChange) (bool, error)
	FindPaidOrdersWithoutTicket(ctx context.Context, olderThan time.Time, limit int) ([]*Order, error)
}

type PaymentRepository interface {
	// UpsertPayment is keyed by the gateway payment id.
	UpsertPayment(ctx context.Context, payment *Payment) error
	GetCapturedPayment(ctx context.Context, orderID string) (*Payment, error)
	GetPaymentByGatewayID(ctx context.Context, gatewayPaymentID string) (*Payment, error)
}

type InventoryLedger interface {
	GetCategory(ctx context.Context, categoryID string) (*TicketCategory, error)
	// Allocate decrements seats and inserts the ticket as one unit.
	Allocate(ctx context.Context, req AllocationRequest) (*Allocation, error)
}

type TicketRepository interface {
	GetTicketByOrderID(ctx context.Context, orderID string) (*Ticket, error)
	SetPaymentStatusByOrder(ctx context.Context, orderID string, status TicketPaymentStatus) (int64, error)
	CancelByOrder(ctx context.Context, orderID string) (int64, error)
}

type RefundRepository interface {
	// CreateRefund fails with ErrRefundAlreadyExists when the order has one.
	CreateRefund(ctx context.Context, refund *Refund) error
	GetRefundByOrderID(ctx context.Context, orderID string) (*Refund, error)
	GetRefundByGatewayID(ctx context.Context, gatewayRefundID string) (*Refund, error)
	GetRefundForRequester(ctx context.Context, refundID, requesterID string) (*Refund, error)
	SetGatewayRefundID(ctx context.Context, refundID, gatewayRefundID string) error
	MarkProcessed(ctx context.Context, refundID, gatewayRefundID string, at time.Time) error
	DeleteRefund(ctx context.Context, refundID string) error
}

type WebhookEventRepository interface {
	// RecordEvent stores a delivery and reports whether it was already processed.
	RecordEvent(ctx context.Context, event *WebhookEvent) (bool, error)
	MarkProcessed(ctx context.Context, eventID string, processErr error) error
}
