package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusCreated  OrderStatus = "created"
	StatusPaid     OrderStatus = "paid"
	StatusFailed   OrderStatus = "failed"
	StatusRefunded OrderStatus = "refunded"
)

// orderTransitions lists every legal move. Anything absent is rejected.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusCreated: {StatusPaid, StatusFailed},
	StatusPaid:    {StatusRefunded},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusCreated, StatusPaid, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// TransitionSource records which path applied a status change.
type TransitionSource string

const (
	SourceVerify  TransitionSource = "verify"
	SourceWebhook TransitionSource = "webhook"
	SourceRefund  TransitionSource = "refund"
)

// OrderNotes is what ticket issuance needs later on, captured at checkout.
type OrderNotes struct {
	CategoryID string          `json:"categoryId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

type Order struct {
	ID             string
	UserID         string
	EventID        string
	GatewayOrderID string
	Amount         int64
	Currency       string
	Status         OrderStatus
	PaymentMethod  *string
	Notes          OrderNotes
	Payments       []*Payment
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderStatusChange is one row of the order audit trail.
type OrderStatusChange struct {
	OrderID   string
	From      OrderStatus
	To        OrderStatus
	Source    TransitionSource
	Reason    string
	CreatedAt time.Time
}
