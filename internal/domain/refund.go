package domain

import "time"

type RefundStatus string

const (
	RefundPending   RefundStatus = "pending"
	RefundProcessed RefundStatus = "processed"
)

type RefundReason string

const (
	ReasonCustomerRequest  RefundReason = "customer_request"
	ReasonEventCancelled   RefundReason = "event_cancelled"
	ReasonDuplicatePayment RefundReason = "duplicate_payment"
	ReasonOther            RefundReason = "other"
)

func (r RefundReason) Valid() bool {
	switch r {
	case ReasonCustomerRequest, ReasonEventCancelled, ReasonDuplicatePayment, ReasonOther:
		return true
	}
	return false
}

type Refund struct {
	ID              string
	OrderID         string
	PaymentID       string
	GatewayRefundID string
	Reason          RefundReason
	Amount          int64
	Status          RefundStatus
	RequestedBy     string
	Notes           *string
	ProcessedAt     *time.Time
	Order           *Order
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
