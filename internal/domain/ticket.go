package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type TicketStatus string

const (
	TicketConfirmed TicketStatus = "confirmed"
	TicketCancelled TicketStatus = "cancelled"
)

type TicketPaymentStatus string

const (
	TicketPaymentPending  TicketPaymentStatus = "pending"
	TicketPaymentCaptured TicketPaymentStatus = "captured"
	TicketPaymentRefunded TicketPaymentStatus = "refunded"
)

type Ticket struct {
	ID               string
	UserID           string
	EventID          string
	CategoryID       string
	TicketNumber     string
	Quantity         int
	UnitPrice        decimal.Decimal
	TotalPrice       decimal.Decimal
	Status           TicketStatus
	PaymentStatus    TicketPaymentStatus
	OrderID          string
	GatewayPaymentID string
	PurchasedAt      time.Time
}

type TicketCategory struct {
	ID             string
	EventID        string
	Name           string
	Price          decimal.Decimal
	TotalSeats     int
	AvailableSeats int
	SortOrder      int
}

// AllocationRequest describes one seat decrement plus the ticket it pays for.
type AllocationRequest struct {
	OrderID          string
	UserID           string
	EventID          string
	CategoryID       string
	Quantity         int
	UnitPrice        decimal.Decimal
	GatewayPaymentID string
	PaymentStatus    TicketPaymentStatus
}

type Allocation struct {
	Ticket         *Ticket
	RemainingSeats int
}

// TicketIssuer turns a paid order into its single ticket group.
type TicketIssuer interface {
	IssueForOrder(ctx context.Context, order *Order, gatewayPaymentID string, source TransitionSource) (*Ticket, error)
}
