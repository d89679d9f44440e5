package response

import (
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/shopspring/decimal"
)

type PaymentResponse struct {
	ID                string    `json:"id"`
	RazorpayPaymentID string    `json:"razorpay_payment_id"`
	Status            string    `json:"status"`
	Amount            int64     `json:"amount"`
	ErrorMessage      string    `json:"error_message,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type OrderResponse struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	EventID         string            `json:"event_id"`
	RazorpayOrderID string            `json:"razorpay_order_id"`
	Amount          int64             `json:"amount"`
	Currency        string            `json:"currency"`
	Status          string            `json:"status"`
	PaymentMethod   *string           `json:"payment_method,omitempty"`
	Notes           domain.OrderNotes `json:"notes"`
	Payments        []PaymentResponse `json:"payments,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type TicketResponse struct {
	ID            string          `json:"id"`
	TicketNumber  string          `json:"ticket_number"`
	EventID       string          `json:"event_id"`
	CategoryID    string          `json:"category_id"`
	Quantity      int             `json:"quantity"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
}

type CreateOrderResponse struct {
	Success bool          `json:"success"`
	Order   OrderResponse `json:"order"`
}

type VerifyPaymentResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Order   OrderResponse   `json:"order"`
	Ticket  *TicketResponse `json:"ticket"`
}

type GetOrderResponse struct {
	Success bool          `json:"success"`
	Order   OrderResponse `json:"order"`
}

func FromOrder(order *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:              order.ID,
		UserID:          order.UserID,
		EventID:         order.EventID,
		RazorpayOrderID: order.GatewayOrderID,
		Amount:          order.Amount,
		Currency:        order.Currency,
		Status:          string(order.Status),
		PaymentMethod:   order.PaymentMethod,
		Notes:           order.Notes,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	for _, p := range order.Payments {
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID:                p.ID,
			RazorpayPaymentID: p.GatewayPaymentID,
			Status:            string(p.Status),
			Amount:            p.Amount,
			ErrorMessage:      p.ErrorMessage,
			CreatedAt:         p.CreatedAt,
		})
	}
	return resp
}

func FromTicket(ticket *domain.Ticket) *TicketResponse {
	if ticket == nil {
		return nil
	}
	return &TicketResponse{
		ID:            ticket.ID,
		TicketNumber:  ticket.TicketNumber,
		EventID:       ticket.EventID,
		CategoryID:    ticket.CategoryID,
		Quantity:      ticket.Quantity,
		TotalPrice:    ticket.TotalPrice,
		Status:        string(ticket.Status),
		PaymentStatus: string(ticket.PaymentStatus),
	}
}
