package response

import (
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
)

type RefundResponse struct {
	ID               string         `json:"id"`
	OrderID          string         `json:"order_id"`
	RazorpayRefundID string         `json:"razorpay_refund_id,omitempty"`
	Reason           string         `json:"reason"`
	Amount           int64          `json:"amount"`
	Status           string         `json:"status"`
	Notes            *string        `json:"notes,omitempty"`
	ProcessedAt      *time.Time     `json:"processed_at,omitempty"`
	Order            *OrderResponse `json:"order,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

type RefundEnvelope struct {
	Success bool           `json:"success"`
	Refund  RefundResponse `json:"refund"`
}

func FromRefund(refund *domain.Refund) RefundResponse {
	resp := RefundResponse{
		ID:               refund.ID,
		OrderID:          refund.OrderID,
		RazorpayRefundID: refund.GatewayRefundID,
		Reason:           string(refund.Reason),
		Amount:           refund.Amount,
		Status:           string(refund.Status),
		Notes:            refund.Notes,
		ProcessedAt:      refund.ProcessedAt,
		CreatedAt:        refund.CreatedAt,
	}
	if refund.Order != nil {
		order := FromOrder(refund.Order)
		resp.Order = &order
	}
	return resp
}
