package request

type CreateRefundRequest struct {
	OrderID string  `json:"orderId"`
	Reason  string  `json:"reason"`
	Notes   *string `json:"notes"`
}
