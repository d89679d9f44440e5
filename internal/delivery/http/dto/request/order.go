package request

import "github.com/shopspring/decimal"

type CreateOrderRequest struct {
	EventID       string          `json:"eventId"`
	CategoryID    string          `json:"categoryId"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	PaymentMethod string          `json:"paymentMethod"`
}

// VerifyPaymentRequest is what the checkout widget hands back after payment.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}
