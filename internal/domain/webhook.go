package domain

import "time"

const (
	WebhookPaymentCaptured = "payment.captured"
	WebhookPaymentFailed   = "payment.failed"
	WebhookRefundProcessed = "refund.processed"
)

// WebhookEnvelope is the gateway's event wrapper. Only the entities this
// service reacts to are decoded.
type WebhookEnvelope struct {
	Event     string         `json:"event"`
	AccountID string         `json:"account_id,omitempty"`
	CreatedAt int64          `json:"created_at,omitempty"`
	Payload   WebhookPayload `json:"payload"`
}

type WebhookPayload struct {
	Payment *PaymentEnvelope `json:"payment,omitempty"`
	Refund  *RefundEnvelope  `json:"refund,omitempty"`
}

type PaymentEnvelope struct {
	Entity PaymentEntity `json:"entity"`
}

type RefundEnvelope struct {
	Entity RefundEntity `json:"entity"`
}

type PaymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Method           string `json:"method"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

type RefundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// WebhookEvent is the persisted record of a delivery.
type WebhookEvent struct {
	EventID     string
	Kind        string
	Payload     string
	Processed   bool
	Error       string
	ReceivedAt  time.Time
	ProcessedAt *time.Time
}
