package domain

import "context"

type GatewayOrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

type GatewayRefundRequest struct {
	PaymentID string
	Amount    int64
	Notes     map[string]string
}

// PaymentGateway is the outbound side of the payment processor.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (string, error)
	IssueRefund(ctx context.Context, req GatewayRefundRequest) (string, error)
}

type PaymentSignatureVerifier interface {
	VerifyPayment(gatewayOrderID, gatewayPaymentID, signature string) error
}

type WebhookSignatureVerifier interface {
	VerifyWebhook(body []byte, signature string) error
}

// IdentityResolver maps a bearer credential to a caller id.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}
