package razorpay

import (
	"encoding/json"
	"fmt"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
)

const (
	SignatureHeader = "X-Razorpay-Signature"
	EventIDHeader   = "X-Razorpay-Event-Id"
)

// ParseWebhook decodes a verified webhook body.
func ParseWebhook(body []byte) (*domain.WebhookEnvelope, error) {
	var envelope domain.WebhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: malformed webhook body: %v", domain.ErrMissingFields, err)
	}
	if envelope.Event == "" {
		return nil, fmt.Errorf("%w: webhook event kind", domain.ErrMissingFields)
	}
	return &envelope, nil
}
