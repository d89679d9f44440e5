// Package signature checks HMAC-SHA256 signatures produced by the payment gateway.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
)

type Verifier struct {
	keySecret     []byte
	webhookSecret []byte
}

func NewVerifier(keySecret, webhookSecret string) *Verifier {
	return &Verifier{
		keySecret:     []byte(keySecret),
		webhookSecret: []byte(webhookSecret),
	}
}

// VerifyPayment checks the signature the client receives after checkout,
// computed over "order_id|payment_id" with the API key secret.
func (v *Verifier) VerifyPayment(gatewayOrderID, gatewayPaymentID, signature string) error {
	return Verify(v.keySecret, []byte(gatewayOrderID+"|"+gatewayPaymentID), signature)
}

// VerifyWebhook checks the signature header over the raw, unparsed body.
func (v *Verifier) VerifyWebhook(body []byte, signature string) error {
	return Verify(v.webhookSecret, body, signature)
}

func Sign(secret, message []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares candidate byte for byte with the lowercase hex digest.
func Verify(secret, message []byte, candidate string) error {
	if strings.TrimSpace(candidate) == "" {
		return domain.ErrSignatureMissing
	}
	if len(secret) == 0 {
		return domain.ErrSignatureInvalid
	}

	expected := Sign(secret, message)
	if !hmac.Equal([]byte(expected), []byte(candidate)) {
		return domain.ErrSignatureInvalid
	}
	return nil
}
