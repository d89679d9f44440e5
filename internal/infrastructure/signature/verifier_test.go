package signature

import (
	"strings"
	"testing"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSign_KnownVector(t *testing.T) {
	// RFC 4231 test case 2
	got := Sign([]byte("Jefe"), []byte("what do ya want for nothing?"))
	assert.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", got)
}

func TestVerifier_VerifyPayment(t *testing.T) {
	v := NewVerifier("key-secret", "webhook-secret")
	sig := Sign([]byte("key-secret"), []byte("order_1|pay_1"))

	assert.NoError(t, v.VerifyPayment("order_1", "pay_1", sig))
	assert.ErrorIs(t, v.VerifyPayment("order_1", "pay_2", sig), domain.ErrSignatureInvalid)
	assert.ErrorIs(t, v.VerifyPayment("order_1", "pay_1", ""), domain.ErrSignatureMissing)

	// the webhook secret must not validate client confirmations
	wrong := Sign([]byte("webhook-secret"), []byte("order_1|pay_1"))
	assert.ErrorIs(t, v.VerifyPayment("order_1", "pay_1", wrong), domain.ErrSignatureInvalid)
}

func TestVerifier_VerifyWebhook(t *testing.T) {
	v := NewVerifier("key-secret", "webhook-secret")
	body := []byte(`{"event":"payment.captured"}`)
	sig := Sign([]byte("webhook-secret"), body)

	assert.NoError(t, v.VerifyWebhook(body, sig))
	assert.ErrorIs(t, v.VerifyWebhook([]byte(`{"event":"payment.failed"}`), sig), domain.ErrSignatureInvalid)
	assert.ErrorIs(t, v.VerifyWebhook(body, "  "), domain.ErrSignatureMissing)
}

func TestVerify_ComparesDigestAsReceived(t *testing.T) {
	secret := []byte("webhook-secret")
	body := []byte(`{"event":"payment.captured"}`)
	sig := Sign(secret, body)

	assert.NoError(t, Verify(secret, body, sig))
	assert.ErrorIs(t, Verify(secret, body, strings.ToUpper(sig)), domain.ErrSignatureInvalid)
	assert.ErrorIs(t, Verify(secret, body, " "+sig), domain.ErrSignatureInvalid)
}

func TestVerify_EmptySecretFailsClosed(t *testing.T) {
	sig := Sign(nil, []byte("msg"))
	assert.ErrorIs(t, Verify(nil, []byte("msg"), sig), domain.ErrSignatureInvalid)
}
