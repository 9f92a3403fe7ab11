package stripe

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	paymentdomain "github.com/smallbiznis/zoonova/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "whsec_test"

func signedHeaders(secret string, payload []byte, at time.Time) http.Header {
	h := http.Header{}
	h.Set("Stripe-Signature", SignatureHeader(secret, payload, at))
	return h
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"id":"evt_123","type":"payment_intent.succeeded","data":{"object":{}}}`)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	adapter := New(Config{WebhookSecret: secret, Tolerance: 5 * time.Minute})
	adapter.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, adapter.Verify(ctx, payload, signedHeaders(secret, payload, now)))

	assert.ErrorIs(t, adapter.Verify(ctx, payload, signedHeaders("wrong", payload, now)), paymentdomain.ErrInvalidSignature)
	assert.ErrorIs(t, adapter.Verify(ctx, []byte(`{"id":"evt_other"}`), signedHeaders(secret, payload, now)), paymentdomain.ErrInvalidSignature)
	assert.ErrorIs(t, adapter.Verify(ctx, payload, http.Header{}), paymentdomain.ErrInvalidSignature)
	assert.ErrorIs(t, adapter.Verify(ctx, payload, signedHeaders(secret, payload, now.Add(-10*time.Minute))), paymentdomain.ErrInvalidSignature)
}

func TestVerifyAcceptsAnyMatchingV1(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()
	adapter := New(Config{WebhookSecret: secret})

	h := http.Header{}
	raw := strconv.FormatInt(now.Unix(), 10)
	h.Set("Stripe-Signature", "t="+raw+",v1=deadbeef,v1="+Sign(secret, raw, payload))
	assert.NoError(t, adapter.Verify(context.Background(), payload, h))
}

func TestVerifyToleranceDisabled(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	adapter := New(Config{WebhookSecret: secret})
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, adapter.Verify(context.Background(), payload, signedHeaders(secret, payload, old)))
}

func TestVerifyWithoutSecretRejects(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	adapter := New(Config{})
	assert.ErrorIs(t, adapter.Verify(context.Background(), payload, signedHeaders("", payload, time.Now())), paymentdomain.ErrInvalidSignature)
}

func TestParseEvents(t *testing.T) {
	adapter := New(Config{WebhookSecret: secret})
	received := time.Date(2024, 6, 2, 8, 30, 0, 0, time.UTC)
	adapter.now = func() time.Time { return received }
	ctx := context.Background()

	evt, err := adapter.Parse(ctx, []byte(`{
		"id": "evt_cs",
		"type": "checkout.session.completed",
		"created": 1717243200,
		"data": {"object": {
			"id": "cs_1",
			"payment_intent": "pi_1",
			"amount_total": 4676,
			"currency": "eur",
			"metadata": {"order_id": "1790000000000000000"}
		}}
	}`))
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.EventCheckoutCompleted, evt.Type)
	assert.Equal(t, "1790000000000000000", evt.OrderID)
	assert.Equal(t, "pi_1", evt.PaymentIntentID)
	assert.Equal(t, "cs_1", evt.CheckoutSessionID)
	assert.Equal(t, int64(4676), evt.Amount)
	assert.Equal(t, "EUR", evt.Currency)
	assert.Equal(t, time.Unix(1717243200, 0).UTC(), evt.OccurredAt)

	evt, err = adapter.Parse(ctx, []byte(`{
		"id": "evt_pi",
		"type": "payment_intent.payment_failed",
		"data": {"object": {"id": "pi_2", "amount": 1000, "currency": "eur", "metadata": {"order_id": 42}}}
	}`))
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.EventPaymentFailed, evt.Type)
	assert.Equal(t, "42", evt.OrderID)
	assert.Equal(t, "pi_2", evt.PaymentIntentID)
	assert.Equal(t, received, evt.OccurredAt)
	assert.JSONEq(t, `{"id": "pi_2", "amount": 1000, "currency": "eur", "metadata": {"order_id": 42}}`, string(evt.Object))
}

func TestParseRejectsAndIgnores(t *testing.T) {
	adapter := New(Config{WebhookSecret: secret})
	ctx := context.Background()

	_, err := adapter.Parse(ctx, []byte(`not json`))
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidPayload)

	_, err = adapter.Parse(ctx, []byte(`{"type":"payment_intent.succeeded"}`))
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidPayload)

	_, err = adapter.Parse(ctx, []byte(`{"id":"evt_1","type":"charge.refunded","data":{"object":{}}}`))
	assert.ErrorIs(t, err, paymentdomain.ErrEventIgnored)
}
