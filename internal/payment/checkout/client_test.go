package checkout

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	paymentdomain "github.com/smallbiznis/zoonova/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "42", r.PostForm.Get("metadata[order_id]"))
		assert.Equal(t, "42", r.PostForm.Get("payment_intent_data[metadata][order_id]"))
		assert.Equal(t, "https://shop.test/ok?order_id=42", r.PostForm.Get("success_url"))
		assert.Equal(t, "Alpha", r.PostForm.Get("line_items[0][price_data][product_data][name]"))
		assert.Equal(t, "1500", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "2", r.PostForm.Get("line_items[0][quantity]"))
		assert.Equal(t, "Frais de port", r.PostForm.Get("line_items[1][price_data][product_data][name]"))
		_, _ = w.Write([]byte(`{"id":"cs_1","url":"https://checkout.stripe.com/c/cs_1"}`))
	}))
	defer srv.Close()

	client := New(Config{SecretKey: "sk_test", BaseURL: srv.URL}, srv.Client())
	session, err := client.CreateCheckoutSession(context.Background(), paymentdomain.CheckoutRequest{
		OrderID:       "42",
		CustomerEmail: "lea@example.com",
		Currency:      "eur",
		SuccessURL:    "https://shop.test/ok",
		CancelURL:     "https://shop.test/ko",
		Lines: []paymentdomain.CheckoutLine{
			{Name: "Alpha", UnitPrice: 1500, Quantity: 2},
			{Name: "Frais de port", UnitPrice: 471, Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/cs_1", session.URL)
}

func TestRetrievePaymentIntentSurfacesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents/pi_missing", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such payment_intent: 'pi_missing'"}}`))
	}))
	defer srv.Close()

	client := New(Config{SecretKey: "sk_test", BaseURL: srv.URL}, srv.Client())
	_, err := client.RetrievePaymentIntent(context.Background(), "pi_missing")
	require.Error(t, err)

	var providerErr *paymentdomain.ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, http.StatusNotFound, providerErr.StatusCode)
	assert.Equal(t, "resource_missing", providerErr.Code)
	assert.Equal(t, "No such payment_intent: 'pi_missing'", providerErr.Message)
}

func TestRetrievePaymentIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Empty(t, r.Header.Get("Idempotency-Key"))
		_, _ = w.Write([]byte(`{"id":"pi_1","status":"succeeded","amount":4676}`))
	}))
	defer srv.Close()

	intent, err := New(Config{SecretKey: "sk_test", BaseURL: srv.URL}, srv.Client()).RetrievePaymentIntent(context.Background(), "pi_1")
	require.NoError(t, err)
	assert.Equal(t, &paymentdomain.PaymentIntent{ID: "pi_1", Status: "succeeded", Amount: 4676}, intent)
}
