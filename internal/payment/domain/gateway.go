package domain

import (
	"context"
	"fmt"
	"net/http"
)

type CheckoutLine struct {
	Name      string
	UnitPrice int64
	Quantity  int
}

type CheckoutRequest struct {
	OrderID       string
	CustomerEmail string
	Currency      string
	Lines         []CheckoutLine
	SuccessURL    string
	CancelURL     string
}

type CheckoutSession struct {
	ID  string
	URL string
}

type PaymentIntent struct {
	ID     string
	Status string
	Amount int64
}

// Gateway is the outbound side of the payment provider.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	RetrievePaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

// WebhookAdapter authenticates and decodes inbound provider events.
type WebhookAdapter interface {
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*Event, error)
}

// ProviderError carries a message reported by the payment provider.
type ProviderError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("stripe: %s (%s)", e.Message, e.Code)
	}
	return "stripe: " + e.Message
}
