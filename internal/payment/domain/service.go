package domain

import (
	"context"
	"errors"
	"net/http"
	"time"

	orderdomain "github.com/smallbiznis/zoonova/internal/order/domain"
)

type Service interface {
	HandleWebhook(ctx context.Context, payload []byte, headers http.Header) error
	PaymentState(ctx context.Context, orderID string) (State, error)
	CreateCheckoutSession(ctx context.Context, orderID string) (*CheckoutResponse, error)
	VerifyPayment(ctx context.Context, orderID string) (*VerifyResponse, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
}

// Notifier receives post-commit side effects of reconciliation.
type Notifier interface {
	PaymentRecorded(ctx context.Context, payment Payment)
	InvoiceRequested(ctx context.Context, detail orderdomain.Detail)
}

type ListRequest struct {
	OrderID string
	Status  string
}

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

type VerifyResponse struct {
	Paid    bool         `json:"paid"`
	Status  string       `json:"status,omitempty"`
	Message string       `json:"message,omitempty"`
	Order   *VerifyOrder `json:"order,omitempty"`
}

type VerifyOrder struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Total int64  `json:"total"`
}

type Response struct {
	ID                string         `json:"id"`
	OrderID           string         `json:"order_id"`
	PaymentIntentID   string         `json:"payment_intent_id"`
	CheckoutSessionID string         `json:"checkout_session_id"`
	Amount            int64          `json:"amount"`
	Currency          string         `json:"currency"`
	Status            string         `json:"status"`
	Metadata          map[string]any `json:"metadata"`
	WebhookReceived   bool           `json:"webhook_received"`
	WebhookReceivedAt *time.Time     `json:"webhook_received_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

var (
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrEventIgnored     = errors.New("event_ignored")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidOrder     = errors.New("invalid_order")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrAlreadyPaid      = errors.New("order_already_paid")
	ErrNotConfigured    = errors.New("payment_provider_not_configured")
	ErrNotFound         = errors.New("payment_not_found")
)
