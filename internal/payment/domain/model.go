package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Payment mirrors one Stripe payment intent. Rows are keyed by
// payment_intent_id; replays overwrite the same row.
type Payment struct {
	ID                int64          `gorm:"primaryKey"`
	OrderID           int64          `gorm:"not null;index"`
	PaymentIntentID   string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	CheckoutSessionID string         `gorm:"type:varchar(255)"`
	Amount            int64          `gorm:"not null"`
	Currency          string         `gorm:"type:varchar(3);not null;default:'EUR'"`
	Status            string         `gorm:"type:varchar(50);not null"`
	Metadata          datatypes.JSON `gorm:"type:json"`
	WebhookReceived   bool           `gorm:"not null;default:false"`
	WebhookData       datatypes.JSON `gorm:"type:json"`
	WebhookReceivedAt *time.Time     `gorm:"column:webhook_received_at"`
	CreatedAt         time.Time      `gorm:"not null;index"`
	UpdatedAt         time.Time      `gorm:"not null"`
}

func (Payment) TableName() string { return "stripe_payments" }

// State is the payment progress of an order, derived from the order's
// payment-intent reference and its Payment rows.
type State string

const (
	StateAwaitingPayment State = "awaiting_payment"
	StatePaymentRecorded State = "payment_recorded"
	StatePaid            State = "paid"
)

const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentSucceeded  = "payment_intent.succeeded"
	EventPaymentFailed     = "payment_intent.payment_failed"
)

// Event is a verified, parsed provider webhook event.
type Event struct {
	ID                string
	Type              string
	OccurredAt        time.Time
	OrderID           string
	PaymentIntentID   string
	CheckoutSessionID string
	Amount            int64
	Currency          string
	Metadata          map[string]string
	// Object is the raw data.object of the event.
	Object []byte
}
