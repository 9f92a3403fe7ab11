// Package events publishes domain events for downstream consumers.
package events

import (
	"context"
	"time"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
	TypePaymentRecorded    = "payment.recorded"
	TypeContactReceived    = "contact.received"
)

type Event struct {
	Type       string
	Key        string
	OccurredAt time.Time
	Data       any
}

// Publisher delivers events. Publish blocks until the broker acknowledges or
// ctx is done.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
