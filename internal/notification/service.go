package notification

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/zoonova/internal/clock"
	"github.com/smallbiznis/zoonova/internal/config"
	contactdomain "github.com/smallbiznis/zoonova/internal/contact/domain"
	"github.com/smallbiznis/zoonova/internal/events"
	"github.com/smallbiznis/zoonova/internal/invoice"
	orderdomain "github.com/smallbiznis/zoonova/internal/order/domain"
	paymentdomain "github.com/smallbiznis/zoonova/internal/payment/domain"
	"github.com/smallbiznis/zoonova/internal/providers/email"
	"github.com/smallbiznis/zoonova/internal/providers/pdf"
	"github.com/smallbiznis/zoonova/internal/providers/slack"
	"github.com/smallbiznis/zoonova/internal/shipping"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Config     config.Config
	Clock      clock.Clock
	Dispatcher *Dispatcher
	Email      email.Provider
	Slack      slack.Provider
	Events     events.Publisher
	PDF        pdf.Provider
}

// Service turns domain notifications into queued emails, Slack posts and
// published events. Every method returns immediately.
type Service struct {
	log        *zap.Logger
	clock      clock.Clock
	dispatcher *Dispatcher
	email      email.Provider
	slack      slack.Provider
	events     events.Publisher
	pdf        pdf.Provider

	admins       []string
	slackChannel string
	slackEnabled bool
}

func New(p Params) *Service {
	return &Service{
		log:          p.Log.Named("notification.service"),
		clock:        p.Clock,
		dispatcher:   p.Dispatcher,
		email:        p.Email,
		slack:        p.Slack,
		events:       p.Events,
		pdf:          p.PDF,
		admins:       p.Config.Email.AdminEmails,
		slackChannel: p.Config.Slack.Channel,
		slackEnabled: p.Config.Slack.WebhookURL != "",
	}
}

var (
	_ orderdomain.Notifier   = (*Service)(nil)
	_ paymentdomain.Notifier = (*Service)(nil)
	_ contactdomain.Notifier = (*Service)(nil)
)

type orderEvent struct {
	OrderID  string `json:"order_id"`
	Email    string `json:"email"`
	Country  string `json:"country"`
	Books    int    `json:"books"`
	Subtotal int64  `json:"subtotal"`
	Shipping int64  `json:"shipping_cost"`
	Total    int64  `json:"total"`
	Status   string `json:"status"`
	Previous string `json:"previous_status,omitempty"`
	Tracking string `json:"tracking_number,omitempty"`
}

type paymentEvent struct {
	PaymentID       string `json:"payment_id"`
	OrderID         string `json:"order_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
}

type contactEvent struct {
	MessageID string `json:"message_id"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
}

func (s *Service) OrderPlaced(_ context.Context, detail orderdomain.Detail) {
	ref := orderRef(detail.Order.ID)

	s.dispatcher.Enqueue(Job{Name: "order_confirmation", Run: func(ctx context.Context) error {
		msg := orderConfirmation(detail)
		doc, err := invoice.Render(ctx, s.pdf, detail)
		if err != nil {
			s.log.Warn("invoice render failed, confirmation sent without attachment",
				zap.String("order_id", ref), zap.Error(err))
		} else {
			msg.Attachments = append(msg.Attachments, pdfAttachment(doc))
		}
		return s.email.Send(ctx, msg)
	}})

	if len(s.admins) > 0 {
		s.dispatcher.Enqueue(Job{Name: "order_admin", Run: func(ctx context.Context) error {
			return s.email.Send(ctx, adminNewOrder(detail, s.admins))
		}})
	}
	if s.slackEnabled {
		s.dispatcher.Enqueue(Job{Name: "order_slack", Run: func(ctx context.Context) error {
			return s.slack.PostMessage(ctx, s.slackChannel, slackNewOrder(detail))
		}})
	}

	s.publish(events.TypeOrderCreated, ref, newOrderEvent(detail, ""))
}

func (s *Service) OrderStatusChanged(_ context.Context, detail orderdomain.Detail, change orderdomain.StatusChange) {
	if msg, ok := statusUpdate(detail, change.Email); ok {
		s.dispatcher.Enqueue(Job{Name: "order_" + string(change.Email), Run: func(ctx context.Context) error {
			return s.email.Send(ctx, msg)
		}})
	}
	if change.Previous != change.Current {
		s.publish(events.TypeOrderStatusChanged, orderRef(detail.Order.ID), newOrderEvent(detail, change.Previous))
	}
}

func (s *Service) PaymentRecorded(_ context.Context, p paymentdomain.Payment) {
	s.publish(events.TypePaymentRecorded, orderRef(p.OrderID), paymentEvent{
		PaymentID:       snowflake.ID(p.ID).String(),
		OrderID:         orderRef(p.OrderID),
		PaymentIntentID: p.PaymentIntentID,
		Amount:          p.Amount,
		Currency:        p.Currency,
		Status:          p.Status,
	})
}

func (s *Service) InvoiceRequested(_ context.Context, detail orderdomain.Detail) {
	s.dispatcher.Enqueue(Job{Name: "invoice_email", Run: func(ctx context.Context) error {
		doc, err := invoice.Render(ctx, s.pdf, detail)
		if err != nil {
			return err
		}
		msg := invoiceEmail(detail)
		msg.Attachments = []email.Attachment{pdfAttachment(doc)}
		if err := s.email.Send(ctx, msg); err != nil {
			return err
		}
		s.log.Info("invoice sent", zap.String("order_id", orderRef(detail.Order.ID)))
		return nil
	}})
}

func (s *Service) MessageReceived(_ context.Context, msg contactdomain.Message) {
	if len(s.admins) > 0 {
		s.dispatcher.Enqueue(Job{Name: "contact_admin", Run: func(ctx context.Context) error {
			return s.email.Send(ctx, adminContact(msg, s.admins))
		}})
	}
	s.dispatcher.Enqueue(Job{Name: "contact_ack", Run: func(ctx context.Context) error {
		return s.email.Send(ctx, contactAcknowledgement(msg))
	}})

	id := snowflake.ID(msg.ID).String()
	s.publish(events.TypeContactReceived, id, contactEvent{
		MessageID: id,
		Email:     msg.Email,
		Subject:   msg.Subject,
	})
}

func (s *Service) publish(eventType, key string, data any) {
	evt := events.Event{
		Type:       eventType,
		Key:        key,
		OccurredAt: s.clock.Now().UTC().Truncate(time.Millisecond),
		Data:       data,
	}
	s.dispatcher.Enqueue(Job{Name: "event_" + eventType, Run: func(ctx context.Context) error {
		return s.events.Publish(ctx, evt)
	}})
}

func newOrderEvent(detail orderdomain.Detail, previous orderdomain.Status) orderEvent {
	o := detail.Order
	evt := orderEvent{
		OrderID:  orderRef(o.ID),
		Email:    o.Email,
		Country:  detail.Country.Code,
		Books:    shipping.CountBooks(detail.Items),
		Subtotal: o.Subtotal,
		Shipping: o.ShippingCost,
		Total:    o.Total,
		Status:   string(o.Status),
		Previous: string(previous),
	}
	if o.TrackingNumber != nil {
		evt.Tracking = *o.TrackingNumber
	}
	return evt
}

func pdfAttachment(doc *invoice.Document) email.Attachment {
	return email.Attachment{
		Filename:    doc.Filename,
		ContentType: "application/pdf",
		Content:     doc.Content,
	}
}
