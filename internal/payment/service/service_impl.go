package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/zoonova/internal/clock"
	"github.com/smallbiznis/zoonova/internal/config"
	"github.com/smallbiznis/zoonova/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/zoonova/internal/order/domain"
	"github.com/smallbiznis/zoonova/internal/payment/domain"
	"github.com/smallbiznis/zoonova/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	lockTTL  = 30 * time.Second
	lockWait = 5 * time.Second

	shippingLineName = "Frais de port"
	defaultCurrency  = "EUR"
)

// errOrderMissing marks events that reference an order we do not have.
var errOrderMissing = errors.New("order_missing")

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Config   config.Config
	Repo     domain.Repository
	Orders   orderdomain.Repository
	OrderSvc orderdomain.Service
	Webhooks domain.WebhookAdapter
	Gateway  domain.Gateway
	Notifier domain.Notifier
	Locker   *ratelimit.Locker `optional:"true"`
	Metrics  *metrics.Metrics  `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	stripe   config.StripeConfig
	repo     domain.Repository
	orders   orderdomain.Repository
	orderSvc orderdomain.Service
	webhooks domain.WebhookAdapter
	gateway  domain.Gateway
	notifier domain.Notifier
	locker   *ratelimit.Locker
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("payment.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		stripe:   p.Config.Stripe,
		repo:     p.Repo,
		orders:   p.Orders,
		orderSvc: p.OrderSvc,
		webhooks: p.Webhooks,
		gateway:  p.Gateway,
		notifier: p.Notifier,
		locker:   p.Locker,
		metrics:  p.Metrics,
	}
}

// HandleWebhook verifies, parses and applies one provider event. Only
// ErrInvalidSignature, ErrInvalidPayload and ErrEventIgnored are returned;
// processing failures are logged and swallowed so the provider does not
// retry events that cannot succeed.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, headers http.Header) error {
	if err := s.webhooks.Verify(ctx, payload, headers); err != nil {
		s.metrics.RecordWebhookRejected(ctx, "signature")
		return domain.ErrInvalidSignature
	}

	evt, err := s.webhooks.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, domain.ErrEventIgnored) {
			s.metrics.RecordPaymentEvent(ctx, "other", "ignored")
			return domain.ErrEventIgnored
		}
		s.metrics.RecordWebhookRejected(ctx, "payload")
		return domain.ErrInvalidPayload
	}

	log := s.log.With(
		zap.String("event_id", evt.ID),
		zap.String("event_type", evt.Type),
		zap.String("payment_intent_id", evt.PaymentIntentID),
		zap.String("order_id", evt.OrderID),
	)

	outcome := "processed"
	if err := s.apply(ctx, log, evt, payload); err != nil {
		outcome = "dropped"
		switch {
		case errors.Is(err, errOrderMissing) && evt.Type == domain.EventPaymentFailed:
			log.Debug("failed intent references unknown order")
		case errors.Is(err, errOrderMissing):
			log.Warn("webhook references unknown order")
		default:
			log.Error("webhook processing failed", zap.Error(err))
		}
	}
	s.metrics.RecordPaymentEvent(ctx, evt.Type, outcome)
	return nil
}

func (s *Service) apply(ctx context.Context, log *zap.Logger, evt *domain.Event, payload []byte) error {
	if evt.OrderID == "" {
		if evt.Type != domain.EventPaymentFailed {
			log.Warn("webhook event without order_id")
		}
		return nil
	}
	orderID, err := snowflake.ParseString(evt.OrderID)
	if err != nil || orderID.Int64() <= 0 {
		log.Warn("webhook event with malformed order_id")
		return nil
	}
	if evt.PaymentIntentID == "" {
		log.Warn("webhook event without payment intent")
		return nil
	}

	unlock, err := s.locker.Acquire(ctx, "zoonova:payment_intent:"+evt.PaymentIntentID, lockTTL, lockWait)
	if err != nil {
		log.Warn("payment intent lock unavailable, continuing", zap.Error(err))
		unlock = func() {}
	}
	defer unlock()

	var payment *domain.Payment
	switch evt.Type {
	case domain.EventCheckoutCompleted:
		payment, err = s.recordCheckout(ctx, orderID.Int64(), evt, payload)
	case domain.EventPaymentSucceeded:
		payment, err = s.recordIntent(ctx, orderID.Int64(), evt, payload, domain.StatusSucceeded)
	case domain.EventPaymentFailed:
		payment, err = s.recordIntent(ctx, orderID.Int64(), evt, payload, domain.StatusFailed)
	default:
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("payment recorded", zap.String("status", payment.Status))
	s.notifier.PaymentRecorded(ctx, *payment)

	if evt.Type == domain.EventCheckoutCompleted {
		detail, err := s.orderSvc.Detail(ctx, evt.OrderID)
		if err != nil {
			log.Error("load order for invoice", zap.Error(err))
			return nil
		}
		s.notifier.InvoiceRequested(ctx, *detail)
	}
	return nil
}

// recordCheckout points the order at the session's payment intent and writes
// the Payment row as succeeded.
func (s *Service) recordCheckout(ctx context.Context, orderID int64, evt *domain.Event, payload []byte) (*domain.Payment, error) {
	var out *domain.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orders.FindByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return errOrderMissing
		}

		intentID, sessionID := evt.PaymentIntentID, evt.CheckoutSessionID
		if err := s.orders.SetPaymentReferences(ctx, tx, orderID, &intentID, &sessionID, s.clock.Now()); err != nil {
			return err
		}

		payment := s.newPayment(orderID, evt, payload, domain.StatusSucceeded)
		if err := s.repo.Upsert(ctx, tx, payment, []string{
			"order_id",
			"checkout_session_id",
			"amount",
			"currency",
			"status",
			"metadata",
			"webhook_received",
			"webhook_data",
			"webhook_received_at",
		}); err != nil {
			return err
		}
		out, err = s.repo.FindByIntentID(ctx, tx, evt.PaymentIntentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// recordIntent creates the Payment row for an intent event or, on replay,
// overwrites its status and webhook fields.
func (s *Service) recordIntent(ctx context.Context, orderID int64, evt *domain.Event, payload []byte, status string) (*domain.Payment, error) {
	var out *domain.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orders.FindByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return errOrderMissing
		}

		payment := s.newPayment(orderID, evt, payload, status)
		if err := s.repo.Upsert(ctx, tx, payment, []string{
			"status",
			"webhook_received",
			"webhook_data",
			"webhook_received_at",
		}); err != nil {
			return err
		}
		out, err = s.repo.FindByIntentID(ctx, tx, evt.PaymentIntentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) newPayment(orderID int64, evt *domain.Event, payload []byte, status string) *domain.Payment {
	now := s.clock.Now()
	metadata, _ := json.Marshal(evt.Metadata)
	return &domain.Payment{
		ID:                s.genID.Generate().Int64(),
		OrderID:           orderID,
		PaymentIntentID:   evt.PaymentIntentID,
		CheckoutSessionID: evt.CheckoutSessionID,
		Amount:            evt.Amount,
		Currency:          normalizeCurrency(evt.Currency),
		Status:            status,
		Metadata:          datatypes.JSON(metadata),
		WebhookReceived:   true,
		WebhookData:       datatypes.JSON(payload),
		WebhookReceivedAt: &now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func normalizeCurrency(code string) string {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return defaultCurrency
	}
	return unit.String()
}

func (s *Service) PaymentState(ctx context.Context, orderID string) (domain.State, error) {
	id, err := parseID(orderID)
	if err != nil {
		return "", err
	}
	order, err := s.orders.FindByID(ctx, s.db, id)
	if err != nil {
		return "", err
	}
	if order == nil {
		return "", orderdomain.ErrNotFound
	}
	paid, err := s.repo.HasSucceeded(ctx, s.db, id)
	if err != nil {
		return "", err
	}
	switch {
	case paid:
		return domain.StatePaid, nil
	case order.StripePaymentIntentID != nil && *order.StripePaymentIntentID != "":
		return domain.StatePaymentRecorded, nil
	default:
		return domain.StateAwaitingPayment, nil
	}
}

func (s *Service) CreateCheckoutSession(ctx context.Context, orderID string) (*domain.CheckoutResponse, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, domain.ErrInvalidOrder
	}
	detail, err := s.orderSvc.Detail(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderdomain.ErrInvalidID) {
			return nil, domain.ErrInvalidOrder
		}
		return nil, err
	}
	order := detail.Order
	if order.StripePaymentIntentID != nil && *order.StripePaymentIntentID != "" {
		return nil, domain.ErrAlreadyPaid
	}

	lines := make([]domain.CheckoutLine, 0, len(detail.Items)+1)
	for _, item := range detail.Items {
		lines = append(lines, domain.CheckoutLine{Name: item.BookTitle, UnitPrice: item.UnitPrice, Quantity: item.Quantity})
	}
	if order.ShippingCost > 0 {
		lines = append(lines, domain.CheckoutLine{Name: shippingLineName, UnitPrice: order.ShippingCost, Quantity: 1})
	}

	id := snowflake.ID(order.ID).String()
	session, err := s.gateway.CreateCheckoutSession(ctx, domain.CheckoutRequest{
		OrderID:       id,
		CustomerEmail: order.Email,
		Currency:      strings.ToLower(s.stripe.Currency),
		Lines:         lines,
		SuccessURL:    s.stripe.SuccessURL,
		CancelURL:     s.stripe.CancelURL,
	})
	if err != nil {
		s.log.Warn("create checkout session", zap.String("order_id", id), zap.Error(err))
		return nil, err
	}

	if err := s.orders.SetCheckoutSession(ctx, s.db, order.ID, session.ID, s.clock.Now()); err != nil {
		return nil, err
	}
	s.log.Info("checkout session created", zap.String("order_id", id), zap.String("session_id", session.ID))
	return &domain.CheckoutResponse{CheckoutURL: session.URL, SessionID: session.ID}, nil
}

func (s *Service) VerifyPayment(ctx context.Context, orderID string) (*domain.VerifyResponse, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, domain.ErrInvalidOrder
	}
	detail, err := s.orderSvc.Detail(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderdomain.ErrInvalidID) {
			return nil, domain.ErrInvalidOrder
		}
		return nil, err
	}
	order := detail.Order
	if order.StripePaymentIntentID == nil || *order.StripePaymentIntentID == "" {
		return &domain.VerifyResponse{Paid: false, Message: "payment not initiated"}, nil
	}

	intent, err := s.gateway.RetrievePaymentIntent(ctx, *order.StripePaymentIntentID)
	if err != nil {
		return nil, err
	}
	return &domain.VerifyResponse{
		Paid:   intent.Status == domain.StatusSucceeded,
		Status: intent.Status,
		Order: &domain.VerifyOrder{
			ID:    snowflake.ID(order.ID).String(),
			Email: order.Email,
			Total: order.Total,
		},
	}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListFilter{Status: strings.ToLower(strings.TrimSpace(req.Status))}
	if raw := strings.TrimSpace(req.OrderID); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return nil, domain.ErrInvalidOrder
		}
		filter.OrderID = id
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(item))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	paymentID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, s.db, paymentID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	resp := toResponse(*item)
	return &resp, nil
}

func parseID(id string) (int64, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed.Int64() <= 0 {
		return 0, domain.ErrInvalidID
	}
	return parsed.Int64(), nil
}

func toResponse(p domain.Payment) domain.Response {
	metadata := map[string]any{}
	if len(p.Metadata) > 0 {
		_ = json.Unmarshal(p.Metadata, &metadata)
	}
	return domain.Response{
		ID:                snowflake.ID(p.ID).String(),
		OrderID:           snowflake.ID(p.OrderID).String(),
		PaymentIntentID:   p.PaymentIntentID,
		CheckoutSessionID: p.CheckoutSessionID,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Status:            p.Status,
		Metadata:          metadata,
		WebhookReceived:   p.WebhookReceived,
		WebhookReceivedAt: p.WebhookReceivedAt,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
