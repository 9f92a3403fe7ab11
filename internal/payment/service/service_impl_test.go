package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	bookrepository "github.com/smallbiznis/zoonova/internal/book/repository"
	"github.com/smallbiznis/zoonova/internal/clock"
	"github.com/smallbiznis/zoonova/internal/config"
	countrydomain "github.com/smallbiznis/zoonova/internal/country/domain"
	countryrepository "github.com/smallbiznis/zoonova/internal/country/repository"
	orderdomain "github.com/smallbiznis/zoonova/internal/order/domain"
	orderrepository "github.com/smallbiznis/zoonova/internal/order/repository"
	orderservice "github.com/smallbiznis/zoonova/internal/order/service"
	"github.com/smallbiznis/zoonova/internal/payment/adapters/stripe"
	"github.com/smallbiznis/zoonova/internal/payment/domain"
	"github.com/smallbiznis/zoonova/internal/payment/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

const webhookSecret = "whsec_test"

type silentOrderNotifier struct{}

func (silentOrderNotifier) OrderPlaced(context.Context, orderdomain.Detail) {}

func (silentOrderNotifier) OrderStatusChanged(context.Context, orderdomain.Detail, orderdomain.StatusChange) {
}

type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) PaymentRecorded(ctx context.Context, payment domain.Payment) {
	m.Called(ctx, payment)
}

func (m *notifierMock) InvoiceRequested(ctx context.Context, detail orderdomain.Detail) {
	m.Called(ctx, detail)
}

type fakeGateway struct {
	sessions []domain.CheckoutRequest
	intent   *domain.PaymentIntent
	err      error
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.sessions = append(g.sessions, req)
	return &domain.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.test/cs_test_1"}, nil
}

func (g *fakeGateway) RetrievePaymentIntent(_ context.Context, id string) (*domain.PaymentIntent, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.intent, nil
}

type fixture struct {
	svc      domain.Service
	db       *gorm.DB
	node     *snowflake.Node
	clock    *clock.FakeClock
	gateway  *fakeGateway
	notifier *notifierMock
	logs     *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&countrydomain.Country{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&domain.Payment{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	notifier := &notifierMock{}
	notifier.On("PaymentRecorded", mock.Anything, mock.Anything).Return()
	notifier.On("InvoiceRequested", mock.Anything, mock.Anything).Return()
	gateway := &fakeGateway{}

	cfg := config.Config{Stripe: config.StripeConfig{
		Currency:   "eur",
		SuccessURL: "https://shop.test/ok",
		CancelURL:  "https://shop.test/ko",
	}}
	orders := orderrepository.Provide()
	orderSvc := orderservice.New(orderservice.Params{
		DB:        conn,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     fake,
		Repo:      orders,
		Books:     bookrepository.Provide(),
		Countries: countryrepository.Provide(),
		Notifier:  silentOrderNotifier{},
	})

	core, logs := observer.New(zapcore.DebugLevel)
	svc := New(Params{
		DB:       conn,
		Log:      zap.New(core),
		GenID:    node,
		Clock:    fake,
		Config:   cfg,
		Repo:     repository.Provide(),
		Orders:   orders,
		OrderSvc: orderSvc,
		Webhooks: stripe.New(stripe.Config{WebhookSecret: webhookSecret}),
		Gateway:  gateway,
		Notifier: notifier,
	})
	return &fixture{svc: svc, db: conn, node: node, clock: fake, gateway: gateway, notifier: notifier, logs: logs}
}

func (f *fixture) addOrder(t *testing.T) orderdomain.Order {
	t.Helper()
	now := f.clock.Now()
	country := countrydomain.Country{ID: f.node.Generate().Int64(), Name: "France", Code: "FR", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.db.Create(&country).Error)
	order := orderdomain.Order{
		ID:           f.node.Generate().Int64(),
		Email:        "lea@example.com",
		FirstName:    "Léa",
		LastName:     "Martin",
		Street:       "rue des Lilas",
		PostalCode:   "75011",
		City:         "Paris",
		CountryID:    country.ID,
		Subtotal:     3000,
		ShippingCost: 471,
		Total:        3471,
		Status:       orderdomain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.db.Create(&order).Error)
	item := orderdomain.OrderItem{ID: f.node.Generate().Int64(), OrderID: order.ID, BookID: 1, BookTitle: "Alpha", UnitPrice: 1500, Quantity: 2}
	require.NoError(t, f.db.Create(&item).Error)
	return order
}

func (f *fixture) payments(t *testing.T) []domain.Payment {
	t.Helper()
	var items []domain.Payment
	require.NoError(t, f.db.Find(&items).Error)
	return items
}

func (f *fixture) reloadOrder(t *testing.T, id int64) orderdomain.Order {
	t.Helper()
	var o orderdomain.Order
	require.NoError(t, f.db.First(&o, id).Error)
	return o
}

func event(t *testing.T, id, typ string, object map[string]any) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":      id,
		"type":    typ,
		"created": 1717243200,
		"data":    map[string]any{"object": object},
	})
	require.NoError(t, err)
	return payload
}

func signed(payload []byte) http.Header {
	h := http.Header{}
	h.Set("Stripe-Signature", stripe.SignatureHeader(webhookSecret, payload, time.Now()))
	return h
}

func orderRef(o orderdomain.Order) string { return snowflake.ID(o.ID).String() }

func TestReplayedIntentSucceededKeepsOneRow(t *testing.T) {
	f := newFixture(t)
	order := f.addOrder(t)
	ctx := context.Background()

	var last []byte
	for attempt := 1; attempt <= 3; attempt++ {
		last = event(t, "evt_pi", domain.EventPaymentSucceeded, map[string]any{
			"id":       "pi_1",
			"amount":   3471,
			"currency": "eur",
			"metadata": map[string]any{"order_id": orderRef(order), "attempt": fmt.Sprint(attempt)},
		})
		require.NoError(t, f.svc.HandleWebhook(ctx, last, signed(last)))
		f.clock.Advance(time.Minute)
	}

	rows := f.payments(t)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.StatusSucceeded, rows[0].Status)
	assert.Equal(t, "pi_1", rows[0].PaymentIntentID)
	assert.Equal(t, int64(3471), rows[0].Amount)
	assert.Equal(t, "EUR", rows[0].Currency)
	assert.True(t, rows[0].WebhookReceived)
	assert.JSONEq(t, string(last), string(rows[0].WebhookData))
	f.notifier.AssertNumberOfCalls(t, "PaymentRecorded", 3)
	f.notifier.AssertNotCalled(t, "InvoiceRequested", mock.Anything, mock.Anything)
}

func TestCheckoutCompletedRecordsPayment(t *testing.T) {
	f := newFixture(t)
	order := f.addOrder(t)
	ctx := context.Background()

	state, err := f.svc.PaymentState(ctx, orderRef(order))
	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingPayment, state)

	payload := event(t, "evt_cs", domain.EventCheckoutCompleted, map[string]any{
		"id":             "cs_1",
		"payment_intent": "pi_1",
		"amount_total":   3471,
		"currency":       "eur",
		"metadata":       map[string]any{"order_id": orderRef(order)},
	})
	f.clock.Advance(30 * time.Minute)
	require.NoError(t, f.svc.HandleWebhook(ctx, payload, signed(payload)))

	reloaded := f.reloadOrder(t, order.ID)
	assert.True(t, reloaded.UpdatedAt.Equal(f.clock.Now()))
	require.NotNil(t, reloaded.StripePaymentIntentID)
	assert.Equal(t, "pi_1", *reloaded.StripePaymentIntentID)
	require.NotNil(t, reloaded.StripeCheckoutSessionID)
	assert.Equal(t, "cs_1", *reloaded.StripeCheckoutSessionID)

	rows := f.payments(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "cs_1", rows[0].CheckoutSessionID)
	assert.Equal(t, domain.StatusSucceeded, rows[0].Status)

	var metadata map[string]string
	require.NoError(t, json.Unmarshal(rows[0].Metadata, &metadata))
	assert.Equal(t, orderRef(order), metadata["order_id"])

	state, err = f.svc.PaymentState(ctx, orderRef(order))
	require.NoError(t, err)
	assert.Equal(t, domain.StatePaid, state)

	f.notifier.AssertCalled(t, "InvoiceRequested", mock.Anything, mock.MatchedBy(func(d orderdomain.Detail) bool {
		return d.Order.ID == order.ID && len(d.Items) == 1
	}))
}

func TestCheckoutCompletedForUnknownOrderIsDropped(t *testing.T) {
	f := newFixture(t)
	payload := event(t, "evt_cs", domain.EventCheckoutCompleted, map[string]any{
		"id":             "cs_1",
		"payment_intent": "pi_1",
		"amount_total":   1000,
		"currency":       "eur",
		"metadata":       map[string]any{"order_id": "1790000000000000000"},
	})

	require.NoError(t, f.svc.HandleWebhook(context.Background(), payload, signed(payload)))
	assert.Empty(t, f.payments(t))
	f.notifier.AssertNotCalled(t, "PaymentRecorded", mock.Anything, mock.Anything)
}

func TestInvalidSignatureMutatesNothing(t *testing.T) {
	f := newFixture(t)
	order := f.addOrder(t)
	payload := event(t, "evt_pi", domain.EventPaymentSucceeded, map[string]any{
		"id":       "pi_1",
		"amount":   3471,
		"currency": "eur",
		"metadata": map[string]any{"order_id": orderRef(order)},
	})
	h := http.Header{}
	h.Set("Stripe-Signature", stripe.SignatureHeader("whsec_other", payload, time.Now()))

	err := f.svc.HandleWebhook(context.Background(), payload, h)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	assert.Empty(t, f.payments(t))
}

func TestIgnoredAndMalformedEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ignored := event(t, "evt_ch", "charge.refunded", map[string]any{"id": "ch_1"})
	assert.ErrorIs(t, f.svc.HandleWebhook(ctx, ignored, signed(ignored)), domain.ErrEventIgnored)

	malformed := []byte(`{"type":"payment_intent.succeeded"`)
	assert.ErrorIs(t, f.svc.HandleWebhook(ctx, malformed, signed(malformed)), domain.ErrInvalidPayload)

	assert.Empty(t, f.payments(t))
}

func TestFailedAfterSucceededOverwrites(t *testing.T) {
	f := newFixture(t)
	order := f.addOrder(t)
	ctx := context.Background()
	object := map[string]any{
		"id":       "pi_1",
		"amount":   3471,
		"currency": "eur",
		"metadata": map[string]any{"order_id": orderRef(order)},
	}

	ok := event(t, "evt_1", domain.EventPaymentSucceeded, object)
	require.NoError(t, f.svc.HandleWebhook(ctx, ok, signed(ok)))
	failed := event(t, "evt_2", domain.EventPaymentFailed, object)
	require.NoError(t, f.svc.HandleWebhook(ctx, failed, signed(failed)))

	rows := f.payments(t)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.StatusFailed, rows[0].Status)
}

func TestFailedIntentWithoutOrderIsDropped(t *testing.T) {
	f := newFixture(t)
	payload := event(t, "evt_1", domain.EventPaymentFailed, map[string]any{"id": "pi_1", "amount": 100, "currency": "eur"})
	require.NoError(t, f.svc.HandleWebhook(context.Background(), payload, signed(payload)))
	assert.Empty(t, f.payments(t))
}

func TestFailedIntentForUnknownOrderLogsQuietly(t *testing.T) {
	f := newFixture(t)
	payload := event(t, "evt_1", domain.EventPaymentFailed, map[string]any{
		"id":       "pi_1",
		"amount":   100,
		"currency": "eur",
		"metadata": map[string]any{"order_id": "1790000000000000000"},
	})

	require.NoError(t, f.svc.HandleWebhook(context.Background(), payload, signed(payload)))
	assert.Empty(t, f.payments(t))
	assert.Zero(t, f.logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	assert.Zero(t, f.logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Equal(t, 1, f.logs.FilterMessage("failed intent references unknown order").Len())
}

func TestPaymentStateRecordedBeforeSuccess(t *testing.T) {
	f := newFixture(t)
	order := f.addOrder(t)
	ctx := context.Background()
	intent, session := "pi_9", "cs_9"
	require.NoError(t, orderrepository.Provide().SetPaymentReferences(ctx, f.db, order.ID, &intent, &session, f.clock.Now()))

	state, err := f.svc.PaymentState(ctx, orderRef(order))
	require.NoError(t, err)
	assert.Equal(t, domain.StatePaymentRecorded, state)

	_, err = f.svc.PaymentState(ctx, "1790000000000000000")
	assert.ErrorIs(t, err, orderdomain.ErrNotFound)
}

func TestCreateCheckoutSession(t *testing.T) {
	f := newFixture(t)
	order := f.addOrder(t)
	ctx := context.Background()

	resp, err := f.svc.CreateCheckoutSession(ctx, orderRef(order))
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", resp.SessionID)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", resp.CheckoutURL)

	require.Len(t, f.gateway.sessions, 1)
	req := f.gateway.sessions[0]
	assert.Equal(t, orderRef(order), req.OrderID)
	assert.Equal(t, "eur", req.Currency)
	assert.Equal(t, []domain.CheckoutLine{
		{Name: "Alpha", UnitPrice: 1500, Quantity: 2},
		{Name: "Frais de port", UnitPrice: 471, Quantity: 1},
	}, req.Lines)

	reloaded := f.reloadOrder(t, order.ID)
	require.NotNil(t, reloaded.StripeCheckoutSessionID)
	assert.Equal(t, "cs_test_1", *reloaded.StripeCheckoutSessionID)
	assert.Nil(t, reloaded.StripePaymentIntentID)

	_, err = f.svc.CreateCheckoutSession(ctx, "1790000000000000000")
	assert.ErrorIs(t, err, orderdomain.ErrNotFound)
	_, err = f.svc.CreateCheckoutSession(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
}

func TestCreateCheckoutSessionRejectsPaidOrder(t *testing.T) {
	f := newFixture(t)
	order := f.addOrder(t)
	ctx := context.Background()
	intent, session := "pi_1", "cs_1"
	require.NoError(t, orderrepository.Provide().SetPaymentReferences(ctx, f.db, order.ID, &intent, &session, f.clock.Now()))

	_, err := f.svc.CreateCheckoutSession(ctx, orderRef(order))
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
	assert.Empty(t, f.gateway.sessions)
}

func TestCreateCheckoutSessionSurfacesProviderError(t *testing.T) {
	f := newFixture(t)
	order := f.addOrder(t)
	f.gateway.err = &domain.ProviderError{StatusCode: 400, Message: "Invalid currency"}

	_, err := f.svc.CreateCheckoutSession(context.Background(), orderRef(order))
	var providerErr *domain.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "Invalid currency", providerErr.Message)
}

func TestVerifyPayment(t *testing.T) {
	f := newFixture(t)
	order := f.addOrder(t)
	ctx := context.Background()

	resp, err := f.svc.VerifyPayment(ctx, orderRef(order))
	require.NoError(t, err)
	assert.Equal(t, &domain.VerifyResponse{Paid: false, Message: "payment not initiated"}, resp)

	intent, session := "pi_1", "cs_1"
	require.NoError(t, orderrepository.Provide().SetPaymentReferences(ctx, f.db, order.ID, &intent, &session, f.clock.Now()))
	f.gateway.intent = &domain.PaymentIntent{ID: "pi_1", Status: "succeeded"}

	resp, err = f.svc.VerifyPayment(ctx, orderRef(order))
	require.NoError(t, err)
	assert.True(t, resp.Paid)
	assert.Equal(t, "succeeded", resp.Status)
	assert.Equal(t, &domain.VerifyOrder{ID: orderRef(order), Email: "lea@example.com", Total: 3471}, resp.Order)
}

func TestListAndGetPayments(t *testing.T) {
	f := newFixture(t)
	order := f.addOrder(t)
	ctx := context.Background()
	payload := event(t, "evt_pi", domain.EventPaymentSucceeded, map[string]any{
		"id":       "pi_1",
		"amount":   3471,
		"currency": "eur",
		"metadata": map[string]any{"order_id": orderRef(order)},
	})
	require.NoError(t, f.svc.HandleWebhook(ctx, payload, signed(payload)))

	list, err := f.svc.List(ctx, domain.ListRequest{OrderID: orderRef(order)})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, orderRef(order), list[0].OrderID)
	assert.Equal(t, orderRef(order), list[0].Metadata["order_id"])

	got, err := f.svc.Get(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_1", got.PaymentIntentID)

	list, err = f.svc.List(ctx, domain.ListRequest{Status: "failed"})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.Get(ctx, "1790000000000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
