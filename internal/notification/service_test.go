package notification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/smallbiznis/zoonova/internal/clock"
	"github.com/smallbiznis/zoonova/internal/config"
	contactdomain "github.com/smallbiznis/zoonova/internal/contact/domain"
	countrydomain "github.com/smallbiznis/zoonova/internal/country/domain"
	"github.com/smallbiznis/zoonova/internal/events"
	orderdomain "github.com/smallbiznis/zoonova/internal/order/domain"
	paymentdomain "github.com/smallbiznis/zoonova/internal/payment/domain"
	"github.com/smallbiznis/zoonova/internal/providers/email"
	"github.com/smallbiznis/zoonova/internal/providers/email/mocks"
	"github.com/smallbiznis/zoonova/internal/providers/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePDF struct {
	err error
}

func (f fakePDF) RenderInvoice(context.Context, pdf.InvoiceData) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

type recordingSlack struct {
	mu       sync.Mutex
	channels []string
	messages []string
}

func (r *recordingSlack) PostMessage(_ context.Context, channel, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels = append(r.channels, channel)
	r.messages = append(r.messages, message)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

type mailbox struct {
	mu   sync.Mutex
	sent []email.Message
}

func (m *mailbox) record(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mailbox) bySubject(prefix string) (email.Message, bool) {
	for _, msg := range m.sent {
		if strings.HasPrefix(msg.Subject, prefix) {
			return msg, true
		}
	}
	return email.Message{}, false
}

type harness struct {
	svc        *Service
	dispatcher *Dispatcher
	mail       *mailbox
	slack      *recordingSlack
	events     *recordingPublisher
}

func newHarness(t *testing.T, sends int, renderErr error, slackURL string) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	mail := &mailbox{}
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(mail.record).Times(sends)

	cfg := config.Config{
		Email: config.EmailConfig{AdminEmails: []string{"admin@zoonova.com"}},
		Slack: config.SlackConfig{WebhookURL: slackURL, Channel: "#commandes"},
	}
	d := newTestDispatcher(2, 32)
	d.Start()
	h := &harness{
		dispatcher: d,
		mail:       mail,
		slack:      &recordingSlack{},
		events:     &recordingPublisher{},
	}
	h.svc = New(Params{
		Log:        zap.NewNop(),
		Config:     cfg,
		Clock:      clock.NewFakeClock(time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)),
		Dispatcher: d,
		Email:      provider,
		Slack:      h.slack,
		Events:     h.events,
		PDF:        fakePDF{err: renderErr},
	})
	return h
}

func (h *harness) drain(t *testing.T) {
	t.Helper()
	require.NoError(t, h.dispatcher.Stop(context.Background()))
}

func sampleDetail() orderdomain.Detail {
	tracking := "6A123"
	return orderdomain.Detail{
		Order: orderdomain.Order{
			ID:             1790000000000000001,
			Email:          "jean@example.com",
			FirstName:      "Jean",
			LastName:       "Dupont",
			Street:         "rue des Lilas",
			StreetNumber:   "12",
			PostalCode:     "75011",
			City:           "Paris",
			Subtotal:       3999,
			ShippingCost:   677,
			Total:          4676,
			Status:         orderdomain.StatusPending,
			TrackingNumber: &tracking,
			CreatedAt:      time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC),
		},
		Items: []orderdomain.OrderItem{
			{BookTitle: "Le Renard", UnitPrice: 1500, Quantity: 2},
			{BookTitle: "La Chouette", UnitPrice: 999, Quantity: 1},
		},
		Country: countrydomain.Country{Name: "France", Code: "FR"},
	}
}

func TestOrderPlacedSendsConfirmationAdminAndSlack(t *testing.T) {
	h := newHarness(t, 2, nil, "https://hooks.slack.test/abc")

	h.svc.OrderPlaced(context.Background(), sampleDetail())
	h.drain(t)

	confirmation, ok := h.mail.bySubject("Confirmation de commande #1790000000000000001")
	require.True(t, ok)
	assert.Equal(t, []string{"jean@example.com"}, confirmation.To)
	assert.Contains(t, confirmation.Body, "- Le Renard x2 = 30.00 €")
	assert.Contains(t, confirmation.Body, "- Total: 46.76 €")
	assert.Contains(t, confirmation.Body, "12 rue des Lilas, 75011 Paris, France")
	require.Len(t, confirmation.Attachments, 1)
	assert.Equal(t, "facture_1790000000000000001.pdf", confirmation.Attachments[0].Filename)
	assert.Equal(t, "application/pdf", confirmation.Attachments[0].ContentType)

	admin, ok := h.mail.bySubject("Nouvelle commande #1790000000000000001")
	require.True(t, ok)
	assert.Equal(t, []string{"admin@zoonova.com"}, admin.To)
	assert.Contains(t, admin.Body, "Client: Jean Dupont (jean@example.com)")

	require.Len(t, h.slack.messages, 1)
	assert.Equal(t, "#commandes", h.slack.channels[0])
	assert.Contains(t, h.slack.messages[0], "3 livre(s)")

	require.Len(t, h.events.events, 1)
	assert.Equal(t, events.TypeOrderCreated, h.events.events[0].Type)
	assert.Equal(t, "1790000000000000001", h.events.events[0].Key)
}

func TestOrderPlacedWithoutInvoiceStillConfirms(t *testing.T) {
	h := newHarness(t, 2, errors.New("maroto failed"), "")

	h.svc.OrderPlaced(context.Background(), sampleDetail())
	h.drain(t)

	confirmation, ok := h.mail.bySubject("Confirmation de commande")
	require.True(t, ok)
	assert.Empty(t, confirmation.Attachments)
	assert.Empty(t, h.slack.messages)
}

func TestOrderStatusChangedTemplates(t *testing.T) {
	h := newHarness(t, 2, nil, "")
	detail := sampleDetail()

	delivered := detail
	delivered.Order.Status = orderdomain.StatusDelivered
	h.svc.OrderStatusChanged(context.Background(), delivered, orderdomain.StatusChange{
		Previous: orderdomain.StatusPending,
		Current:  orderdomain.StatusDelivered,
		Email:    orderdomain.StatusEmailDelivered,
	})
	h.svc.OrderStatusChanged(context.Background(), detail, orderdomain.StatusChange{
		Previous: orderdomain.StatusPending,
		Current:  orderdomain.StatusPending,
		Email:    orderdomain.StatusEmailShipped,
	})
	h.svc.OrderStatusChanged(context.Background(), detail, orderdomain.StatusChange{
		Previous: orderdomain.StatusPending,
		Current:  orderdomain.StatusPending,
	})
	h.drain(t)

	_, ok := h.mail.bySubject("Votre commande #1790000000000000001 a été livrée")
	assert.True(t, ok)
	shipped, ok := h.mail.bySubject("Votre commande #1790000000000000001 a été expédiée")
	require.True(t, ok)
	assert.Contains(t, shipped.Body, "Numéro de suivi: 6A123")

	require.Len(t, h.events.events, 1)
	assert.Equal(t, events.TypeOrderStatusChanged, h.events.events[0].Type)
}

func TestInvoiceRequestedAttachesPDF(t *testing.T) {
	h := newHarness(t, 1, nil, "")

	h.svc.InvoiceRequested(context.Background(), sampleDetail())
	h.svc.PaymentRecorded(context.Background(), paymentdomain.Payment{
		ID:              42,
		OrderID:         1790000000000000001,
		PaymentIntentID: "pi_123",
		Amount:          4676,
		Currency:        "EUR",
		Status:          paymentdomain.StatusSucceeded,
	})
	h.drain(t)

	msg, ok := h.mail.bySubject("Facture de votre commande #1790000000000000001")
	require.True(t, ok)
	assert.Equal(t, "Veuillez trouver ci-joint la facture de votre commande #1790000000000000001", msg.Body)
	require.Len(t, msg.Attachments, 1)
	assert.True(t, strings.HasPrefix(string(msg.Attachments[0].Content), "%PDF"))

	require.Len(t, h.events.events, 1)
	assert.Equal(t, events.TypePaymentRecorded, h.events.events[0].Type)
}

func TestInvoiceRenderFailureSendsNothing(t *testing.T) {
	h := newHarness(t, 0, errors.New("maroto failed"), "")

	h.svc.InvoiceRequested(context.Background(), sampleDetail())
	h.drain(t)

	assert.Empty(t, h.mail.sent)
}

func TestMessageReceivedNotifiesAdminAndCustomer(t *testing.T) {
	h := newHarness(t, 2, nil, "")

	h.svc.MessageReceived(context.Background(), contactdomain.Message{
		ID:        7,
		FirstName: "Léa",
		LastName:  "Martin",
		Email:     "lea@example.com",
		Body:      "Bonjour, une question sur les dédicaces.",
	})
	h.drain(t)

	admin, ok := h.mail.bySubject("Nouveau message de contact - Sans sujet")
	require.True(t, ok)
	assert.Contains(t, admin.Body, "De: Léa Martin (lea@example.com)")

	ack, ok := h.mail.bySubject("Nous avons bien reçu votre message")
	require.True(t, ok)
	assert.Equal(t, []string{"lea@example.com"}, ack.To)
	assert.Contains(t, ack.Body, "concernant : votre demande.")

	require.Len(t, h.events.events, 1)
	assert.Equal(t, events.TypeContactReceived, h.events.events[0].Type)
}
