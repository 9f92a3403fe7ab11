package invoice

import (
	"context"
	"testing"
	"time"

	countrydomain "github.com/smallbiznis/zoonova/internal/country/domain"
	orderdomain "github.com/smallbiznis/zoonova/internal/order/domain"
	"github.com/smallbiznis/zoonova/internal/providers/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleDetail() orderdomain.Detail {
	tracking := "6A123"
	return orderdomain.Detail{
		Order: orderdomain.Order{
			ID:             1700000000000,
			Email:          "lea@example.com",
			FirstName:      "Léa",
			LastName:       "Martin",
			Phone:          "0600000000",
			Street:         "rue des Lilas",
			StreetNumber:   "12",
			PostalCode:     "75011",
			City:           "Paris",
			Subtotal:       3999,
			ShippingCost:   677,
			Total:          4676,
			TrackingNumber: &tracking,
			CreatedAt:      time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC),
		},
		Items: []orderdomain.OrderItem{
			{ID: 1, BookTitle: "Alpha", UnitPrice: 1500, Quantity: 2},
			{ID: 2, BookTitle: "Beta", UnitPrice: 999, Quantity: 1},
		},
		Country: countrydomain.Country{ID: 9, Name: "France", Code: "FR"},
	}
}

func TestBuildInvoiceData(t *testing.T) {
	data := BuildInvoiceData(sampleDetail())

	assert.Equal(t, "FACTURE N° 1700000000000", data.Title)
	assert.Equal(t, "07/03/2024", data.Date)
	assert.Equal(t, "Léa Martin", data.CustomerName)
	assert.Equal(t, "6A123", data.TrackingNumber)
	assert.Equal(t, "12 rue des Lilas, 75011 Paris, France", data.ShippingAddress)
	require.Len(t, data.Items, 2)
	assert.Equal(t, pdf.InvoiceItem{Title: "Alpha", Quantity: 2, UnitPrice: "15.00 €", Subtotal: "30.00 €"}, data.Items[0])
	assert.Equal(t, "39.99 €", data.Subtotal)
	assert.Equal(t, "6.77 €", data.Shipping)
	assert.Equal(t, "46.76 €", data.Total)
}

func TestBuildInvoiceDataIsDeterministic(t *testing.T) {
	assert.Equal(t, BuildInvoiceData(sampleDetail()), BuildInvoiceData(sampleDetail()))

	detail := sampleDetail()
	detail.Order.TrackingNumber = nil
	assert.Empty(t, BuildInvoiceData(detail).TrackingNumber)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "facture_42.pdf", Filename(42))
}

type pdfMock struct {
	mock.Mock
}

func (m *pdfMock) RenderInvoice(ctx context.Context, data pdf.InvoiceData) ([]byte, error) {
	args := m.Called(ctx, data)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

func TestRenderDetail(t *testing.T) {
	renderer := &pdfMock{}
	renderer.On("RenderInvoice", mock.Anything, mock.MatchedBy(func(d pdf.InvoiceData) bool {
		return d.Total == "46.76 €"
	})).Return([]byte("%PDF-1.3"), nil)

	svc := New(Params{Log: zap.NewNop(), PDF: renderer})
	doc, err := svc.RenderDetail(context.Background(), sampleDetail())
	require.NoError(t, err)
	assert.Equal(t, "facture_1700000000000.pdf", doc.Filename)
	assert.Equal(t, []byte("%PDF-1.3"), doc.Content)
	renderer.AssertExpectations(t)
}
