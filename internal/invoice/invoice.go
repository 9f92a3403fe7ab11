// Package invoice turns an order into its invoice document.
package invoice

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/zoonova/internal/invoice/format"
	orderdomain "github.com/smallbiznis/zoonova/internal/order/domain"
	"github.com/smallbiznis/zoonova/internal/providers/pdf"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	SellerName    = "ZOONOVA"
	SellerAddress = "Adresse de l'entreprise"
	SellerEmail   = "contact@zoonova.com"
)

// Title is the document heading for an order id.
func Title(orderID int64) string {
	return fmt.Sprintf("FACTURE N° %s", snowflake.ID(orderID).String())
}

// Filename is the attachment name for an order's invoice.
func Filename(orderID int64) string {
	return fmt.Sprintf("facture_%s.pdf", snowflake.ID(orderID).String())
}

// BuildInvoiceData is pure: the same detail always yields the same document.
func BuildInvoiceData(detail orderdomain.Detail) pdf.InvoiceData {
	o := detail.Order
	data := pdf.InvoiceData{
		Title:           Title(o.ID),
		Date:            format.Date(o.CreatedAt),
		SellerName:      SellerName,
		SellerAddress:   SellerAddress,
		SellerEmail:     SellerEmail,
		CustomerName:    o.FullName(),
		CustomerEmail:   o.Email,
		CustomerPhone:   o.Phone,
		ShippingAddress: detail.FullAddress(),
		Items:           make([]pdf.InvoiceItem, 0, len(detail.Items)),
		Subtotal:        format.Cents(o.Subtotal),
		Shipping:        format.Cents(o.ShippingCost),
		Total:           format.Cents(o.Total),
		Footer: []string{
			"Merci pour votre commande !",
			"Pour toute question, contactez-nous à " + SellerEmail,
		},
	}
	if o.TrackingNumber != nil {
		data.TrackingNumber = *o.TrackingNumber
	}
	for _, item := range detail.Items {
		data.Items = append(data.Items, pdf.InvoiceItem{
			Title:     item.BookTitle,
			Quantity:  item.Quantity,
			UnitPrice: format.Cents(item.UnitPrice),
			Subtotal:  format.Cents(item.Subtotal()),
		})
	}
	return data
}

type Document struct {
	Filename string
	Content  []byte
}

// Render turns a loaded order into its PDF attachment.
func Render(ctx context.Context, provider pdf.Provider, detail orderdomain.Detail) (*Document, error) {
	content, err := provider.RenderInvoice(ctx, BuildInvoiceData(detail))
	if err != nil {
		return nil, err
	}
	return &Document{Filename: Filename(detail.Order.ID), Content: content}, nil
}

type Params struct {
	fx.In

	Log    *zap.Logger
	Orders orderdomain.Service
	PDF    pdf.Provider
}

type Service struct {
	log    *zap.Logger
	orders orderdomain.Service
	pdf    pdf.Provider
}

func New(p Params) *Service {
	return &Service{
		log:    p.Log.Named("invoice.service"),
		orders: p.Orders,
		pdf:    p.PDF,
	}
}

// Render loads an order and renders its invoice.
func (s *Service) Render(ctx context.Context, orderID string) (*Document, error) {
	detail, err := s.orders.Detail(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.RenderDetail(ctx, *detail)
}

func (s *Service) RenderDetail(ctx context.Context, detail orderdomain.Detail) (*Document, error) {
	doc, err := Render(ctx, s.pdf, detail)
	if err != nil {
		s.log.Error("render invoice", zap.Int64("order_id", detail.Order.ID), zap.Error(err))
		return nil, err
	}
	return doc, nil
}
