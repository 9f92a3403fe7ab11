package pdf

import (
	"context"
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// InvoiceData is the fully formatted invoice document. Every amount is
// already rendered as text.
type InvoiceData struct {
	Title string
	Date  string

	SellerName    string
	SellerAddress string
	SellerEmail   string

	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	TrackingNumber string

	ShippingAddress string

	Items []InvoiceItem

	Subtotal string
	Shipping string
	Total    string

	Footer []string
}

type InvoiceItem struct {
	Title     string
	Quantity  int
	UnitPrice string
	Subtotal  string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) RenderInvoice(ctx context.Context, invoice InvoiceData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} / {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(16,
		text.NewCol(12, invoice.Title, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	customer := col.New(6).Add(
		text.New("Client: "+invoice.CustomerName, props.Text{Top: 0}),
		text.New("Email: "+invoice.CustomerEmail, props.Text{Top: 5}),
		text.New("Tél: "+invoice.CustomerPhone, props.Text{Top: 10}),
	)
	if invoice.TrackingNumber != "" {
		customer.Add(text.New("Suivi: "+invoice.TrackingNumber, props.Text{Top: 15}))
	}
	m.AddRow(25,
		col.New(6).Add(
			text.New(invoice.SellerName, props.Text{Style: fontstyle.Bold}),
			text.New(invoice.SellerAddress, props.Text{Top: 5}),
			text.New("Email: "+invoice.SellerEmail, props.Text{Top: 10}),
			text.New("Date: "+invoice.Date, props.Text{Top: 18}),
		),
		customer,
	)

	m.AddRow(10,
		text.NewCol(12, "Adresse de livraison", props.Text{Size: 14, Style: fontstyle.Bold, Top: 3}),
	)
	m.AddRow(10,
		text.NewCol(12, invoice.ShippingAddress, props.Text{Size: 10}),
	)

	m.AddRow(12,
		text.NewCol(12, "Articles commandés", props.Text{Size: 14, Style: fontstyle.Bold, Top: 4}),
	)
	m.AddRow(8,
		text.NewCol(6, "Article", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, "Quantité", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
		text.NewCol(2, "Prix unitaire", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
		text.NewCol(2, "Sous-total", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)
	for _, item := range invoice.Items {
		m.AddRow(8,
			text.NewCol(6, item.Title, props.Text{Size: 10}),
			text.NewCol(2, strconv.Itoa(item.Quantity), props.Text{Size: 10, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 10, Align: align.Right}),
			text.NewCol(2, item.Subtotal, props.Text{Size: 10, Align: align.Right}),
		)
	}

	totals := []struct {
		label  string
		amount string
		style  fontstyle.Type
	}{
		{"Sous-total:", invoice.Subtotal, fontstyle.Normal},
		{"Frais de port:", invoice.Shipping, fontstyle.Normal},
		{"TOTAL:", invoice.Total, fontstyle.Bold},
	}
	for _, row := range totals {
		m.AddRow(8,
			col.New(8),
			text.NewCol(2, row.label, props.Text{Size: 11, Style: row.style, Align: align.Right}),
			text.NewCol(2, row.amount, props.Text{Size: 11, Style: row.style, Align: align.Right}),
		)
	}

	m.AddRow(15, col.New(12))
	for _, line := range invoice.Footer {
		m.AddRow(5,
			text.NewCol(12, line, props.Text{Size: 9, Align: align.Center}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invoice pdf: %w", err)
	}
	return doc.GetBytes(), nil
}
