package pdf

import (
	"context"

	"go.uber.org/fx"
)

type Provider interface {
	RenderInvoice(ctx context.Context, data InvoiceData) ([]byte, error)
}

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)
