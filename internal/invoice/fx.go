package invoice

import "go.uber.org/fx"

var Module = fx.Module("invoice.service",
	fx.Provide(New),
)
