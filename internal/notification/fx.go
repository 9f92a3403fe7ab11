package notification

import (
	"context"

	"github.com/smallbiznis/zoonova/internal/config"
	contactdomain "github.com/smallbiznis/zoonova/internal/contact/domain"
	"github.com/smallbiznis/zoonova/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/zoonova/internal/order/domain"
	paymentdomain "github.com/smallbiznis/zoonova/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("notification",
	fx.Provide(provideDispatcher),
	fx.Provide(New),
	fx.Provide(
		func(s *Service) orderdomain.Notifier { return s },
		func(s *Service) paymentdomain.Notifier { return s },
		func(s *Service) contactdomain.Notifier { return s },
	),
	fx.Invoke(registerDispatcher),
)

type dispatcherParams struct {
	fx.In

	Config  config.Config
	Log     *zap.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

func provideDispatcher(p dispatcherParams) *Dispatcher {
	return NewDispatcher(DispatcherConfig{
		Workers:   p.Config.Notify.Workers,
		QueueSize: p.Config.Notify.QueueSize,
	}, p.Log, p.Metrics)
}

func registerDispatcher(lc fx.Lifecycle, d *Dispatcher) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			d.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return d.Stop(ctx)
		},
	})
}
