package payment

import (
	"github.com/smallbiznis/zoonova/internal/config"
	"github.com/smallbiznis/zoonova/internal/payment/adapters/stripe"
	"github.com/smallbiznis/zoonova/internal/payment/checkout"
	"github.com/smallbiznis/zoonova/internal/payment/domain"
	"github.com/smallbiznis/zoonova/internal/payment/repository"
	"github.com/smallbiznis/zoonova/internal/payment/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(NewWebhookAdapter),
	fx.Provide(NewGateway),
	fx.Provide(service.New),
)

func NewWebhookAdapter(cfg config.Config, log *zap.Logger) domain.WebhookAdapter {
	if cfg.Stripe.WebhookSecret == "" {
		log.Named("payment.webhook").Warn("stripe webhook secret not configured, every webhook will be rejected")
	}
	return stripe.New(stripe.Config{
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Tolerance:     cfg.Stripe.WebhookTolerance,
	})
}

func NewGateway(cfg config.Config) domain.Gateway {
	if cfg.Stripe.SecretKey == "" {
		return checkout.Unconfigured{}
	}
	return checkout.New(checkout.Config{
		SecretKey: cfg.Stripe.SecretKey,
		BaseURL:   cfg.Stripe.APIBaseURL,
	}, nil)
}
