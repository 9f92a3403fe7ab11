package providers

import (
	"github.com/smallbiznis/zoonova/internal/providers/email"
	"github.com/smallbiznis/zoonova/internal/providers/pdf"
	"github.com/smallbiznis/zoonova/internal/providers/slack"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
	slack.Module,
)
