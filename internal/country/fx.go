package country

import (
	"github.com/smallbiznis/zoonova/internal/country/repository"
	"github.com/smallbiznis/zoonova/internal/country/service"
	"go.uber.org/fx"
)

var Module = fx.Module("country.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
