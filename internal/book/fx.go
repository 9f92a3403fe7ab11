package book

import (
	"github.com/smallbiznis/zoonova/internal/book/repository"
	"github.com/smallbiznis/zoonova/internal/book/service"
	"go.uber.org/fx"
)

var Module = fx.Module("book.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
