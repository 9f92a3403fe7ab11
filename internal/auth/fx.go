package auth

import (
	"github.com/smallbiznis/zoonova/internal/auth/password"
	"github.com/smallbiznis/zoonova/internal/auth/repository"
	"github.com/smallbiznis/zoonova/internal/auth/service"
	"github.com/smallbiznis/zoonova/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(func() *password.Hasher { return password.NewHasher(password.DefaultParams()) }),
	fx.Provide(service.New),
	fx.Provide(session.NewManager),
)
