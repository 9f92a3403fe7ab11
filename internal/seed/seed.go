// Package seed inserts the reference rows a fresh database needs.
package seed

import (
	"context"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/zoonova/internal/auth/domain"
	"github.com/smallbiznis/zoonova/internal/clock"
	"github.com/smallbiznis/zoonova/internal/config"
	countrydomain "github.com/smallbiznis/zoonova/internal/country/domain"
	"github.com/smallbiznis/zoonova/internal/shipping"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("seed",
	fx.Provide(New),
)

type destination struct {
	name string
	code string
}

var destinations = []destination{
	{name: shipping.France, code: "FR"},
	{name: shipping.Europe, code: "EU"},
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Countries countrydomain.Repository
	Auth      authdomain.Service
}

type Seeder struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	countries countrydomain.Repository
	auth      authdomain.Service
}

func New(p Params) *Seeder {
	return &Seeder{
		db:        p.DB,
		log:       p.Log.Named("seed"),
		genID:     p.GenID,
		clock:     p.Clock,
		countries: p.Countries,
		auth:      p.Auth,
	}
}

// Run is safe to call on every start.
func (s *Seeder) Run(ctx context.Context, bootstrap config.BootstrapConfig) error {
	if err := s.ensureCountries(ctx); err != nil {
		return err
	}
	created, err := s.auth.Bootstrap(ctx, bootstrap.AdminEmail, bootstrap.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		s.log.Info("bootstrap superuser created", zap.String("email", bootstrap.AdminEmail))
	}
	return nil
}

func (s *Seeder) ensureCountries(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range destinations {
			existing, err := s.countries.FindByCode(ctx, tx, d.code)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			now := s.clock.Now()
			if err := s.countries.Insert(ctx, tx, &countrydomain.Country{
				ID:           s.genID.Generate().Int64(),
				Name:         d.name,
				Code:         d.code,
				ShippingCost: shipping.Cost(d.name, 1),
				IsActive:     true,
				CreatedAt:    now,
				UpdatedAt:    now,
			}); err != nil {
				return err
			}
			s.log.Info("country seeded", zap.String("code", d.code))
		}
		return nil
	})
}
