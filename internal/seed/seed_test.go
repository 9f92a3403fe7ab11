package seed

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	authdomain "github.com/smallbiznis/zoonova/internal/auth/domain"
	"github.com/smallbiznis/zoonova/internal/auth/password"
	authrepository "github.com/smallbiznis/zoonova/internal/auth/repository"
	authservice "github.com/smallbiznis/zoonova/internal/auth/service"
	"github.com/smallbiznis/zoonova/internal/clock"
	"github.com/smallbiznis/zoonova/internal/config"
	countrydomain "github.com/smallbiznis/zoonova/internal/country/domain"
	countryrepository "github.com/smallbiznis/zoonova/internal/country/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestRunIsIdempotent(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:seed_run?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&countrydomain.Country{}, &authdomain.Admin{}, &authdomain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	admins, sessions := authrepository.New(conn)
	auth := authservice.New(authservice.Params{
		Log:      zap.NewNop(),
		Clock:    fake,
		GenID:    node,
		Repo:     admins,
		Sessions: sessions,
		Hasher:   password.NewHasher(password.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 16, SaltLen: 8}),
	})
	seeder := New(Params{
		DB:        conn,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     fake,
		Countries: countryrepository.Provide(),
		Auth:      auth,
	})

	bootstrap := config.BootstrapConfig{AdminEmail: "root@zoonova.com", AdminPassword: "correct-password"}
	require.NoError(t, seeder.Run(context.Background(), bootstrap))
	require.NoError(t, seeder.Run(context.Background(), bootstrap))

	var countries []countrydomain.Country
	require.NoError(t, conn.Order("code").Find(&countries).Error)
	require.Len(t, countries, 2)
	assert.Equal(t, "EU", countries[0].Code)
	assert.Equal(t, "Europe", countries[0].Name)
	assert.Equal(t, int64(1048), countries[0].ShippingCost)
	assert.Equal(t, "France", countries[1].Name)

	var adminCount int64
	require.NoError(t, conn.Model(&authdomain.Admin{}).Count(&adminCount).Error)
	assert.Equal(t, int64(1), adminCount)
}
