package tracing

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsCustomerData(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("order_id", "12"),
		attribute.String("email", "a@b.c"),
		attribute.String("http.route", "/api/orders"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("order_id"), attrs[0].Key)
	assert.Equal(t, attribute.Key("http.route"), attrs[1].Key)
}

func TestSafeErrorTruncates(t *testing.T) {
	assert.Nil(t, SafeError(nil))
	err := SafeError(errors.New(strings.Repeat("x", 400)))
	assert.Len(t, err.Error(), 256)
}

func TestNewProviderDisabled(t *testing.T) {
	provider, err := NewProvider(nil, Config{ServiceName: "zoonova"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, provider)
}
