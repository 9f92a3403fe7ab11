package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "  req-1 ")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Empty(t, ActorIDFromContext(ctx))

	ctx = WithActorID(ctx, "42")
	assert.Equal(t, "42", ActorIDFromContext(ctx))
}
