package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/zoonova/internal/config"
)

const keyPublicEndpoint = "zoonova:ratelimit:%s:%s"

// PublicLimiter throttles anonymous write endpoints (orders, contact form) per
// client address.
type PublicLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewPublicLimiter(cfg config.Config, bucket *TokenBucket) *PublicLimiter {
	if !cfg.RateLimit.Enabled || bucket == nil {
		return nil
	}
	return &PublicLimiter{
		bucket: bucket,
		rate:   cfg.RateLimit.Rate,
		burst:  cfg.RateLimit.Burst,
	}
}

func (l *PublicLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *PublicLimiter) Allow(ctx context.Context, endpoint, clientIP string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	key := fmt.Sprintf(keyPublicEndpoint, strings.TrimSpace(endpoint), strings.TrimSpace(clientIP))
	return l.bucket.Allow(ctx, key, l.rate, l.burst)
}
