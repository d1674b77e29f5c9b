package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/helioscrm/helios/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyCalculatorOrg = "calculator:org:%s"

// Defaults allow a sales rep to run estimates interactively without
// letting one tenant hammer the PVGIS upstream.
const (
	defaultCalculatorRate  = 1.0
	defaultCalculatorBurst = 20
)

// CalculatorLimiter throttles calculator runs per organization. With no
// redis configured it is disabled and allows everything.
type CalculatorLimiter struct {
	enabled bool
	bucket  *TokenBucket
	rate    float64
	burst   int
}

func NewCalculatorLimiter(cfg config.Config) *CalculatorLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return &CalculatorLimiter{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &CalculatorLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    defaultCalculatorRate,
		burst:   defaultCalculatorBurst,
	}
}

func (l *CalculatorLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *CalculatorLimiter) Allow(ctx context.Context, orgID string) (Result, error) {
	if !l.Enabled() {
		return Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyCalculatorOrg, strings.TrimSpace(orgID)), l.rate, l.burst)
}

// RetryAfterSeconds rounds up for the Retry-After response header.
func RetryAfterSeconds(d time.Duration) int {
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}
