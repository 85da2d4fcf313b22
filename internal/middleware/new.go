package middleware

import (
	"calendar-integration/pkg/log"
)

// Config configures the shared middlewares.
type Config struct {
	// RateLimitPerMin is the sustained per-client request rate. 0 disables limiting.
	RateLimitPerMin int
}

type Middleware struct {
	l       log.Logger
	limiter *rateLimiter
}

func New(l log.Logger, cfg Config) Middleware {
	m := Middleware{l: l}
	if cfg.RateLimitPerMin > 0 {
		m.limiter = newRateLimiter(cfg.RateLimitPerMin)
	}
	return m
}
