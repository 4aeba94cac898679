package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	h "eventhub/internal/delivery/http/helpers"
)

const rateLimitPrefix = "eventhub:ratelimit"

// RateLimitConfig configures per-client request limiting.
type RateLimitConfig struct {
	// Rate is a ulule formatted rate such as "120-M" (120 requests per minute).
	Rate string
	// Redis shares counters between instances when set; otherwise counters are in memory.
	Redis *redis.Client
	// TrustForwardHeader keys clients by X-Forwarded-For / X-Real-IP (behind a proxy).
	TrustForwardHeader bool
}

// NewRateLimiter builds a middleware that answers 429 once a client IP exceeds the rate.
// It returns nil when no rate is configured.
func NewRateLimiter(cfg RateLimitConfig, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	if cfg.Rate == "" {
		return nil, nil
	}
	rate, err := limiter.NewRateFromFormatted(cfg.Rate)
	if err != nil {
		return nil, fmt.Errorf("parse rate limit %q: %w", cfg.Rate, err)
	}

	var store limiter.Store
	if cfg.Redis != nil {
		store, err = sredis.NewStoreWithOptions(cfg.Redis, limiter.StoreOptions{Prefix: rateLimitPrefix})
		if err != nil {
			return nil, fmt.Errorf("create redis rate limit store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix})
	}

	instance := limiter.New(store, rate, limiter.WithTrustForwardHeader(cfg.TrustForwardHeader))
	mw := stdlib.NewMiddleware(instance,
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeTooManyRequests, "rate limit exceeded")
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			logger.ErrorContext(r.Context(), "rate limiter failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal server error")
		}),
	)
	return mw.Handler, nil
}
