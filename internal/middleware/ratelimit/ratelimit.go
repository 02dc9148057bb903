// Package ratelimit throttles mutating requests per client address.
package ratelimit

import (
	"net/http"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"spendwise/internal/log"
	"spendwise/internal/metrics"
)

// DefaultRate is used when the configured rate is empty.
const DefaultRate = "60-M"

// Limiter rate limits POST, PUT, PATCH and DELETE requests. Reads pass
// through untouched.
type Limiter struct {
	limiter    *limiter.Limiter
	middleware *stdlib.Middleware
	logger     *log.Logger
}

// New builds a Limiter from a formatted rate such as "60-M" and a function
// that maps a request to its client key.
func New(rate string, keyFunc func(*http.Request) string, logger *log.Logger) (*Limiter, error) {
	if rate == "" {
		rate = DefaultRate
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentRateLimit)
	}

	l := &Limiter{
		limiter: limiter.New(memory.NewStore(), parsed),
		logger:  logger.WithComponent(log.ComponentRateLimit),
	}
	l.middleware = stdlib.NewMiddleware(l.limiter,
		stdlib.WithKeyGetter(keyFunc),
		stdlib.WithLimitReachedHandler(l.onLimit),
	)
	return l, nil
}

func (l *Limiter) onLimit(w http.ResponseWriter, r *http.Request) {
	metrics.RecordRateLimited(r.Method)
	l.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
}

// Middleware creates HTTP middleware for rate limiting
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	limited := l.middleware.Handler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			limited.ServeHTTP(w, r)
		default:
			next.ServeHTTP(w, r)
		}
	})
}
