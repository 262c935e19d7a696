// internal/middleware/ratelimit.go
//
// Per-client request quota.  The key is the client IP resolved by
// requestinfo, so this wrapper must sit below the enrichment middleware.

package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/ecoponto/internal/metrics"
	"github.com/yanizio/ecoponto/internal/ratelimit"
	"github.com/yanizio/ecoponto/internal/requestinfo"
	"github.com/yanizio/ecoponto/internal/respond"
)

// RateLimit rejects requests over the limiter's quota with 429 and a
// Retry-After header.  CORS preflights are never counted.
func RateLimit(l *ratelimit.Limiter, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			ip := requestinfo.IP(r)
			if err := l.Allow(ip); err != nil {
				metrics.RateLimitedTotal.Inc()
				log.Warn("rate limit exceeded",
					zap.String("ip", ip),
					zap.String("path", r.URL.Path))
				respond.Error(w, r, &respond.RetryAfterError{
					Seconds: int(l.RetryAfter().Seconds()),
				}, log)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
