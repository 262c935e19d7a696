// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request with *RequestInfo.
//
/*
Context
--------
This handler sits high in the chain, before the suspicious-request logger,
the rate limiter, and the admin guard, all of which read the client IP from
it.  For every request it:

  1. Resolves the client IP from CF-Connecting-IP, X-Forwarded-For,
     X-Real-IP, or `r.RemoteAddr`, in that order.
  2. Parses the User-Agent header.
  3. Performs a GeoLite2 lookup when a reader is configured.
  4. Stores a `*RequestInfo` value in the request context under an
     unexported key.

Notes
-----
  • The service normally runs behind a proxy (usually Cloudflare), so
    forwarded headers are trusted.  Deployments exposed directly should strip
    them at the edge.
  • Oxford commas, two spaces after periods.  No em dash.
*/
package requestinfo

import (
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/ecoponto/internal/ua"
)

// UnknownIP is reported when no address can be resolved.
const UnknownIP = "unknown"

/*──────────────────────────── middleware ───────────────────────────────────*/

// Enricher builds RequestInfo values.  Geo may be nil.
type Enricher struct {
	Geo GeoLookup
	Log *zap.Logger
}

// Middleware wraps next, attaches *RequestInfo, and forwards.
func (e *Enricher) Middleware(next http.Handler) http.Handler {
	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)

		info := &RequestInfo{
			IP:        ip,
			UA:        ua.Parse(r.UserAgent()),
			Path:      r.URL.Path,
			Timestamp: time.Now().UTC(),
		}
		if e.Geo != nil {
			info.Geo = e.Geo.Lookup(net.ParseIP(ip))
		}

		log.Debug("request info",
			zap.String("ip", info.IP),
			zap.String("country", info.Geo.CountryISO),
			zap.String("client", info.UA.Summary()),
			zap.Bool("automated", info.UA.Automated()),
			zap.String("path", r.URL.Path),
		)

		next.ServeHTTP(w, r.WithContext(WithInfo(r.Context(), info)))
	})
}

/*──────────────────────────── client IP helpers ────────────────────────────*/

// IP returns the client IP recorded on r, resolving it when the middleware
// did not run.
func IP(r *http.Request) string {
	if info := FromContext(r.Context()); info != nil {
		return info.IP
	}
	return ClientIP(r)
}

// ClientIP extracts the best client address from proxy headers, falling back
// to r.RemoteAddr ("ip:port").  It returns UnknownIP when nothing parses.
func ClientIP(r *http.Request) string {
	if cf := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); isValidIP(cf) {
		return cf
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := strings.TrimSpace(part); isValidIP(ip) {
				return ip
			}
		}
	}
	if xrip := strings.TrimSpace(r.Header.Get("X-Real-Ip")); isValidIP(xrip) {
		return xrip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && isValidIP(host) {
		return host
	}
	if isValidIP(r.RemoteAddr) {
		return r.RemoteAddr
	}
	return UnknownIP
}

func isValidIP(s string) bool {
	return s != "" && net.ParseIP(s) != nil
}
