// internal/middleware/security.go
//
// Security-header middleware.
//
// Injects the standard defensive headers on every response:
//
//   • Content-Security-Policy   –  API-only policy, nothing may load or frame
//   • X-Frame-Options           –  click-jacking defence
//   • X-Content-Type-Options    –  MIME-sniffing defence
//   • X-XSS-Protection          –  legacy filter for old browsers
//   • Referrer-Policy           –  drops path/query from Referer
//   • Permissions-Policy        –  disables powerful features by default
//   • Strict-Transport-Security –  only when the request arrived over HTTPS
//
// Notes
// -----
// • Headers are written *before* next.ServeHTTP, since anything added after
//   the handler writes its status line is silently dropped.  Handlers that
//   need a different value simply Set it again.
// • HTTPS is detected from r.TLS or X-Forwarded-Proto, so HSTS still works
//   behind a TLS-terminating proxy.
// • Oxford commas, two spaces after periods.

package middleware

import "net/http"

// Security sets security headers for every response.
func Security(next http.Handler) http.Handler {
	const (
		hsts  = "max-age=63072000; includeSubDomains; preload"
		csp   = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
		xfo   = "DENY"
		nosn  = "nosniff"
		xss   = "1; mode=block"
		refer = "strict-origin-when-cross-origin"
		perm  = "geolocation=(), microphone=(), camera=()"
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		h.Set("Content-Security-Policy", csp)
		h.Set("X-Frame-Options", xfo)
		h.Set("X-Content-Type-Options", nosn)
		h.Set("X-XSS-Protection", xss)
		h.Set("Referrer-Policy", refer)
		h.Set("Permissions-Policy", perm)
		if isHTTPS(r) {
			h.Set("Strict-Transport-Security", hsts)
		}

		next.ServeHTTP(w, r)
	})
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
