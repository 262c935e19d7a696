// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net/http"
	"strings"
)

// ForceHTTPS returns a wrapper that issues a 308 Permanent Redirect to the
// HTTPS version of the same URL when the request is plain HTTP and the host
// is not “localhost”.  When enabled is false the wrapper is a pass-through,
// which is what development setups want.
func ForceHTTPS(enabled bool) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		if !enabled {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Already HTTPS or dev host → continue.
			if isHTTPS(r) || isLocal(stripPort(r.Host)) {
				h.ServeHTTP(w, r)
				return
			}
			target := "https://" + r.Host + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusPermanentRedirect)
		})
	}
}

func isLocal(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "[::1]" || host == ""
}

// stripPort removes the :port suffix from Host when present.  Bracketed IPv6
// literals keep their brackets.
func stripPort(h string) string {
	if strings.HasPrefix(h, "[") {
		if i := strings.IndexByte(h, ']'); i != -1 {
			return h[:i+1]
		}
		return h
	}
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}
