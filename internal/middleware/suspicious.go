// internal/middleware/suspicious.go
//
// Scanner and traversal detector.  Matching requests are written to the
// audit trail and then served normally; this wrapper never blocks.

package middleware

import (
	"net/http"
	"strings"

	"github.com/yanizio/ecoponto/internal/audit"
	"github.com/yanizio/ecoponto/internal/requestinfo"
	"github.com/yanizio/ecoponto/internal/ua"
)

// Suspicious audits requests that look like automated probing.
func Suspicious(rec *audit.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if why := SuspiciousReason(r); why != "" && rec != nil {
				rec.Suspicious(requestinfo.IP(r), r.URL.Path, r.UserAgent(), why)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SuspiciousReason returns a short label when r matches a heuristic, else "".
func SuspiciousReason(r *http.Request) string {
	var info ua.Info
	if ri := requestinfo.FromContext(r.Context()); ri != nil {
		info = ri.UA
	} else {
		info = ua.Parse(r.UserAgent())
	}

	switch {
	case info.Scanner != "":
		return "scanner user agent: " + info.Scanner
	case strings.Contains(r.URL.Path, "../") || strings.Contains(r.URL.RawQuery, "../"):
		return "path traversal"
	case info.IsBot:
		return "bot user agent"
	}
	return ""
}
