// internal/middleware/admin.go
//
// Admin-only route guard.
//
// Context
// -------
// Privileged routes (pending list, approve, delete) mount behind AdminOnly.
// The wrapper reads the `x-admin-token` header, asks the Guard for a
// verdict, records the attempt in the audit trail, and on success marks the
// request context with guard.WithAdmin so handlers can assert it.
//
//	missing or short → 401
//	not configured   → 500
//	mismatch         → 403
//
// Notes
// -----
//   - The token is never logged, audited, or echoed.
//   - Oxford commas, two spaces after periods.

package middleware

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/ecoponto/internal/audit"
	"github.com/yanizio/ecoponto/internal/guard"
	"github.com/yanizio/ecoponto/internal/metrics"
	"github.com/yanizio/ecoponto/internal/requestinfo"
	"github.com/yanizio/ecoponto/internal/respond"
)

// AdminTokenHeader carries the shared admin secret.
const AdminTokenHeader = "x-admin-token"

// AdminOnly wraps privileged handlers.  rec and log may be nil.
func AdminOnly(g *guard.Guard, rec *audit.Recorder, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := requestinfo.IP(r)

			err := g.Verify(r.Header.Get(AdminTokenHeader))
			if err != nil {
				var de *guard.DeniedError
				reason := "unknown"
				if errors.As(err, &de) {
					reason = de.Reason.String()
				}
				metrics.AdminAuthDeniedTotal.WithLabelValues(reason).Inc()
				if rec != nil {
					rec.AdminAccess(ip, false, reason)
				}
				respond.Error(w, r, err, log)
				return
			}

			if rec != nil {
				rec.AdminAccess(ip, true, "")
			}
			next.ServeHTTP(w, r.WithContext(guard.WithAdmin(r.Context())))
		})
	}
}
