// internal/audit/audit.go
//
// Audit trail for moderation and admin-access events.
//
// Context
// -------
// Every admin access attempt and every create, approve, or delete lands
// here.  The Recorder writes each entry to zap (INFO on success, WARN on
// failure) and keeps the newest N entries in a ring so operators and tests
// can ask "how many failed admin attempts in the last hour?" without
// scanning log files.
//
// The Recorder is built once in main.go and injected into middleware and
// components.  There is no package-level instance.
//
// Notes
// -----
//   - Entries never carry the admin token.  Callers pass only the client IP,
//     the outcome, and a short reason.
//   - Oxford commas, two spaces after periods.
package audit

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Action names recorded by the service.
const (
	ActionAdminAccess   = "ADMIN_ACCESS_ATTEMPT"
	ActionPointCreate   = "POINT_CREATE"
	ActionPointApprove  = "POINT_APPROVE"
	ActionPointDelete   = "POINT_DELETE"
	ActionSuspiciousReq = "SUSPICIOUS_REQUEST"
)

// DefaultCapacity is the ring size used when New receives capacity < 1.
const DefaultCapacity = 1000

// Entry is one audit record.
type Entry struct {
	Timestamp time.Time
	Action    string
	Subject   string
	IP        string
	Success   bool
	Error     string
	Details   map[string]any
}

// Recorder is safe for concurrent use.
type Recorder struct {
	log *zap.Logger
	now func() time.Time

	mu   sync.Mutex
	ring []Entry
	next int
	full bool
}

// New returns a Recorder that logs through log and remembers capacity
// entries.
func New(log *zap.Logger, capacity int) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Recorder{
		log:  log.Named("audit"),
		now:  time.Now,
		ring: make([]Entry, capacity),
	}
}

// Record stamps e, stores it, and logs it.
func (r *Recorder) Record(e Entry) {
	e.Timestamp = r.now().UTC()

	r.mu.Lock()
	r.ring[r.next] = e
	r.next = (r.next + 1) % len(r.ring)
	if r.next == 0 {
		r.full = true
	}
	r.mu.Unlock()

	fields := []zap.Field{
		zap.String("action", e.Action),
		zap.String("ip", e.IP),
		zap.Time("at", e.Timestamp),
	}
	if e.Subject != "" {
		fields = append(fields, zap.String("subject", e.Subject))
	}
	if len(e.Details) > 0 {
		fields = append(fields, zap.Any("details", e.Details))
	}
	if e.Success {
		r.log.Info(e.Action, fields...)
		return
	}
	fields = append(fields, zap.String("error", e.Error))
	r.log.Warn(e.Action, fields...)
}

// AdminAccess records a guard decision.  reason is empty on success.
func (r *Recorder) AdminAccess(ip string, ok bool, reason string) {
	r.Record(Entry{Action: ActionAdminAccess, Subject: "admin", IP: ip, Success: ok, Error: reason})
}

// PointCreated records a public submission.
func (r *Recorder) PointCreated(ip string, id int64) {
	r.Record(Entry{
		Action:  ActionPointCreate,
		IP:      ip,
		Success: true,
		Details: map[string]any{"point_id": id},
	})
}

// PointApproved records an approval; err is nil on success.
func (r *Recorder) PointApproved(ip string, id int64, err error) {
	r.Record(Entry{
		Action:  ActionPointApprove,
		Subject: "admin",
		IP:      ip,
		Success: err == nil,
		Error:   errString(err),
		Details: map[string]any{"point_id": id},
	})
}

// PointDeleted records a deletion; name is the removed record's name when
// known.
func (r *Recorder) PointDeleted(ip string, id int64, name string, err error) {
	details := map[string]any{"point_id": id}
	if name != "" {
		details["point_name"] = name
	}
	r.Record(Entry{
		Action:  ActionPointDelete,
		Subject: "admin",
		IP:      ip,
		Success: err == nil,
		Error:   errString(err),
		Details: details,
	})
}

// Suspicious records a request that matched a scanner heuristic.
func (r *Recorder) Suspicious(ip, path, userAgent, why string) {
	r.Record(Entry{
		Action:  ActionSuspiciousReq,
		IP:      ip,
		Success: false,
		Error:   why,
		Details: map[string]any{"path": path, "user_agent": userAgent},
	})
}

// Recent returns up to limit entries, oldest first.
func (r *Recorder) Recent(limit int) []Entry {
	all := r.snapshot()
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all
}

// FailedAttempts returns failed entries for action newer than window.
func (r *Recorder) FailedAttempts(action string, window time.Duration) []Entry {
	cutoff := r.now().UTC().Add(-window)
	var out []Entry
	for _, e := range r.snapshot() {
		if e.Action == action && !e.Success && e.Timestamp.After(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

// snapshot copies the ring in chronological order.
func (r *Recorder) snapshot() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		out := make([]Entry, r.next)
		copy(out, r.ring[:r.next])
		return out
	}
	out := make([]Entry, 0, len(r.ring))
	out = append(out, r.ring[r.next:]...)
	out = append(out, r.ring[:r.next]...)
	return out
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
