// internal/respond/respond.go
//
// JSON envelope writers shared by every Component and middleware.
//
// Context
// -------
// Every API response uses one envelope:
//
//	{"success": bool, "data": …, "message": "…", "error": "…"}
//
// Error maps the service's error taxonomy onto HTTP status codes so handlers
// never pick a status by hand.  Storage and unknown errors are logged with
// their cause and rendered as a generic 500; the cause never reaches the
// client.
//
// Notes
// -----
//   - Oxford commas, two spaces after periods.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/ecoponto/internal/guard"
	"github.com/yanizio/ecoponto/internal/ponto"
	"github.com/yanizio/ecoponto/internal/ratelimit"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Public error strings.
const (
	MsgInternal      = "internal server error"
	MsgNotFound      = "disposal point not found"
	MsgTokenRequired = "admin token required"
	MsgNotConfigured = "admin access is not configured"
	MsgInvalidToken  = "invalid admin token"
	MsgRateLimited   = "too many requests, try again later"
)

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, data any, message string) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// Fail writes a failure envelope with an explicit status.
func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Envelope{Success: false, Error: msg})
}

// Error renders err.  log may be nil.
func Error(w http.ResponseWriter, r *http.Request, err error, log *zap.Logger) {
	status, msg := Status(err)

	if log != nil && status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	if errors.Is(err, ratelimit.ErrLimited) {
		if d := retryAfter(err); d != "" {
			w.Header().Set("Retry-After", d)
		}
	}
	Fail(w, status, msg)
}

// Status maps err to an HTTP status and a client-safe message.
func Status(err error) (int, string) {
	var (
		ve *ponto.ValidationError
		de *guard.DeniedError
		se *ponto.StorageError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.Is(err, ponto.ErrNotFound):
		return http.StatusNotFound, MsgNotFound
	case errors.As(err, &de):
		switch de.Reason {
		case guard.ReasonMissingOrTooShort:
			return http.StatusUnauthorized, MsgTokenRequired
		case guard.ReasonNotConfigured:
			return http.StatusInternalServerError, MsgNotConfigured
		default:
			return http.StatusForbidden, MsgInvalidToken
		}
	case errors.Is(err, ratelimit.ErrLimited):
		return http.StatusTooManyRequests, MsgRateLimited
	case errors.As(err, &se):
		return http.StatusInternalServerError, MsgInternal
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

// RetryAfterError carries a wait hint alongside ErrLimited.
type RetryAfterError struct {
	Seconds int
}

func (e *RetryAfterError) Error() string { return ratelimit.ErrLimited.Error() }

func (e *RetryAfterError) Unwrap() error { return ratelimit.ErrLimited }

func retryAfter(err error) string {
	var ra *RetryAfterError
	if errors.As(err, &ra) && ra.Seconds > 0 {
		return strconv.Itoa(ra.Seconds)
	}
	return ""
}

// NotFound is a chi NotFound handler that keeps the envelope.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	Fail(w, http.StatusNotFound, "route not found")
}

// MethodNotAllowed is the matching chi MethodNotAllowed handler.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	Fail(w, http.StatusMethodNotAllowed, "method not allowed")
}
