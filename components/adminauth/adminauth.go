// components/adminauth/adminauth.go
//
// Admin token verification endpoint.
//
// The moderation UI posts the token once at login to learn whether it is
// valid before storing it client-side.  Later privileged calls re-present it
// in the `x-admin-token` header and are verified independently, so this
// endpoint grants nothing by itself.
//
//	POST /api/verify-admin   {"adminToken": "…"}
//
// A missing or short token is a 400 here (bad request body) rather than the
// 401 the header middleware uses.

package adminauth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/ecoponto/internal/audit"
	"github.com/yanizio/ecoponto/internal/component"
	"github.com/yanizio/ecoponto/internal/guard"
	"github.com/yanizio/ecoponto/internal/metrics"
	"github.com/yanizio/ecoponto/internal/requestinfo"
	"github.com/yanizio/ecoponto/internal/respond"
)

const maxBodyBytes = 4 << 10

var _ component.Component = (*Component)(nil)

// Component serves POST /api/verify-admin.
type Component struct {
	guard *guard.Guard
	audit *audit.Recorder
	log   *zap.Logger
}

// New wires the component.  rec and log may be nil.
func New(g *guard.Guard, rec *audit.Recorder, log *zap.Logger) *Component {
	if log == nil {
		log = zap.NewNop()
	}
	if rec == nil {
		rec = audit.New(log, 0)
	}
	return &Component{guard: g, audit: rec, log: log.Named("adminauth")}
}

func (c *Component) Name() string    { return "adminauth" }
func (c *Component) Pattern() string { return "/api/verify-admin" }

func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.NotFound(respond.NotFound)
	r.MethodNotAllowed(respond.MethodNotAllowed)
	r.Post("/", c.handleVerify)
	return r
}

type verifyResult struct {
	IsAdmin bool `json:"isAdmin"`
}

func (c *Component) handleVerify(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ip := requestinfo.IP(r)
	err := c.guard.VerifyAny(body["adminToken"])
	if err == nil {
		c.audit.AdminAccess(ip, true, "")
		respond.OK(w, verifyResult{IsAdmin: true}, "")
		return
	}

	var de *guard.DeniedError
	if !errors.As(err, &de) {
		respond.Error(w, r, err, c.log)
		return
	}
	metrics.AdminAuthDeniedTotal.WithLabelValues(de.Reason.String()).Inc()
	c.audit.AdminAccess(ip, false, de.Reason.String())

	if de.Reason == guard.ReasonMissingOrTooShort {
		respond.Fail(w, http.StatusBadRequest, respond.MsgTokenRequired)
		return
	}
	respond.Error(w, r, err, c.log)
}
