// components/pontos/pontos.go
//
// Disposal-point API component.
//
// Context
// -------
// Mounted at /api/pontos.  Public callers list approved points and submit
// new ones; the moderator lists pending points, approves, and deletes.
// Privileged routes sit in a chi Group behind the AdminOnly middleware,
// which verifies `x-admin-token` before any handler runs.
//
//	GET    /                 approved points          public
//	POST   /                 submit a point           public
//	GET    /nao-aprovados    pending points           admin
//	PUT    /{id}/aprovar     approve                  admin
//	DELETE /{id}             delete                   admin
//
// Notes
// -----
//   - Request bodies are capped at MaxBodyBytes.
//   - Path ids must be positive base-10 integers.
//   - Oxford commas, two spaces after periods.

package pontos

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/ecoponto/internal/audit"
	"github.com/yanizio/ecoponto/internal/component"
	"github.com/yanizio/ecoponto/internal/guard"
	"github.com/yanizio/ecoponto/internal/ponto"
	"github.com/yanizio/ecoponto/internal/requestinfo"
	"github.com/yanizio/ecoponto/internal/respond"
)

// MaxBodyBytes caps submission bodies.
const MaxBodyBytes = 64 << 10

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves the disposal-point API.
type Component struct {
	store *ponto.Store
	admin func(http.Handler) http.Handler
	audit *audit.Recorder
	log   *zap.Logger
}

// New wires the component.  admin is the AdminOnly middleware; rec and log
// may be nil.
func New(store *ponto.Store, admin func(http.Handler) http.Handler, rec *audit.Recorder, log *zap.Logger) *Component {
	if log == nil {
		log = zap.NewNop()
	}
	if rec == nil {
		rec = audit.New(log, 0)
	}
	return &Component{store: store, admin: admin, audit: rec, log: log.Named("pontos")}
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "pontos" }

// Pattern is the mount point.
func (c *Component) Pattern() string { return "/api/pontos" }

// Routes builds the router mounted at Pattern.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.NotFound(respond.NotFound)
	r.MethodNotAllowed(respond.MethodNotAllowed)

	r.Get("/", c.handleList)
	r.Post("/", c.handleSubmit)

	r.Group(func(admin chi.Router) {
		admin.Use(c.admin)
		admin.Get("/nao-aprovados", c.handlePending)
		admin.Put("/{id}/aprovar", c.handleApprove)
		admin.Delete("/{id}", c.handleDelete)
	})
	return r
}

/*──────────────────────────── public ───────────────────────────────────────*/

func (c *Component) handleList(w http.ResponseWriter, r *http.Request) {
	points, err := c.store.ListApproved(r.Context())
	if err != nil {
		respond.Error(w, r, err, c.log)
		return
	}
	respond.OK(w, points, "")
}

// submitted is the data payload of a successful submission.
type submitted struct {
	ID int64 `json:"id"`
}

func (c *Component) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var cand ponto.Candidate
	if err := decodeJSON(w, r, &cand); err != nil {
		respond.Error(w, r, err, c.log)
		return
	}

	// Boundary check; Submit repeats it on the sanitized values.
	if err := ponto.Validate(cand); err != nil {
		respond.Error(w, r, err, c.log)
		return
	}

	p, err := c.store.Submit(r.Context(), cand)
	if err != nil {
		respond.Error(w, r, err, c.log)
		return
	}

	c.audit.PointCreated(requestinfo.IP(r), p.ID)
	respond.OK(w, submitted{ID: p.ID}, "disposal point submitted, awaiting approval")
}

/*──────────────────────────── admin ────────────────────────────────────────*/

func (c *Component) handlePending(w http.ResponseWriter, r *http.Request) {
	// The group middleware already ran; refuse if it was bypassed.
	if !guard.IsAdmin(r.Context()) {
		respond.Error(w, r, &guard.DeniedError{Reason: guard.ReasonMissingOrTooShort}, c.log)
		return
	}
	points, err := c.store.ListPending(r.Context())
	if err != nil {
		respond.Error(w, r, err, c.log)
		return
	}
	respond.OK(w, points, "")
}

func (c *Component) handleApprove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.Error(w, r, err, c.log)
		return
	}

	p, err := c.store.Approve(r.Context(), id)
	c.audit.PointApproved(requestinfo.IP(r), id, err)
	if err != nil {
		respond.Error(w, r, err, c.log)
		return
	}
	respond.OK(w, p, "disposal point approved")
}

func (c *Component) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.Error(w, r, err, c.log)
		return
	}
	ip := requestinfo.IP(r)

	existing, found, err := c.store.FindByID(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err, c.log)
		return
	}
	if !found {
		c.audit.PointDeleted(ip, id, "", ponto.ErrNotFound)
		respond.Error(w, r, ponto.ErrNotFound, c.log)
		return
	}

	removed, err := c.store.Delete(r.Context(), id)
	switch {
	case err != nil:
		c.audit.PointDeleted(ip, id, existing.Name, err)
		respond.Error(w, r, err, c.log)
		return
	case !removed:
		// Lost a race with another delete.
		c.audit.PointDeleted(ip, id, existing.Name, ponto.ErrNotFound)
		respond.Error(w, r, ponto.ErrNotFound, c.log)
		return
	}

	c.audit.PointDeleted(ip, id, existing.Name, nil)
	respond.OK(w, nil, "disposal point deleted")
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

// pathID parses {id} as a positive integer.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &ponto.ValidationError{Field: "id", Message: "invalid disposal point id"}
	}
	return id, nil
}

// decodeJSON reads one JSON object from a size-capped body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return &ponto.ValidationError{Message: "request body too large"}
		}
		return &ponto.ValidationError{Message: "invalid JSON body"}
	}
	return nil
}
