// components/status/status.go
//
// Service info and liveness.
//
//	GET /         name, version, status, endpoint map
//	GET /health   {"status":"healthy","timestamp":…,"environment":…}
//
// Mounted at "/", so it also owns the JSON 404 for unclaimed paths.

package status

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/ecoponto/internal/component"
	"github.com/yanizio/ecoponto/internal/respond"
)

// Version is reported by GET /.  Overridden at link time.
var Version = "1.0.0"

var _ component.Component = (*Component)(nil)

// Component serves the status routes.
type Component struct {
	env string
	now func() time.Time
}

// New returns a status component that reports env as the environment.
func New(env string) *Component {
	return &Component{env: env, now: time.Now}
}

func (c *Component) Name() string    { return "status" }
func (c *Component) Pattern() string { return "/" }

func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.NotFound(respond.NotFound)
	r.MethodNotAllowed(respond.MethodNotAllowed)
	r.Get("/", c.handleInfo)
	r.Get("/health", c.handleHealth)
	return r
}

// Info is the body of GET /.
type Info struct {
	Service     string            `json:"service"`
	Description string            `json:"description"`
	Version     string            `json:"version"`
	Status      string            `json:"status"`
	Endpoints   map[string]string `json:"endpoints"`
}

// Health is the body of GET /health.
type Health struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
}

func (c *Component) handleInfo(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, Info{
		Service:     "EcoMap API",
		Description: "Community map of recycling and disposal points",
		Version:     Version,
		Status:      "operational",
		Endpoints: map[string]string{
			"pontos":  "/api/pontos",
			"admin":   "/api/verify-admin",
			"health":  "/health",
			"metrics": "/metrics",
		},
	})
}

func (c *Component) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, Health{
		Status:      "healthy",
		Timestamp:   c.now().UTC(),
		Environment: c.env,
	})
}
