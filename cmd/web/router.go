// cmd/web/router.go
//
// Root router assembly.
//
// Middleware order (outermost first):
//
//	RequestID → Recoverer → ForceHTTPS → Security → CORS → request info →
//	access log → suspicious-request audit → per-IP rate limit → components
//
// CORS runs before the limiter so a 429 still carries CORS headers and the
// browser can surface it.  /metrics is registered on the root router and
// therefore shares the full chain.

package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/yanizio/ecoponto/components/adminauth"
	"github.com/yanizio/ecoponto/components/pontos"
	"github.com/yanizio/ecoponto/components/status"
	"github.com/yanizio/ecoponto/internal/audit"
	"github.com/yanizio/ecoponto/internal/component"
	"github.com/yanizio/ecoponto/internal/guard"
	"github.com/yanizio/ecoponto/internal/middleware"
	"github.com/yanizio/ecoponto/internal/ponto"
	"github.com/yanizio/ecoponto/internal/ratelimit"
	"github.com/yanizio/ecoponto/internal/requestinfo"
)

// routerDeps carries everything newRouter wires together.
type routerDeps struct {
	Store          *ponto.Store
	Guard          *guard.Guard
	Audit          *audit.Recorder
	Limiter        *ratelimit.Limiter
	Geo            requestinfo.GeoLookup
	Log            *zap.Logger
	AllowedOrigins []string
	ForceHTTPS     bool
	Environment    string
}

// corsOptions mirrors the browser contract of the map client.
func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Content-Type", "Authorization", middleware.AdminTokenHeader,
			"CF-Connecting-IP", "X-Forwarded-For",
		},
		AllowCredentials: true,
		MaxAge:           86400,
	}
}

func newRouter(d routerDeps) (http.Handler, error) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.ForceHTTPS(d.ForceHTTPS))
	r.Use(middleware.Security)
	r.Use(cors.New(corsOptions(d.AllowedOrigins)).Handler)
	r.Use((&requestinfo.Enricher{Geo: d.Geo, Log: log}).Middleware)
	r.Use(middleware.AccessLog(log.Named("http")))
	r.Use(middleware.Suspicious(d.Audit))
	if d.Limiter != nil {
		r.Use(middleware.RateLimit(d.Limiter, log))
	}

	r.Handle("/metrics", promhttp.Handler())

	admin := middleware.AdminOnly(d.Guard, d.Audit, log)

	reg := component.NewRegistry()
	for _, c := range []component.Component{
		pontos.New(d.Store, admin, d.Audit, log),
		adminauth.New(d.Guard, d.Audit, log),
		status.New(d.Environment),
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	reg.Mount(r)

	return r, nil
}
