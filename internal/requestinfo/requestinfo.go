//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types and helpers that collect per-request metadata
//  (client IP, user-agent fingerprint, optional geolocation, and
//  timestamp).  These structs are inert.  They hold no pointers to database
//  handles or large buffers, so they are safe to log.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing, via internal/ua)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)
//

package requestinfo

import (
	"context"
	"net"
	"time"

	"github.com/oschwald/geoip2-golang"

	"github.com/yanizio/ecoponto/internal/ua"
)

// Geo holds IP-based geolocation hints.  Best-effort; empty when no GeoLite2
// database is configured or the address has no match.
type Geo struct {
	CountryISO string // "BR", "PT", ...
	City       string // "São Paulo", ...
}

// RequestInfo is attached to the request context by Enricher.Middleware.
type RequestInfo struct {
	IP        string
	UA        ua.Info
	Geo       Geo
	Path      string
	Timestamp time.Time
}

type ctxKey struct{} // unexported, collision-proof

// FromContext returns the pointer stored by the middleware, or nil when the
// middleware has not run.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// WithInfo stores info in ctx.  Exposed for tests that bypass the middleware.
func WithInfo(ctx context.Context, info *RequestInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// GeoLookup resolves an address to Geo.  *geoip2.Reader satisfies it through
// GeoReader.
type GeoLookup interface {
	Lookup(ip net.IP) Geo
}

// GeoReader adapts a MaxMind reader.  The reader is safe for concurrent
// reads, which is all we ever perform.
type GeoReader struct {
	r *geoip2.Reader
}

// OpenGeo opens a GeoLite2-City database.
func OpenGeo(path string) (*GeoReader, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &GeoReader{r: r}, nil
}

// Lookup returns best-effort Geo data for ip.
func (g *GeoReader) Lookup(ip net.IP) Geo {
	if g == nil || g.r == nil || ip == nil {
		return Geo{}
	}
	rec, err := g.r.City(ip)
	if err != nil {
		return Geo{}
	}
	return Geo{
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["pt-BR"],
	}
}

// Close releases the database file.
func (g *GeoReader) Close() error {
	if g == nil || g.r == nil {
		return nil
	}
	return g.r.Close()
}
