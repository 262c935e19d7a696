// internal/config/validator.go
//
// Defaults and validation for the merged configuration tree.
//
// Context
// -------
// `internal/config/loader.go` calls `applyDefaults` and then
// `validateStruct` immediately after it unmarshals the Koanf tree.  Any
// validation error aborts startup, so the binary never runs with partial,
// malformed, or missing configuration.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.
//   • Section dividers use the simple comment style.

package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

//
// defaults
//

const (
	DefaultListenAddr        = ":8080"
	DefaultDriver            = "sqlite"
	DefaultSQLiteDSN         = "file:ecoponto.db?_pragma=busy_timeout(5000)"
	DefaultQueryTimeout      = 5 * time.Second
	DefaultRequestsPerMinute = 100
	DefaultEnvironment       = "development"
)

// applyDefaults fills zero values.  RequestsPerMinute is only defaulted when
// the key was absent, since 0 is a valid "disabled" setting.
func applyDefaults(c *Config, rpmSet bool) {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = DefaultListenAddr
	}
	c.HTTP.AllowedOrigins = splitList(c.HTTP.AllowedOrigins)
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"*"}
	}
	if c.HTTP.ReadTimeout <= 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.WriteTimeout <= 0 {
		c.HTTP.WriteTimeout = 15 * time.Second
	}
	if c.HTTP.IdleTimeout <= 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DefaultDriver
	}
	c.Database.Driver = strings.ToLower(c.Database.Driver)
	if c.Database.Driver == "sqlite" && c.Database.DSN == "" {
		c.Database.DSN = DefaultSQLiteDSN
	}
	if c.Database.QueryTimeout <= 0 {
		c.Database.QueryTimeout = DefaultQueryTimeout
	}

	if !rpmSet {
		c.RateLimit.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if c.RateLimit.CleanupInterval <= 0 {
		c.RateLimit.CleanupInterval = time.Minute
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	if c.App.Environment == "" {
		c.App.Environment = DefaultEnvironment
	}
}

// splitList flattens comma-separated entries, which is how list values
// arrive from environment variables.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
