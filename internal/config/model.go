// internal/config/model.go
//
// Typed configuration model for the disposal-point service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from its overlay layers:
//
//   • optional `.env`                            – dotenv values,
//   • `conf/global.yaml`                         – primary static file,
//   • legacy aliases (ADMIN_ACCESS_TOKEN, DATABASE_URL),
//   • `ECOPONTO_`-prefixed environment overrides – highest precedence.
//
// String values that begin with `vault:` are left as-is by the loader and
// swapped for real secrets by ResolveSecrets once a Vault client exists.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.  Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • Zero values are replaced by applyDefaults before validation.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import (
	"fmt"
	"strings"
	"time"
)

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr     string        `koanf:"listen_addr"     validate:"required,hostname_port"`
	ForceHTTPS     bool          `koanf:"force_https"`
	AllowedOrigins []string      `koanf:"allowed_origins" validate:"min=1,dive,required"`
	ReadTimeout    time.Duration `koanf:"read_timeout"    validate:"gt=0"`
	WriteTimeout   time.Duration `koanf:"write_timeout"   validate:"gt=0"`
	IdleTimeout    time.Duration `koanf:"idle_timeout"    validate:"gt=0"`
}

//
// Database section
//

// Database selects the storage driver and its connection.
//
// The DSN *template* is kept in YAML so operators can tweak host, port, or
// flags without touching Vault.  When it contains a `%s` verb the
// `Password` value (usually a vault: reference) is substituted at runtime,
// keeping credentials out of flat files and git history.
type Database struct {
	Driver       string        `koanf:"driver"        validate:"required,oneof=mysql sqlite memory"`
	DSN          string        `koanf:"dsn"           validate:"required_unless=Driver memory"`
	Password     string        `koanf:"password"`
	MaxOpen      int           `koanf:"max_open"      validate:"gte=0"`
	MaxIdle      int           `koanf:"max_idle"      validate:"gte=0"`
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"gt=0"`
}

// ConnString returns the DSN with Password substituted when the template
// asks for it.
func (d Database) ConnString() string {
	if d.Password != "" && strings.Contains(d.DSN, "%s") {
		return fmt.Sprintf(d.DSN, d.Password)
	}
	return d.DSN
}

//
// Admin section
//

// Admin carries the shared moderation secret.  An empty token is allowed;
// privileged routes then answer 500 until one is configured.
type Admin struct {
	Token string `koanf:"token"`
}

//
// Rate-limit section
//

// RateLimit configures the per-IP limiter.  RequestsPerMinute 0 disables it.
type RateLimit struct {
	RequestsPerMinute int           `koanf:"requests_per_minute" validate:"gte=0"`
	CleanupInterval   time.Duration `koanf:"cleanup_interval"    validate:"gt=0"`
}

//
// Log, Geo, and App sections
//

// Log selects the file sink directory and minimum level.
type Log struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

// Geo points at an optional GeoLite2-City database.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

// App holds deployment metadata reported by /health.
type App struct {
	Environment string `koanf:"environment" validate:"required"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.  The loader
// discovers `Root` (repo root or ECOPONTO_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // ECOPONTO_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP      HTTP      `koanf:"http"`
	Database  Database  `koanf:"database"`
	Admin     Admin     `koanf:"admin"`
	RateLimit RateLimit `koanf:"ratelimit"`
	Log       Log       `koanf:"log"`
	Geo       Geo       `koanf:"geo"`
	App       App       `koanf:"app"`
	Paths     Paths     `koanf:"-"` // not loaded from config files
}
