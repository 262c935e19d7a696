// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from four layers (highest
precedence last):

  1. Optional `.env` file at `<root>/conf/.env`.
  2. Optional `conf/global.yaml`.
  3. Legacy variable names still used by deploy scripts: `ADMIN_ACCESS_TOKEN`
     maps to `admin.token` and `DATABASE_URL` to `database.dsn`.
  4. Environment variables prefixed `ECOPONTO_`, where `__` maps to “.”
     (e.g., `ECOPONTO_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the tree is unmarshalled into strongly-typed structs,
defaulted, validated, enriched with the runtime root path, and cached in an
`atomic.Pointer` for lock-free reads.  `Reload()` simply calls `Load()`
again and swaps the pointer.

Instrumentation
---------------
  • DEBUG: root discovery, YAML read, env overlay.
  • ERROR: YAML parse, env overlay, unmarshal, and validation failures.
  • INFO: one “config loaded” line with key settings.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`, so
    `go run ./cmd/web` works from any sub-directory.
  • Secrets are never logged; only whether one is present.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/ecoponto/internal/vault"
)

// EnvPrefix scopes environment overrides.
const EnvPrefix = "ECOPONTO_"

// legacyEnv maps legacy variable names to config keys.
var legacyEnv = map[string]string{
	"ADMIN_ACCESS_TOKEN": "admin.token",
	"DATABASE_URL":       "database.dsn",
}

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves ECOPONTO_ROOT or climbs directories until
// conf/global.yaml is found.  Falls back to an executable heuristic for the
// production layout.
func rootDir() string {
	if r := os.Getenv(EnvPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load discovers the root directory and calls LoadFrom.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)
	return LoadFrom(root)
}

// LoadFrom reads .env, YAML, legacy variables, and env overrides under root,
// validates, and caches Config.
func LoadFrom(root string) (*Config, error) {
	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
			zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
			return nil, fmt.Errorf("load %s: %w", yamlPath, err)
		}
		zap.S().Debugw("config yaml loaded", "file", yamlPath)
	} else {
		zap.S().Debugw("config yaml absent, using env and defaults", "file", yamlPath)
	}

	for name, key := range legacyEnv {
		if val, ok := os.LookupEnv(name); ok && val != "" {
			if err := k.Set(key, val); err != nil {
				return nil, fmt.Errorf("apply %s: %w", name, err)
			}
		}
	}

	// Env overrides: ECOPONTO_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, EnvPrefix), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg, k.Exists("ratelimit.requests_per_minute"))
	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, fmt.Errorf("validate config: %w", err)
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"driver", cfg.Database.Driver,
		"admin_token_set", cfg.Admin.Token != "",
		"environment", cfg.App.Environment,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

/*──────────────────────────── secrets ─────────────────────────────────────*/

// SecretResolver fetches one key of a KV secret.  *vault.Client satisfies it.
type SecretResolver interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// HasSecretRefs reports whether any secret-bearing field is a vault:
// reference, so main.go only dials Vault when it must.
func HasSecretRefs(c *Config) bool {
	return vault.IsRef(c.Admin.Token) || vault.IsRef(c.Database.Password) || vault.IsRef(c.Database.DSN)
}

// ResolveSecrets replaces vault: references in c with their values.
func ResolveSecrets(ctx context.Context, c *Config, r SecretResolver) error {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"admin.token", &c.Admin.Token},
		{"database.password", &c.Database.Password},
		{"database.dsn", &c.Database.DSN},
	}
	for _, f := range fields {
		if !vault.IsRef(*f.ptr) {
			continue
		}
		if r == nil {
			return fmt.Errorf("%s: %w", f.name, errNoResolver)
		}
		ref, err := vault.ParseRef(*f.ptr)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		val, err := r.GetKV(ctx, ref.Path, ref.Key, 0)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.ptr = val
		zap.S().Debugw("config secret resolved", "key", f.name)
	}
	return nil
}

var errNoResolver = errors.New("vault reference but no secret resolver")

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config  { return current.Load() }
func Reload() error { _, err := Load(); return err }
