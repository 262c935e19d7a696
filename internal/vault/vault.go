// internal/vault/vault.go
//
// Vault client wrapper used to resolve secrets at startup.
//
// Context
// -------
//   - Wraps the HashiCorp Vault Go SDK behind a small, concurrency-safe
//     Client injected where needed.  There is no package-level instance.
//   - Adds background token renewal, a KV-v2 helper, and per-key caching.
//   - Configuration values of the form `vault:<mount>/<path>#<key>` are
//     parsed by ParseRef and fetched through Client.GetKV.  The admin token
//     and the database password are the two values that usually take this
//     form.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx, log)              // during boot.
//  2. pw,  err := cli.GetKV(ctx, path, key, ttl)   // anywhere in the app.
//
// Notes
// -----
//   - Secret values are never logged.
//   - Oxford commas, two spaces after periods.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// RefPrefix marks a configuration value that names a Vault secret.
const RefPrefix = "vault:"

// ErrBadRef is returned by ParseRef for malformed references.
var ErrBadRef = errors.New("malformed vault reference")

/*──────────────────────────── public façade ────────────────────────────────*/

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api *vault.Client
	log *zap.Logger

	cacheMu sync.RWMutex
	cache   map[string]cached // canonical path#key → value + expiry.
	sfg     singleflight.Group
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a Vault client and starts a background token-renewal loop
// bound to ctx.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – initial token (falls back to ~/.vault-token).
func New(ctx context.Context, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}

	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	c := &Client{
		api:   apiCli,
		log:   log.Named("vault"),
		cache: make(map[string]cached),
	}

	go c.renewLoop(ctx)

	return c, nil
}

// GetKV fetches a single key from a KV-v2 secret.  If ttl > 0 the result is
// cached for that duration.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}

	canonical := secretPath + "#" + key

	if ttl > 0 {
		c.cacheMu.RLock()
		if cv, ok := c.cache[canonical]; ok && time.Now().Before(cv.exp) {
			c.cacheMu.RUnlock()
			return cv.val, nil
		}
		c.cacheMu.RUnlock()
	}

	// Concurrent misses for one key share a single round-trip.
	v, err, _ := c.sfg.Do(canonical, func() (any, error) {
		return c.fetch(ctx, secretPath, key)
	})
	if err != nil {
		return "", err
	}
	sval := v.(string)

	if ttl > 0 {
		c.cacheMu.Lock()
		c.cache[canonical] = cached{val: sval, exp: time.Now().Add(ttl)}
		c.cacheMu.Unlock()
	}

	return sval, nil
}

func (c *Client) fetch(ctx context.Context, secretPath, key string) (string, error) {
	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
	}
	c.log.Debug("secret fetched", zap.String("path", secretPath), zap.String("key", key))
	return sval, nil
}

/*──────────────────────────── references ───────────────────────────────────*/

// Ref is a parsed `vault:<mount>/<path>#<key>` value.
type Ref struct {
	Path string // "<mount>/<path>"
	Key  string
}

// IsRef reports whether s uses the vault: prefix.
func IsRef(s string) bool { return strings.HasPrefix(s, RefPrefix) }

// ParseRef splits a reference into path and key.  The path must contain a
// mount segment and a secret path, and the key must be non-empty.
func ParseRef(s string) (Ref, error) {
	if !IsRef(s) {
		return Ref{}, fmt.Errorf("%w: missing %q prefix", ErrBadRef, RefPrefix)
	}
	body := strings.TrimPrefix(s, RefPrefix)
	path, key, ok := strings.Cut(body, "#")
	if !ok || key == "" {
		return Ref{}, fmt.Errorf("%w: missing #key", ErrBadRef)
	}
	path = strings.Trim(path, "/")
	if mount, rel := splitMount(path); mount == "" || rel == "" {
		return Ref{}, fmt.Errorf("%w: want <mount>/<path>", ErrBadRef)
	}
	return Ref{Path: path, Key: key}, nil
}

// Resolve returns s unchanged unless it is a vault: reference, in which case
// the referenced value is fetched through c.
func (c *Client) Resolve(ctx context.Context, s string) (string, error) {
	if !IsRef(s) {
		return s, nil
	}
	ref, err := ParseRef(s)
	if err != nil {
		return "", err
	}
	return c.GetKV(ctx, ref.Path, ref.Key, 0)
}

/*──────────────────────────── token renewal ────────────────────────────────*/

func (c *Client) renewLoop(ctx context.Context) {
	for ctx.Err() == nil {
		// Probe the current token.
		sec, err := c.api.Auth().Token().RenewSelfWithContext(ctx, 0)
		if err != nil {
			c.log.Warn("token renew self failed", zap.Error(err))
			backoff(ctx, 30*time.Second)
			continue
		}

		if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
			c.log.Info("token is not renewable, sleeping 1h")
			backoff(ctx, time.Hour)
			continue
		}

		if err := c.watch(ctx, sec); err != nil {
			c.log.Warn("token renewal stopped", zap.Error(err))
		}
		backoff(ctx, 15*time.Second)
	}
}

// watch keeps sec renewed until the watcher gives up or ctx ends.
func (c *Client) watch(ctx context.Context, sec *vault.Secret) error {
	w, err := c.api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{Secret: sec})
	if err != nil {
		return fmt.Errorf("watcher init: %w", err)
	}
	go w.Start()
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.DoneCh():
			return err
		case ev := <-w.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				c.log.Debug("token renewed", zap.Int("ttl_seconds", ev.Secret.Auth.LeaseDuration))
			}
		}
	}
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

func splitMount(p string) (mount, rel string) {
	if p == "" {
		return "", ""
	}
	parts := strings.SplitN(p, "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return
}

func backoff(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
