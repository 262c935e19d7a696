// cmd/web/main.go
//
// Disposal-point service, HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Load configuration (YAML + env) and resolve vault: secrets.
//
//  3. Start daily rotating logger (tees to console when running in a TTY).
//
//  4. Open storage for `database.driver` and run migrations.
//
//  5. Build Store, Guard, audit Recorder, rate Limiter, and optional GeoIP
//     reader.
//
//  6. Assemble the router (see router.go) and serve until SIGINT/SIGTERM,
//     then drain in-flight requests and release resources.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/ecoponto/internal/audit"
	"github.com/yanizio/ecoponto/internal/config"
	"github.com/yanizio/ecoponto/internal/guard"
	"github.com/yanizio/ecoponto/internal/logger"
	"github.com/yanizio/ecoponto/internal/ponto"
	"github.com/yanizio/ecoponto/internal/ratelimit"
	"github.com/yanizio/ecoponto/internal/requestinfo"
	"github.com/yanizio/ecoponto/internal/server"
	"github.com/yanizio/ecoponto/internal/vault"
)

const serverEnvPath = "/usr/local/etc/ecoponto/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("ecoponto: %v", err)
	}
}

func run() error {
	loadEnv()
	logger.Bootstrap()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Configuration and secrets ───────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if config.HasSecretRefs(cfg) {
		vc, err := vault.New(ctx, zap.L())
		if err != nil {
			return fmt.Errorf("vault: %w", err)
		}
		if err := config.ResolveSecrets(ctx, cfg, vc); err != nil {
			return fmt.Errorf("resolve secrets: %w", err)
		}
	}

	//
	// ── 2.  Logger ──────────────────────────────────────────────────────
	//
	logDir := cfg.Log.Dir
	if logDir == "" {
		logDir = filepath.Join(cfg.Paths.Root, "logs")
	}
	sugar, err := logger.New(logDir, cfg.Log.Level, runningInTTY())
	if err != nil {
		return fmt.Errorf("start logger: %w", err)
	}
	defer func() { _ = sugar.Sync() }()
	zl := sugar.Desugar()

	//
	// ── 3.  Storage ─────────────────────────────────────────────────────
	//
	repo, closeRepo, err := openRepository(ctx, cfg.Database, zl)
	if err != nil {
		return err
	}
	defer closeRepo()

	//
	// ── 4.  Domain services ─────────────────────────────────────────────
	//
	store := ponto.NewStore(repo,
		ponto.WithLogger(zl.Named("ponto")),
		ponto.WithQueryTimeout(cfg.Database.QueryTimeout))

	g := guard.New(cfg.Admin.Token)
	if !g.Configured() {
		zl.Warn("admin token not configured; privileged routes will answer 500")
	}

	rec := audit.New(zl, audit.DefaultCapacity)

	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		CleanupInterval:   cfg.RateLimit.CleanupInterval,
	})
	defer limiter.Stop()

	var geo requestinfo.GeoLookup
	if cfg.Geo.DBPath != "" {
		gr, err := requestinfo.OpenGeo(cfg.Geo.DBPath)
		if err != nil {
			zl.Warn("geoip database unavailable", zap.String("path", cfg.Geo.DBPath), zap.Error(err))
		} else {
			defer gr.Close()
			geo = gr
		}
	}

	//
	// ── 5.  HTTP ────────────────────────────────────────────────────────
	//
	handler, err := newRouter(routerDeps{
		Store:          store,
		Guard:          g,
		Audit:          rec,
		Limiter:        limiter,
		Geo:            geo,
		Log:            zl,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		ForceHTTPS:     cfg.HTTP.ForceHTTPS,
		Environment:    cfg.App.Environment,
	})
	if err != nil {
		return err
	}

	srv := server.New(cfg.HTTP.ListenAddr, handler, server.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	})

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		zl.Info("listening", zap.String("addr", cfg.HTTP.ListenAddr))
		return server.Run(egCtx, srv)
	})
	eg.Go(func() error {
		<-egCtx.Done()
		limiter.Stop()
		return nil
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("http server: %w", err)
	}
	zl.Info("shutdown complete")
	return nil
}
