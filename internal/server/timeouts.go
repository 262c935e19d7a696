// internal/server/timeouts.go
//
// http.Server construction and lifecycle.
//
// New applies the configured read, write, and idle timeouts (10 s, 15 s, and
// 60 s when unset) plus a fixed 5 s header deadline against slow clients.
// Run serves until its context ends and then drains in-flight requests for
// at most ShutdownGrace.

package server

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ShutdownGrace bounds how long in-flight requests may run after a stop
// signal.
const ShutdownGrace = 10 * time.Second

// Timeouts overrides the defaults; zero fields keep them.
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

// New constructs the server for addr.
func New(addr string, handler http.Handler, t Timeouts) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       orDefault(t.Read, 10*time.Second),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      orDefault(t.Write, 15*time.Second),
		IdleTimeout:       orDefault(t.Idle, 60*time.Second),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.  A clean
// shutdown returns nil.
func Run(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
