package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesDefaults(t *testing.T) {
	srv := New(":0", http.NotFoundHandler(), Timeouts{Write: 30 * time.Second})
	assert.Equal(t, 10*time.Second, srv.ReadTimeout)
	assert.Equal(t, 30*time.Second, srv.WriteTimeout)
	assert.Equal(t, 60*time.Second, srv.IdleTimeout)
	assert.Equal(t, ":0", srv.Addr)
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := New("127.0.0.1:0", http.NotFoundHandler(), Timeouts{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunReportsListenError(t *testing.T) {
	srv := New("256.0.0.1:99999", http.NotFoundHandler(), Timeouts{})
	err := Run(context.Background(), srv)
	assert.Error(t, err)
}
