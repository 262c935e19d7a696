package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesDailyFile(t *testing.T) {
	dir := t.TempDir()
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	log, err := New(dir, "debug", false)
	require.NoError(t, err)
	log.Infow("hello", "k", "v")
	_ = log.Sync()

	want := filepath.Join(dir, "ecoponto-"+time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"level":"info"`)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(t.TempDir(), "loud", false)
	assert.Error(t, err)
}
