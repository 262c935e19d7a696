// internal/logger/logger.go
//
// Process logger: zap JSON core over a Lumberjack-rotated file.
//
// Context
// -------
// Audit events, access lines, and storage failures all land in
// `<log.dir>/ecoponto-YYYY-MM-DD.log`.  Under an interactive terminal a
// console core mirrors the file so `go run ./cmd/web` stays readable.
// Before config is loaded, main.go uses Bootstrap, which writes to stderr
// only.
//
// Notes
// -----
//   - Lowercase levels, ISO-8601 timestamps, short callers.
//   - zap's internal errors go to the file sink as well.
//   - Oxford commas, two spaces after periods.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the file logger at level and installs it as the zap global.
// tee adds a stdout console core.
func New(dir, level string, tee bool) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(dir, "ecoponto-"+time.Now().Format("2006-01-02")+".log"),
		MaxSize:    50, // MB
		MaxBackups: 7,
		MaxAge:     14, // days
		Compress:   true,
	})

	encCfg := encoderConfig()
	cores := []zapcore.Core{zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), sink, lvl)}
	if tee {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(os.Stdout),
			lvl,
		))
	}

	z := zap.New(zapcore.NewTee(cores...), zap.ErrorOutput(sink)).Sugar()
	zap.ReplaceGlobals(z.Desugar())

	z.Infow("logger ready", "dir", dir, "level", lvl.String(), "console", tee)
	return z, nil
}

// Bootstrap returns a console-only logger for the window before config is
// loaded, and installs it globally.
func Bootstrap() *zap.Logger {
	l := zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.AddSync(os.Stderr),
		zap.InfoLevel,
	))
	zap.ReplaceGlobals(l)
	return l
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		NameKey:      "logger",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
}
