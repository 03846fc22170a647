package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	file    *os.File
	logger  *zap.Logger
	mu      sync.Mutex
	enabled bool
)

// DefaultPath returns ~/.config/trigseq/debug.log
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "trigseq", "debug.log"), nil
}

// Enable starts debug logging to ~/.config/trigseq/debug.log
func Enable() error {
	path, err := DefaultPath()
	if err != nil {
		return err
	}
	return EnableFile(path)
}

// EnableFile starts debug logging to path, truncating it
func EnableFile(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("debug log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("debug log: %w", err)
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(f), zapcore.DebugLevel)

	file = f
	logger = zap.New(core)
	enabled = true

	logger.Named("debug").Info("=== Debug logging started ===")
	return nil
}

// Disable stops debug logging
func Disable() error {
	mu.Lock()
	defer mu.Unlock()

	var err error
	if logger != nil {
		err = multierr.Append(err, logger.Sync())
		logger = nil
	}
	if file != nil {
		err = multierr.Append(err, file.Close())
		file = nil
	}
	enabled = false
	return err
}

// Enabled reports whether logging is on
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || logger == nil {
		return
	}
	logger.Named(category).Debug(fmt.Sprintf(format, args...))
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
