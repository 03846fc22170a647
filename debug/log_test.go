package debug_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trigseq/debug"
)

func TestLogToFile(t *testing.T) {
	debug.Log("clock", "dropped while disabled")

	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	if err := debug.EnableFile(path); err != nil {
		t.Fatalf("EnableFile: %v", err)
	}
	if !debug.Enabled() {
		t.Fatalf("not enabled")
	}
	debug.Log("clock", "resync %d", 7)
	for i := 0; i < 3; i++ {
		debug.LogEvery(3, "midi", "note %s", "on")
	}
	if err := debug.Disable(); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	debug.Log("clock", "dropped after disable")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	for _, want := range []string{"Debug logging started", "clock", "resync 7", "note on (every 3, count=3)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "dropped") {
		t.Fatalf("log has lines written while disabled:\n%s", out)
	}
}
