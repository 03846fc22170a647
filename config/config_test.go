package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"trigseq/config"
)

func TestMissingFileGivesDefaults(t *testing.T) {
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.UI.Tempo != 120 || cfg.MIDI.Channel != 10 || cfg.MIDI.Kit != "gm" {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestLoadYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trigseq.yaml")
	src := "midi:\n  portName: TR-8S\n  channel: 3\nui:\n  tempo: 98\n  quantization: quarter\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.MIDI.PortName != "TR-8S" || cfg.MIDI.Channel != 3 || cfg.UI.Tempo != 98 || cfg.UI.Quantization != "quarter" {
		t.Fatalf("loaded = %+v", cfg)
	}
	if cfg.MIDI.Velocity != 100 || !cfg.MIDI.AutoConnect {
		t.Fatalf("defaults lost: %+v", cfg.MIDI)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.json", "c.yml"} {
		cfg := config.DefaultConfig()
		cfg.MIDI.PortName = "IAC Driver Bus 1"
		cfg.Audio.Click = true
		cfg.Debug = true
		path := filepath.Join(dir, "sub", name)
		if err := cfg.SaveFile(path); err != nil {
			t.Fatalf("SaveFile(%s): %v", name, err)
		}
		got, err := config.LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile(%s): %v", name, err)
		}
		if *got != *cfg {
			t.Fatalf("%s: got %+v, want %+v", name, got, cfg)
		}
	}
}

func TestValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"midi":{"channel":17}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.LoadFile(path); err == nil {
		t.Fatalf("channel 17 accepted")
	}
	if err := os.WriteFile(path, []byte(`{"midi":`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.LoadFile(path); err == nil {
		t.Fatalf("truncated json accepted")
	}
}

func TestSaveUsesDefaultPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := config.DefaultConfig()
	cfg.UI.Tempo = 87
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.UI.Tempo != 87 {
		t.Fatalf("tempo = %d, want 87", got.UI.Tempo)
	}
}
