package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MIDIConfig selects the MIDI trigger output
type MIDIConfig struct {
	PortName    string `json:"portName,omitempty" yaml:"portName,omitempty"`
	Channel     int    `json:"channel,omitempty" yaml:"channel,omitempty"` // 1-16
	Kit         string `json:"kit,omitempty" yaml:"kit,omitempty"`
	Velocity    int    `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	AutoConnect bool   `json:"autoConnect" yaml:"autoConnect"`
	InputPort   string `json:"inputPort,omitempty" yaml:"inputPort,omitempty"` // live trigger pads
}

// AudioConfig controls the click monitor
type AudioConfig struct {
	Click  bool    `json:"click" yaml:"click"`
	Volume float64 `json:"volume,omitempty" yaml:"volume,omitempty"`
}

// UIConfig stores front panel preferences
type UIConfig struct {
	Tempo        int    `json:"tempo,omitempty" yaml:"tempo,omitempty"`
	Quantization string `json:"quantization,omitempty" yaml:"quantization,omitempty"`
	PalettePath  string `json:"palette,omitempty" yaml:"palette,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	MIDI  MIDIConfig  `json:"midi" yaml:"midi"`
	Audio AudioConfig `json:"audio" yaml:"audio"`
	UI    UIConfig    `json:"ui" yaml:"ui"`
	Debug bool        `json:"debug,omitempty" yaml:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MIDI: MIDIConfig{
			Channel:     10,
			Kit:         "gm",
			Velocity:    100,
			AutoConnect: true,
		},
		Audio: AudioConfig{
			Volume: 0.5,
		},
		UI: UIConfig{
			Tempo:        120,
			Quantization: "bar",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "trigseq"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFile reads a JSON or YAML (by extension) config. A missing file
// yields defaults; fields absent from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values no component can use
func (c *Config) Validate() error {
	if c.MIDI.Channel < 1 || c.MIDI.Channel > 16 {
		return fmt.Errorf("midi channel %d out of range 1-16", c.MIDI.Channel)
	}
	if c.MIDI.Velocity < 1 || c.MIDI.Velocity > 127 {
		return fmt.Errorf("midi velocity %d out of range 1-127", c.MIDI.Velocity)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("audio volume %v out of range 0-1", c.Audio.Volume)
	}
	return nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config as JSON or YAML (by extension)
func (c *Config) SaveFile(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
