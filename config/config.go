// Package config loads the process-wide, immutable engine configuration
// from a YAML file (A.3).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the engine's process-wide configuration. It is loaded once
// at startup and never mutated afterward; every package that needs a
// setting takes it (or a narrower slice of it) at construction time.
type Config struct {
	// DataDir is where per-message working directories and attachments live.
	DataDir string `yaml:"data_dir"`
	// SettingsFile points at the YAML file settings.FileProvider loads.
	SettingsFile string `yaml:"settings_file"`
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`
	// IdleTimeout is how long the dispatcher keeps a bearer connection
	// open once no queued task needs it, before closing it (§4.5).
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	// MaxActiveTasks is loaded from the file; no package reads it, and the
	// dispatcher runs one task at a time.
	MaxActiveTasks int `yaml:"max_active_tasks"`
	// HTTPChunkSize is loaded from the file; no package reads it. httptask
	// takes its chunk size from ClientOptions.ChunkSize instead.
	HTTPChunkSize int `yaml:"http_chunk_size"`
	// BusName is the D-Bus well-known name busadapter requests.
	BusName string `yaml:"bus_name"`
	// HTTPFallbackAddr, if non-empty, starts busadapter/httpfallback's
	// loopback listener on this address (e.g. "127.0.0.1:8280").
	HTTPFallbackAddr string `yaml:"http_fallback_addr"`
	// RetryInterval is the fixed delay a failed task sleeps before its
	// next attempt (§4.2), mirroring mms_settings.h's retry_secs.
	RetryInterval time.Duration `yaml:"retry_interval"`
	// KeepTemp, if true, leaves a task's <data_dir>/msg/<id> working
	// directory on disk after it reaches Done (§5).
	KeepTemp bool `yaml:"keep_temp"`
	// AtticEnabled, if true, archives unrecognized/undecodable push PDUs
	// under <data_dir>/attic instead of discarding them.
	AtticEnabled bool `yaml:"attic_enabled"`
}

// Default returns the built-in configuration used when no file is given.
func Default() Config {
	return Config{
		DataDir:        "/var/lib/mms-engine",
		SettingsFile:   "/etc/mms-engine/settings.yaml",
		LogLevel:       "info",
		IdleTimeout:    30 * time.Second,
		MaxActiveTasks: 4,
		HTTPChunkSize:  4096,
		BusName:        "org.nemomobile.MmsEngine",
		RetryInterval:  15 * time.Second,
	}
}

// Load reads path, overlaying its fields onto Default().
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
