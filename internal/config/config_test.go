package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("logging level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Engine.StartDebounce != 3*time.Second {
		t.Errorf("start debounce = %v, want 3s", cfg.Engine.StartDebounce)
	}
	if cfg.Engine.RefreshInterval != 500*time.Millisecond {
		t.Errorf("refresh interval = %v, want 500ms", cfg.Engine.RefreshInterval)
	}
	if cfg.Engine.TurnCountdownSeconds != 75 {
		t.Errorf("turn countdown = %d, want 75", cfg.Engine.TurnCountdownSeconds)
	}
	if cfg.Overlay.Address != ":8090" {
		t.Errorf("overlay address = %q, want :8090", cfg.Overlay.Address)
	}
	if cfg.Replay.RecordPath != "" {
		t.Errorf("record path = %q, want empty", cfg.Replay.RecordPath)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	data := `
logging:
  level: debug
  format: json
engine:
  start_debounce: 1s
  turn_countdown_seconds: 90
overlay:
  address: ":9999"
replay:
  record_path: /tmp/match.facts
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v, want debug/json", cfg.Logging)
	}
	if cfg.Engine.StartDebounce != time.Second {
		t.Errorf("start debounce = %v, want 1s", cfg.Engine.StartDebounce)
	}
	if cfg.Engine.TurnCountdownSeconds != 90 {
		t.Errorf("turn countdown = %d, want 90", cfg.Engine.TurnCountdownSeconds)
	}
	// Unset keys keep their defaults.
	if cfg.Engine.SnapshotDelay != 300*time.Millisecond {
		t.Errorf("snapshot delay = %v, want default 300ms", cfg.Engine.SnapshotDelay)
	}
	if cfg.Overlay.Address != ":9999" {
		t.Errorf("overlay address = %q, want :9999", cfg.Overlay.Address)
	}
	if cfg.Replay.RecordPath != "/tmp/match.facts" {
		t.Errorf("record path = %q", cfg.Replay.RecordPath)
	}
}

func TestLoadMalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("logging: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
