package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.SnapshotPath != "data/snapshot.json" {
		t.Errorf("SnapshotPath = %q", cfg.SnapshotPath)
	}
	if cfg.SnapshotInterval != 30*time.Second {
		t.Errorf("SnapshotInterval = %v", cfg.SnapshotInterval)
	}
	if cfg.FinishedGrace != 5*time.Second {
		t.Errorf("FinishedGrace = %v", cfg.FinishedGrace)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SNAPSHOT_INTERVAL", "2m")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.SnapshotInterval != 2*time.Minute {
		t.Errorf("SnapshotInterval = %v, want 2m", cfg.SnapshotInterval)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
}

func TestAddr(t *testing.T) {
	cfg := &Config{Host: "localhost", Port: "8080"}
	if got := cfg.Addr(); got != "localhost:8080" {
		t.Errorf("Addr() = %q", got)
	}
}
