package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("default port: %d", cfg.Server.Port)
	}
	if cfg.Chain.ChainID != "0xaa36a7" {
		t.Fatalf("default chain id: %s", cfg.Chain.ChainID)
	}
	if cfg.Monitor.MaxAttempts != 30 {
		t.Fatalf("default max attempts: %d", cfg.Monitor.MaxAttempts)
	}
	if cfg.Monitor.PollInterval != 10*time.Second {
		t.Fatalf("default poll interval: %s", cfg.Monitor.PollInterval)
	}
	if !cfg.Seed.Enabled {
		t.Fatal("seed should default to enabled")
	}
}

func TestLoad_YAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  port: 9090\nmonitor:\n  max_attempts: 5\nseed:\n  enabled: false\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port override: %d", cfg.Server.Port)
	}
	if cfg.Monitor.MaxAttempts != 5 {
		t.Fatalf("max attempts override: %d", cfg.Monitor.MaxAttempts)
	}
	if cfg.Seed.Enabled {
		t.Fatal("seed override not applied")
	}
	// Untouched sections keep their defaults.
	if cfg.Chain.Decimals != 18 {
		t.Fatalf("chain decimals: %d", cfg.Chain.Decimals)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("MONITOR_MAX_ATTEMPTS", "3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("env port override: %d", cfg.Server.Port)
	}
	if cfg.Monitor.MaxAttempts != 3 {
		t.Fatalf("env max attempts override: %d", cfg.Monitor.MaxAttempts)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 99999\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected port range error")
	}

	if err := os.WriteFile(path, []byte("monitor:\n  max_attempts: 0\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected max_attempts error")
	}
}
