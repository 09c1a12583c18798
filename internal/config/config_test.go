package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "output: /srv/albums\nworkers: 6\nretries: 5\nhttp_timeout: 90s\nclient_id: abc123\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Config{OutputDir: ".", Workers: 2, Retries: 3, HTTPTimeout: 2 * time.Minute}
	if err := applyFile(&cfg, path); err != nil {
		t.Fatalf("applyFile failed: %v", err)
	}

	if cfg.OutputDir != "/srv/albums" || cfg.Workers != 6 || cfg.Retries != 5 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.HTTPTimeout != 90*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.HTTPTimeout)
	}
	if cfg.ClientID != "abc123" {
		t.Fatalf("unexpected client id: %q", cfg.ClientID)
	}
}

func TestApplyFileKeepsUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("workers: 4\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Config{OutputDir: "./keep", Workers: 2, Retries: 3, HTTPTimeout: time.Minute}
	if err := applyFile(&cfg, path); err != nil {
		t.Fatalf("applyFile failed: %v", err)
	}

	if cfg.Workers != 4 {
		t.Fatalf("workers not applied: %d", cfg.Workers)
	}
	if cfg.OutputDir != "./keep" || cfg.Retries != 3 || cfg.HTTPTimeout != time.Minute {
		t.Fatalf("unset fields must keep their values: %+v", cfg)
	}
}

func TestApplyFileErrors(t *testing.T) {
	if err := applyFile(&Config{}, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("http_timeout: nonsense\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := applyFile(&Config{}, path); err == nil {
		t.Fatalf("expected error for bad duration")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("IMGRAB_OUTPUT", "/env/out")
	t.Setenv("IMGRAB_CLIENT_ID", "envid")

	cfg := Config{OutputDir: ".", ClientID: "fileid"}
	applyEnv(&cfg)

	if cfg.OutputDir != "/env/out" || cfg.ClientID != "envid" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}
