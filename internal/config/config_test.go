package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFillsDefaultsForOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tcpd.yaml")
	if err := os.WriteFile(path, []byte("local_ip: 10.0.0.1\npeer_ip: 10.0.0.2\n"), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LocalIP != "10.0.0.1" || cfg.PeerIP != "10.0.0.2" {
		t.Errorf("expected overridden IPs, got %+v", cfg)
	}
	if cfg.MSS != Default().MSS {
		t.Errorf("expected MSS to fall back to the default, got %d", cfg.MSS)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected an error for a missing config file")
	}
}

func TestTCPConfigProjection(t *testing.T) {
	cfg := Default()
	cfg.MaxRetx = 3

	tc := cfg.TCPConfig()
	if tc.MaxRetx != 3 {
		t.Errorf("expected MaxRetx to carry over, got %d", tc.MaxRetx)
	}
}
