package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("expected default port 8081, got %d", cfg.Server.Port)
	}
	if cfg.Monitor.GetTickInterval().Milliseconds() != 2000 {
		t.Errorf("expected 2s tick interval, got %v", cfg.Monitor.GetTickInterval())
	}
	if cfg.Alerts.Email.Enabled || cfg.Alerts.Pushover.Enabled {
		t.Error("alert channels must default to disabled")
	}
	if !cfg.Alerts.Events["pool_degraded"] {
		t.Error("pool_degraded should be alertable by default")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
monitor:
  tick_interval_ms: 500
  disk_temp_warn_c: 45
alerts:
  ntfy:
    enabled: true
    topic: storage-alerts
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Monitor.DiskTempWarnC != 45 {
		t.Errorf("expected warn threshold 45, got %d", cfg.Monitor.DiskTempWarnC)
	}
	if !cfg.Alerts.Ntfy.Enabled || cfg.Alerts.Ntfy.Topic != "storage-alerts" {
		t.Errorf("ntfy config not applied: %+v", cfg.Alerts.Ntfy)
	}
	// Untouched sections keep their defaults.
	if cfg.Alerts.Ntfy.Server != "https://ntfy.sh" {
		t.Errorf("expected default ntfy server, got %q", cfg.Alerts.Ntfy.Server)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HOSTMOND_SERVER_PORT", "7070")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("expected env override port 7070, got %d", cfg.Server.Port)
	}
}

func TestValidate_JWTModeRequiresSecret(t *testing.T) {
	path := writeConfig(t, `
auth:
  mode: jwt
  jwt_secret: short
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation failure for short jwt secret")
	}
}

func TestValidate_EnabledChannelNeedsTransportParams(t *testing.T) {
	path := writeConfig(t, `
alerts:
  pushover:
    enabled: true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation failure for pushover without credentials")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
