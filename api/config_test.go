package api

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  addr: ":9090"
  max_sessions: 2
browser:
  remote: "ws://chrome:9222"
inference:
  east_url: "http://east:8001"
  similarity_url: "http://clip:8002"
language:
  languages: [fr, nl]
store:
  path: /var/lib/a11ycheck/history.db
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.MaxSessions != 2 {
		t.Errorf("server config: %+v", cfg.Server)
	}
	if cfg.Browser.Remote != "ws://chrome:9222" {
		t.Errorf("browser config: %+v", cfg.Browser)
	}
	if cfg.Inference.EASTURL != "http://east:8001" {
		t.Errorf("inference config: %+v", cfg.Inference)
	}
	if len(cfg.Language.Languages) != 2 || cfg.Language.Languages[0] != "fr" {
		t.Errorf("language config: %+v", cfg.Language)
	}

	// Unset fields take defaults.
	if cfg.Server.RequestTimeout != 2*time.Minute {
		t.Errorf("request timeout = %v", cfg.Server.RequestTimeout)
	}
	if cfg.Browser.NavigateTimeout != 30*time.Second {
		t.Errorf("navigate timeout = %v", cfg.Browser.NavigateTimeout)
	}
	if cfg.Inference.Timeout != time.Minute {
		t.Errorf("inference timeout = %v", cfg.Inference.Timeout)
	}
}

func TestLoadConfigFileDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("inference:\n  east_url: http://east:8001\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.MaxSessions != 4 {
		t.Errorf("server defaults: %+v", cfg.Server)
	}
	if len(cfg.Language.Languages) != 4 {
		t.Errorf("language defaults: %+v", cfg.Language.Languages)
	}
	if cfg.Store.Path != "a11ycheck.db" {
		t.Errorf("store default: %+v", cfg.Store)
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("want error for missing file")
	}
}
