// internal/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testYAML = `http:
  listen_addr: ":8080"
  metrics_addr: ":9091"
  base_url: "http://localhost:8080"
  force_https: false

auth:
  url: "https://project-ref.supabase.co"
  anon_key: "anon-key"
  jwt_secret: "jwt-secret"

backend:
  base_url: "http://localhost:8080"

database:
  dsn: "saarthi:{password}@tcp(127.0.0.1:3306)/solarsaarthi?parseTime=true"
  password: "db-password"

redis:
  addr: "127.0.0.1:6379"
  db: 0
  draft_ttl_hours: 48

assistant:
  endpoint: "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"
  api_key: "assistant-key"

geoip:
  db_path: ""
`

// writeTestConfig lays out a minimal <root>/conf/global.yaml and points the
// loader at it.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	confDir := filepath.Join(root, "conf")
	if err := os.MkdirAll(confDir, 0o755); err != nil {
		t.Fatalf("mkdir conf: %v", err)
	}
	if err := os.WriteFile(filepath.Join(confDir, "global.yaml"), []byte(testYAML), 0o644); err != nil {
		t.Fatalf("write global.yaml: %v", err)
	}
	t.Setenv("SAARTHI_ROOT", root)
	return root
}

func TestLoadReadsYAML(t *testing.T) {
	root := writeTestConfig(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ListenAddr != ":8080" {
		t.Fatalf("listen_addr = %q", cfg.HTTP.ListenAddr)
	}
	if cfg.Auth.AnonKey != "anon-key" {
		t.Fatalf("anon_key = %q", cfg.Auth.AnonKey)
	}
	if cfg.Paths.Root != root {
		t.Fatalf("root = %q, want %q", cfg.Paths.Root, root)
	}
	if Get() != cfg {
		t.Fatal("Get() must return the cached config")
	}
}

func TestLoadEnvOverlayOverridesYAML(t *testing.T) {
	writeTestConfig(t)
	t.Setenv("SAARTHI_HTTP__LISTEN_ADDR", ":9999")
	t.Setenv("SAARTHI_AUTH__JWT_SECRET", "overridden-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ListenAddr != ":9999" {
		t.Fatalf("listen_addr = %q, want env override :9999", cfg.HTTP.ListenAddr)
	}
	if cfg.Auth.JWTSecret != "overridden-secret" {
		t.Fatalf("jwt_secret = %q, want env override", cfg.Auth.JWTSecret)
	}
	// Untouched keys keep their YAML values.
	if cfg.HTTP.MetricsAddr != ":9091" {
		t.Fatalf("metrics_addr = %q", cfg.HTTP.MetricsAddr)
	}
}

func TestLoadFailsValidationOnMissingRequired(t *testing.T) {
	writeTestConfig(t)
	t.Setenv("SAARTHI_AUTH__URL", "not-a-url")

	if _, err := Load(); err == nil {
		t.Fatal("want validation error for malformed auth.url")
	}
}
