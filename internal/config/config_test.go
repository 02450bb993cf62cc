package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("missing file must fall back to defaults, got %v", err)
	}
	if cfg.Port != defaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, defaultPort)
	}
	if !cfg.IsDev() {
		t.Error("default env should be development")
	}
	if cfg.Enrichment.MaxCallsPerSession != 5 {
		t.Errorf("MaxCallsPerSession = %d, want 5", cfg.Enrichment.MaxCallsPerSession)
	}
	if cfg.Enrichment.MaxFieldLength != 2000 {
		t.Errorf("MaxFieldLength = %d, want 2000", cfg.Enrichment.MaxFieldLength)
	}
	if cfg.GitHub.APIBase != defaultGitHubAPI {
		t.Errorf("GitHub.APIBase = %q", cfg.GitHub.APIBase)
	}
	if cfg.DSN == "" {
		t.Error("DSN should be composed from defaults")
	}
}

func TestLoadExplicitValues(t *testing.T) {
	path := writeConfig(t, `
port: 9000
env: production
dsn: "user:pw@tcp(db:3306)/folio?parseTime=True"
jwt_secret: supersecret
ai:
  providers:
    - id: main
      type: OpenAI
      api_key: sk-test
      enabled: true
enrichment:
  max_calls_per_session: 3
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.IsDev() {
		t.Error("production env should not be dev")
	}
	if cfg.DSN != "user:pw@tcp(db:3306)/folio?parseTime=True" {
		t.Errorf("DSN = %q", cfg.DSN)
	}
	if cfg.Enrichment.MaxCallsPerSession != 3 {
		t.Errorf("MaxCallsPerSession = %d, want 3", cfg.Enrichment.MaxCallsPerSession)
	}

	p := cfg.FirstEnabledAIProvider()
	if p == nil || p.ID != "main" {
		t.Errorf("FirstEnabledAIProvider = %+v", p)
	}
}

func TestLoadComposedDSN(t *testing.T) {
	path := writeConfig(t, `
db_host: mysql.internal
db_port: 3307
db_user: folio
db_password: pw
db_name: folio_space
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "folio:pw@tcp(mysql.internal:3307)/folio_space?charset=utf8mb4&parseTime=True&loc=Local"
	if cfg.DSN != want {
		t.Errorf("DSN = %q, want %q", cfg.DSN, want)
	}
}

func TestFirstEnabledAIProviderSkipsDisabled(t *testing.T) {
	cfg := &AppConfig{AI: AIConfig{Providers: []AIProvider{
		{ID: "off", Enabled: false},
		{ID: "on", Enabled: true},
	}}}
	p := cfg.FirstEnabledAIProvider()
	if p == nil || p.ID != "on" {
		t.Errorf("got %+v, want the first enabled provider", p)
	}
}
