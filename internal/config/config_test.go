package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "falldice.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Server.WebSocket.AllowedOrigins) != 0 {
		t.Errorf("expected empty allowed origins by default, got %v", cfg.Server.WebSocket.AllowedOrigins)
	}
	if cfg.Server.WebSocket.MaxMessageSize != 64*1024 {
		t.Errorf("expected max message size 65536, got %d", cfg.Server.WebSocket.MaxMessageSize)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.SQLitePath != "data/falldice.db" {
		t.Errorf("unexpected database defaults: %+v", cfg.Database)
	}
	if cfg.Server.MaxCombinations != 5_000_000 {
		t.Errorf("expected max combinations 5000000, got %d", cfg.Server.MaxCombinations)
	}
	if cfg.Report.Language != "en" {
		t.Errorf("expected report language en, got %q", cfg.Report.Language)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr, got %q", cfg.Server.Addr)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
dice:
  catalogue_path: data/dice.yaml
database:
  driver: postgres
  postgres:
    host: db.internal
    conn_max_lifetime: 1m
server:
  addr: ":9000"
  websocket:
    allowed_origins:
      - "https://example.com"
      - "http://localhost:3000"
    max_message_size: 8192
report:
  language: de
  save: true
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Dice.CataloguePath != "data/dice.yaml" {
		t.Errorf("catalogue path = %q", cfg.Dice.CataloguePath)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.Postgres.Host != "db.internal" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Database.Postgres.Port != 5432 {
		t.Errorf("expected default postgres port to survive, got %d", cfg.Database.Postgres.Port)
	}
	if cfg.Database.Postgres.ConnMaxLifetime != time.Minute {
		t.Errorf("conn max lifetime = %v, want 1m", cfg.Database.Postgres.ConnMaxLifetime)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if len(cfg.Server.WebSocket.AllowedOrigins) != 2 || cfg.Server.WebSocket.AllowedOrigins[0] != "https://example.com" {
		t.Errorf("allowed origins = %v", cfg.Server.WebSocket.AllowedOrigins)
	}
	if cfg.Server.WebSocket.MaxMessageSize != 8192 {
		t.Errorf("expected max message size 8192, got %d", cfg.Server.WebSocket.MaxMessageSize)
	}
	if cfg.Server.Connections.MaxPerIP != 3 {
		t.Errorf("expected default max per IP to survive, got %d", cfg.Server.Connections.MaxPerIP)
	}
	if cfg.Report.Language != "de" || !cfg.Report.Save {
		t.Errorf("report = %+v", cfg.Report)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [")
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":9000\"\n")

	t.Setenv("FALLDICE_SERVER_ADDR", ":7000")
	t.Setenv("FALLDICE_DATABASE_SQLITE_PATH", "/tmp/reports.db")
	t.Setenv("FALLDICE_DATABASE_POSTGRES_PORT", "6543")
	t.Setenv("FALLDICE_SERVER_WEBSOCKET_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("FALLDICE_REPORT_SAVE", "true")
	t.Setenv("FALLDICE_DICE_CATALOGUE_PATH", "custom.yaml")
	t.Setenv("FALLDICE_SERVER_MAX_COMBINATIONS", "1000")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr != ":7000" {
		t.Errorf("addr = %q, want env override", cfg.Server.Addr)
	}
	if cfg.Database.SQLitePath != "/tmp/reports.db" {
		t.Errorf("sqlite path = %q", cfg.Database.SQLitePath)
	}
	if cfg.Database.Postgres.Port != 6543 {
		t.Errorf("postgres port = %d", cfg.Database.Postgres.Port)
	}
	if got := cfg.Server.WebSocket.AllowedOrigins; len(got) != 2 || got[1] != "https://b.example" {
		t.Errorf("allowed origins = %v", got)
	}
	if !cfg.Report.Save {
		t.Error("report save not overridden")
	}
	if cfg.Dice.CataloguePath != "custom.yaml" {
		t.Errorf("catalogue path = %q", cfg.Dice.CataloguePath)
	}
	if cfg.Server.MaxCombinations != 1000 {
		t.Errorf("max combinations = %d", cfg.Server.MaxCombinations)
	}
}

func TestLoadConfig_EnvOverrideInvalid(t *testing.T) {
	t.Setenv("FALLDICE_SERVER_CONNECTIONS_MAX_TOTAL", "lots")
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for unparseable override")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"postgres", func(c *Config) { c.Database.Driver = "postgres" }, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"sqlite without path", func(c *Config) { c.Database.SQLitePath = "" }, true},
		{"zero message size", func(c *Config) { c.Server.WebSocket.MaxMessageSize = 0 }, true},
		{"unlimited combinations", func(c *Config) { c.Server.MaxCombinations = 0 }, false},
		{"negative combinations", func(c *Config) { c.Server.MaxCombinations = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsOriginAllowed(t *testing.T) {
	sameOrigin := WebSocketConfig{AllowedOrigins: []string{}}
	wildcard := WebSocketConfig{AllowedOrigins: []string{"*"}}
	listed := WebSocketConfig{AllowedOrigins: []string{"https://example.com", "http://localhost:3000"}}

	tests := []struct {
		name   string
		cfg    WebSocketConfig
		origin string
		want   bool
	}{
		{"same origin without header", sameOrigin, "", true},
		{"same origin matching host", sameOrigin, "http://localhost:4000", true},
		{"same origin rejects other host", sameOrigin, "http://evil.com", false},
		{"wildcard allows any", wildcard, "http://anything.com", true},
		{"wildcard allows empty", wildcard, "", true},
		{"exact match", listed, "https://example.com", true},
		{"second exact match", listed, "http://localhost:3000", true},
		{"not listed", listed, "http://evil.com", false},
		{"partial match rejected", listed, "https://example.com:8080", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsOriginAllowed(tt.origin, "localhost:4000"); got != tt.want {
				t.Errorf("IsOriginAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestIsSameOrigin(t *testing.T) {
	tests := []struct {
		origin      string
		requestHost string
		expected    bool
	}{
		{"", "localhost:4000", true},
		{"http://localhost:4000", "localhost:4000", true},
		{"https://localhost:4000", "localhost:4000", true},
		{"http://localhost:4000/", "localhost:4000", true},
		{"http://example.com", "localhost:4000", false},
		{"http://localhost:3000", "localhost:4000", false},
		{"ws://localhost:4000", "localhost:4000", true},
	}

	for _, tt := range tests {
		result := isSameOrigin(tt.origin, tt.requestHost)
		if result != tt.expected {
			t.Errorf("isSameOrigin(%q, %q) = %v, want %v",
				tt.origin, tt.requestHost, result, tt.expected)
		}
	}
}
