package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:          "8080",
		SQLiteDBPath:  "./data/finbook.db",
		SessionSecret: "secret",
		SessionTTL:    24 * time.Hour,
		AdminUsername: "admin",
		OrgPrefix:     "finbook",
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mut         func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name: "valid config",
			mut:  func(c *Config) {},
		},
		{
			name:        "invalid port - non-numeric",
			mut:         func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mut:         func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "empty db path",
			mut:         func(c *Config) { c.SQLiteDBPath = "" },
			wantErr:     true,
			errorString: "SQLite database path cannot be empty",
		},
		{
			name:        "empty session secret",
			mut:         func(c *Config) { c.SessionSecret = "" },
			wantErr:     true,
			errorString: "session secret cannot be empty",
		},
		{
			name:        "session TTL too short",
			mut:         func(c *Config) { c.SessionTTL = time.Second },
			wantErr:     true,
			errorString: "must be at least 1 minute",
		},
		{
			name:        "session TTL too long",
			mut:         func(c *Config) { c.SessionTTL = 31 * 24 * time.Hour },
			wantErr:     true,
			errorString: "must be at most 720 hours",
		},
		{
			name:        "blank admin username",
			mut:         func(c *Config) { c.AdminUsername = "  " },
			wantErr:     true,
			errorString: "admin username cannot be empty",
		},
		{
			name:        "blank org prefix",
			mut:         func(c *Config) { c.OrgPrefix = "" },
			wantErr:     true,
			errorString: "org prefix cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mut(&cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("expected ok, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.errorString)
			}
			if !strings.Contains(err.Error(), tt.errorString) {
				t.Fatalf("error %q does not contain %q", err.Error(), tt.errorString)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "SQLITE_DB_PATH", "SESSION_SECRET", "SESSION_TTL", "ORG_PREFIX"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("default port: %q", cfg.Port)
	}
	if cfg.SQLiteDBPath != "./data/finbook.db" {
		t.Fatalf("default db path: %q", cfg.SQLiteDBPath)
	}
	if !cfg.UsingDevSecret() {
		t.Fatalf("unset SESSION_SECRET should fall back to the dev key")
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("default session TTL: %v", cfg.SessionTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_SECRET", "prod-secret")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("ORG_PREFIX", "acme")

	cfg := Load()
	if cfg.Port != "9090" || cfg.SessionSecret != "prod-secret" || cfg.OrgPrefix != "acme" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("session TTL override: %v", cfg.SessionTTL)
	}
	if cfg.UsingDevSecret() {
		t.Fatalf("explicit secret must not count as dev key")
	}
}
