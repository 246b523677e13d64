package config

import (
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-role")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.AdminSecret != "service-role" {
		t.Errorf("AdminSecret = %q, want fallback to service role key", cfg.AdminSecret)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.JWTAccessExpiry != time.Hour {
		t.Errorf("JWTAccessExpiry = %v, want 1h", cfg.JWTAccessExpiry)
	}
	if cfg.Storage.Enabled() {
		t.Error("storage should be disabled without a bucket")
	}
	if cfg.Generation.Provider != GenerationRandom {
		t.Errorf("Generation.Provider = %q", cfg.Generation.Provider)
	}
}

func TestParseExplicitAdminSecretWins(t *testing.T) {
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-role")
	t.Setenv("ADMIN_SECRET", "explicit")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.AdminSecret != "explicit" {
		t.Errorf("AdminSecret = %q, want explicit", cfg.AdminSecret)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"supabase ok", func(c *Config) { c.SupabaseURL = "http://sb"; c.SupabaseKey = "anon" }, false},
		{"supabase missing url", func(c *Config) {}, true},
		{"local needs secret", func(c *Config) { c.AuthProvider = AuthProviderLocal }, true},
		{"local ok", func(c *Config) { c.AuthProvider = AuthProviderLocal; c.JWTSecret = "s" }, false},
		{"unknown auth", func(c *Config) { c.AuthProvider = "ldap" }, true},
		{"unknown driver", func(c *Config) {
			c.AuthProvider = AuthProviderLocal
			c.JWTSecret = "s"
			c.DatabaseDriver = "mysql"
		}, true},
		{"production needs db password", func(c *Config) {
			c.AuthProvider = AuthProviderLocal
			c.JWTSecret = "s"
			c.Environment = "production"
		}, true},
		{"unknown generator", func(c *Config) {
			c.AuthProvider = AuthProviderLocal
			c.JWTSecret = "s"
			c.Generation.Provider = "magic"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse()
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
