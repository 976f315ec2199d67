package config

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Snapshot.Backend != SnapshotBackendMemory {
		t.Errorf("Snapshot.Backend = %q, want memory", cfg.Snapshot.Backend)
	}
	if cfg.Snapshot.TTL != 72*time.Hour {
		t.Errorf("Snapshot.TTL = %v, want 72h", cfg.Snapshot.TTL)
	}
	if cfg.Logging.JSONFormat {
		t.Error("development logging should default to text")
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.BurstSize != 20 {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("SNAPSHOT_BACKEND", "Redis")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SYSTEM_MAX_SESSIONS", "7")
	t.Setenv("RATE_LIMIT_REQUESTS_PER_SECOND", "2.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if cfg.Snapshot.Backend != SnapshotBackendRedis {
		t.Errorf("Snapshot.Backend = %q, want redis", cfg.Snapshot.Backend)
	}
	if !cfg.Logging.JSONFormat {
		t.Error("production logging should be JSON")
	}
	if cfg.System.MaxSessions != 7 {
		t.Errorf("System.MaxSessions = %d, want 7", cfg.System.MaxSessions)
	}
	if cfg.RateLimit.RequestsPerSecond != 2.5 {
		t.Errorf("RequestsPerSecond = %v, want 2.5", cfg.RateLimit.RequestsPerSecond)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}, "JWT_SECRET is required"},
		{"short secret", map[string]string{"JWT_SECRET": "short"}, "at least 32"},
		{"unknown backend", map[string]string{"JWT_SECRET": testSecret, "SNAPSHOT_BACKEND": "etcd"}, "unknown SNAPSHOT_BACKEND"},
		{"no sessions", map[string]string{"JWT_SECRET": testSecret, "SYSTEM_MAX_SESSIONS": "0"}, "SYSTEM_MAX_SESSIONS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestConnectionString(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable",
	}}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if got := cfg.ConnectionString(); got != want {
		t.Errorf("ConnectionString = %q, want %q", got, want)
	}
}
