package config

import (
	"os"
	"testing"
	"time"
)

func TestModerationConfig_Defaults(t *testing.T) {
	// Set required env vars
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	tests := []struct {
		name     string
		actual   time.Duration
		expected time.Duration
	}{
		{"LockoutDuration", cfg.Moderation.LockoutDuration, 7 * 24 * time.Hour},
		{"EventRetention", cfg.Moderation.EventRetention, 90 * 24 * time.Hour},
		{"CleanupInterval", cfg.Moderation.CleanupInterval, 1 * time.Hour},
	}

	for _, tt := range tests {
		if tt.actual != tt.expected {
			t.Errorf("%s: got %v, want %v", tt.name, tt.actual, tt.expected)
		}
	}
}

func TestModerationConfig_CustomValues(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("WARNING_LOCKOUT_DURATION", "48h")
	os.Setenv("MODERATION_EVENT_RETENTION", "720h")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Moderation.LockoutDuration != 48*time.Hour {
		t.Errorf("LockoutDuration: got %v, want %v", cfg.Moderation.LockoutDuration, 48*time.Hour)
	}
	if cfg.Moderation.EventRetention != 720*time.Hour {
		t.Errorf("EventRetention: got %v, want %v", cfg.Moderation.EventRetention, 720*time.Hour)
	}
}

func TestModerationConfig_InvalidDuration(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("WARNING_LOCKOUT_DURATION", "not-a-duration")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	// Invalid duration should fall back to default
	if cfg.Moderation.LockoutDuration != 7*24*time.Hour {
		t.Errorf("LockoutDuration with invalid value: got %v, want %v", cfg.Moderation.LockoutDuration, 7*24*time.Hour)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() without JWT_SECRET should fail")
	}
}

func TestLoad_ShortSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "short")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() with a short JWT_SECRET should fail")
	}
}
