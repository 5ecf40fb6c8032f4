package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.Backend != BackendLocal {
		t.Fatalf("expected local backend by default, got %s", cfg.Backend)
	}
	if cfg.LinkRetryAttempts != defaultLinkRetryAttempts {
		t.Fatalf("expected %d retry attempts, got %d", defaultLinkRetryAttempts, cfg.LinkRetryAttempts)
	}
	if cfg.ReconcileInterval != defaultReconcileInterval {
		t.Fatalf("unexpected reconcile interval %s", cfg.ReconcileInterval)
	}
}

func TestBackendFromEnv(t *testing.T) {
	t.Setenv("BACKEND", "remote")
	if cfg := Load(); cfg.Backend != BackendRemote {
		t.Fatalf("expected remote backend, got %s", cfg.Backend)
	}

	t.Setenv("BACKEND", "nonsense")
	if cfg := Load(); cfg.Backend != BackendLocal {
		t.Fatalf("expected fallback to local backend, got %s", cfg.Backend)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_DURATION", "45s")
	if got := durationEnvOrDefault("X_DURATION", time.Minute); got != 45*time.Second {
		t.Fatalf("expected 45s, got %s", got)
	}
	t.Setenv("X_DURATION", "-3s")
	if got := durationEnvOrDefault("X_DURATION", time.Minute); got != time.Minute {
		t.Fatalf("expected default on negative, got %s", got)
	}

	t.Setenv("X_INT", "7")
	if got := intEnvOrDefault("X_INT", 3); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	t.Setenv("X_INT", "zero")
	if got := intEnvOrDefault("X_INT", 3); got != 3 {
		t.Fatalf("expected default on junk, got %d", got)
	}

	t.Setenv("X_BOOL", "yes")
	if !boolEnvOrDefault("X_BOOL", false) {
		t.Fatalf("expected yes to parse true")
	}
	t.Setenv("X_BOOL", "0")
	if boolEnvOrDefault("X_BOOL", true) {
		t.Fatalf("expected 0 to parse false")
	}
}
