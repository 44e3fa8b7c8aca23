package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BroadcastInterval != 2*time.Second {
		t.Fatalf("BroadcastInterval = %v, want 2s", cfg.BroadcastInterval)
	}
	if cfg.RolesFile != "roles.txt" {
		t.Fatalf("RolesFile = %q, want roles.txt", cfg.RolesFile)
	}
	if cfg.SnapshotFile != "doc.md" {
		t.Fatalf("SnapshotFile = %q, want doc.md", cfg.SnapshotFile)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCRIBE_BROADCAST_INTERVAL", "500ms")
	t.Setenv("SCRIBE_ROLES_FILE", "custom-roles.txt")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BroadcastInterval != 500*time.Millisecond {
		t.Fatalf("BroadcastInterval = %v, want 500ms", cfg.BroadcastInterval)
	}
	if cfg.RolesFile != "custom-roles.txt" {
		t.Fatalf("RolesFile = %q, want custom-roles.txt", cfg.RolesFile)
	}
}
