// Package config loads server configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server binary needs to start.
type Config struct {
	// BroadcastInterval is how often the document is pushed to connected
	// clients even without an intervening edit.
	BroadcastInterval time.Duration `env:"SCRIBE_BROADCAST_INTERVAL" envDefault:"2s"`

	// RolesFile lists "<username> <role>" pairs, one per line.
	RolesFile string `env:"SCRIBE_ROLES_FILE" envDefault:"roles.txt"`

	// SnapshotFile is where the document is written on a clean QUIT.
	SnapshotFile string `env:"SCRIBE_SNAPSHOT_FILE" envDefault:"doc.md"`

	// BaseDir is the working directory FIFOs are created under.
	BaseDir string `env:"SCRIBE_BASE_DIR" envDefault:"."`
}

// Load reads Config from the process environment, applying envDefault tags
// for anything unset.
func Load() (Config, error) {
	return env.ParseAs[Config]()
}
