// Package config holds the game-level settings, read once at startup from
// the environment (a .env file is loaded by main before this runs).
package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries the tunables of the match server.
type Config struct {
	// BoardSize is the grid edge length for every new session.
	BoardSize int

	// SessionExpiry is how long a session may sit without gameplay
	// activity before the sweep removes it.
	SessionExpiry time.Duration

	// SweepInterval is how often the expiry sweep runs. Independent of
	// SessionExpiry.
	SweepInterval time.Duration

	// ArchiveDir is where finished-match records are written. Empty
	// disables archiving.
	ArchiveDir string
}

// Load reads the configuration from the environment, falling back to
// defaults.
func Load() Config {
	return Config{
		BoardSize:     getenvInt("BOARD_SIZE", 10),
		SessionExpiry: getenvDuration("SESSION_EXPIRY", 30*time.Minute),
		SweepInterval: getenvDuration("SWEEP_INTERVAL", 5*time.Minute),
		ArchiveDir:    getenvString("ARCHIVE_DIR", "matches"),
	}
}

func getenvString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
