// Package config loads the server's runtime configuration, merging
// environment overrides over a set of defaults matching the reference
// implementation's ApplicationConfig.
package config

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"strconv"
)

// Config is the full set of knobs the server reads at startup.
type Config struct {
	// Hostname is used when absolute URLs need to be generated.
	Hostname string
	// Addr is the listen address, e.g. ":8443".
	Addr string
	// RoutePrefix is prepended by a reverse proxy in front of this server;
	// routes are registered under it so links stay correct behind one.
	RoutePrefix string
	// SessionKey signs session tokens. If not supplied, one is generated
	// at startup and persisted so restarts don't invalidate every session.
	SessionKey []byte
	// PersistenceDir holds the snapshot files (auth, collections, config).
	PersistenceDir string
	// LogLevel is one of debug/info/warn/error.
	LogLevel string
	// SnapshotInterval, in seconds, between dirty-check save attempts.
	SnapshotIntervalSeconds int
	// RefreshInterval, in seconds, between background refresh sweeps.
	RefreshIntervalSeconds int
}

// DefaultPersistenceDir matches the reference implementation's default.
const DefaultPersistenceDir = "persistence"

// DefaultRefreshIntervalSeconds matches the reference implementation's
// FEED_UPDATE_INTERVAL (~12h) between background refresh sweeps.
const DefaultRefreshIntervalSeconds = 12 * 60 * 60

// Load builds a Config from environment variables, falling back to
// defaults matching the reference implementation for anything unset.
func Load() Config {
	port := envInt("FEEDKEEP_PORT", 8443)

	cfg := Config{
		Hostname:                envString("FEEDKEEP_HOSTNAME", "localhost"),
		Addr:                    ":" + strconv.Itoa(port),
		RoutePrefix:             envString("FEEDKEEP_ROUTE_PREFIX", ""),
		PersistenceDir:          filepath.Clean(envString("FEEDKEEP_PERSISTENCE_DIR", DefaultPersistenceDir)),
		LogLevel:                envString("FEEDKEEP_LOG_LEVEL", "info"),
		SnapshotIntervalSeconds: envInt("FEEDKEEP_SNAPSHOT_INTERVAL_SECONDS", 120),
		RefreshIntervalSeconds:  envInt("FEEDKEEP_REFRESH_INTERVAL_SECONDS", DefaultRefreshIntervalSeconds),
	}

	if key := os.Getenv("FEEDKEEP_SESSION_KEY"); key != "" {
		cfg.SessionKey = []byte(key)
	}

	return cfg
}

// GenerateSessionKey returns a fresh random 32-byte key, used the first
// time the server runs with no persisted key yet.
func GenerateSessionKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

func envString(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
