package config

import (
	"fmt"
)

var (
	validBackends    = map[string]bool{"pebble": true, "leveldb": true, "memory": true}
	validCompressors = map[string]bool{"lz4": true, "none": true}
	validSQLDrivers  = map[string]bool{"sqlite": true, "postgres": true}
	validLogLevels   = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats  = map[string]bool{"text": true, "json": true}
)

// ValidateConfig checks the loaded configuration for values the daemon
// cannot start with.
func ValidateConfig(c *Config) error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.ShutdownGraceSeconds < 0 {
		return fmt.Errorf("server.shutdown_grace_seconds must not be negative")
	}

	if !validBackends[c.Database.Backend] {
		return fmt.Errorf("database.backend %q not supported (pebble, leveldb, memory)", c.Database.Backend)
	}
	if c.Database.Backend != "memory" && c.Database.Path == "" {
		return fmt.Errorf("database.path required for backend %q", c.Database.Backend)
	}
	if !validCompressors[c.Database.Compression] {
		return fmt.Errorf("database.compression %q not supported (lz4, none)", c.Database.Compression)
	}

	if c.Journal.Driver != "" {
		if !validSQLDrivers[c.Journal.Driver] {
			return fmt.Errorf("journal.driver %q not supported (sqlite, postgres)", c.Journal.Driver)
		}
		if c.Journal.DSN == "" {
			return fmt.Errorf("journal.dsn required for driver %q", c.Journal.Driver)
		}
	}

	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("log.level %q not supported (debug, info, warn, error)", c.Log.Level)
	}
	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("log.format %q not supported (text, json)", c.Log.Format)
	}

	return nil
}
