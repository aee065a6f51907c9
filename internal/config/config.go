// Package config loads the daemon configuration from defaults, an optional
// TOML file and DEXD_-prefixed environment variables, in that priority order.
package config

// Config represents the complete dexd configuration.
type Config struct {
	Server   ServerConfig   `toml:"server" mapstructure:"server"`
	Database DatabaseConfig `toml:"database" mapstructure:"database"`
	Journal  JournalConfig  `toml:"journal" mapstructure:"journal"`
	Log      LogConfig      `toml:"log" mapstructure:"log"`

	// Internal field for configuration management
	configPath string `toml:"-" mapstructure:"-"`
}

// ServerConfig configures the JSON-RPC listener.
type ServerConfig struct {
	IP   string `toml:"ip" mapstructure:"ip"`
	Port int    `toml:"port" mapstructure:"port"`

	// ShutdownGraceSeconds bounds how long in-flight requests may run
	// during shutdown.
	ShutdownGraceSeconds int `toml:"shutdown_grace_seconds" mapstructure:"shutdown_grace_seconds"`
}

// DatabaseConfig configures the key-value state store.
type DatabaseConfig struct {
	// Backend selects the key-value engine: "pebble", "leveldb" or
	// "memory" (ephemeral, for development).
	Backend string `toml:"backend" mapstructure:"backend"`

	// Path is the data directory for on-disk backends.
	Path string `toml:"path" mapstructure:"path"`

	// Compression names the value compressor: "lz4" or "none".
	Compression string `toml:"compression" mapstructure:"compression"`
}

// JournalConfig configures the withdrawal journal.
type JournalConfig struct {
	// Driver is "sqlite" or "postgres". Empty disables the journal;
	// withdrawal requests then live in memory only.
	Driver string `toml:"driver" mapstructure:"driver"`
	DSN    string `toml:"dsn" mapstructure:"dsn"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `toml:"level" mapstructure:"level"`

	// Format is "text" or "json".
	Format string `toml:"format" mapstructure:"format"`
}

// GetConfigPath returns the path of the file the configuration was loaded
// from, empty when only defaults and environment were used.
func (c *Config) GetConfigPath() string {
	return c.configPath
}
