package config

import "github.com/spf13/viper"

// setDefaults sets the values a bare dexd starts with.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.ip", "127.0.0.1")
	v.SetDefault("server.port", 8545)
	v.SetDefault("server.shutdown_grace_seconds", 10)

	v.SetDefault("database.backend", "pebble")
	v.SetDefault("database.path", "data")
	v.SetDefault("database.compression", "lz4")

	v.SetDefault("journal.driver", "sqlite")
	v.SetDefault("journal.dsn", "dexd.sqlite")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
