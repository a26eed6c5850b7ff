// Package config loads the runtime configuration from an optional
// config file and the environment. Environment variables always win.
package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port             int      `mapstructure:"port"`
		GinMode          string   `mapstructure:"gin_mode"`
		LogFormat        string   `mapstructure:"log_format"`
		CorsAllowOrigins []string `mapstructure:"cors_allow_origins"`
		EnablePprof      bool     `mapstructure:"enable_pprof"`
	} `mapstructure:"server"`

	Database struct {
		// Path of the sqlite database, used when no host is configured
		Path string `mapstructure:"path"`

		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
}

// UsesPostgres reports whether a postgres host is configured. Without
// one the backend runs on its local sqlite database.
func (c Config) UsesPostgres() bool {
	return c.Database.Host != ""
}

// Load reads configs/config.yaml if it exists and applies environment
// overrides. The binary works without any configuration.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")

	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("database.path", "data/gorm.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "cdfund")

	// The config file is optional, unreadable content is not
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigParseError); ok {
			return Config{}, err
		}
	}

	for key, env := range map[string]string{
		"server.port":               "PORT",
		"server.gin_mode":           "GIN_MODE",
		"server.log_format":         "LOG_FORMAT",
		"server.cors_allow_origins": "CORS_ALLOW_ORIGINS",
		"server.enable_pprof":       "ENABLE_PPROF",
		"database.path":             "DB_PATH",
		"database.host":             "DB_HOST",
		"database.port":             "DB_PORT",
		"database.user":             "DB_USER",
		"database.password":         "DB_PASSWORD",
		"database.name":             "DB_NAME",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
