// Package config loads CLI configuration with the precedence defaults →
// config file → environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the options a coredb CLI invocation needs.
type Config struct {
	DataDir  string
	Name     string
	LogLevel int
}

const envPrefix = "COREDB"

// Load reads defaults, then an optional .coredb/config.yml under
// rootDir, then COREDB_* environment variables, in increasing order of
// priority.
func Load(rootDir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("datadir", filepath.Join(rootDir, "data"))
	v.SetDefault("name", "coredb")
	v.SetDefault("loglevel", 0)

	configDir := filepath.Join(rootDir, ".coredb")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range []string{"datadir", "name", "loglevel"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return &Config{
		DataDir:  v.GetString("datadir"),
		Name:     v.GetString("name"),
		LogLevel: v.GetInt("loglevel"),
	}, nil
}

// EnvOrDefault is a bare env-var fallback for the handful of settings
// (like the REPL prompt) that aren't worth a viper binding.
func EnvOrDefault(key, fallback string) string {
	if v := os.Getenv(envPrefix + "_" + key); v != "" {
		return v
	}
	return fallback
}
