package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all client configuration.
type Config struct {
	Server ServerConfig
	Logger LoggerConfig
	UI     UIConfig
}

type ServerConfig struct {
	URL       string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
}

type LoggerConfig struct {
	Level    string
	Encoding string
	File     string
}

type UIConfig struct {
	Theme string
}

// Dir is the per-user directory for config, credentials and logs.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".taskboard"), nil
}

// New returns a viper instance with defaults, env binding and search paths set.
// Flags may be bound onto it before Load reads it.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := Dir(); err == nil {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("TASKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// Load reads the optional config file and resolves the final values.
// An explicit path must exist; the search paths may not.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	cfg.Server.URL = strings.TrimRight(v.GetString("server.url"), "/")
	cfg.Server.Timeout = v.GetDuration("server.timeout")
	cfg.Server.RateLimit = v.GetFloat64("server.rate_limit")
	cfg.Server.Burst = v.GetInt("server.burst")

	cfg.Logger.Level = v.GetString("logger.level")
	cfg.Logger.Encoding = v.GetString("logger.encoding")
	cfg.Logger.File = v.GetString("logger.file")
	if cfg.Logger.File == "" {
		if dir, err := Dir(); err == nil {
			cfg.Logger.File = filepath.Join(dir, "taskboard.log")
		}
	}

	cfg.UI.Theme = v.GetString("ui.theme")

	if cfg.Server.URL == "" {
		return nil, fmt.Errorf("server.url is not configured")
	}
	if cfg.Server.Burst < 1 {
		cfg.Server.Burst = 1
	}
	return cfg, nil
}

// LoginURL is where a user signs in to obtain a token.
func (c ServerConfig) LoginURL() string {
	return c.URL + "/login"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.url", "http://localhost:5000")
	v.SetDefault("server.timeout", "10s")
	v.SetDefault("server.rate_limit", 10)
	v.SetDefault("server.burst", 5)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("logger.file", "")
	v.SetDefault("ui.theme", "classic")
}
