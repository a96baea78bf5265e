package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the client application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Session   SessionConfig   `mapstructure:"session"`
	Downloads DownloadsConfig `mapstructure:"downloads"`
}

// ServerConfig points the client at a NextChamp backend. The base URL is
// injected here rather than hard-coded so it can be swapped per
// environment and per test.
type ServerConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type HTTPConfig struct {
	// Timeout bounds a single request. Analysis uploads include the
	// server-side video processing, so the default is generous.
	Timeout time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	Path string `mapstructure:"path"`
}

type DownloadsConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment overrides, e.g. server.base_url -> SERVER_BASE_URL.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.base_url", "http://localhost:8000")
	viper.SetDefault("http.timeout", "5m")
	viper.SetDefault("session.path", ".nextchamp/session.json")
	viper.SetDefault("downloads.dir", ".")

	err = viper.ReadInConfig()
	// A missing config file is fine; defaults and env vars cover it.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
