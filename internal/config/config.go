// Package config loads CLI and server settings from slabs.yaml and SLABS_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SLABS_SERVER_ADDR.
const EnvPrefix = "SLABS"

// Config is the resolved configuration.
type Config struct {
	SchemaDir      string       `mapstructure:"schema_dir"`
	ContainerClass string       `mapstructure:"container_class"`
	Theme          ThemeConfig  `mapstructure:"theme"`
	Server         ServerConfig `mapstructure:"server"`
	Log            LogConfig    `mapstructure:"log"`
}

// ThemeConfig selects the page theme.
type ThemeConfig struct {
	Name    string            `mapstructure:"name"`
	Variant string            `mapstructure:"variant"`
	Tokens  map[string]string `mapstructure:"tokens"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Defaults applied before the file and the environment.
var defaults = map[string]any{
	"schema_dir":      "schemas",
	"container_class": "",
	"theme.name":      "",
	"theme.variant":   "",
	"server.addr":     ":8080",
	"log.level":       "info",
	"log.development": false,
}

// New returns a viper instance with defaults and environment binding. When
// file is empty, slabs.yaml is searched in the working directory.
func New(file string) *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if file = strings.TrimSpace(file); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("slabs")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file if present and decodes v. A missing
// default file is not an error; a missing explicit file is.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.SchemaDir) == "" {
		return errors.New("config: schema_dir is required")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("config: server.addr is required")
	}
	return nil
}
