// Package config loads the application configuration. Defaults are
// embedded; a user file and BADGECOUNTER_* environment variables override
// them.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

//go:embed default.yml
var defaultConfig []byte

// EnvPrefix is the prefix of environment overrides, e.g.
// BADGECOUNTER_PROVIDER=file.
const EnvPrefix = "BADGECOUNTER"

// Provider names.
const (
	ProviderMemory = "memory"
	ProviderFile   = "file"
)

var validate = validator.New()

// Config is the application configuration.
type Config struct {
	AppID                 string        `mapstructure:"app_id"`
	Provider              string        `mapstructure:"provider" validate:"oneof=memory file"`
	StateFile             string        `mapstructure:"state_file" validate:"required_if=Provider file"`
	InitialCount          int           `mapstructure:"initial_count" validate:"min=0"`
	AutoIncrementInterval time.Duration `mapstructure:"auto_increment_interval" validate:"gt=0"`
	AnimationDuration     time.Duration `mapstructure:"animation_duration" validate:"gt=0"`
	Sound                 bool          `mapstructure:"sound"`
	Debug                 bool          `mapstructure:"debug"`
	Lang                  string        `mapstructure:"lang" validate:"omitempty,oneof=en pt es ru"`
}

// Load reads the embedded defaults, merges the file at path (if not empty)
// and the environment, applies overrides (keyed like the YAML file) and
// validates the result.
func Load(path string, overrides map[string]any) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultConfig)); err != nil {
		return nil, fmt.Errorf("error reading default config: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
