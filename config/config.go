// Package config loads lemurdb settings from defaults, an optional config file and the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"mit.edu/dsg/lemurdb/logging"
)

// EnvPrefix is the prefix of every environment variable read by Load, e.g. LEMUR_DATA_DIR or LEMUR_LOG_LEVEL.
const EnvPrefix = "LEMUR"

type Config struct {
	DataDir string    `mapstructure:"data_dir"`
	Log     LogConfig `mapstructure:"log"`
	CSV     CSVConfig `mapstructure:"csv"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CSVConfig struct {
	HasHeader bool `mapstructure:"has_header"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "./lemurdb-data")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("csv.has_header", true)
}

// Load builds a Config. Values come from, in increasing priority: defaults, the file at path (skipped when path
// is empty), and environment variables named prefix_KEY with dots replaced by underscores.
func Load(prefix, path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:  c.Log.Level,
		Format: c.Log.Format,
	}
}
