// Package config resolves hcmctl settings from a config file and HCM_*
// environment variables via viper. Library packages never read this; they
// take explicit Config structs.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the resolved hcmctl configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Learning LearningConfig `mapstructure:"learning"`
	Store    StoreConfig    `mapstructure:"store"`
	Flow     FlowConfig     `mapstructure:"flow"`
}

// DataConfig selects between the fixed recordings and synthetic data.
type DataConfig struct {
	// UseRealData selects the fixed recorded signal set.
	UseRealData bool `mapstructure:"use_real_data"`
	// Seed drives synthetic data generation when UseRealData is false.
	Seed int64 `mapstructure:"seed"`
}

// LearningConfig controls adaptation and history bounds.
type LearningConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MaxRecords  int  `mapstructure:"max_records"`
	MaxPatterns int  `mapstructure:"max_patterns"`
	PatternCap  int  `mapstructure:"pattern_cap"`
}

// StoreConfig locates the SQLite database. An empty path disables
// persistence.
type StoreConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// FlowConfig sizes the circulation demo.
type FlowConfig struct {
	HeartRate int `mapstructure:"heart_rate"`
	Beats     int `mapstructure:"beats"`
}

// Load reads config from (in order of precedence) HCM_* environment
// variables, an optional hcm.yaml next to the working directory or under
// ~/.config/hcm/, and the defaults.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("data.use_real_data", true)
	v.SetDefault("data.seed", 42)
	v.SetDefault("learning.enabled", true)
	v.SetDefault("learning.max_records", 1000)
	v.SetDefault("learning.max_patterns", 64)
	v.SetDefault("learning.pattern_cap", 512)
	v.SetDefault("store.db_path", "hcm.db")
	v.SetDefault("flow.heart_rate", 75)
	v.SetDefault("flow.beats", 20)

	v.SetConfigName("hcm")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "hcm"))
	}

	v.SetEnvPrefix("HCM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing config files are fine; anything else is a real failure.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
