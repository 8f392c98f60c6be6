// Package config resolves run settings from defaults, an optional yaml
// file and EDALAB_ environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Sweep holds the clustering sweep settings.
type Sweep struct {
	MaxK       int     `mapstructure:"max_k" yaml:"max_k"`
	Iterations int     `mapstructure:"iterations" yaml:"iterations"`
	Tolerance  float64 `mapstructure:"tolerance" yaml:"tolerance"`
	Seed       int64   `mapstructure:"seed" yaml:"seed"`
	Restarts   int     `mapstructure:"restarts" yaml:"restarts"`
	Workers    int     `mapstructure:"workers" yaml:"workers"`
}

// Split holds the train/test split settings.
type Split struct {
	Fraction float64 `mapstructure:"fraction" yaml:"fraction"`
	Seed     int64   `mapstructure:"seed" yaml:"seed"`
}

// Forest holds the random forest settings.
type Forest struct {
	Trees int `mapstructure:"trees" yaml:"trees"`
}

// KNN holds the nearest neighbour settings.
type KNN struct {
	Neighbors int `mapstructure:"neighbors" yaml:"neighbors"`
}

// BloodPressure holds the banding thresholds for the derived pressure
// category. The defaults follow the common 140/90 hypertension cutoff
// with an elevated band above 120/80.
type BloodPressure struct {
	ElevatedSystolic  float64 `mapstructure:"elevated_systolic" yaml:"elevated_systolic"`
	ElevatedDiastolic float64 `mapstructure:"elevated_diastolic" yaml:"elevated_diastolic"`
	HighSystolic      float64 `mapstructure:"high_systolic" yaml:"high_systolic"`
	HighDiastolic     float64 `mapstructure:"high_diastolic" yaml:"high_diastolic"`
}

// Config is the resolved settings for one run.
type Config struct {
	LogLevel      string        `mapstructure:"log_level" yaml:"log_level"`
	OutDir        string        `mapstructure:"out_dir" yaml:"out_dir"`
	ArchiveDir    string        `mapstructure:"archive_dir" yaml:"archive_dir"`
	MetricsAddr   string        `mapstructure:"metrics_addr" yaml:"metrics_addr"`
	Sweep         Sweep         `mapstructure:"sweep" yaml:"sweep"`
	Split         Split         `mapstructure:"split" yaml:"split"`
	Forest        Forest        `mapstructure:"forest" yaml:"forest"`
	KNN           KNN           `mapstructure:"knn" yaml:"knn"`
	BloodPressure BloodPressure `mapstructure:"blood_pressure" yaml:"blood_pressure"`
}

// Load resolves the configuration.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EDALAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("out_dir", "out")
	v.SetDefault("archive_dir", "run-archive")
	v.SetDefault("metrics_addr", "")

	v.SetDefault("sweep.max_k", 10)
	v.SetDefault("sweep.iterations", 100)
	v.SetDefault("sweep.tolerance", 1e-6)
	v.SetDefault("sweep.seed", 1)
	v.SetDefault("sweep.restarts", 25)
	v.SetDefault("sweep.workers", 0)

	v.SetDefault("split.fraction", 0.75)
	v.SetDefault("split.seed", 1)

	v.SetDefault("forest.trees", 500)
	v.SetDefault("knn.neighbors", 5)

	v.SetDefault("blood_pressure.elevated_systolic", 120)
	v.SetDefault("blood_pressure.elevated_diastolic", 80)
	v.SetDefault("blood_pressure.high_systolic", 140)
	v.SetDefault("blood_pressure.high_diastolic", 90)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config file %s: %w", cfgFile, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}
	return &c, nil
}
