// Package config loads tracker configuration the way the teacher's
// coordinator/worker configs do: viper defaults, an optional YAML file,
// and environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// TrackerConfig contains all configuration for a jobtracker node.
type TrackerConfig struct {
	Cluster ClusterConfig `mapstructure:"cluster"`
	Job     JobConfig     `mapstructure:"job"`
	REST    RESTConfig    `mapstructure:"rest"`
	Health  HealthConfig  `mapstructure:"health"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ClusterConfig identifies this node within the cluster.
type ClusterConfig struct {
	Tag string `mapstructure:"tag"`
}

// JobConfig holds the job-level defaults recognised from JobInfo.Config.
type JobConfig struct {
	ExternalExecution  bool          `mapstructure:"external_execution"`
	FinishedJobInfoTTL time.Duration `mapstructure:"finished_job_info_ttl"`
}

// RESTConfig contains the submission/status HTTP server configuration.
type RESTConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// HealthConfig configures the discovery component's stale-node detection.
type HealthConfig struct {
	CheckInterval time.Duration `mapstructure:"check_interval"`
	StaleTimeout  time.Duration `mapstructure:"stale_timeout"`
}

// LoggingConfig controls the shared logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads tracker configuration from the given path. If configPath is
// empty, it looks for tracker.yaml in the config/ directory. Environment
// variables with a GOMR_TRACKER_ prefix override config file values.
func Load(configPath string) (*TrackerConfig, error) {
	v := viper.New()

	v.SetDefault("cluster.tag", "default")
	v.SetDefault("job.external_execution", false)
	v.SetDefault("job.finished_job_info_ttl", 10*time.Minute)
	v.SetDefault("rest.addr", ":8080")
	v.SetDefault("rest.read_timeout", 15*time.Second)
	v.SetDefault("rest.write_timeout", 15*time.Second)
	v.SetDefault("rest.idle_timeout", 60*time.Second)
	v.SetDefault("health.check_interval", 5*time.Second)
	v.SetDefault("health.stale_timeout", 15*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("tracker")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("GOMR_TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg TrackerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}
