// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store         StoreConfig         `yaml:"store" mapstructure:"store"`
	WQP           WQPConfig           `yaml:"wqp" mapstructure:"wqp"`
	DataSources   DataSourcesConfig   `yaml:"data_sources" mapstructure:"data_sources"`
	Organizations OrganizationsConfig `yaml:"organizations" mapstructure:"organizations"`
	Matching      MatchingConfig      `yaml:"matching_parameters" mapstructure:"matching_parameters"`
	Output        OutputConfig        `yaml:"output_paths" mapstructure:"output_paths"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Log           LogConfig           `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-history database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// WQPConfig holds Water Quality Portal client settings.
type WQPConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// DataSourcesConfig selects which portal records to pull.
type DataSourcesConfig struct {
	State          string          `yaml:"state" mapstructure:"state"`
	StateCode      string          `yaml:"state_code" mapstructure:"state_code"`
	Characteristic string          `yaml:"characteristic" mapstructure:"characteristic"`
	SiteType       string          `yaml:"site_type" mapstructure:"site_type"`
	SampleMedia    string          `yaml:"sample_media" mapstructure:"sample_media"`
	DateRange      DateRangeConfig `yaml:"date_range" mapstructure:"date_range"`
}

// DateRangeConfig bounds the query window, ISO dates (YYYY-MM-DD).
type DateRangeConfig struct {
	Start string `yaml:"start" mapstructure:"start"`
	End   string `yaml:"end" mapstructure:"end"`
}

// OrganizationsConfig lists the reporting bodies on each side of the
// comparison.
type OrganizationsConfig struct {
	Volunteer    []string `yaml:"volunteer" mapstructure:"volunteer"`
	Professional []string `yaml:"professional" mapstructure:"professional"`
}

// MatchingConfig holds the virtual-triangulation thresholds.
type MatchingConfig struct {
	MaxDistanceMeters   float64 `yaml:"max_distance_meters" mapstructure:"max_distance_meters"`
	MaxTimeHours        float64 `yaml:"max_time_hours" mapstructure:"max_time_hours"`
	MinConcentrationMgL float64 `yaml:"min_concentration_mg_l" mapstructure:"min_concentration_mg_l"`
	MatchStrategy       string  `yaml:"match_strategy" mapstructure:"match_strategy"`
	Workers             int     `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig holds the pipeline's working directories.
type OutputConfig struct {
	RawData       string `yaml:"raw_data" mapstructure:"raw_data"`
	ProcessedData string `yaml:"processed_data" mapstructure:"processed_data"`
	Results       string `yaml:"results" mapstructure:"results"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment
	v.SetEnvPrefix("TRIANGULATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults: the Oklahoma chloride validation study.
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "triangulate.db")
	v.SetDefault("wqp.base_url", "https://www.waterqualitydata.us")
	v.SetDefault("wqp.user_agent", "triangulate/1.0")
	v.SetDefault("wqp.timeout_secs", 300)
	v.SetDefault("wqp.max_retries", 3)
	v.SetDefault("wqp.rate_per_sec", 2)
	v.SetDefault("data_sources.state", "Oklahoma")
	v.SetDefault("data_sources.state_code", "US:40")
	v.SetDefault("data_sources.characteristic", "Chloride")
	v.SetDefault("data_sources.site_type", "Stream")
	v.SetDefault("data_sources.sample_media", "Water")
	v.SetDefault("data_sources.date_range.start", "2018-01-01")
	v.SetDefault("data_sources.date_range.end", "2023-12-31")
	v.SetDefault("matching_parameters.max_distance_meters", 100)
	v.SetDefault("matching_parameters.max_time_hours", 48)
	v.SetDefault("matching_parameters.min_concentration_mg_l", 25)
	v.SetDefault("matching_parameters.match_strategy", "all")
	v.SetDefault("matching_parameters.workers", 0)
	v.SetDefault("output_paths.raw_data", "data/raw")
	v.SetDefault("output_paths.processed_data", "data/processed")
	v.SetDefault("output_paths.results", "data/outputs")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Matching.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects threshold values outside their documented domains.
func (m MatchingConfig) Validate() error {
	if m.MaxDistanceMeters <= 0 {
		return eris.Errorf("config: max_distance_meters must be positive, got %v", m.MaxDistanceMeters)
	}
	if m.MaxTimeHours <= 0 {
		return eris.Errorf("config: max_time_hours must be positive, got %v", m.MaxTimeHours)
	}
	if m.MinConcentrationMgL < 0 {
		return eris.Errorf("config: min_concentration_mg_l must be non-negative, got %v", m.MinConcentrationMgL)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
