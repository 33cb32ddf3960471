// Package config defines the films service configuration.
package config

import (
	"fmt"
	"time"

	infraconfig "github.com/jonesrussell/north-cloud/films/infrastructure/config"
	infraes "github.com/jonesrussell/north-cloud/films/infrastructure/elasticsearch"
	"github.com/jonesrussell/north-cloud/films/internal/domain"
)

// Config holds all configuration for the films binaries.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Analytics     AnalyticsConfig     `yaml:"analytics"`
	Ingest        IngestConfig        `yaml:"ingest"`
	Logging       LoggingConfig       `yaml:"logging"`
	CORS          CORSConfig          `yaml:"cors"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name            string        `yaml:"name"`
	Version         string        `yaml:"version" env:"FILMS_VERSION"`
	Port            int           `yaml:"port" env:"FILMS_PORT"`
	Debug           bool          `yaml:"debug" env:"FILMS_DEBUG"`
	DefaultPageSize int           `yaml:"default_page_size" env:"FILMS_DEFAULT_PAGE_SIZE"`
	MaxPageSize     int           `yaml:"max_page_size" env:"FILMS_MAX_PAGE_SIZE"`
	SearchTimeout   time.Duration `yaml:"search_timeout"`
}

// ElasticsearchConfig holds Elasticsearch connection configuration.
type ElasticsearchConfig struct {
	URL        string        `yaml:"url" env:"ELASTICSEARCH_URL,ELASTICSEARCH_HOST"`
	Username   string        `yaml:"username" env:"ELASTICSEARCH_USERNAME,ELASTICSEARCH_USER"`
	Password   string        `yaml:"password" env:"ELASTICSEARCH_PASSWORD"`
	CAFile     string        `yaml:"ca_file" env:"ELASTICSEARCH_CA_FILE"`
	Index      string        `yaml:"index" env:"FILMS_INDEX"`
	MaxRetries int           `yaml:"max_retries"`
	Timeout    time.Duration `yaml:"timeout"`
}

// AnalyticsConfig sizes the facet aggregations.
type AnalyticsConfig struct {
	GenreBuckets    int `yaml:"genre_buckets"`
	DirectorBuckets int `yaml:"director_buckets"`
}

// IngestConfig controls bulk population.
type IngestConfig struct {
	BatchSize int `yaml:"batch_size" env:"FILMS_INGEST_BATCH_SIZE"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ORIGINS"`
}

// Load loads configuration from file and environment variables.
func Load(path string) (*Config, error) {
	cfg, err := infraconfig.LoadWithDefaults[Config](path, SetDefaults)
	if err != nil {
		return nil, err
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return cfg, nil
}

// SetDefaults applies default values to the config.
func SetDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = "films"
	}
	if cfg.Service.Version == "" {
		cfg.Service.Version = "1.0.0"
	}
	if cfg.Service.Port == 0 {
		cfg.Service.Port = 8000
	}
	if cfg.Service.DefaultPageSize == 0 {
		cfg.Service.DefaultPageSize = domain.DefaultPerPage
	}
	if cfg.Service.MaxPageSize == 0 {
		cfg.Service.MaxPageSize = domain.MaxPerPage
	}
	if cfg.Service.SearchTimeout == 0 {
		cfg.Service.SearchTimeout = 5 * time.Second
	}

	if cfg.Elasticsearch.URL == "" {
		cfg.Elasticsearch.URL = "http://localhost:9200"
	}
	if cfg.Elasticsearch.Index == "" {
		cfg.Elasticsearch.Index = "films"
	}
	if cfg.Elasticsearch.MaxRetries == 0 {
		cfg.Elasticsearch.MaxRetries = 3
	}
	if cfg.Elasticsearch.Timeout == 0 {
		cfg.Elasticsearch.Timeout = 30 * time.Second
	}

	if cfg.Analytics.GenreBuckets == 0 {
		cfg.Analytics.GenreBuckets = 10
	}
	if cfg.Analytics.DirectorBuckets == 0 {
		cfg.Analytics.DirectorBuckets = 10
	}

	if cfg.Ingest.BatchSize == 0 {
		cfg.Ingest.BatchSize = 500
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if c.Service.MaxPageSize < 1 || c.Service.MaxPageSize > domain.MaxResultWindow {
		return &infraconfig.ValidationError{
			Field:   "service.max_page_size",
			Message: fmt.Sprintf("must be between 1 and %d", domain.MaxResultWindow),
		}
	}
	if c.Service.DefaultPageSize < 1 || c.Service.DefaultPageSize > c.Service.MaxPageSize {
		return &infraconfig.ValidationError{
			Field:   "service.default_page_size",
			Message: fmt.Sprintf("must be between 1 and %d", c.Service.MaxPageSize),
		}
	}
	if err := infraconfig.ValidateRequired("elasticsearch.url", c.Elasticsearch.URL); err != nil {
		return err
	}
	if err := infraconfig.ValidateRequired("elasticsearch.index", c.Elasticsearch.Index); err != nil {
		return err
	}
	if c.Analytics.GenreBuckets < 1 || c.Analytics.DirectorBuckets < 1 {
		return &infraconfig.ValidationError{Field: "analytics", Message: "bucket sizes must be greater than 0"}
	}
	if c.Ingest.BatchSize < 1 {
		return &infraconfig.ValidationError{Field: "ingest.batch_size", Message: "must be greater than 0"}
	}
	if err := infraconfig.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	return infraconfig.ValidateLogFormat(c.Logging.Format)
}

// PageLimits returns the pagination bounds for list and search.
func (c *Config) PageLimits() domain.PageLimits {
	return domain.PageLimits{
		DefaultPerPage: c.Service.DefaultPageSize,
		MaxPerPage:     c.Service.MaxPageSize,
	}
}

// ClientConfig converts the section into connection settings.
func (e ElasticsearchConfig) ClientConfig() infraes.Config {
	return infraes.Config{
		URL:             e.URL,
		Username:        e.Username,
		Password:        e.Password,
		CAFile:          e.CAFile,
		MaxRetries:      e.MaxRetries,
		ResponseTimeout: e.Timeout,
	}
}
