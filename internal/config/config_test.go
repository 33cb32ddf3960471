package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	infraconfig "github.com/jonesrussell/north-cloud/films/infrastructure/config"
	"github.com/jonesrussell/north-cloud/films/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// isolateEnv points ENV_FILE at a missing file and clears overrides the tests assert on.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	for _, name := range []string{"ELASTICSEARCH_URL", "ELASTICSEARCH_USERNAME", "ELASTICSEARCH_USER", "FILMS_INDEX", "FILMS_PORT", "FILMS_MAX_PAGE_SIZE", "FILMS_DEFAULT_PAGE_SIZE", "FILMS_INGEST_BATCH_SIZE"} {
		t.Setenv(name, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Elasticsearch.Index != "films" {
		t.Errorf("Index = %q, want films", cfg.Elasticsearch.Index)
	}
	if cfg.Service.MaxPageSize != 100 || cfg.Service.DefaultPageSize != 10 {
		t.Errorf("page sizes = %d/%d, want 10/100", cfg.Service.DefaultPageSize, cfg.Service.MaxPageSize)
	}
	if cfg.Service.SearchTimeout != 5*time.Second {
		t.Errorf("SearchTimeout = %v, want 5s", cfg.Service.SearchTimeout)
	}
	if cfg.Analytics.GenreBuckets != 10 || cfg.Analytics.DirectorBuckets != 10 {
		t.Errorf("bucket sizes = %+v, want 10/10", cfg.Analytics)
	}
	if cfg.Ingest.BatchSize != 500 {
		t.Errorf("BatchSize = %d, want 500", cfg.Ingest.BatchSize)
	}
	if limits := cfg.PageLimits(); limits.MaxPerPage != 100 {
		t.Errorf("PageLimits().MaxPerPage = %d, want 100", limits.MaxPerPage)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ELASTICSEARCH_USER", "elastic")
	t.Setenv("FILMS_INDEX", "films_test")

	path := writeConfig(t, `
service:
  port: 9000
  max_page_size: 50
elasticsearch:
  url: http://es:9200
analytics:
  director_buckets: 25
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Service.Port)
	}
	if cfg.Elasticsearch.URL != "http://es:9200" {
		t.Errorf("URL = %q, want http://es:9200", cfg.Elasticsearch.URL)
	}
	if cfg.Elasticsearch.Username != "elastic" {
		t.Errorf("Username = %q, want elastic from ELASTICSEARCH_USER", cfg.Elasticsearch.Username)
	}
	if cfg.Elasticsearch.Index != "films_test" {
		t.Errorf("Index = %q, want films_test", cfg.Elasticsearch.Index)
	}
	if cfg.Analytics.DirectorBuckets != 25 {
		t.Errorf("DirectorBuckets = %d, want 25", cfg.Analytics.DirectorBuckets)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*config.Config)
		wantField string
	}{
		{"bad port", func(c *config.Config) { c.Service.Port = 70000 }, "service.port"},
		{"default above max", func(c *config.Config) { c.Service.DefaultPageSize = 200 }, "service.default_page_size"},
		{"max above window", func(c *config.Config) { c.Service.MaxPageSize = 20000 }, "service.max_page_size"},
		{"empty index", func(c *config.Config) { c.Elasticsearch.Index = "" }, "elasticsearch.index"},
		{"bad batch", func(c *config.Config) { c.Ingest.BatchSize = -1 }, "ingest.batch_size"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			config.SetDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.Validate()
			var validationErr *infraconfig.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			if validationErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", validationErr.Field, tt.wantField)
			}
		})
	}
}

func TestElasticsearchConfig_ClientConfig(t *testing.T) {
	es := config.ElasticsearchConfig{
		URL:        "https://es:9200",
		Username:   "elastic",
		Password:   "secret",
		CAFile:     "/certs/ca.crt",
		MaxRetries: 2,
		Timeout:    7 * time.Second,
	}

	got := es.ClientConfig()
	if got.URL != es.URL || got.Username != "elastic" || got.Password != "secret" || got.CAFile != es.CAFile {
		t.Errorf("connection fields not carried over: %+v", got)
	}
	if got.MaxRetries != 2 || got.ResponseTimeout != 7*time.Second {
		t.Errorf("MaxRetries/ResponseTimeout = %d/%v, want 2/7s", got.MaxRetries, got.ResponseTimeout)
	}
}
