package elasticsearch

import (
	"time"

	"github.com/jonesrussell/north-cloud/films/infrastructure/retry"
)

// Config holds Elasticsearch connection settings.
type Config struct {
	// URL is the cluster address; http:// is assumed when no scheme is given.
	URL      string
	Username string
	Password string
	APIKey   string

	// CACert is a PEM bundle used to verify the cluster certificate.
	// CAFile is read into CACert when CACert is empty.
	CACert             []byte
	CAFile             string
	InsecureSkipVerify bool

	// MaxRetries is the transport-level retry count per request.
	MaxRetries  int
	PingTimeout time.Duration
	// ResponseTimeout bounds the wait for response headers. Zero means no limit.
	ResponseTimeout time.Duration

	// RetryConfig drives the connect-time ping loop.
	RetryConfig *retry.Config
}

// SetDefaults applies default values to the config if not set.
func (c *Config) SetDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:9200"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = 5 * time.Second
	}
	if c.RetryConfig == nil {
		c.RetryConfig = &retry.Config{
			MaxAttempts:  5,
			InitialDelay: 2 * time.Second,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		}
	}
}
