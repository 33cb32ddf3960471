// Package elasticsearch builds a verified go-elasticsearch client.
package elasticsearch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/jonesrussell/north-cloud/films/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/films/infrastructure/retry"
)

// NewClient creates an Elasticsearch client and pings it with exponential backoff
// until the cluster answers or the retry budget is spent.
func NewClient(ctx context.Context, cfg Config, log logger.Logger) (*es.Client, error) {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NewNop()
	}

	url := normalizeURL(cfg.URL)

	clientConfig, err := buildClientConfig(cfg, url)
	if err != nil {
		return nil, err
	}

	esClient, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	log.Info("Verifying Elasticsearch connection", logger.String("url", url))

	if err = retry.Retry(ctx, *cfg.RetryConfig, func() error {
		return ping(ctx, esClient, cfg, log)
	}); err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch after retries: %w", err)
	}

	log.Info("Elasticsearch connection established", logger.String("url", url))
	return esClient, nil
}

func buildClientConfig(cfg Config, url string) (es.Config, error) {
	clientConfig := es.Config{
		Addresses:  []string{url},
		MaxRetries: cfg.MaxRetries,
	}

	switch {
	case cfg.APIKey != "":
		clientConfig.APIKey = cfg.APIKey
	case cfg.Username != "" && cfg.Password != "":
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	caCert := cfg.CACert
	if len(caCert) == 0 && cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return es.Config{}, fmt.Errorf("read CA file %s: %w", cfg.CAFile, err)
		}
		caCert = pem
	}
	clientConfig.CACert = caCert

	if cfg.InsecureSkipVerify || cfg.ResponseTimeout > 0 {
		clientConfig.Transport = createTransport(cfg.InsecureSkipVerify, cfg.ResponseTimeout)
	}

	return clientConfig, nil
}

// normalizeURL adds http:// when the scheme is missing.
func normalizeURL(url string) string {
	if url == "" {
		return "http://localhost:9200"
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "http://" + url
	}
	return url
}

func createTransport(insecureSkipVerify bool, responseTimeout time.Duration) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = responseTimeout
	if insecureSkipVerify {
		//nolint:gosec // opt-in for local clusters with self-signed certificates
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return transport
}

func ping(ctx context.Context, client *es.Client, cfg Config, log logger.Logger) error {
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()

	res, err := client.Ping(client.Ping.WithContext(pingCtx))
	if err != nil {
		log.Debug("Elasticsearch ping failed", logger.Error(err))
		return fmt.Errorf("ping failed: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		log.Debug("Elasticsearch ping returned error",
			logger.String("status", res.Status()),
			logger.String("body", string(body)),
		)
		return fmt.Errorf("ping returned error [%s]: %s", res.Status(), string(body))
	}

	return nil
}
