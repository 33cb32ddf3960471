package elasticsearch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/films/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/films/infrastructure/retry"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"http scheme kept", "http://elasticsearch:9200", "http://elasticsearch:9200"},
		{"https scheme kept", "https://elasticsearch:9200", "https://elasticsearch:9200"},
		{"missing scheme", "elasticsearch:9200", "http://elasticsearch:9200"},
		{"empty", "", "http://localhost:9200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeURL(tt.input); got != tt.expected {
				t.Errorf("normalizeURL(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	cfg := Config{URL: "http://custom:9200", MaxRetries: 5}
	cfg.SetDefaults()

	if cfg.URL != "http://custom:9200" {
		t.Errorf("URL = %q, want preserved value", cfg.URL)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.PingTimeout != 5*time.Second {
		t.Errorf("PingTimeout = %v, want 5s", cfg.PingTimeout)
	}
	if cfg.RetryConfig == nil || cfg.RetryConfig.MaxAttempts != 5 {
		t.Errorf("RetryConfig = %+v, want 5 attempts", cfg.RetryConfig)
	}
}

func TestBuildClientConfig_Auth(t *testing.T) {
	tests := []struct {
		name         string
		cfg          Config
		wantUser     string
		wantAPIKey   string
		wantTransport bool
	}{
		{"basic auth", Config{Username: "elastic", Password: "changeme"}, "elastic", "", false},
		{"api key wins", Config{APIKey: "key", Username: "elastic", Password: "changeme"}, "", "key", false},
		{"username without password ignored", Config{Username: "elastic"}, "", "", false},
		{"insecure transport", Config{InsecureSkipVerify: true}, "", "", true},
		{"response timeout transport", Config{ResponseTimeout: time.Second}, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildClientConfig(tt.cfg, "http://localhost:9200")
			if err != nil {
				t.Fatalf("buildClientConfig() error = %v", err)
			}
			if got.Username != tt.wantUser {
				t.Errorf("Username = %q, want %q", got.Username, tt.wantUser)
			}
			if got.APIKey != tt.wantAPIKey {
				t.Errorf("APIKey = %q, want %q", got.APIKey, tt.wantAPIKey)
			}
			if (got.Transport != nil) != tt.wantTransport {
				t.Errorf("custom transport set = %v, want %v", got.Transport != nil, tt.wantTransport)
			}
		})
	}
}

func TestBuildClientConfig_CAFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ca.pem")
	if err := os.WriteFile(path, []byte("-----BEGIN CERTIFICATE-----\n"), 0o600); err != nil {
		t.Fatalf("write CA file: %v", err)
	}

	got, err := buildClientConfig(Config{CAFile: path}, "https://localhost:9200")
	if err != nil {
		t.Fatalf("buildClientConfig() error = %v", err)
	}
	if len(got.CACert) == 0 {
		t.Error("CACert is empty, want file contents")
	}

	if _, err = buildClientConfig(Config{CAFile: filepath.Join(t.TempDir(), "missing.pem")}, "https://x"); err == nil {
		t.Error("buildClientConfig() with missing CA file returned nil error")
	}
}

func TestNewClient_UnreachableHost(t *testing.T) {
	cfg := Config{
		URL:         "http://127.0.0.1:1",
		MaxRetries:  1,
		PingTimeout: 200 * time.Millisecond,
		RetryConfig: &retry.Config{
			MaxAttempts:  2,
			InitialDelay: 10 * time.Millisecond,
			MaxDelay:     20 * time.Millisecond,
			Multiplier:   2.0,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := NewClient(ctx, cfg, logger.NewNop()); err == nil {
		t.Fatal("NewClient() expected error for unreachable host, got nil")
	}
}
