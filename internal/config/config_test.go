package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults must be intentional; these tests fail otherwise.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("default FetchTimeout is 5 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.FetchTimeout != 5*time.Second {
			t.Errorf("expected FetchTimeout to be 5s, got %v", cfg.FetchTimeout)
		}
	})

	t.Run("default shorteners include the classic three", func(t *testing.T) {
		t.Parallel()
		for _, s := range []string{"bit.ly", "tinyurl.com", "ow.ly"} {
			if !slices.Contains(cfg.Shorteners, s) {
				t.Errorf("expected %q in default shorteners", s)
			}
		}
	})

	t.Run("default certificate verification is relaxed", func(t *testing.T) {
		t.Parallel()
		if !cfg.InsecureSkipVerify {
			t.Error("expected InsecureSkipVerify to be true")
		}
	})

	t.Run("default listen address is port 5000", func(t *testing.T) {
		t.Parallel()
		if cfg.ListenAddress != "0.0.0.0:5000" {
			t.Errorf("expected ListenAddress to be 0.0.0.0:5000, got %q", cfg.ListenAddress)
		}
	})

	t.Run("default threshold disables labelling", func(t *testing.T) {
		t.Parallel()
		if cfg.Threshold != 0 {
			t.Errorf("expected Threshold to be 0, got %d", cfg.Threshold)
		}
	})
}

func TestDefaultShortenersReturnsCopy(t *testing.T) {
	t.Parallel()

	a := DefaultShorteners()
	a[0] = "changed"
	if DefaultShorteners()[0] == "changed" {
		t.Error("DefaultShorteners must return a fresh slice")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{name: "defaults are valid", modify: func(*Config) {}, want: nil},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, want: ErrInvalidTimeout},
		{name: "zero fetch timeout", modify: func(c *Config) { c.FetchTimeout = 0 }, want: ErrInvalidCollectorTimeout},
		{name: "negative whois timeout", modify: func(c *Config) { c.WhoisTimeout = -time.Second }, want: ErrInvalidCollectorTimeout},
		{name: "zero batch size", modify: func(c *Config) { c.BatchSize = 0 }, want: ErrInvalidBatchSize},
		{name: "json and markdown", modify: func(c *Config) { c.JSONReport, c.MarkdownReport = true, true }, want: ErrConflictingReportFormats},
		{name: "negative max body size", modify: func(c *Config) { c.MaxBodySize = -1 }, want: ErrInvalidMaxBodySize},
		{name: "negative threshold", modify: func(c *Config) { c.Threshold = -1 }, want: ErrInvalidThreshold},
		{name: "dns server without port", modify: func(c *Config) { c.DNSServer = "8.8.8.8" }, want: ErrInvalidDNSServer},
		{name: "dns server with port", modify: func(c *Config) { c.DNSServer = "8.8.8.8:53" }, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestConfigValidateTargets(t *testing.T) {
	t.Parallel()

	t.Run("no targets returns ErrNoTarget", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		if err := cfg.ValidateTargets(); !errors.Is(err, ErrNoTarget) {
			t.Errorf("expected ErrNoTarget, got %v", err)
		}
	})

	t.Run("targets with invalid settings still fail", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Targets = []string{"http://example.com"}
		cfg.BatchSize = 0
		if err := cfg.ValidateTargets(); !errors.Is(err, ErrInvalidBatchSize) {
			t.Errorf("expected ErrInvalidBatchSize, got %v", err)
		}
	})

	t.Run("targets with defaults are valid", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Targets = []string{"http://example.com"}
		if err := cfg.ValidateTargets(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cf, err := LoadConfigFile("/nonexistent/path/.phishscan")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cf != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads and applies valid YAML config", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), ".phishscan")

		content := `timeouts:
  analysis: 45s
  fetch: 3s
  whois: 12s
shorteners:
  - bit.ly
extraShorteners:
  - s.id
dns:
  server: 9.9.9.9:53
fetch:
  userAgent: test-agent
  insecureSkipVerify: false
  proxy: 127.0.0.1:1080
server:
  address: 127.0.0.1:8080
batchSize: 2
threshold: 6
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		cf.Apply(cfg)

		if cfg.Timeout != 45*time.Second {
			t.Errorf("expected Timeout 45s, got %v", cfg.Timeout)
		}
		if cfg.FetchTimeout != 3*time.Second {
			t.Errorf("expected FetchTimeout 3s, got %v", cfg.FetchTimeout)
		}
		if cfg.DNSTimeout != DefaultDNSTimeout {
			t.Errorf("expected unset DNSTimeout to keep default, got %v", cfg.DNSTimeout)
		}
		if !slices.Equal(cfg.Shorteners, []string{"bit.ly", "s.id"}) {
			t.Errorf("unexpected shorteners %v", cfg.Shorteners)
		}
		if cfg.DNSServer != "9.9.9.9:53" {
			t.Errorf("unexpected DNSServer %q", cfg.DNSServer)
		}
		if cfg.UserAgent != "test-agent" {
			t.Errorf("unexpected UserAgent %q", cfg.UserAgent)
		}
		if cfg.InsecureSkipVerify {
			t.Error("expected InsecureSkipVerify false")
		}
		if cfg.ProxyAddress != "127.0.0.1:1080" {
			t.Errorf("unexpected ProxyAddress %q", cfg.ProxyAddress)
		}
		if cfg.ListenAddress != "127.0.0.1:8080" {
			t.Errorf("unexpected ListenAddress %q", cfg.ListenAddress)
		}
		if cfg.BatchSize != 2 || cfg.Threshold != 6 {
			t.Errorf("unexpected BatchSize/Threshold %d/%d", cfg.BatchSize, cfg.Threshold)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), ".phishscan")

		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("empty file leaves defaults untouched", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), ".phishscan")
		if err := os.WriteFile(configPath, []byte("{}\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cfg := NewConfig()
		cf.Apply(cfg)
		if !slices.Equal(cfg.Shorteners, DefaultShorteners()) {
			t.Errorf("expected default shorteners, got %v", cfg.Shorteners)
		}
		if !cfg.InsecureSkipVerify {
			t.Error("expected InsecureSkipVerify to keep default")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), "custom.yaml")

		if err := os.WriteFile(configPath, []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()
		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

func TestXDGConfigFile(t *testing.T) {
	t.Parallel()

	if dir := XDGConfigDir(); dir == "" {
		t.Error("expected non-empty XDG config dir")
	}
	if filepath.Base(XDGConfigFile()) != "config.yaml" {
		t.Errorf("unexpected XDG config file %q", XDGConfigFile())
	}
}

// TestApplyEnv mutates the process environment, so it does not run in parallel.
func TestApplyEnv(t *testing.T) {
	for _, key := range []string{EnvListenAddress, EnvPort, EnvDNSServer, EnvProxy, EnvFetchTimeout, EnvThreshold} {
		t.Setenv(key, "")
	}

	t.Run("missing env file is not an error", func(t *testing.T) {
		cfg := NewConfig()
		if err := cfg.ApplyEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ListenAddress != DefaultListenAddress {
			t.Errorf("expected default listen address, got %q", cfg.ListenAddress)
		}
	})

	t.Run("reads values from env file", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), ".env")
		content := "PORT=8081\nPHISHSCAN_DNS_SERVER=1.1.1.1:53\nPHISHSCAN_FETCH_TIMEOUT=2s\nPHISHSCAN_THRESHOLD=5\n"
		if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}

		cfg := NewConfig()
		if err := cfg.ApplyEnv(envFile); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ListenAddress != "0.0.0.0:8081" {
			t.Errorf("unexpected ListenAddress %q", cfg.ListenAddress)
		}
		if cfg.DNSServer != "1.1.1.1:53" {
			t.Errorf("unexpected DNSServer %q", cfg.DNSServer)
		}
		if cfg.FetchTimeout != 2*time.Second {
			t.Errorf("unexpected FetchTimeout %v", cfg.FetchTimeout)
		}
		if cfg.Threshold != 5 {
			t.Errorf("unexpected Threshold %d", cfg.Threshold)
		}
	})

	t.Run("process environment wins over env file", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envFile, []byte("PHISHSCAN_PROXY=10.0.0.1:1080\n"), 0600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Setenv(EnvProxy, "127.0.0.1:9050")

		cfg := NewConfig()
		if err := cfg.ApplyEnv(envFile); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ProxyAddress != "127.0.0.1:9050" {
			t.Errorf("unexpected ProxyAddress %q", cfg.ProxyAddress)
		}
	})

	t.Run("invalid duration is reported", func(t *testing.T) {
		t.Setenv(EnvFetchTimeout, "soon")
		cfg := NewConfig()
		if err := cfg.ApplyEnv(""); err == nil {
			t.Error("expected error for invalid duration")
		}
	})
}
