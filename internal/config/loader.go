package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".phishscan"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .phishscan configuration file.
// Zero values mean "not set" and leave the current Config value untouched.
type File struct {
	Timeouts   TimeoutsFile `yaml:"timeouts,omitempty"`
	Shorteners []string     `yaml:"shorteners,omitempty"`
	DNS        DNSFile      `yaml:"dns,omitempty"`
	Fetch      FetchFile    `yaml:"fetch,omitempty"`
	Server     ServerFile   `yaml:"server,omitempty"`

	// ExtraShorteners are appended to the shortener list instead of replacing it.
	ExtraShorteners []string `yaml:"extraShorteners,omitempty"`

	BatchSize int  `yaml:"batchSize,omitempty"`
	Threshold *int `yaml:"threshold,omitempty"`
}

// TimeoutsFile holds per-collaborator timeouts, e.g. "5s".
type TimeoutsFile struct {
	Analysis time.Duration `yaml:"analysis,omitempty"`
	Fetch    time.Duration `yaml:"fetch,omitempty"`
	Whois    time.Duration `yaml:"whois,omitempty"`
	DNS      time.Duration `yaml:"dns,omitempty"`
	Resolve  time.Duration `yaml:"resolve,omitempty"`
}

// DNSFile configures record lookups.
type DNSFile struct {
	Server string `yaml:"server,omitempty"`
}

// FetchFile configures the page fetcher.
type FetchFile struct {
	UserAgent          string `yaml:"userAgent,omitempty"`
	MaxBodySize        int64  `yaml:"maxBodySize,omitempty"`
	InsecureSkipVerify *bool  `yaml:"insecureSkipVerify,omitempty"`
	Proxy              string `yaml:"proxy,omitempty"`
}

// ServerFile configures the HTTP server.
type ServerFile struct {
	Address string `yaml:"address,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers decide whether that is fatal based on whether the path was
// explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply copies every value set in the file onto cfg.
func (cf *File) Apply(cfg *Config) {
	applyDuration(&cfg.Timeout, cf.Timeouts.Analysis)
	applyDuration(&cfg.FetchTimeout, cf.Timeouts.Fetch)
	applyDuration(&cfg.WhoisTimeout, cf.Timeouts.Whois)
	applyDuration(&cfg.DNSTimeout, cf.Timeouts.DNS)
	applyDuration(&cfg.ResolveTimeout, cf.Timeouts.Resolve)

	if len(cf.Shorteners) > 0 {
		cfg.Shorteners = append([]string(nil), cf.Shorteners...)
	}
	cfg.Shorteners = append(cfg.Shorteners, cf.ExtraShorteners...)

	if cf.DNS.Server != "" {
		cfg.DNSServer = cf.DNS.Server
	}
	if cf.Fetch.UserAgent != "" {
		cfg.UserAgent = cf.Fetch.UserAgent
	}
	if cf.Fetch.MaxBodySize > 0 {
		cfg.MaxBodySize = cf.Fetch.MaxBodySize
	}
	if cf.Fetch.InsecureSkipVerify != nil {
		cfg.InsecureSkipVerify = *cf.Fetch.InsecureSkipVerify
	}
	if cf.Fetch.Proxy != "" {
		cfg.ProxyAddress = cf.Fetch.Proxy
	}
	if cf.Server.Address != "" {
		cfg.ListenAddress = cf.Server.Address
	}
	if cf.BatchSize > 0 {
		cfg.BatchSize = cf.BatchSize
	}
	if cf.Threshold != nil {
		cfg.Threshold = *cf.Threshold
	}
}

func applyDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .phishscan in the current directory
// 3. Look for config.yaml in the XDG config directory
// 4. Look for .phishscan in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, XDGConfigFile())
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
