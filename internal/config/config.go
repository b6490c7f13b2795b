package config

import (
	"net"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "phishscan"

	// DefaultTimeout is the ceiling for one complete analysis, collectors included.
	DefaultTimeout = 30 * time.Second

	// DefaultFetchTimeout bounds the page fetch used for content features.
	DefaultFetchTimeout = 5 * time.Second

	// DefaultWhoisTimeout bounds the registration lookup. Whois servers are
	// slow and often refer to a second server, so this is longer than the others.
	DefaultWhoisTimeout = 10 * time.Second

	// DefaultDNSTimeout bounds the A/MX/TXT record queries together.
	DefaultDNSTimeout = 5 * time.Second

	// DefaultResolveTimeout bounds hostname resolution through the system resolver.
	DefaultResolveTimeout = 5 * time.Second

	// DefaultBatchSize is the number of URLs analysed concurrently by the CLI.
	DefaultBatchSize = 4

	// DefaultUserAgent is sent with page fetches. A browser-like value keeps
	// phishing kits that cloak on unknown agents from serving a blank page.
	DefaultUserAgent = "Mozilla/5.0 (compatible; phishscan/1.0; +https://github.com/nao1215/phishscan)"

	// DefaultMaxBodySize limits how much of a fetched page is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultListenAddress is the address the HTTP server binds to.
	DefaultListenAddress = "0.0.0.0:5000"

	// DefaultInsecureSkipVerify relaxes certificate validation for page fetches.
	// Phishing sites frequently serve self-signed or mismatched certificates,
	// and the content is only inspected, never trusted.
	DefaultInsecureSkipVerify = true
)

// DefaultShorteners returns the built-in list of URL shortener hosts.
// A fresh slice is returned on every call so callers may extend it freely.
func DefaultShorteners() []string {
	return []string{
		"bit.ly",
		"tinyurl.com",
		"ow.ly",
		"goo.gl",
		"is.gd",
		"buff.ly",
		"cutt.ly",
		"rebrand.ly",
		"tiny.cc",
		"shorturl.at",
	}
}

// Config holds all configuration options for phishscan.
// It is populated from defaults, the config file, the environment and CLI
// flags, then passed through the application. Nothing mutates it once an
// analysis has started.
type Config struct {
	// Targets is the list of URLs to analyse.
	Targets []string

	// Timeout is the ceiling for a single analysis.
	Timeout time.Duration

	// FetchTimeout, WhoisTimeout, DNSTimeout and ResolveTimeout bound the
	// individual collaborator calls.
	FetchTimeout   time.Duration
	WhoisTimeout   time.Duration
	DNSTimeout     time.Duration
	ResolveTimeout time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// BatchSize is the number of concurrent analyses when processing multiple URLs.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects GitHub Flavored Markdown output.
	MarkdownReport bool

	// ReportFile is the output file path for the report. Stdout when empty.
	ReportFile string

	// Shorteners is the list of shortener hosts matched by the lexical extractor.
	Shorteners []string

	// DNSServer is the "host:port" of the DNS server used for record lookups.
	// When empty, the first nameserver of /etc/resolv.conf is used.
	DNSServer string

	// InsecureSkipVerify disables certificate verification for page fetches.
	InsecureSkipVerify bool

	// ProxyAddress is an optional SOCKS5 proxy ("host:port") for page fetches.
	ProxyAddress string

	// UserAgent is the User-Agent header sent with page fetches.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// ListenAddress is the HTTP server bind address.
	ListenAddress string

	// Threshold is the score at or above which a report is labelled as
	// likely phishing. Zero disables labelling.
	Threshold int
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:            DefaultTimeout,
		FetchTimeout:       DefaultFetchTimeout,
		WhoisTimeout:       DefaultWhoisTimeout,
		DNSTimeout:         DefaultDNSTimeout,
		ResolveTimeout:     DefaultResolveTimeout,
		BatchSize:          DefaultBatchSize,
		Shorteners:         DefaultShorteners(),
		InsecureSkipVerify: DefaultInsecureSkipVerify,
		UserAgent:          DefaultUserAgent,
		MaxBodySize:        DefaultMaxBodySize,
		ListenAddress:      DefaultListenAddress,
	}
}

// XDGConfigDir returns the XDG config directory for phishscan.
// On Linux: ~/.config/phishscan
// On macOS: ~/Library/Application Support/phishscan
// On Windows: %APPDATA%\phishscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGConfigFile returns the config file path inside XDGConfigDir.
func XDGConfigFile() string {
	return filepath.Join(XDGConfigDir(), "config.yaml")
}

// Validate checks the settings shared by every command.
// Target presence is checked separately by ValidateTargets because the
// server has none.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	for _, d := range []time.Duration{c.FetchTimeout, c.WhoisTimeout, c.DNSTimeout, c.ResolveTimeout} {
		if d <= 0 {
			return ErrInvalidCollectorTimeout
		}
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.Threshold < 0 {
		return ErrInvalidThreshold
	}

	if c.DNSServer != "" {
		if _, _, err := net.SplitHostPort(c.DNSServer); err != nil {
			return ErrInvalidDNSServer
		}
	}

	return nil
}

// ValidateTargets runs Validate and additionally requires at least one target.
func (c *Config) ValidateTargets() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	return c.Validate()
}
