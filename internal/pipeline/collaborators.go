package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/lookup"
)

// NewCollaborators builds the network-backed collaborators described by cfg.
func NewCollaborators(cfg *config.Config, logger *slog.Logger) (Collaborators, error) {
	logger = orDefault(logger)

	dnsClient, err := lookup.NewDNSClient(cfg.DNSServer, cfg.DNSTimeout, lookup.WithDNSLogger(logger))
	if err != nil {
		return Collaborators{}, fmt.Errorf("failed to create DNS client: %w", err)
	}

	httpClient, err := lookup.NewHTTPClient(lookup.HTTPClientOptions{
		Timeout:            cfg.FetchTimeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		ProxyAddress:       cfg.ProxyAddress,
	})
	if err != nil {
		return Collaborators{}, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return Collaborators{
		Registration: lookup.NewWhoisClient(cfg.WhoisTimeout, lookup.WithWhoisLogger(logger)),
		Records:      dnsClient,
		Resolver:     lookup.NewResolver(nil),
		Fetcher: lookup.NewFetcher(httpClient,
			lookup.WithUserAgent(cfg.UserAgent),
			lookup.WithMaxBodySize(cfg.MaxBodySize),
			lookup.WithFetchLogger(logger),
		),
	}, nil
}

// ConfigOptions translates cfg into default pipeline options.
func ConfigOptions(cfg *config.Config) []DefaultPipelineOption {
	return []DefaultPipelineOption{
		WithPipelineShorteners(cfg.Shorteners),
		WithPipelineTimeouts(cfg.WhoisTimeout, cfg.DNSTimeout, cfg.ResolveTimeout, cfg.FetchTimeout),
	}
}

// FromConfig returns a factory of default pipelines configured by cfg.
// The collaborators are created once and shared; they hold no per-analysis
// state.
func FromConfig(cfg *config.Config, logger *slog.Logger) (func() *Pipeline, error) {
	collab, err := NewCollaborators(cfg, logger)
	if err != nil {
		return nil, err
	}
	opts := []Option{
		WithLogger(orDefault(logger)),
		WithTimeout(cfg.Timeout),
	}
	configOpts := ConfigOptions(cfg)

	return func() *Pipeline {
		return DefaultPipeline(collab, opts, configOpts...)
	}, nil
}
