package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/feature"
	"github.com/nao1215/phishscan/internal/model"
	"github.com/nao1215/phishscan/internal/score"
	"github.com/nao1215/phishscan/internal/urlparts"
)

// RegistrationLookup fetches the whois record of a registered domain.
type RegistrationLookup interface {
	LookupRegistration(ctx context.Context, domain string) (*model.RegistrationInfo, error)
}

// RecordLookup fetches the A, MX and TXT records of a host.
// Records answered before a failure are returned alongside the error.
type RecordLookup interface {
	LookupRecords(ctx context.Context, host string) (*model.DNSRecords, error)
}

// HostResolver resolves a hostname to one IP address string.
type HostResolver interface {
	ResolveHost(ctx context.Context, host string) (string, error)
}

// PageFetcher downloads the landing page of a URL.
type PageFetcher interface {
	FetchPage(ctx context.Context, rawURL string) (*model.Page, error)
}

// DecomposeStep splits the URL into its structural parts.
// Every later step reads the parts it writes.
type DecomposeStep struct{}

// Name returns the step name.
func (DecomposeStep) Name() string {
	return "decompose"
}

// Do executes the decompose step.
func (DecomposeStep) Do(_ context.Context, report *model.Report) error {
	report.URLParts = urlparts.Decompose(report.URL)
	return nil
}

// LexicalStep derives features from the URL text.
type LexicalStep struct {
	shorteners []string
}

// NewLexicalStep creates a lexical step matching the given shortener hosts.
func NewLexicalStep(shorteners []string) *LexicalStep {
	return &LexicalStep{shorteners: shorteners}
}

// Name returns the step name.
func (s *LexicalStep) Name() string {
	return "lexical"
}

// Do executes the lexical step.
func (s *LexicalStep) Do(_ context.Context, report *model.Report) error {
	report.LexicalFeatures = feature.Lexical(report.URL, report.URLParts, s.shorteners)
	return nil
}

// RegistrationStep looks up the whois record of the registered domain.
type RegistrationStep struct {
	lookup  RegistrationLookup
	timeout time.Duration
	logger  *slog.Logger
}

// NewRegistrationStep creates a registration step. Each lookup is bounded by timeout.
func NewRegistrationStep(lookup RegistrationLookup, timeout time.Duration, logger *slog.Logger) *RegistrationStep {
	return &RegistrationStep{lookup: lookup, timeout: timeout, logger: orDefault(logger)}
}

// Name returns the step name.
func (s *RegistrationStep) Name() string {
	return "registration"
}

// Do executes the registration step. The domain age is measured against
// the report's AnalyzedAt.
func (s *RegistrationStep) Do(ctx context.Context, report *model.Report) error {
	domain := report.RegisteredDomain
	if domain == "" {
		domain = report.Hostname
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	info, err := s.lookup.LookupRegistration(ctx, domain)
	if err != nil {
		s.logger.Debug("registration lookup failed", "domain", domain, "error", err)
	}
	report.RegistrationFeatures = feature.Registration(info, err, report.AnalyzedAt)
	return nil
}

// NetworkStep resolves the hostname and queries its DNS records.
// The two lookups run concurrently, each under its own timeout.
type NetworkStep struct {
	resolver       HostResolver
	records        RecordLookup
	resolveTimeout time.Duration
	dnsTimeout     time.Duration
	logger         *slog.Logger
}

// NewNetworkStep creates a network step.
func NewNetworkStep(resolver HostResolver, records RecordLookup, resolveTimeout, dnsTimeout time.Duration, logger *slog.Logger) *NetworkStep {
	return &NetworkStep{
		resolver:       resolver,
		records:        records,
		resolveTimeout: resolveTimeout,
		dnsTimeout:     dnsTimeout,
		logger:         orDefault(logger),
	}
}

// Name returns the step name.
func (s *NetworkStep) Name() string {
	return "network"
}

// Do executes the network step.
func (s *NetworkStep) Do(ctx context.Context, report *model.Report) error {
	host := report.Hostname

	var (
		ip         string
		resolveErr error
		records    *model.DNSRecords
		dnsErr     error
	)

	var g errgroup.Group
	g.Go(func() error {
		ctx, cancel := withTimeout(ctx, s.resolveTimeout)
		defer cancel()
		ip, resolveErr = s.resolver.ResolveHost(ctx, host)
		return nil
	})
	g.Go(func() error {
		ctx, cancel := withTimeout(ctx, s.dnsTimeout)
		defer cancel()
		records, dnsErr = s.records.LookupRecords(ctx, host)
		return nil
	})
	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	if resolveErr != nil {
		s.logger.Debug("host resolution failed", "host", host, "error", resolveErr)
	}
	if dnsErr != nil {
		s.logger.Debug("dns record lookup failed", "host", host, "error", dnsErr)
	}

	report.NetworkFeatures = feature.Network(ip, resolveErr, records, dnsErr)
	return nil
}

// ContentStep fetches and inspects the landing page.
type ContentStep struct {
	fetcher PageFetcher
	timeout time.Duration
	logger  *slog.Logger
}

// NewContentStep creates a content step. Each fetch is bounded by timeout.
func NewContentStep(fetcher PageFetcher, timeout time.Duration, logger *slog.Logger) *ContentStep {
	return &ContentStep{fetcher: fetcher, timeout: timeout, logger: orDefault(logger)}
}

// Name returns the step name.
func (s *ContentStep) Name() string {
	return "content"
}

// Do executes the content step.
func (s *ContentStep) Do(ctx context.Context, report *model.Report) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	page, err := s.fetcher.FetchPage(ctx, report.URL)
	if err != nil {
		s.logger.Debug("page fetch failed", "url", report.URL, "error", err)
	}
	report.ContentFeatures = feature.Content(report.URLParts, page, err)
	return nil
}

// ScoreStep combines the collected features into the phishing score.
type ScoreStep struct {
	scorer *score.Scorer
}

// NewScoreStep creates a score step. A nil scorer uses the default rules.
func NewScoreStep(scorer *score.Scorer) *ScoreStep {
	if scorer == nil {
		scorer = score.NewScorer()
	}
	return &ScoreStep{scorer: scorer}
}

// Name returns the step name.
func (s *ScoreStep) Name() string {
	return "score"
}

// Final reports that scoring also runs over a report cut short by the
// analysis timeout.
func (s *ScoreStep) Final() bool {
	return true
}

// Do executes the score step.
func (s *ScoreStep) Do(_ context.Context, report *model.Report) error {
	s.scorer.Apply(report)
	return nil
}

// Collaborators are the external data sources used by the default pipeline.
type Collaborators struct {
	Registration RegistrationLookup
	Records      RecordLookup
	Resolver     HostResolver
	Fetcher      PageFetcher
}

// DefaultPipelineConfig holds the settings of the default pipeline.
type DefaultPipelineConfig struct {
	Shorteners     []string
	WhoisTimeout   time.Duration
	DNSTimeout     time.Duration
	ResolveTimeout time.Duration
	FetchTimeout   time.Duration
	Scorer         *score.Scorer
}

// DefaultPipelineOption configures the default pipeline.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineShorteners sets the shortener hosts.
func WithPipelineShorteners(shorteners []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Shorteners = shorteners
	}
}

// WithPipelineTimeouts sets the per-collaborator timeouts.
// Non-positive values keep the current setting.
func WithPipelineTimeouts(whois, dns, resolve, fetch time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		if whois > 0 {
			c.WhoisTimeout = whois
		}
		if dns > 0 {
			c.DNSTimeout = dns
		}
		if resolve > 0 {
			c.ResolveTimeout = resolve
		}
		if fetch > 0 {
			c.FetchTimeout = fetch
		}
	}
}

// WithPipelineScorer replaces the scorer.
func WithPipelineScorer(scorer *score.Scorer) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Scorer = scorer
	}
}

// DefaultPipeline creates the standard analysis pipeline:
// decompose, then the four collectors concurrently, then score.
// Errors never stop the pipeline, so a report always carries a score.
func DefaultPipeline(collab Collaborators, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	cfg := &DefaultPipelineConfig{
		Shorteners:     config.DefaultShorteners(),
		WhoisTimeout:   config.DefaultWhoisTimeout,
		DNSTimeout:     config.DefaultDNSTimeout,
		ResolveTimeout: config.DefaultResolveTimeout,
		FetchTimeout:   config.DefaultFetchTimeout,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p := New(append([]Option{WithContinueOnError(true)}, pipelineOpts...)...)

	p.AddSteps(
		DecomposeStep{},
		NewGroupStep("collect",
			[]Step{
				NewLexicalStep(cfg.Shorteners),
				NewRegistrationStep(collab.Registration, cfg.WhoisTimeout, p.logger),
				NewNetworkStep(collab.Resolver, collab.Records, cfg.ResolveTimeout, cfg.DNSTimeout, p.logger),
				NewContentStep(collab.Fetcher, cfg.FetchTimeout, p.logger),
			},
			p.logger,
		),
		NewScoreStep(cfg.Scorer),
	)

	return p
}

// withTimeout derives a bounded context. A non-positive timeout only adds
// a cancel function.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
