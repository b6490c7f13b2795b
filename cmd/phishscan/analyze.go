package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/model"
	"github.com/nao1215/phishscan/internal/pipeline"
	"github.com/nao1215/phishscan/internal/report"
)

// errAnalysisFailed is returned when at least one analysis was interrupted
// by a fault. The reports are still written.
var errAnalysisFailed = errors.New("analysis failed")

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [url...]",
		Short: "Analyze URLs for phishing risk",
		Long: `Analyze extracts features from each URL and scores its phishing risk.

The following signals contribute to the score:
- URL text (length, '@', IP host, shorteners, dashes, subdomains, punycode)
- Domain registration age from whois
- Host resolution and DNS A/MX/TXT records
- Landing page content (iframes, favicon, login forms, external links)

Lookups that fail are reported and scored; they never abort the analysis.

Examples:
  # Analyze a single URL
  phishscan analyze https://www.wellsfarg0.com/

  # Analyze URLs listed in a file, four at a time
  phishscan analyze --list urls.txt --batch 4

  # Label reports scoring 5 or more as phishing
  phishscan analyze --threshold 5 http://1.2.3.4/login

  # Write a Markdown report to a file
  phishscan analyze --markdown -o reports/result.md https://example.com/`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	addConfigFlags(cmd)

	cmd.Flags().StringP("list", "l", "",
		"File with one URL per line ('#' starts a comment)")

	// Analysis behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Upper bound for one whole analysis")
	cmd.Flags().Duration("fetch-timeout", config.DefaultFetchTimeout,
		"Timeout for fetching the landing page")
	cmd.Flags().Bool("insecure", config.DefaultInsecureSkipVerify,
		"Skip TLS certificate verification when fetching pages")
	cmd.Flags().String("dns-server", "",
		"DNS server for record lookups as host:port (default: system resolver)")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy for page fetches as host:port")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent analyses")
	cmd.Flags().Int("threshold", 0,
		"Score at which a URL is labelled LIKELY PHISHING (0 disables the verdict)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildAnalyzeConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.ValidateTargets(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	factory, err := pipeline.FromConfig(cfg, logger)
	if err != nil {
		return err
	}

	return runAnalyze(ctx, cfg, factory, cmd.OutOrStdout(), logger)
}

// buildAnalyzeConfig layers the analyze flags over the loaded configuration.
// Only flags set on the command line override file and environment values.
func buildAnalyzeConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	var errs []error
	durationFlag := func(name string, dst *time.Duration) {
		if flags.Changed(name) {
			v, err := flags.GetDuration(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	intFlag := func(name string, dst *int) {
		if flags.Changed(name) {
			v, err := flags.GetInt(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	stringFlag := func(name string, dst *string) {
		if flags.Changed(name) {
			v, err := flags.GetString(name)
			errs = append(errs, err)
			*dst = v
		}
	}

	durationFlag("timeout", &cfg.Timeout)
	durationFlag("fetch-timeout", &cfg.FetchTimeout)
	intFlag("batch", &cfg.BatchSize)
	intFlag("threshold", &cfg.Threshold)
	stringFlag("dns-server", &cfg.DNSServer)
	stringFlag("proxy", &cfg.ProxyAddress)
	if flags.Changed("insecure") {
		v, err := flags.GetBool("insecure")
		errs = append(errs, err)
		cfg.InsecureSkipVerify = v
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	listPath, err := flags.GetString("list")
	if err != nil {
		return nil, err
	}
	cfg.Targets = append(cfg.Targets, args...)
	if listPath != "" {
		listed, err := readTargetList(listPath)
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, listed...)
	}

	return cfg, nil
}

// runAnalyze analyses every target and writes the reports.
func runAnalyze(
	ctx context.Context,
	cfg *config.Config,
	factory func() *pipeline.Pipeline,
	stdout io.Writer,
	logger *slog.Logger,
) error {
	logger.Info("starting analysis",
		"targets", len(cfg.Targets),
		"batchSize", cfg.BatchSize,
	)

	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	reports, batchErr := bp.ProcessBatch(ctx, cfg.Targets)
	if err := outputReports(cfg, reports, stdout); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if batchErr != nil {
		return batchErr
	}

	var failed int
	for _, r := range reports {
		if r != nil && r.Error != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d URLs", errAnalysisFailed, failed, len(reports))
	}
	return nil
}

// outputReports writes the reports in the requested format. A single target
// is written as a single report, several as a batch document.
func outputReports(cfg *config.Config, reports []*model.Report, stdout io.Writer) error {
	output := stdout
	toFile := cfg.ReportFile != ""
	if toFile {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports name the analysed URLs, so keep them owner-readable only.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	writer := newReportWriter(cfg, output, toFile)
	if len(reports) == 1 && reports[0] != nil {
		_, err := writer.Write(reports[0])
		return err
	}
	_, err := writer.WriteBatch(reports)
	return err
}

// newReportWriter selects the writer for the configured format.
func newReportWriter(cfg *config.Config, output io.Writer, toFile bool) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(),
			report.WithPrettyPrint(),
			report.WithJSONThreshold(cfg.Threshold),
		)
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output, report.WithMarkdownThreshold(cfg.Threshold))
	default:
		opts := []report.SimpleWriterOption{
			report.WithThreshold(cfg.Threshold),
			report.WithVerbose(cfg.Verbose),
		}
		if toFile {
			opts = append(opts, report.WithColor(false))
		}
		return report.NewSimpleWriter(output, opts...)
	}
}
