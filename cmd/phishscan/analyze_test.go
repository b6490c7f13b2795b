package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/model"
	"github.com/nao1215/phishscan/internal/pipeline"
	"github.com/nao1215/phishscan/internal/report"
)

const loginPage = `<html><head><link rel="icon" href="/favicon.ico"><title>Sign in</title></head><body>
<form action="/login" method="post"><input name="u"><input type="password" name="p"></form>
</body></html>`

const plainPage = `<html><head><link rel="icon" href="/favicon.ico"><title>Example</title></head>
<body><p>Hello</p></body></html>`

type stubRegistration struct{}

func (stubRegistration) LookupRegistration(context.Context, string) (*model.RegistrationInfo, error) {
	return &model.RegistrationInfo{
		Registrar:     "Example Registrar",
		CreationDates: []time.Time{time.Now().AddDate(-10, 0, 0)},
	}, nil
}

type stubRecords struct{}

func (stubRecords) LookupRecords(context.Context, string) (*model.DNSRecords, error) {
	return &model.DNSRecords{A: []string{"93.184.216.34"}, MX: []string{}, TXT: [][]string{}}, nil
}

type stubResolver struct{}

func (stubResolver) ResolveHost(context.Context, string) (string, error) {
	return "93.184.216.34", nil
}

// stubFetcher serves pages keyed by URL and fails for anything else.
type stubFetcher map[string]string

func (f stubFetcher) FetchPage(_ context.Context, rawURL string) (*model.Page, error) {
	body, ok := f[rawURL]
	if !ok {
		return nil, errors.New("dial tcp: connection refused")
	}
	return &model.Page{
		URL:         rawURL,
		FinalURL:    rawURL,
		StatusCode:  200,
		ContentType: "text/html",
		Body:        []byte(body),
	}, nil
}

func stubFactory() func() *pipeline.Pipeline {
	collab := pipeline.Collaborators{
		Registration: stubRegistration{},
		Records:      stubRecords{},
		Resolver:     stubResolver{},
		Fetcher: stubFetcher{
			"http://1.2.3.4/login": loginPage,
			"https://example.com/": plainPage,
		},
	}
	return func() *pipeline.Pipeline {
		return pipeline.DefaultPipeline(collab, nil)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// emptyConfigFile keeps tests independent of any configuration file on the
// machine running them.
func emptyConfigFile(t *testing.T) string {
	t.Helper()
	return writeFile(t, "config.yaml", "")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func parseAnalyzeConfig(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()

	cmd := NewAnalyzeCmd()
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return buildAnalyzeConfig(cmd, cmd.Flags().Args())
}

func TestNewAnalyzeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewAnalyzeCmd()
	for _, name := range []string{
		"list", "json", "markdown", "output", "threshold", "batch", "timeout",
		"fetch-timeout", "insecure", "dns-server", "proxy", "config", "env-file",
	} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
}

func TestBuildAnalyzeConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := parseAnalyzeConfig(t, "--config", emptyConfigFile(t), "--env-file", "", "https://example.com/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(cfg.Targets, []string{"https://example.com/"}) {
			t.Errorf("Targets = %v", cfg.Targets)
		}
		if cfg.Timeout != config.DefaultTimeout || cfg.BatchSize != config.DefaultBatchSize {
			t.Errorf("unexpected defaults %v %d", cfg.Timeout, cfg.BatchSize)
		}
		if !cfg.InsecureSkipVerify || cfg.Threshold != 0 {
			t.Errorf("unexpected defaults insecure=%v threshold=%d", cfg.InsecureSkipVerify, cfg.Threshold)
		}
	})

	t.Run("flags override the configuration file", func(t *testing.T) {
		t.Parallel()

		file := writeFile(t, "config.yaml", "threshold: 3\nbatchSize: 2\ntimeouts:\n  fetch: 2s\n")
		cfg, err := parseAnalyzeConfig(t,
			"--config", file, "--env-file", "",
			"--threshold", "7", "--insecure=false", "--dns-server", "9.9.9.9:53",
			"https://example.com/",
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Threshold != 7 {
			t.Errorf("Threshold = %d, want flag value 7", cfg.Threshold)
		}
		if cfg.BatchSize != 2 || cfg.FetchTimeout != 2*time.Second {
			t.Errorf("file values lost: batch %d fetch %v", cfg.BatchSize, cfg.FetchTimeout)
		}
		if cfg.InsecureSkipVerify || cfg.DNSServer != "9.9.9.9:53" {
			t.Errorf("flags not applied: insecure %v dns %q", cfg.InsecureSkipVerify, cfg.DNSServer)
		}
	})

	t.Run("reads targets from list", func(t *testing.T) {
		t.Parallel()

		list := writeFile(t, "urls.txt", "# suspicious\nhttp://1.2.3.4/login\n\n  https://example.org/  \n")
		cfg, err := parseAnalyzeConfig(t, "--config", emptyConfigFile(t), "--list", list, "https://example.com/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"https://example.com/", "http://1.2.3.4/login", "https://example.org/"}
		if !slices.Equal(cfg.Targets, want) {
			t.Errorf("Targets = %v, want %v", cfg.Targets, want)
		}
	})

	t.Run("missing list file", func(t *testing.T) {
		t.Parallel()

		_, err := parseAnalyzeConfig(t, "--config", emptyConfigFile(t), "--list", filepath.Join(t.TempDir(), "none.txt"))
		if err == nil {
			t.Error("expected error for missing list")
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()

		_, err := parseAnalyzeConfig(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
		if err == nil || !strings.Contains(err.Error(), "configuration file not found") {
			t.Errorf("expected not found error, got %v", err)
		}
	})
}

func TestRunAnalyzeCmdValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "no targets", args: nil, want: config.ErrNoTarget},
		{name: "conflicting formats", args: []string{"--json", "--markdown", "https://example.com/"}, want: config.ErrConflictingReportFormats},
		{name: "negative threshold", args: []string{"--threshold", "-1", "https://example.com/"}, want: config.ErrInvalidThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := NewAnalyzeCmd()
			cmd.SetArgs(append([]string{"--config", emptyConfigFile(t), "--env-file", ""}, tt.args...))
			cmd.SetOut(io.Discard)

			if err := cmd.Execute(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRunAnalyze(t *testing.T) {
	t.Parallel()

	t.Run("batch JSON output in input order", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Targets = []string{"http://1.2.3.4/login", "https://example.com/"}
		cfg.JSONReport = true
		cfg.Threshold = 5

		var buf bytes.Buffer
		if err := runAnalyze(context.Background(), cfg, stubFactory(), &buf, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded []report.JSONReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not a JSON array: %v\n%s", err, buf.String())
		}
		if len(decoded) != 2 {
			t.Fatalf("expected 2 reports, got %d", len(decoded))
		}

		login, plain := decoded[0], decoded[1]
		if login.Report.URL != "http://1.2.3.4/login" || plain.Report.URL != "https://example.com/" {
			t.Errorf("unexpected order %q %q", login.Report.URL, plain.Report.URL)
		}
		// no_https(2) + login_form(3) + ip_address_format(2)
		if login.Report.PhishingScore != 7 || login.Verdict != "LIKELY PHISHING" {
			t.Errorf("login page: score %d verdict %q (%v)", login.Report.PhishingScore, login.Verdict, login.Report.TriggeredRules)
		}
		// ip_address_format(2)
		if plain.Report.PhishingScore != 2 || plain.Verdict != "LIKELY BENIGN" {
			t.Errorf("plain page: score %d verdict %q (%v)", plain.Report.PhishingScore, plain.Verdict, plain.Report.TriggeredRules)
		}
	})

	t.Run("single target writes a single report", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Targets = []string{"https://example.com/"}
		cfg.JSONReport = true

		var buf bytes.Buffer
		if err := runAnalyze(context.Background(), cfg, stubFactory(), &buf, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(buf.String(), "{") {
			t.Errorf("expected a JSON object, got %s", buf.String())
		}
	})

	t.Run("fetch failure is a feature not a failure", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Targets = []string{"https://unreachable.example/"}

		var buf bytes.Buffer
		if err := runAnalyze(context.Background(), cfg, stubFactory(), &buf, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "connection refused") {
			t.Errorf("expected fetch error in report:\n%s", buf.String())
		}
	})

	t.Run("faulted analysis returns an error after writing", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Targets = []string{"https://example.com/"}

		factory := func() *pipeline.Pipeline {
			p := pipeline.New(pipeline.WithContinueOnError(true))
			p.AddSteps(pipeline.DecomposeStep{}, panicStep{})
			return p
		}

		var buf bytes.Buffer
		err := runAnalyze(context.Background(), cfg, factory, &buf, discardLogger())
		if !errors.Is(err, errAnalysisFailed) {
			t.Errorf("expected errAnalysisFailed, got %v", err)
		}
		if !strings.Contains(buf.String(), "ERROR") {
			t.Errorf("expected report with error status:\n%s", buf.String())
		}
	})

	t.Run("writes markdown to a file", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Targets = []string{"https://example.com/"}
		cfg.MarkdownReport = true
		cfg.ReportFile = filepath.Join(t.TempDir(), "reports", "out.md")

		var stdout bytes.Buffer
		if err := runAnalyze(context.Background(), cfg, stubFactory(), &stdout, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout.Len() != 0 {
			t.Error("report must not go to stdout when writing a file")
		}

		content, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(content), "# PhishScan Report") {
			t.Errorf("unexpected report:\n%s", content)
		}

		info, err := os.Stat(cfg.ReportFile)
		if err != nil {
			t.Fatalf("failed to stat report: %v", err)
		}
		if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
			t.Errorf("expected permissions 0600, got %o", info.Mode().Perm())
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		cfg := config.NewConfig()
		cfg.Targets = []string{"https://example.com/", "https://example.org/"}

		err := runAnalyze(ctx, cfg, stubFactory(), io.Discard, discardLogger())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

type panicStep struct{}

func (panicStep) Name() string { return "explode" }

func (panicStep) Do(context.Context, *model.Report) error {
	panic("unexpected nil page")
}

func TestReadTargetList(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "urls.txt", "\n# header\nhttps://a.example/\r\n#https://skipped.example/\nhttps://b.example/")
	targets, err := readTargetList(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(targets, []string{"https://a.example/", "https://b.example/"}) {
		t.Errorf("targets = %v", targets)
	}
}
