package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/nao1215/phishscan/internal/model"
	"github.com/nao1215/phishscan/internal/score"
)

// SimpleWriter outputs human-readable text reports for terminal display.
// Score and verdict are colored when color output is enabled.
type SimpleWriter struct {
	baseWriter

	// verbose adds rule descriptions and raw DNS records.
	verbose bool

	danger  *color.Color
	caution *color.Color
	safe    *color.Color
	heading *color.Color
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithThreshold sets the score at which a report is shown as phishing.
func WithThreshold(threshold int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.threshold = threshold
	}
}

// WithColor forces color output on or off. By default color follows
// whether stdout is a terminal.
func WithColor(enabled bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		for _, c := range []*color.Color{w.danger, w.caution, w.safe, w.heading} {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		danger:     color.New(color.FgRed, color.Bold),
		caution:    color.New(color.FgYellow),
		safe:       color.New(color.FgGreen),
		heading:    color.New(color.FgCyan),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder
	w.writeReport(&sb, report)
	return io.WriteString(w.output, sb.String())
}

// WriteBatch outputs every report followed by a one-line-per-URL summary.
func (w *SimpleWriter) WriteBatch(reports []*model.Report) (int, error) {
	reports = nonNil(reports)

	var sb strings.Builder
	for _, r := range reports {
		w.writeReport(&sb, r)
	}
	w.writeBatchSummary(&sb, reports)
	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeReport(sb *strings.Builder, report *model.Report) {
	w.writeHeader(sb, report)
	w.writeURLParts(sb, report)
	w.writeFeatures(sb, report)
	w.writeScore(sb, report)
	w.writeFooter(sb)
}

// writeHeader writes the report header with analysis information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(w.heading.Sprint("                         PHISHSCAN REPORT"))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "URL:            %s\n", report.URL)
	fmt.Fprintf(sb, "Analyzed At:    %s\n", report.AnalyzedAt.Format("2006-01-02 15:04:05 MST"))

	if report.ErrorMessage != "" {
		fmt.Fprintf(sb, "Status:         %s\n", w.danger.Sprintf("ERROR - %s", report.ErrorMessage))
	} else {
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(w.heading.Sprint(title))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeURLParts(sb *strings.Builder, report *model.Report) {
	w.writeSection(sb, "URL STRUCTURE")

	fmt.Fprintf(sb, "  Scheme:            %s\n", orDash(report.Scheme))
	fmt.Fprintf(sb, "  Hostname:          %s\n", orDash(report.Hostname))
	fmt.Fprintf(sb, "  Registered Domain: %s\n", orDash(report.RegisteredDomain))
	fmt.Fprintf(sb, "  Subdomain:         %s\n", orDash(report.Subdomain))
	fmt.Fprintf(sb, "  Path:              %s\n", orDash(report.Path))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFeatures(sb *strings.Builder, report *model.Report) {
	w.writeSection(sb, "FEATURES")

	sb.WriteString("  Lexical\n")
	fmt.Fprintf(sb, "    Length:            %d\n", report.Length)
	fmt.Fprintf(sb, "    Subdomain count:   %d\n", report.SubdomainCount)
	fmt.Fprintf(sb, "    '@' symbol:        %s\n", yesNo(report.HasAtSymbol))
	fmt.Fprintf(sb, "    IP host:           %s\n", yesNo(report.HasIPHost))
	fmt.Fprintf(sb, "    URL shortener:     %s\n", yesNo(report.UsesShortener))
	fmt.Fprintf(sb, "    '//' redirect:     %s\n", yesNo(report.DoubleSlashRedirect))
	fmt.Fprintf(sb, "    Dash in domain:    %s\n", yesNo(report.HasPrefixSuffixDash))
	fmt.Fprintf(sb, "    Punycode:          %s\n", yesNo(report.IsPunycode))
	fmt.Fprintf(sb, "    Homoglyphs:        %s\n", yesNo(report.HasHomoglyphs))

	sb.WriteString("  Registration\n")
	fmt.Fprintf(sb, "    Domain age:        %s\n", formatDomainAge(report.DomainAge))
	if report.Registrar != "" {
		fmt.Fprintf(sb, "    Registrar:         %s\n", report.Registrar)
	}
	if report.WhoisError != "" {
		fmt.Fprintf(sb, "    Whois error:       %s\n", w.caution.Sprint(report.WhoisError))
	}

	sb.WriteString("  Network\n")
	fmt.Fprintf(sb, "    IP address:        %s\n", orDash(report.IPAddress))
	fmt.Fprintf(sb, "    A records:         %d\n", len(report.DNSARecords))
	fmt.Fprintf(sb, "    MX records:        %d\n", len(report.DNSMXRecords))
	fmt.Fprintf(sb, "    TXT records:       %d\n", len(report.DNSTXTRecords))
	if w.verbose {
		for _, a := range report.DNSARecords {
			fmt.Fprintf(sb, "      A   %s\n", a)
		}
		for _, mx := range report.DNSMXRecords {
			fmt.Fprintf(sb, "      MX  %s\n", mx)
		}
		for _, txt := range report.DNSTXTRecords {
			fmt.Fprintf(sb, "      TXT %s\n", strings.Join(txt, ""))
		}
	}
	if report.DNSRecordsError != "" {
		fmt.Fprintf(sb, "    DNS error:         %s\n", w.caution.Sprint(report.DNSRecordsError))
	}

	sb.WriteString("  Content\n")
	fmt.Fprintf(sb, "    HTTPS:             %s\n", yesNo(report.HTTPS))
	switch {
	case report.ContentError != "":
		fmt.Fprintf(sb, "    Fetch error:       %s\n", w.caution.Sprint(report.ContentError))
	case report.ParsingError != "":
		fmt.Fprintf(sb, "    Parse error:       %s\n", w.caution.Sprint(report.ParsingError))
	default:
		if report.FinalURL != "" && report.FinalURL != report.URL {
			fmt.Fprintf(sb, "    Final URL:         %s\n", report.FinalURL)
		}
		fmt.Fprintf(sb, "    Title:             %s\n", optString(report.Title))
		fmt.Fprintf(sb, "    Iframes:           %s\n", optInt(report.Iframes))
		fmt.Fprintf(sb, "    Scripts:           %s\n", optInt(report.Scripts))
		fmt.Fprintf(sb, "    External links:    %s\n", optInt(report.ExternalLinks))
		fmt.Fprintf(sb, "    Favicon:           %s\n", optBool(report.Favicon))
		fmt.Fprintf(sb, "    Login form:        %s\n", optBool(report.LoginForm))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeScore(sb *strings.Builder, report *model.Report) {
	w.writeSection(sb, "RISK SCORE")

	verdict := w.verdict(report)
	fmt.Fprintf(sb, "  Score:   %s\n", w.verdictColor(verdict).Sprint(report.PhishingScore))
	if verdict != model.VerdictUnclassified {
		fmt.Fprintf(sb, "  Verdict: %s (threshold %d)\n", w.verdictColor(verdict).Sprint(verdict), w.threshold)
	}
	sb.WriteString("\n")

	if len(report.TriggeredRules) == 0 {
		sb.WriteString("  No rules triggered\n\n")
		return
	}

	sb.WriteString("  Triggered rules:\n")
	for _, name := range report.TriggeredRules {
		rule, ok := score.Describe(name)
		if !ok {
			fmt.Fprintf(sb, "    [ ?] %s\n", name)
			continue
		}
		fmt.Fprintf(sb, "    [+%d] %s\n", rule.Points, name)
		if w.verbose {
			fmt.Fprintf(sb, "         %s\n", rule.Description)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeBatchSummary(sb *strings.Builder, reports []*model.Report) {
	w.writeSection(sb, "BATCH SUMMARY")

	var flagged int
	for _, r := range reports {
		verdict := w.verdict(r)
		if verdict == model.VerdictPhishing {
			flagged++
		}
		status := verdict.String()
		if r.ErrorMessage != "" {
			status = "ERROR"
		}
		fmt.Fprintf(sb, "  %s  %-16s %s\n",
			w.verdictColor(verdict).Sprintf("%3d", r.PhishingScore), status, r.URL)
	}
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  TOTAL: %d URLs", len(reports))
	if w.threshold > 0 {
		fmt.Fprintf(sb, ", %d likely phishing", flagged)
	}
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) verdictColor(v model.Verdict) *color.Color {
	switch v {
	case model.VerdictPhishing:
		return w.danger
	case model.VerdictBenign:
		return w.safe
	default:
		return w.caution
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by phishscan\n")
	sb.WriteString("https://github.com/nao1215/phishscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
