package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/phishscan/internal/model"
	"github.com/nao1215/phishscan/internal/score"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMarkdownThreshold sets the score at which a report is shown as phishing.
func WithMarkdownThreshold(threshold int) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.threshold = threshold
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("PhishScan Report")
	md.PlainText("")
	w.writeReport(md, report, md.H2)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteBatch outputs a summary table followed by a section per report.
func (w *MarkdownWriter) WriteBatch(reports []*model.Report) (int, error) {
	reports = nonNil(reports)
	md := markdown.NewMarkdown(w.output)

	md.H1("PhishScan Batch Report")
	md.PlainText("")

	rows := make([][]string, len(reports))
	for i, r := range reports {
		status := w.verdict(r).String()
		if r.ErrorMessage != "" {
			status = "❌ Error"
		}
		rows[i] = []string{"`" + truncateString(r.URL, 60) + "`", strconv.Itoa(r.PhishingScore), status}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Score", "Verdict"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, r := range reports {
		md.H2(r.URL)
		md.PlainText("")
		w.writeReport(md, r, md.H3)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeReport writes the sections of one report. heading is used for section
// titles so the same layout nests under a batch document.
func (w *MarkdownWriter) writeReport(md *markdown.Markdown, report *model.Report, heading func(string) *markdown.Markdown) {
	w.writeHeader(md, report)
	w.writeAlert(md, report)
	w.writeFeatures(md, report, heading)
	w.writeRules(md, report, heading)
}

// writeHeader writes the analysis information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	rows := [][]string{
		{"URL", "`" + report.URL + "`"},
		{"Analyzed At", report.AnalyzedAt.Format("2006-01-02 15:04:05 MST")},
		{"Registered Domain", orDash(report.RegisteredDomain)},
		{"Phishing Score", "**" + strconv.Itoa(report.PhishingScore) + "**"},
		{"Status", w.getStatusText(report)},
	}
	if v := w.verdict(report); v != model.VerdictUnclassified {
		rows = append(rows, []string{"Verdict", v.String()})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.Report) string {
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	return "✅ Complete"
}

// writeAlert writes an alert matching the verdict.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.Report) {
	switch w.verdict(report) {
	case model.VerdictPhishing:
		md.Cautionf(
			"This URL is likely phishing: score %d reached the threshold of %d.",
			report.PhishingScore, w.threshold,
		)
	case model.VerdictBenign:
		md.Tip("This URL scored below the phishing threshold.")
	default:
		if report.PhishingScore > 0 {
			md.Importantf("%d rule(s) triggered. No threshold was configured.", len(report.TriggeredRules))
		} else {
			md.Note("No rules triggered.")
		}
	}
	md.PlainText("")

	if report.ErrorMessage != "" {
		md.Warningf("The analysis was interrupted: %s", report.ErrorMessage)
		md.PlainText("")
	}
}

// writeFeatures writes one table per feature group.
func (w *MarkdownWriter) writeFeatures(md *markdown.Markdown, report *model.Report, heading func(string) *markdown.Markdown) {
	heading("Features")
	md.PlainText("")

	md.PlainText("**Lexical**")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Feature", "Value"},
		Rows: [][]string{
			{"Length", strconv.Itoa(report.Length)},
			{"Subdomain count", strconv.Itoa(report.SubdomainCount)},
			{"'@' symbol", yesNo(report.HasAtSymbol)},
			{"IP host", yesNo(report.HasIPHost)},
			{"URL shortener", yesNo(report.UsesShortener)},
			{"'//' redirect", yesNo(report.DoubleSlashRedirect)},
			{"Dash in domain", yesNo(report.HasPrefixSuffixDash)},
			{"Punycode", yesNo(report.IsPunycode)},
			{"Homoglyphs", yesNo(report.HasHomoglyphs)},
		},
	})
	md.PlainText("")

	md.PlainText("**Registration**")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Feature", "Value"},
		Rows: [][]string{
			{"Domain age", formatDomainAge(report.DomainAge)},
			{"Registrar", orDash(report.Registrar)},
			{"Whois error", orDash(report.WhoisError)},
		},
	})
	md.PlainText("")

	md.PlainText("**Network**")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Feature", "Value"},
		Rows: [][]string{
			{"IP address", orDash(report.IPAddress)},
			{"A records", orDash(strings.Join(report.DNSARecords, ", "))},
			{"MX records", orDash(strings.Join(report.DNSMXRecords, ", "))},
			{"TXT records", strconv.Itoa(len(report.DNSTXTRecords))},
			{"DNS error", orDash(report.DNSRecordsError)},
		},
	})
	md.PlainText("")
	for _, txt := range report.DNSTXTRecords {
		joined := strings.Join(txt, "")
		md.Details(truncateString(joined, 40), joined)
	}

	md.PlainText("**Content**")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Feature", "Value"},
		Rows: [][]string{
			{"HTTPS", yesNo(report.HTTPS)},
			{"Final URL", orDash(report.FinalURL)},
			{"Title", truncateString(optString(report.Title), 60)},
			{"Iframes", optInt(report.Iframes)},
			{"Scripts", optInt(report.Scripts)},
			{"External links", optInt(report.ExternalLinks)},
			{"Favicon", optBool(report.Favicon)},
			{"Login form", optBool(report.LoginForm)},
			{"Fetch error", orDash(report.ContentError)},
			{"Parse error", orDash(report.ParsingError)},
		},
	})
	md.PlainText("")
}

// writeRules writes the triggered rules table and their point distribution.
func (w *MarkdownWriter) writeRules(md *markdown.Markdown, report *model.Report, heading func(string) *markdown.Markdown) {
	heading("Triggered Rules")
	md.PlainText("")

	if len(report.TriggeredRules) == 0 {
		md.PlainText("No rules triggered.")
		md.PlainText("")
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Score Contribution by Rule"),
		piechart.WithShowData(true),
	)

	rows := make([][]string, 0, len(report.TriggeredRules))
	for _, name := range report.TriggeredRules {
		rule, ok := score.Describe(name)
		if !ok {
			rows = append(rows, []string{"`" + name + "`", "-", "-"})
			continue
		}
		rows = append(rows, []string{"`" + name + "`", "+" + strconv.Itoa(rule.Points), rule.Description})
		chart.LabelAndIntValue(name, uint64(rule.Points)) //nolint:gosec // points are positive
	}

	md.Table(markdown.TableSet{
		Header: []string{"Rule", "Points", "Description"},
		Rows:   rows,
	})
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [phishscan](https://github.com/nao1215/phishscan)*")
}
