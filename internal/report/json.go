package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/phishscan/internal/model"
)

// JSONWriter outputs reports in JSON format.
// A single report is written as the flat object returned by the HTTP API;
// a batch is written as an array of such objects.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithJSONThreshold sets the score at which FullJSONWriter labels a report
// as phishing. The plain JSONWriter never adds a verdict.
func WithJSONThreshold(threshold int) JSONWriterOption {
	return func(w *JSONWriter) {
		w.threshold = threshold
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in JSON format.
func (w *JSONWriter) Write(report *model.Report) (int, error) {
	return w.writeJSON(report)
}

// WriteBatch outputs the reports as a JSON array.
func (w *JSONWriter) WriteBatch(reports []*model.Report) (int, error) {
	return w.writeJSON(nonNil(reports))
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps a report with output metadata.
type JSONReport struct {
	// Version is the phishscan version that generated this report.
	Version string `json:"version"`

	// Verdict is the classification of the score, omitted when no
	// threshold was configured.
	Verdict string `json:"verdict,omitempty"`

	// Report is the full analysis report.
	Report *model.Report `json:"report"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(report *model.Report, version string, threshold int) *JSONReport {
	wrapped := &JSONReport{
		Version: version,
		Report:  report,
	}
	if v := report.Verdict(threshold); v != model.VerdictUnclassified {
		wrapped.Verdict = v.String()
	}
	return wrapped
}

// FullJSONWriter outputs reports with a metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the phishscan version string.
	version string
}

// NewFullJSONWriter creates a writer for complete reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the report wrapped with metadata.
func (w *FullJSONWriter) Write(report *model.Report) (int, error) {
	return w.writeJSON(NewJSONReport(report, w.version, w.threshold))
}

// WriteBatch outputs every report wrapped with metadata as a JSON array.
func (w *FullJSONWriter) WriteBatch(reports []*model.Report) (int, error) {
	reports = nonNil(reports)
	wrapped := make([]*JSONReport, len(reports))
	for i, r := range reports {
		wrapped[i] = NewJSONReport(r, w.version, w.threshold)
	}
	return w.writeJSON(wrapped)
}
