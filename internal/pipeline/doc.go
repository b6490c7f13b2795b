// Package pipeline assembles a phishing risk report from a URL.
//
// An analysis is a sequence of steps over one *model.Report: the URL is
// decomposed, the lexical, registration, network and content collectors run
// concurrently against their external data sources, and the scorer combines
// the collected features into a single score. Each step writes its own
// section of the report, so concurrent steps never share mutable state.
//
// Collaborator failures are recorded as feature fields by the steps and
// never abort a report. A step that returns an error or panics is an
// unexpected fault; it is recorded in Report.Error and, with the default
// pipeline, scoring still runs over whatever was collected.
//
// BatchProcessor analyses several URLs concurrently with a bounded errgroup.
package pipeline
