// Package feature derives the feature groups of a report from the URL and
// from what the collaborators returned.
//
// Every extractor is a pure function that always returns a complete group.
// A failed lookup never propagates as an error; it becomes a named field
// (whois_error, dns_records_error, content_error, parsing_error) and the rest
// of the group degrades to nil or zero values.
package feature
