package model

import (
	"mime"
	"strings"
	"time"
)

// Page is a fetched web page as returned by the page fetcher.
type Page struct {
	// URL is the URL that was requested.
	URL string

	// FinalURL is the URL after redirects.
	FinalURL string

	// StatusCode is the HTTP response status code.
	StatusCode int

	// ContentType is the media type of the response without parameters.
	ContentType string

	// Body is the response body decoded to UTF-8 and capped at the
	// configured maximum size.
	Body []byte

	// Truncated is true when the body was cut at the size limit.
	Truncated bool
}

// IsHTML returns true if the page content type indicates HTML.
// An empty content type is treated as HTML because phishing kits often omit it.
func (p *Page) IsHTML() bool {
	switch p.ContentType {
	case "", "text/html", "application/xhtml+xml":
		return true
	}
	return false
}

// MediaType strips parameters such as charset from a Content-Type header value.
func MediaType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// RegistrationInfo is the parsed whois record of a registered domain.
type RegistrationInfo struct {
	// Domain is the registered domain the record belongs to.
	Domain string

	// CreationDates holds every creation date found in the record. Registries
	// and registrars may report different dates; the earliest is authoritative.
	CreationDates []time.Time

	// Registrar is the sponsoring registrar name, if present.
	Registrar string

	// Raw is the unparsed whois response.
	Raw string
}

// EarliestCreation returns the earliest creation date, if any.
func (r *RegistrationInfo) EarliestCreation() (time.Time, bool) {
	if r == nil || len(r.CreationDates) == 0 {
		return time.Time{}, false
	}
	earliest := r.CreationDates[0]
	for _, d := range r.CreationDates[1:] {
		if d.Before(earliest) {
			earliest = d
		}
	}
	return earliest, true
}

// DNSRecords are the A, MX and TXT answers for a host.
// A nil slice means the query did not complete.
type DNSRecords struct {
	A   []string
	MX  []string
	TXT [][]string
}
