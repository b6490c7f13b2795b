package model

import (
	"errors"
	"time"
)

// Report is the result of analysing one URL.
//
// The feature groups are embedded so the JSON form is a single flat object,
// which is what API consumers of the analyzer expect. Each group is written by
// exactly one pipeline step, so steps running concurrently never touch the
// same fields.
type Report struct {
	// URL is the input exactly as submitted.
	URL string `json:"url"`

	// AnalyzedAt is the reference time used for the analysis (domain age is
	// computed against it).
	AnalyzedAt time.Time `json:"analyzed_at"`

	URLParts
	LexicalFeatures
	RegistrationFeatures
	NetworkFeatures
	ContentFeatures

	// PhishingScore is the additive risk score. Higher means more suspicious.
	PhishingScore int `json:"phishing_score"`

	// TriggeredRules lists the names of the scoring rules that fired, in
	// rule table order.
	TriggeredRules []string `json:"triggered_rules"`

	// PerformedSteps lists the pipeline steps that completed.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error contains an unexpected fault that interrupted the analysis.
	// Collaborator failures are not faults; they are recorded as features.
	Error error `json:"-"`

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// URLParts is the structural decomposition of the input URL.
// Every field is empty when the input could not be parsed.
type URLParts struct {
	Scheme string `json:"scheme"`

	// Netloc is the full authority, including userinfo and port.
	Netloc string `json:"netloc"`

	Path  string `json:"path"`
	Query string `json:"query"`

	// Hostname is the authority without userinfo and port, lowercased.
	Hostname string `json:"hostname"`

	// Subdomain, Domain and Suffix split Hostname using the public suffix list.
	// Suffix is empty for IP hosts and unknown TLDs.
	Subdomain string `json:"subdomain"`
	Domain    string `json:"domain"`
	Suffix    string `json:"suffix"`

	// RegisteredDomain is Domain + "." + Suffix, or empty when Suffix is empty.
	RegisteredDomain string `json:"registered_domain"`
}

// LexicalFeatures are derived from the URL text alone.
type LexicalFeatures struct {
	Length              int  `json:"length"`
	HasAtSymbol         bool `json:"has_at_symbol"`
	HasIPHost           bool `json:"has_ip_host"` //nolint:tagliatelle // IP is an initialism
	UsesShortener       bool `json:"uses_shortener"`
	DoubleSlashRedirect bool `json:"double_slash_redirect"`
	HasPrefixSuffixDash bool `json:"has_prefix_suffix_dash"`
	SubdomainCount      int  `json:"subdomain_count"`

	// IsPunycode is true when a host label is IDNA-encoded ("xn--").
	IsPunycode bool `json:"is_punycode"`

	// HasHomoglyphs is true when the host contains characters that are
	// visually confusable with Latin letters.
	HasHomoglyphs bool `json:"has_homoglyphs"`
}

// RegistrationFeatures are derived from the whois record of the registered domain.
type RegistrationFeatures struct {
	// DomainAge is the age in whole days, or nil when unknown.
	DomainAge *int `json:"domain_age"`

	// CreationDate is the earliest creation date found in the record.
	CreationDate *time.Time `json:"creation_date,omitempty"`

	Registrar string `json:"registrar,omitempty"`

	// WhoisError describes why the lookup failed.
	WhoisError string `json:"whois_error,omitempty"`
}

// NetworkFeatures are derived from hostname resolution and DNS records.
type NetworkFeatures struct {
	// IPAddress is the resolved address or UnresolvedHost.
	IPAddress string `json:"ip_address"` //nolint:tagliatelle // IP is an initialism

	// IPAddressFormat is true when IPAddress holds a valid IP literal.
	IPAddressFormat bool `json:"ip_address_format"` //nolint:tagliatelle // IP is an initialism

	// Record lists are nil when the query was never answered and empty when
	// the answer had no records of that type.
	DNSARecords   []string   `json:"dns_a_records"`   //nolint:tagliatelle // DNS is an initialism
	DNSMXRecords  []string   `json:"dns_mx_records"`  //nolint:tagliatelle // DNS is an initialism
	DNSTXTRecords [][]string `json:"dns_txt_records"` //nolint:tagliatelle // DNS is an initialism

	DNSRecordsError string `json:"dns_records_error,omitempty"` //nolint:tagliatelle // DNS is an initialism
}

// UnresolvedHost is stored in NetworkFeatures.IPAddress when resolution fails.
const UnresolvedHost = "Could not resolve hostname"

// DomainNotFound is stored in NetworkFeatures.DNSRecordsError on NXDOMAIN.
const DomainNotFound = "Domain not found"

// ContentFeatures are derived from the fetched landing page.
// Pointer fields are nil when no page was parsed.
type ContentFeatures struct {
	// HTTPS is computed from the scheme even when the fetch fails.
	HTTPS bool `json:"https"` //nolint:tagliatelle // HTTPS is an initialism

	StatusCode int    `json:"status_code,omitempty"`
	FinalURL   string `json:"final_url,omitempty"`

	Title         *string `json:"title"`
	Iframes       *int    `json:"iframes"`
	Scripts       *int    `json:"scripts"`
	ExternalLinks *int    `json:"external_links"`
	Favicon       *bool   `json:"favicon"`
	LoginForm     *bool   `json:"login_form"`

	// ContentError and ParsingError are mutually exclusive.
	ContentError string `json:"content_error,omitempty"`
	ParsingError string `json:"parsing_error,omitempty"`
}

// Parsed reports whether a page was fetched and parsed successfully.
func (c *ContentFeatures) Parsed() bool {
	return c.ContentError == "" && c.ParsingError == "" && c.Iframes != nil
}

// NewReport creates a new report for the given input URL.
func NewReport(rawURL string) *Report {
	return &Report{
		URL:            rawURL,
		TriggeredRules: make([]string, 0),
	}
}

// SetError records an unexpected fault. The first fault wins so the report
// shows the root cause rather than a follow-on failure.
func (r *Report) SetError(err error) {
	if err == nil || r.Error != nil {
		return
	}
	r.Error = err
	r.ErrorMessage = err.Error()
}

// AddPerformedStep records a completed pipeline step.
func (r *Report) AddPerformedStep(name string) {
	r.PerformedSteps = append(r.PerformedSteps, name)
}

// Verdict classifies the report against threshold.
func (r *Report) Verdict(threshold int) Verdict {
	return Classify(r.PhishingScore, threshold)
}

// ErrDomainNotFound is returned by record lookups when the domain does not
// exist (NXDOMAIN).
var ErrDomainNotFound = errors.New("domain not found")
