// Package score turns the merged feature set of a report into an additive
// phishing score.
//
// The score is a rule-based heuristic, not a calibrated probability. Rules
// are independent, so evaluation order never changes the total. Turning a
// score into a verdict is left to the caller (see model.Classify).
package score

import "github.com/nao1215/phishscan/internal/model"

// DefaultDomainAge is the age in days assumed when the domain age is unknown.
// It is old enough that a failed registration lookup does not also trigger
// the young-domain rule; the failure is scored by the whois_error rule instead.
const DefaultDomainAge = 365

// Thresholds used by the rule table.
const (
	maxLength        = 75
	maxSubdomainDots = 3
	youngDomainDays  = 30
	maxIframes       = 2
	maxExternalLinks = 10
)

// Rule is one entry of the scoring table.
type Rule struct {
	// Name identifies the rule in Result.Triggered.
	Name string

	// Description explains the rule in report output.
	Description string

	// Points is added to the score when Match returns true.
	Points int

	// Match reports whether the rule fires for r.
	Match func(r *model.Report) bool
}

// Result is the outcome of scoring one report.
type Result struct {
	Score     int
	Triggered []string
}

// Rules returns the scoring table. A fresh slice is returned on every call.
func Rules() []Rule {
	return []Rule{
		{
			Name:        "long_url",
			Description: "URL is longer than 75 characters",
			Points:      1,
			Match:       func(r *model.Report) bool { return r.Length > maxLength },
		},
		{
			Name:        "uses_shortener",
			Description: "URL goes through a link shortener",
			Points:      2,
			Match:       func(r *model.Report) bool { return r.UsesShortener },
		},
		{
			Name:        "has_at_symbol",
			Description: "URL contains '@', which hides the real host",
			Points:      2,
			Match:       func(r *model.Report) bool { return r.HasAtSymbol },
		},
		{
			Name:        "double_slash_redirect",
			Description: "URL contains '//' after the scheme",
			Points:      2,
			Match:       func(r *model.Report) bool { return r.DoubleSlashRedirect },
		},
		{
			Name:        "has_prefix_suffix_dash",
			Description: "Host contains '-'",
			Points:      1,
			Match:       func(r *model.Report) bool { return r.HasPrefixSuffixDash },
		},
		{
			Name:        "many_subdomains",
			Description: "Host has more than three dots",
			Points:      1,
			Match:       func(r *model.Report) bool { return r.SubdomainCount > maxSubdomainDots },
		},
		{
			Name:        "young_domain",
			Description: "Domain was registered less than 30 days ago",
			Points:      2,
			Match:       func(r *model.Report) bool { return domainAge(r) < youngDomainDays },
		},
		{
			Name:        "no_https",
			Description: "URL does not use HTTPS",
			Points:      2,
			Match:       func(r *model.Report) bool { return !r.HTTPS },
		},
		{
			Name:        "no_favicon",
			Description: "Page declares no favicon",
			Points:      1,
			Match:       func(r *model.Report) bool { return r.Favicon != nil && !*r.Favicon },
		},
		{
			Name:        "login_form",
			Description: "Page has a form posting to a login or sign-in action",
			Points:      3,
			Match:       func(r *model.Report) bool { return r.LoginForm != nil && *r.LoginForm },
		},
		{
			Name:        "ip_address_format",
			Description: "Host resolved to a valid IP address",
			Points:      2,
			Match:       func(r *model.Report) bool { return r.IPAddressFormat },
		},
		{
			Name:        "whois_error",
			Description: "Registration lookup failed",
			Points:      1,
			Match:       func(r *model.Report) bool { return r.WhoisError != "" },
		},
		{
			Name:        "content_error",
			Description: "Page could not be fetched",
			Points:      1,
			Match:       func(r *model.Report) bool { return r.ContentError != "" },
		},
		{
			Name:        "many_iframes",
			Description: "Page embeds more than two iframes",
			Points:      1,
			Match:       func(r *model.Report) bool { return r.Iframes != nil && *r.Iframes > maxIframes },
		},
		{
			Name:        "many_external_links",
			Description: "Page links to other hosts more than ten times",
			Points:      1,
			Match:       func(r *model.Report) bool { return r.ExternalLinks != nil && *r.ExternalLinks > maxExternalLinks },
		},
		{
			Name:        "dns_records_error",
			Description: "DNS record lookup failed",
			Points:      1,
			Match:       func(r *model.Report) bool { return r.DNSRecordsError != "" },
		},
	}
}

func domainAge(r *model.Report) int {
	if r.DomainAge == nil {
		return DefaultDomainAge
	}
	return *r.DomainAge
}

// Scorer evaluates a rule table.
type Scorer struct {
	rules []Rule
}

// NewScorer returns a Scorer loaded with the default rule table.
func NewScorer() *Scorer {
	return &Scorer{rules: Rules()}
}

// NewScorerWithRules returns a Scorer over a custom table.
func NewScorerWithRules(rules []Rule) *Scorer {
	return &Scorer{rules: rules}
}

// Score evaluates every rule against r.
func (s *Scorer) Score(r *model.Report) Result {
	result := Result{Triggered: make([]string, 0)}
	for _, rule := range s.rules {
		if rule.Match(r) {
			result.Score += rule.Points
			result.Triggered = append(result.Triggered, rule.Name)
		}
	}
	return result
}

// Apply scores r and stores the result on it.
func (s *Scorer) Apply(r *model.Report) {
	result := s.Score(r)
	r.PhishingScore = result.Score
	r.TriggeredRules = result.Triggered
}

// Describe returns the rule with the given name.
func Describe(name string) (Rule, bool) {
	for _, rule := range Rules() {
		if rule.Name == name {
			return rule, true
		}
	}
	return Rule{}, false
}
