// Package urlparts splits a raw URL into the structural parts used by
// feature extraction: scheme, authority, path, query and the
// subdomain / registrable domain / public suffix of the host.
package urlparts

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"

	"github.com/nao1215/phishscan/internal/model"
)

// Decompose splits rawURL into its parts. It never fails: when rawURL cannot
// be parsed every part is empty, and downstream extractors treat that as data.
//
// Input without a scheme ("example.com/login") yields an empty Netloc, but the
// host before the first "/" is still split into subdomain, domain and suffix.
func Decompose(rawURL string) model.URLParts {
	u, err := url.Parse(rawURL)
	if err != nil {
		return model.URLParts{}
	}

	parts := model.URLParts{
		Scheme: u.Scheme,
		Netloc: netloc(u),
		Path:   u.EscapedPath(),
		Query:  u.RawQuery,
	}

	host := u.Hostname()
	if host == "" && u.Scheme == "" && u.Opaque == "" {
		host = schemelessHost(rawURL)
	}

	parts.Hostname = normalizeHost(host)
	parts.Subdomain, parts.Domain, parts.Suffix = SplitHost(parts.Hostname)
	if parts.Domain != "" && parts.Suffix != "" {
		parts.RegisteredDomain = parts.Domain + "." + parts.Suffix
	}
	return parts
}

// netloc rebuilds the authority component including userinfo, the way it
// appeared in the input.
func netloc(u *url.URL) string {
	if u.User == nil {
		return u.Host
	}
	return u.User.String() + "@" + u.Host
}

// schemelessHost extracts the host from input such as "example.com/path"
// that url.Parse treats entirely as a path.
func schemelessHost(rawURL string) string {
	host, _, _ := strings.Cut(rawURL, "/")
	host, _, _ = strings.Cut(host, "?")
	host, _, _ = strings.Cut(host, "#")
	if i := strings.LastIndex(host, "@"); i >= 0 {
		host = host[i+1:]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return host
}

// normalizeHost lowercases host, drops a trailing root dot and converts
// internationalized names to their ASCII (punycode) form.
func normalizeHost(host string) string {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" {
		return ""
	}
	if net.ParseIP(host) != nil {
		return host
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
		return ascii
	}
	return host
}

// SplitHost splits a normalized host into subdomain, domain and public suffix.
//
// Only ICANN suffixes count: private entries of the public suffix list
// ("blogspot.com") are treated as ordinary domains, so "a.blogspot.com" has
// domain "blogspot". Hosts under an unknown TLD get an empty suffix and the
// last label as domain. IP literals are returned as the domain.
func SplitHost(host string) (subdomain, domain, suffix string) {
	if host == "" {
		return "", "", ""
	}
	if net.ParseIP(host) != nil {
		return "", host, ""
	}

	suffix = icannSuffix(host)
	if suffix == host {
		return "", "", suffix
	}

	rest := host
	if suffix != "" {
		rest = strings.TrimSuffix(host, "."+suffix)
	}

	if i := strings.LastIndex(rest, "."); i >= 0 {
		return rest[:i], rest[i+1:], suffix
	}
	return "", rest, suffix
}

// icannSuffix returns the ICANN public suffix of host, or "" when the TLD is
// not on the list.
func icannSuffix(host string) string {
	candidate := host
	for {
		suffix, icann := publicsuffix.PublicSuffix(candidate)
		if icann {
			return suffix
		}
		if !strings.Contains(suffix, ".") {
			// Default "*" rule: the TLD is unknown.
			return ""
		}
		// Private rule such as "blogspot.com"; retry with its parent.
		_, parent, _ := strings.Cut(suffix, ".")
		candidate = parent
	}
}
