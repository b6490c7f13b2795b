package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"

	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/model"
)

// WhoisQuerier sends a raw whois query. *whois.Client satisfies it.
type WhoisQuerier interface {
	Whois(domain string, servers ...string) (string, error)
}

// WhoisClient looks up the registration record of a registered domain.
type WhoisClient struct {
	querier WhoisQuerier
	logger  *slog.Logger
}

// WhoisOption configures a WhoisClient.
type WhoisOption func(*WhoisClient)

// WithWhoisQuerier replaces the whois transport. Tests use it to avoid the network.
func WithWhoisQuerier(q WhoisQuerier) WhoisOption {
	return func(c *WhoisClient) {
		c.querier = q
	}
}

// WithWhoisLogger sets a custom logger.
func WithWhoisLogger(logger *slog.Logger) WhoisOption {
	return func(c *WhoisClient) {
		c.logger = logger
	}
}

// NewWhoisClient creates a whois client whose socket operations time out
// after timeout. A non-positive timeout uses config.DefaultWhoisTimeout.
func NewWhoisClient(timeout time.Duration, opts ...WhoisOption) *WhoisClient {
	if timeout <= 0 {
		timeout = config.DefaultWhoisTimeout
	}
	c := &WhoisClient{
		querier: whois.NewClient().SetTimeout(timeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// LookupRegistration queries whois for domain and parses the response.
//
// The whois library has no context support, so the query runs in its own
// goroutine and is abandoned when ctx is done. The socket timeout set in
// NewWhoisClient bounds how long the abandoned goroutine lives.
func (c *WhoisClient) LookupRegistration(ctx context.Context, domain string) (*model.RegistrationInfo, error) {
	domain = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
	if domain == "" {
		return nil, ErrEmptyHost
	}

	type queryResult struct {
		raw string
		err error
	}
	resultCh := make(chan queryResult, 1)

	go func() {
		raw, err := c.querier.Whois(domain)
		resultCh <- queryResult{raw: raw, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			return nil, fmt.Errorf("whois %s: %w", domain, res.err)
		}
		c.logger.Debug("whois response received", "domain", domain, "bytes", len(res.raw))
		return ParseRegistration(domain, res.raw)
	case <-ctx.Done():
		return nil, fmt.Errorf("whois %s: %w", domain, ctx.Err())
	}
}

// creationLinePattern matches the creation date lines used by the common
// registries. Thin registries repeat the line once per referral, so every
// match is collected.
var creationLinePattern = regexp.MustCompile(
	`(?im)^\s*(?:creation date|created date|created on|created|domain registration date|registration time|registered on|registered)\s*:\s*(.+?)\s*$`,
)

// registrarLinePattern matches the registrar name line.
var registrarLinePattern = regexp.MustCompile(`(?im)^\s*(?:registrar|sponsoring registrar)\s*:\s*(.+?)\s*$`)

// creationLayouts are the date layouts seen in creation date lines.
var creationLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006.01.02 15:04:05",
	"2006.01.02",
	"2006/01/02",
	"02-Jan-2006",
	"02.01.2006",
	"January 2 2006",
	"Mon Jan 2 15:04:05 MST 2006",
	"Mon Jan _2 2006",
}

// ParseRegistration extracts the registrar and creation dates from a raw
// whois response. A response that only says the domain does not exist
// yields ErrNotRegistered.
func ParseRegistration(domain, raw string) (*model.RegistrationInfo, error) {
	info := &model.RegistrationInfo{
		Domain: domain,
		Raw:    raw,
	}

	parsed, err := whoisparser.Parse(raw)
	switch {
	case err == nil:
		if parsed.Registrar != nil {
			info.Registrar = strings.TrimSpace(parsed.Registrar.Name)
		}
		if parsed.Domain != nil {
			if t, ok := parseCreationDate(parsed.Domain.CreatedDate); ok {
				info.CreationDates = append(info.CreationDates, t)
			}
		}
	case errors.Is(err, whoisparser.ErrNotFoundDomain):
		return nil, fmt.Errorf("whois %s: %w", domain, ErrNotRegistered)
	}

	for _, m := range creationLinePattern.FindAllStringSubmatch(raw, -1) {
		t, ok := parseCreationDate(m[1])
		if ok && !containsTime(info.CreationDates, t) {
			info.CreationDates = append(info.CreationDates, t)
		}
	}

	if info.Registrar == "" {
		if m := registrarLinePattern.FindStringSubmatch(raw); m != nil {
			info.Registrar = m[1]
		}
	}

	return info, nil
}

// parseCreationDate tries each known layout in turn.
func parseCreationDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	// Some registries append a zone name in parentheses, e.g. "(JST)".
	if i := strings.Index(value, " ("); i > 0 {
		value = value[:i]
	}
	for _, layout := range creationLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func containsTime(times []time.Time, t time.Time) bool {
	for _, v := range times {
		if v.Equal(t) {
			return true
		}
	}
	return false
}
