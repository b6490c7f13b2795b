package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/model"
)

// resolvConfPath is where the system nameservers are read from when no DNS
// server is configured.
const resolvConfPath = "/etc/resolv.conf"

// DNSClient queries A, MX and TXT records from a single recursive server.
type DNSClient struct {
	client *dns.Client
	server string
	logger *slog.Logger
}

// DNSOption configures a DNSClient.
type DNSOption func(*DNSClient)

// WithDNSLogger sets a custom logger.
func WithDNSLogger(logger *slog.Logger) DNSOption {
	return func(c *DNSClient) {
		c.logger = logger
	}
}

// NewDNSClient creates a client that sends queries to server ("host:port").
// An empty server selects the first nameserver of the system resolver
// configuration. A non-positive timeout uses config.DefaultDNSTimeout.
func NewDNSClient(server string, timeout time.Duration, opts ...DNSOption) (*DNSClient, error) {
	if timeout <= 0 {
		timeout = config.DefaultDNSTimeout
	}
	if server == "" {
		var err error
		if server, err = systemNameserver(); err != nil {
			return nil, err
		}
	}

	c := &DNSClient{
		client: &dns.Client{
			Net:     "udp",
			Timeout: timeout,
		},
		server: server,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// systemNameserver returns the first nameserver of resolv.conf as "host:port".
func systemNameserver() (string, error) {
	conf, err := dns.ClientConfigFromFile(resolvConfPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoNameserver, err)
	}
	if len(conf.Servers) == 0 {
		return "", ErrNoNameserver
	}
	return net.JoinHostPort(conf.Servers[0], conf.Port), nil
}

// Server returns the address queries are sent to.
func (c *DNSClient) Server() string {
	return c.server
}

// LookupRecords queries A, MX and TXT records for host in that order.
//
// NXDOMAIN yields an error wrapping model.ErrDomainNotFound. Any other
// failure stops the remaining queries; the records answered before it are
// returned together with the error. A type without records is an empty list.
func (c *DNSClient) LookupRecords(ctx context.Context, host string) (*model.DNSRecords, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return &model.DNSRecords{}, ErrEmptyHost
	}

	records := &model.DNSRecords{}

	answer, err := c.query(ctx, host, dns.TypeA)
	if err != nil {
		return records, err
	}
	records.A = make([]string, 0, len(answer))
	for _, rr := range answer {
		if a, ok := rr.(*dns.A); ok {
			records.A = append(records.A, a.A.String())
		}
	}

	answer, err = c.query(ctx, host, dns.TypeMX)
	if err != nil {
		return records, err
	}
	records.MX = make([]string, 0, len(answer))
	for _, rr := range answer {
		if mx, ok := rr.(*dns.MX); ok {
			records.MX = append(records.MX, mx.Mx)
		}
	}

	answer, err = c.query(ctx, host, dns.TypeTXT)
	if err != nil {
		return records, err
	}
	records.TXT = make([][]string, 0, len(answer))
	for _, rr := range answer {
		if txt, ok := rr.(*dns.TXT); ok {
			records.TXT = append(records.TXT, txt.Txt)
		}
	}

	return records, nil
}

// query sends a single recursive question and returns the answer section.
func (c *DNSClient) query(ctx context.Context, host string, qtype uint16) ([]dns.RR, error) {
	typeName := dns.TypeToString[qtype]

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), qtype)
	msg.RecursionDesired = true

	resp, _, err := c.client.ExchangeContext(ctx, msg, c.server)
	if err != nil {
		return nil, fmt.Errorf("query %s %s: %w", typeName, host, err)
	}

	// A truncated UDP answer is retried over TCP, as TXT sets are often large.
	if resp.Truncated {
		tcp := &dns.Client{Net: "tcp", Timeout: c.client.Timeout}
		if resp, _, err = tcp.ExchangeContext(ctx, msg, c.server); err != nil {
			return nil, fmt.Errorf("query %s %s over tcp: %w", typeName, host, err)
		}
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
		c.logger.Debug("dns answer", "host", host, "type", typeName, "records", len(resp.Answer))
		return resp.Answer, nil
	case dns.RcodeNameError:
		return nil, fmt.Errorf("query %s %s: %w", typeName, host, model.ErrDomainNotFound)
	default:
		return nil, fmt.Errorf("query %s %s: %s", typeName, host, dns.RcodeToString[resp.Rcode])
	}
}
