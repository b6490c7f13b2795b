package lookup

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/net/proxy"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/model"
)

// maxRedirects caps redirect chains. Phishing links are often wrapped in
// several tracking redirects, but loops must end.
const maxRedirects = 10

// HTTPClientOptions describes the transport used for page fetches.
type HTTPClientOptions struct {
	// Timeout bounds a whole request including redirects.
	Timeout time.Duration

	// InsecureSkipVerify disables certificate verification.
	InsecureSkipVerify bool

	// ProxyAddress routes requests through a SOCKS5 proxy ("host:port") when set.
	ProxyAddress string
}

// NewHTTPClient creates the HTTP client used by Fetcher.
func NewHTTPClient(opts HTTPClientOptions) (*http.Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultFetchTimeout
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: opts.InsecureSkipVerify, //nolint:gosec // phishing sites are inspected, never trusted
		},
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   opts.Timeout,
		ResponseHeaderTimeout: opts.Timeout,
	}

	if opts.ProxyAddress != "" {
		dialContext, err := socks5DialContext(opts.ProxyAddress)
		if err != nil {
			return nil, err
		}
		transport.DialContext = dialContext
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// socks5DialContext returns a context-aware dial function through a SOCKS5 proxy.
func socks5DialContext(address string) (func(ctx context.Context, network, addr string) (net.Conn, error), error) {
	if !isValidProxyAddress(address) {
		return nil, ErrInvalidProxyAddress
	}

	dialer, err := proxy.SOCKS5("tcp", address, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}

	// proxy.Dialer has no context support; dial in a goroutine so that
	// cancellation is still honoured.
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type dialResult struct {
			conn net.Conn
			err  error
		}
		resultCh := make(chan dialResult, 1)
		go func() {
			conn, err := dialer.Dial(network, addr)
			resultCh <- dialResult{conn, err}
		}()
		select {
		case res := <-resultCh:
			return res.conn, res.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}, nil
}

// isValidProxyAddress checks for a non-empty host and a port in 1-65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// Fetcher downloads landing pages.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	logger      *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets how many bytes of the body are read.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithFetchLogger sets a custom logger.
func WithFetchLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher using client.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      client,
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// FetchPage issues a GET for rawURL and returns the page decoded to UTF-8.
// A transport failure or an HTTP status of 400 or above is an error.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string) (*model.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, rawURL)
	}

	// Read one byte past the limit to detect truncation.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	truncated := int64(len(body)) > f.maxBodySize
	if truncated {
		body = body[:f.maxBodySize]
	}

	contentType := resp.Header.Get("Content-Type")
	page := &model.Page{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: model.MediaType(contentType),
		Body:        body,
		Truncated:   truncated,
	}

	if page.IsHTML() {
		page.Body = decodeBody(body, contentType)
	}

	f.logger.Debug("page fetched",
		"url", rawURL,
		"final_url", page.FinalURL,
		"status", page.StatusCode,
		"bytes", len(page.Body),
		"truncated", truncated,
	)

	return page, nil
}

// decodeBody converts body to UTF-8. The charset parameter of the
// Content-Type header wins; otherwise the encoding is sniffed from the
// document. Undecodable input is returned unchanged.
func decodeBody(body []byte, contentType string) []byte {
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if label := strings.TrimSpace(params["charset"]); label != "" {
			enc, err := htmlindex.Get(label)
			if err != nil {
				return body
			}
			if name, _ := htmlindex.Name(enc); name == "utf-8" {
				return body
			}
			decoded, err := enc.NewDecoder().Bytes(body)
			if err != nil {
				return body
			}
			return decoded
		}
	}

	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" {
		return body
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return decoded
}
