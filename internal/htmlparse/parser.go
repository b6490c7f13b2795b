package htmlparse

import (
	"errors"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrNoBaseURL is returned by NewParser when the page URL has no host.
var ErrNoBaseURL = errors.New("base url must be absolute")

// Parser extracts the content signals of a landing page.
// It parses with golang.org/x/net/html, which tolerates the malformed markup
// phishing kits tend to ship, and queries the tree with goquery selectors.
type Parser struct {
	// baseURL is the URL the page was served from, used to resolve relative links.
	baseURL *url.URL

	// originHost is the authority (host and optional port) of the analysed
	// URL. Links to any other authority are external.
	originHost string
}

// ParseResult contains everything extracted from one page.
type ParseResult struct {
	// Title is the text of the first <title> element, or nil when the page has none.
	Title *string

	// Iframes and Scripts are tag counts.
	Iframes int
	Scripts int

	// Links contains all resolved anchor targets. Empty and fragment-only
	// targets are skipped.
	Links []string

	// InternalLinks point at the analysed authority.
	InternalLinks []string

	// ExternalLinks point at any other authority. Targets without a host
	// (javascript:, mailto:, tel:) are external.
	ExternalLinks []string

	// Forms contains information about HTML forms.
	Forms []FormInfo

	// HasFavicon is true when a <link> with an "icon" rel token and an href exists.
	HasFavicon bool
}

// FormInfo contains information about an HTML form.
type FormInfo struct {
	// Action is the action attribute as written in the markup.
	Action string

	// Method is the upper-cased HTTP method, GET when unspecified.
	Method string

	// HasPassword is true when the form contains a password input.
	HasPassword bool
}

// NewParser creates a parser for a page served from baseURL. originHost is
// the authority of the analysed URL, without userinfo; when empty, the
// authority of baseURL is used.
func NewParser(baseURL, originHost string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, ErrNoBaseURL
	}
	if originHost == "" {
		originHost = u.Host
	}
	return &Parser{baseURL: u, originHost: strings.ToLower(originHost)}, nil
}

// Parse parses HTML content and extracts all relevant information.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	root, err := html.Parse(content)
	if err != nil {
		return nil, err
	}
	doc := goquery.NewDocumentFromNode(root)

	result := &ParseResult{
		Links:         make([]string, 0),
		InternalLinks: make([]string, 0),
		ExternalLinks: make([]string, 0),
		Forms:         make([]FormInfo, 0),
		Iframes:       doc.Find("iframe").Length(),
		Scripts:       doc.Find("script").Length(),
	}

	if title := doc.Find("title").First(); title.Length() > 0 {
		text := strings.TrimSpace(title.Text())
		result.Title = &text
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved := p.resolveURL(href)
		if resolved == "" {
			return
		}
		result.Links = append(result.Links, resolved)
		p.classifyLink(resolved, result)
	})

	doc.Find("form").Each(func(_ int, s *goquery.Selection) {
		form := FormInfo{
			Action:      strings.TrimSpace(s.AttrOr("action", "")),
			Method:      strings.ToUpper(strings.TrimSpace(s.AttrOr("method", ""))),
			HasPassword: hasPasswordInput(s),
		}
		if form.Method == "" {
			form.Method = "GET"
		}
		result.Forms = append(result.Forms, form)
	})

	doc.Find("link[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if hasIconRel(s.AttrOr("rel", "")) && strings.TrimSpace(s.AttrOr("href", "")) != "" {
			result.HasFavicon = true
			return false
		}
		return true
	})

	return result, nil
}

// hasIconRel reports whether a rel attribute contains the "icon" token
// ("icon", "shortcut icon").
func hasIconRel(rel string) bool {
	for _, token := range strings.Fields(strings.ToLower(rel)) {
		if token == "icon" {
			return true
		}
	}
	return false
}

func hasPasswordInput(form *goquery.Selection) bool {
	found := false
	form.Find("input[type]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found = strings.EqualFold(strings.TrimSpace(s.AttrOr("type", "")), "password")
		return !found
	})
	return found
}

// resolveURL resolves href against the base URL. It returns "" for empty
// and fragment-only targets. A target that does not parse as a URL is
// returned as written.
func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	return p.baseURL.ResolveReference(u).String()
}

// classifyLink sorts a resolved link into internal or external by its
// authority. Links without a host are external.
func (p *Parser) classifyLink(link string, result *ParseResult) {
	u, err := url.Parse(link)
	if err == nil && u.Host != "" && strings.EqualFold(u.Host, p.originHost) {
		result.InternalLinks = append(result.InternalLinks, link)
		return
	}
	result.ExternalLinks = append(result.ExternalLinks, link)
}
