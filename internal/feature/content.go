package feature

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/nao1215/phishscan/internal/htmlparse"
	"github.com/nao1215/phishscan/internal/model"
)

// loginActionPattern matches form actions that submit credentials.
var loginActionPattern = regexp.MustCompile(`(?i)login|signin`)

// Content derives content features from a page fetch result.
//
// https is always computed from the scheme. A fetch failure sets
// content_error. Any fetched body is parsed as HTML whatever its declared
// content type; a parser failure sets parsing_error. The remaining fields
// are only set when parsing succeeded.
func Content(parts model.URLParts, page *model.Page, fetchErr error) model.ContentFeatures {
	f := model.ContentFeatures{
		HTTPS: strings.EqualFold(parts.Scheme, "https"),
	}

	if fetchErr != nil {
		f.ContentError = fetchErr.Error()
		return f
	}
	if page == nil {
		f.ContentError = "no page returned"
		return f
	}

	f.StatusCode = page.StatusCode
	f.FinalURL = page.FinalURL

	baseURL := page.FinalURL
	if baseURL == "" {
		baseURL = page.URL
	}
	parser, err := htmlparse.NewParser(baseURL, originAuthority(parts))
	if err != nil {
		f.ParsingError = err.Error()
		return f
	}
	result, err := parser.Parse(bytes.NewReader(page.Body))
	if err != nil {
		f.ParsingError = err.Error()
		return f
	}

	iframes := result.Iframes
	scripts := result.Scripts
	external := len(result.ExternalLinks)
	favicon := result.HasFavicon
	loginForm := hasLoginForm(result.Forms)

	f.Title = result.Title
	f.Iframes = &iframes
	f.Scripts = &scripts
	f.ExternalLinks = &external
	f.Favicon = &favicon
	f.LoginForm = &loginForm
	return f
}

// originAuthority returns the netloc of the analysed URL without userinfo,
// falling back to the hostname.
func originAuthority(parts model.URLParts) string {
	authority := parts.Netloc
	if i := strings.LastIndex(authority, "@"); i >= 0 {
		authority = authority[i+1:]
	}
	if authority == "" {
		return parts.Hostname
	}
	return strings.ToLower(authority)
}

func hasLoginForm(forms []htmlparse.FormInfo) bool {
	for _, form := range forms {
		if loginActionPattern.MatchString(form.Action) {
			return true
		}
	}
	return false
}
