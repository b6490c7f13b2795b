// Package htmlparse extracts phishing-relevant signals from a landing page:
// title, iframe and script counts, anchor targets split into internal and
// external links, forms, and favicon presence.
//
// # Usage
//
//	parser, err := htmlparse.NewParser(page.FinalURL, "login.example.com")
//	result, err := parser.Parse(bytes.NewReader(page.Body))
package htmlparse
