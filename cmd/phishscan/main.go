// Package main provides the entry point for the phishscan CLI.
//
// phishscan scores URLs for phishing risk from lexical, registration,
// network and page-content features.
//
// Usage:
//
//	phishscan analyze <url>
//	phishscan analyze --list <file>
//	phishscan serve
//
// See --help for all available options.
package main

// main is the entry point for phishscan.
func main() {
	Execute()
}
