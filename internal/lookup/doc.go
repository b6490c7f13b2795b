// Package lookup implements the external data sources consulted during an
// analysis: whois registration records, DNS A/MX/TXT records, hostname
// resolution through the system resolver, and landing page fetches.
//
// Every collaborator takes a context and is expected to be bounded by the
// caller's deadline. None of them interpret the data they return; turning
// lookups into features is the job of the feature package.
package lookup
