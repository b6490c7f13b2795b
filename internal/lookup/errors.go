package lookup

import "errors"

var (
	// ErrEmptyHost is returned when a lookup is asked for an empty host or domain.
	ErrEmptyHost = errors.New("empty host")

	// ErrNotRegistered is returned when the whois server reports no match for
	// the domain.
	ErrNotRegistered = errors.New("domain is not registered")

	// ErrNoAddress is returned when resolution succeeds without any address.
	ErrNoAddress = errors.New("no address found")

	// ErrInvalidProxyAddress is returned when the proxy address is not "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrNoNameserver is returned when no DNS server is configured and none
	// can be read from the system resolver configuration.
	ErrNoNameserver = errors.New("no nameserver configured")
)
