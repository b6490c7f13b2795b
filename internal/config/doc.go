// Package config provides configuration structures and utilities for phishscan.
// It defines analysis timeouts, collaborator settings (DNS server, fetch
// transport, proxy), the shortener list used by lexical analysis, server
// settings and report preferences.
//
// Values are layered: NewConfig defaults, then the YAML configuration file,
// then environment variables (optionally read from a .env file), then CLI flags.
package config
