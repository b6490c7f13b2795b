package lookup

import (
	"context"
	"fmt"
	"net"
	"strings"
)

// Resolver resolves hostnames through the system resolver, the same path a
// browser following the link would take.
type Resolver struct {
	resolver *net.Resolver
}

// NewResolver creates a Resolver. A nil resolver uses net.DefaultResolver.
func NewResolver(resolver *net.Resolver) *Resolver {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &Resolver{resolver: resolver}
}

// ResolveHost returns one address for host, preferring IPv4.
// An IP literal is returned unchanged.
func (r *Resolver) ResolveHost(ctx context.Context, host string) (string, error) {
	host = strings.Trim(strings.TrimSpace(host), "[]")
	if host == "" {
		return "", ErrEmptyHost
	}

	addrs, err := r.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", host, err)
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("resolve %s: %w", host, ErrNoAddress)
	}

	for _, addr := range addrs {
		if v4 := addr.IP.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return addrs[0].IP.String(), nil
}
