package feature

import (
	"errors"
	"net/netip"

	"github.com/nao1215/phishscan/internal/model"
)

// Network derives network features from hostname resolution and DNS records.
//
// A resolution failure stores model.UnresolvedHost. Record lists fetched
// before a DNS fault are kept; the fault itself becomes dns_records_error,
// with NXDOMAIN reported as model.DomainNotFound.
func Network(ip string, resolveErr error, records *model.DNSRecords, dnsErr error) model.NetworkFeatures {
	var f model.NetworkFeatures

	if resolveErr != nil || ip == "" {
		f.IPAddress = model.UnresolvedHost
	} else {
		f.IPAddress = ip
		_, err := netip.ParseAddr(ip)
		f.IPAddressFormat = err == nil
	}

	if records != nil {
		f.DNSARecords = records.A
		f.DNSMXRecords = records.MX
		f.DNSTXTRecords = records.TXT
	}

	if dnsErr != nil {
		f.DNSRecordsError = dnsErrorMessage(dnsErr)
	}
	return f
}

func dnsErrorMessage(err error) string {
	if errors.Is(err, model.ErrDomainNotFound) {
		return model.DomainNotFound
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "dns lookup failed"
}
