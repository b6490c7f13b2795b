package feature

import (
	"math"
	"time"

	"github.com/nao1215/phishscan/internal/model"
)

// Registration derives domain age from a registration lookup result.
//
// lookupErr becomes whois_error. A successful lookup without a usable
// creation date leaves domain_age nil and sets no error. Age is measured
// against now in whole days, rounded down.
func Registration(info *model.RegistrationInfo, lookupErr error, now time.Time) model.RegistrationFeatures {
	var f model.RegistrationFeatures

	if lookupErr != nil {
		f.WhoisError = lookupErr.Error()
		if f.WhoisError == "" {
			f.WhoisError = "registration lookup failed"
		}
		return f
	}
	if info == nil {
		return f
	}

	f.Registrar = info.Registrar

	created, ok := info.EarliestCreation()
	if !ok {
		return f
	}
	f.CreationDate = &created

	if age, ok := ageInDays(created, now); ok {
		f.DomainAge = &age
	}
	return f
}

// ageInDays returns floor((now - created) / 24h). It reports false when the
// distance does not fit in a time.Duration (about 292 years).
func ageInDays(created, now time.Time) (int, bool) {
	d := now.Sub(created)
	if d == time.Duration(math.MaxInt64) || d == time.Duration(math.MinInt64) {
		return 0, false
	}
	return int(math.Floor(d.Hours() / 24)), true
}
