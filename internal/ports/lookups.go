package ports

import (
	"context"
	"time"
)

// MXStatus is the outcome of a mail-exchanger lookup
type MXStatus string

const (
	MXFound        MXStatus = "found"
	MXNoSuchDomain MXStatus = "nxdomain"
	MXNoMailServer MXStatus = "no_mail_server"
	MXTimeout      MXStatus = "timeout"
	MXFailed       MXStatus = "failed"
)

// Reachable reports whether the domain has a working mail server.
// Every failure mode counts as not reachable.
func (s MXStatus) Reachable() bool {
	return s == MXFound
}

// MXResolver checks whether a domain publishes MX records
type MXResolver interface {
	LookupMX(ctx context.Context, domain string) MXStatus
}

// DomainAgeLookup returns the registration date of a domain
type DomainAgeLookup interface {
	CreatedAt(ctx context.Context, domain string) (time.Time, error)
}

// Blacklist answers exact-match membership queries against known scam links
type Blacklist interface {
	Contains(link string) bool
}
