package detection

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fjd/job-scam-detector/internal/domain"
	"github.com/fjd/job-scam-detector/internal/ports"
)

// DomainAgeStrategy flags links hosted on freshly registered domains
type DomainAgeStrategy struct {
	lookup ports.DomainAgeLookup
	now    func() time.Time
}

// NewDomainAgeStrategy creates a new domain registration age strategy
func NewDomainAgeStrategy(lookup ports.DomainAgeLookup) *DomainAgeStrategy {
	return &DomainAgeStrategy{lookup: lookup, now: time.Now}
}

// Name returns the strategy name
func (s *DomainAgeStrategy) Name() string {
	return "Domain Age"
}

// Collect looks up when the link's domain was registered
func (s *DomainAgeStrategy) Collect(ctx context.Context, input SignalInput) *domain.AuxSignal {
	if input.Bundle.Link == "" || s.lookup == nil {
		return nil
	}
	host := LinkHost(input.Bundle.Link)
	if host == "" {
		return nil
	}

	created, err := s.lookup.CreatedAt(ctx, host)
	if err != nil {
		// Lookup unavailable: signal absent, no penalty
		return nil
	}

	days := int(s.now().Sub(created).Hours() / 24)
	switch {
	case days < 30:
		return &domain.AuxSignal{
			Source: domain.AuxDomainAge,
			Score:  70,
			Reason: fmt.Sprintf("Link domain '%s' was registered %d days ago", host, days),
		}
	case days < 180:
		return &domain.AuxSignal{
			Source: domain.AuxDomainAge,
			Score:  40,
			Reason: fmt.Sprintf("Link domain '%s' is less than six months old (%d days)", host, days),
		}
	default:
		return &domain.AuxSignal{Source: domain.AuxDomainAge, Score: 0}
	}
}

// LinkHost returns the lower-cased host of a link without a leading "www.".
// Links without a scheme are treated as http.
func LinkHost(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if !strings.Contains(link, "://") {
		link = "http://" + link
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
