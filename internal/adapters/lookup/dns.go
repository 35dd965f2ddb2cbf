package lookup

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/fjd/job-scam-detector/internal/ports"
)

type mxLookuper interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// DNSResolver checks MX records with a bounded timeout
type DNSResolver struct {
	resolver mxLookuper
	timeout  time.Duration
}

// NewDNSResolver creates a resolver backed by the system DNS configuration
func NewDNSResolver(timeout time.Duration) *DNSResolver {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &DNSResolver{resolver: net.DefaultResolver, timeout: timeout}
}

// LookupMX classifies the domain's mail setup. It never returns an error:
// every failure is folded into a status.
func (r *DNSResolver) LookupMX(ctx context.Context, domain string) ports.MXStatus {
	domain = strings.TrimSuffix(strings.TrimSpace(domain), ".")
	if domain == "" {
		return ports.MXNoSuchDomain
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	records, err := r.resolver.LookupMX(ctx, domain)
	if err != nil {
		return classifyDNSError(ctx, err)
	}

	for _, mx := range records {
		// RFC 7505 null MX: the domain explicitly accepts no mail
		if mx.Host != "." && mx.Host != "" {
			return ports.MXFound
		}
	}
	return ports.MXNoMailServer
}

func classifyDNSError(ctx context.Context, err error) ports.MXStatus {
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &dnsErr) && dnsErr.IsTimeout:
		return ports.MXTimeout
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ports.MXTimeout
	case errors.As(err, &dnsErr) && dnsErr.IsNotFound:
		return ports.MXNoSuchDomain
	default:
		return ports.MXFailed
	}
}
