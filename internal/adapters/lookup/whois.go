package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
)

// ErrNoCreationDate is returned when the WHOIS record carries no usable creation date
var ErrNoCreationDate = errors.New("whois record has no creation date")

type whoisQuerier interface {
	Whois(domain string, servers ...string) (string, error)
}

// WhoisAge looks up domain registration dates over WHOIS
type WhoisAge struct {
	client  whoisQuerier
	timeout time.Duration
}

// NewWhoisAge creates a new WHOIS-backed domain age lookup
func NewWhoisAge(timeout time.Duration) *WhoisAge {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := whois.NewClient()
	client.SetTimeout(timeout)
	return &WhoisAge{client: client, timeout: timeout}
}

type whoisResult struct {
	raw string
	err error
}

// CreatedAt returns the registration date of domain
func (w *WhoisAge) CreatedAt(ctx context.Context, domain string) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	// The WHOIS client is not context aware; abandon it on cancellation
	done := make(chan whoisResult, 1)
	go func() {
		raw, err := w.client.Whois(domain)
		done <- whoisResult{raw: raw, err: err}
	}()

	var res whoisResult
	select {
	case <-ctx.Done():
		return time.Time{}, fmt.Errorf("whois %s: %w", domain, ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return time.Time{}, fmt.Errorf("whois %s: %w", domain, res.err)
	}

	info, err := whoisparser.Parse(res.raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse whois %s: %w", domain, err)
	}
	if info.Domain == nil {
		return time.Time{}, ErrNoCreationDate
	}
	return parseWhoisDate(info.Domain.CreatedDate)
}

var whoisDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
	"2006/01/02",
	"02/01/2006",
	"January 2 2006",
}

func parseWhoisDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrNoCreationDate
	}
	for _, layout := range whoisDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised date %q", ErrNoCreationDate, s)
}
