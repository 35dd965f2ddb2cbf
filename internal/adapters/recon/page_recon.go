package recon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fjd/job-scam-detector/internal/ports"
)

// ErrUnsupportedLink is returned for links that are not http(s) or that
// resolve to a loopback, private, link-local or unspecified address
var ErrUnsupportedLink = errors.New("unsupported link")

// dialControl inspects the resolved address of every connection, redirects included
type dialControl func(network, address string, c syscall.RawConn) error

// PageRecon fetches a linked page and extracts its title and visible body text
type PageRecon struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

// NewPageRecon creates a page fetcher that refuses to connect to internal addresses
func NewPageRecon(timeout time.Duration, maxBodyBytes int64, userAgent string) *PageRecon {
	return newPageRecon(timeout, maxBodyBytes, userAgent, rejectInternal)
}

func newPageRecon(timeout time.Duration, maxBodyBytes int64, userAgent string, control dialControl) *PageRecon {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = 2 << 20
	}

	dialer := &net.Dialer{Timeout: timeout, Control: control}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// A proxy would hide the resolved target from the dialer
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &PageRecon{
		client:       &http.Client{Timeout: timeout, Transport: transport},
		userAgent:    userAgent,
		maxBodyBytes: maxBodyBytes,
	}
}

// rejectInternal refuses connections to addresses that are not publicly routable
func rejectInternal(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedLink, err)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("%w: unresolved address %q", ErrUnsupportedLink, host)
	}
	if isInternal(ip) {
		return fmt.Errorf("%w: internal address %s", ErrUnsupportedLink, ip)
	}
	return nil
}

func isInternal(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast() ||
		ip.IsUnspecified()
}

// Fetch downloads the page. Oversized bodies are truncated, not rejected.
func (p *PageRecon) Fetch(ctx context.Context, link string) (ports.PageContent, error) {
	target, err := normaliseLink(link)
	if err != nil {
		return ports.PageContent{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return ports.PageContent{}, fmt.Errorf("create recon request: %w", err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return ports.PageContent{}, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ports.PageContent{}, fmt.Errorf("fetch %s: status %d", target, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, p.maxBodyBytes))
	if err != nil {
		return ports.PageContent{}, fmt.Errorf("parse %s: %w", target, err)
	}

	doc.Find("script, style, noscript, template, svg").Remove()

	return ports.PageContent{
		Title: collapse(doc.Find("title").First().Text()),
		Body:  collapse(doc.Find("body").Text()),
	}, nil
}

func normaliseLink(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", fmt.Errorf("%w: empty", ErrUnsupportedLink)
	}
	if !strings.Contains(link, "://") {
		link = "http://" + link
	}
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedLink, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme %q", ErrUnsupportedLink, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: no host", ErrUnsupportedLink)
	}
	return u.String(), nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
