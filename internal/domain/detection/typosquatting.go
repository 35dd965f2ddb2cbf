package detection

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjd/job-scam-detector/internal/ports"
)

// typosquatVerdict is the outcome of comparing a sender domain to a claimed company
type typosquatVerdict int

const (
	typosquatNone        typosquatVerdict = iota // no candidate, or names unrelated
	typosquatExactMatch                          // domain label equals the company name
	typosquatSpoof                               // look-alike domain with a live mail server
	typosquatUnreachable                         // look-alike domain that does not resolve (likely OCR noise)
)

type typosquatResult struct {
	verdict    typosquatVerdict
	company    string
	similarity float64
	mx         ports.MXStatus
}

// claimedCompany extracts the company the text claims to hire for,
// e.g. "Greetings from Amazon" or "joining Microsoft". Patterns are tried in
// order and the first one that matches wins.
func (v *IdentityValidator) claimedCompany(text string) string {
	for _, p := range v.rules.CompanyPatterns {
		if m := p.FindStringSubmatch(text); len(m) > 1 {
			return strings.ToLower(m[1])
		}
	}
	return ""
}

// checkTyposquatting compares the claimed company with the domain's first label.
// The DNS lookup happens only in the ambiguous band (80 < similarity < 100).
func (v *IdentityValidator) checkTyposquatting(ctx context.Context, domainName, company string) typosquatResult {
	label := firstLabel(domainName)
	sim := similarity(company, label)
	result := typosquatResult{company: company, similarity: sim}

	switch {
	case sim > 80 && sim < 100:
		result.mx = v.resolver.LookupMX(ctx, domainName)
		if result.mx.Reachable() {
			result.verdict = typosquatSpoof
		} else {
			result.verdict = typosquatUnreachable
		}
	case sim == 100:
		result.verdict = typosquatExactMatch
	}

	return result
}

func (r typosquatResult) reason(domainName string) string {
	switch r.verdict {
	case typosquatSpoof:
		return fmt.Sprintf("Spoofing confirmed: look-alike domain '%s' (%.1f%% similar to '%s') is active", domainName, r.similarity, r.company)
	case typosquatUnreachable:
		return fmt.Sprintf("OCR warning: domain '%s' is unreachable (%s), verify manually", domainName, r.mx)
	case typosquatExactMatch:
		return fmt.Sprintf("Domain matches company name ('%s')", r.company)
	default:
		return ""
	}
}
