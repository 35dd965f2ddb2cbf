package detection

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjd/job-scam-detector/internal/domain"
	"github.com/fjd/job-scam-detector/internal/ports"
)

const (
	trustStart             = 100
	freeProviderHiringCost = 100
	freeProviderCost       = 50
	usernamePatternCost    = 40
	genericTitleFreeCost   = 50
	spoofedDomainCost      = 80
	exactDomainBonus       = 20
)

// IdentityValidator scores how trustworthy a sender email address is
//
// The score starts at 100 and each layer adjusts it additively:
//  1. Free mail provider (fatal when the text talks about hiring)
//  2. Corporate-sounding keywords in the username
//  3. Typosquatting of the company the text claims to represent
//
// The final score is clamped to [0, 100].
type IdentityValidator struct {
	rules    *RuleSet
	resolver ports.MXResolver
}

// NewIdentityValidator creates a validator. The resolver is only queried for
// look-alike domains.
func NewIdentityValidator(rules *RuleSet, resolver ports.MXResolver) *IdentityValidator {
	return &IdentityValidator{
		rules:    rules,
		resolver: resolver,
	}
}

// Validate scores email in the context of the surrounding evidence text
func (v *IdentityValidator) Validate(ctx context.Context, email, contextText string) domain.IdentitySignal {
	username, domainName, ok := splitEmail(email)
	if !ok {
		return domain.IdentitySignal{
			Email:      email,
			TrustScore: 0,
			Reasons:    []string{"Invalid Email Format"},
			Verdict:    domain.IdentityInvalid,
		}
	}

	score := trustStart
	reasons := make([]string, 0)
	lowerText := strings.ToLower(contextText)
	isFree := v.rules.IsFreeProvider(domainName)

	// Layer 1: free mail provider
	if isFree {
		if containsAny(lowerText, v.rules.HiringKeywords) {
			score -= freeProviderHiringCost
			reasons = append(reasons, fmt.Sprintf("Corporate hiring via free email (%s)", domainName))
		} else {
			score -= freeProviderCost
			reasons = append(reasons, fmt.Sprintf("Sent from free provider (%s)", domainName))
		}
	}

	// Layer 2: username pattern
	hits := countKeywords(username, v.rules.UsernameKeywords)
	if hits >= 2 {
		score -= usernamePatternCost
		reasons = append(reasons, fmt.Sprintf("Suspicious username pattern ('%s')", username))
	} else if hits == 1 && isFree {
		score -= genericTitleFreeCost
		reasons = append(reasons, "Generic HR title on free email")
	}

	// Layer 3: typosquatting
	if company := v.claimedCompany(contextText); company != "" && !isFree {
		result := v.checkTyposquatting(ctx, domainName, company)
		switch result.verdict {
		case typosquatSpoof:
			score -= spoofedDomainCost
		case typosquatExactMatch:
			score += exactDomainBonus
		}
		if msg := result.reason(domainName); msg != "" {
			reasons = append(reasons, msg)
		}
	}

	score = max(0, min(100, score))

	return domain.IdentitySignal{
		Email:      email,
		TrustScore: score,
		Reasons:    reasons,
		Verdict:    verdictFor(score),
	}
}

func verdictFor(score int) domain.IdentityVerdict {
	switch {
	case score == 0:
		return domain.IdentityFatal
	case score < 50:
		return domain.IdentitySuspicious
	case score < 80:
		return domain.IdentityNeutral
	default:
		return domain.IdentityVerified
	}
}
