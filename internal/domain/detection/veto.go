package detection

import (
	"strings"

	"github.com/fjd/job-scam-detector/internal/domain"
)

const (
	suspiciousWeight  = 30
	suspiciousCeiling = 90
	fatalScore        = 100
)

// VetoEngine scans evidence text against fatal and suspicious patterns
//
// Policy:
//   - Fatal patterns are unconditional: a match is never suppressed by the
//     whitelist or by negating words such as "no" or "never"
//   - The first fatal match (in rule order) short-circuits the scan
//   - Suspicious matches add 30 each, capped at 90, and are all reported
//   - Identity-verification phrases are skipped when a whitelisted
//     background-check vendor is mentioned
type VetoEngine struct {
	rules *RuleSet
}

// NewVetoEngine creates a veto engine over a read-only rule set
func NewVetoEngine(rules *RuleSet) *VetoEngine {
	return &VetoEngine{rules: rules}
}

// Scan evaluates text and returns the veto signal
func (e *VetoEngine) Scan(text string) domain.VetoSignal {
	lower := strings.ToLower(text)

	for _, p := range e.rules.Fatal {
		if match := p.Expr.FindString(lower); match != "" {
			return domain.VetoSignal{
				Score: fatalScore,
				Fatal: true,
				Triggers: []domain.VetoTrigger{
					{Kind: domain.TriggerFatal, Pattern: p.Name, Match: match},
				},
			}
		}
	}

	whitelisted := containsAny(lower, e.rules.Whitelist)

	signal := domain.VetoSignal{Triggers: make([]domain.VetoTrigger, 0)}
	for _, p := range e.rules.Suspicious {
		if p.IdentityVerification && whitelisted {
			continue
		}
		match := p.Expr.FindString(lower)
		if match == "" {
			continue
		}
		signal.Score = min(signal.Score+suspiciousWeight, suspiciousCeiling)
		signal.Triggers = append(signal.Triggers, domain.VetoTrigger{
			Kind:    domain.TriggerSuspicious,
			Pattern: p.Name,
			Match:   match,
		})
	}

	return signal
}
