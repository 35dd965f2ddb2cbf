package detection

import (
	"fmt"
	"math"

	"github.com/fjd/job-scam-detector/internal/domain"
)

const (
	neutralTrust     = 50
	shieldReduction  = 20
	previewRunes     = 300
	linkNoticeCutoff = 70
)

// FusionInput carries every signal the fusion policy consumes
type FusionInput struct {
	// OracleProbability is the classifier's scam probability in [0, 1]
	OracleProbability float64
	Veto              domain.VetoSignal
	// Identity is nil when no sender email was found in the evidence
	Identity  *domain.IdentitySignal
	Auxiliary []domain.AuxSignal

	// EvidenceCount is the number of evidence slots the caller filled
	EvidenceCount int
	// Text is the combined corpus, used for the preview only
	Text string
	// LinksFound is true when URL tokens were discovered in the text
	LinksFound bool
	// Notices are degradation reasons collected upstream (classifier down, unreadable evidence)
	Notices []domain.Reason
}

// FusionEngine combines classifier, veto, identity and auxiliary signals into one verdict
//
// Precedence:
//  1. base = max(oracle*100, veto score, max auxiliary score)
//  2. identity trust 0 forces 100
//  3. otherwise trust < 50 with oracle > 50 forces 100 (double threat)
//  4. otherwise trust > 80 with oracle > 60 lowers the score by 20 (trust shield)
//  5. a fatal veto forces 100 regardless of identity
//
// Fuse is a pure function: identical input yields an identical report.
// The caller stamps ID and CreatedAt.
type FusionEngine struct{}

// NewFusionEngine creates a fusion engine
func NewFusionEngine() *FusionEngine {
	return &FusionEngine{}
}

// Fuse produces the final report
func (f *FusionEngine) Fuse(in FusionInput) domain.FusedReport {
	oracleScore := clampFloat(in.OracleProbability, 0, 1) * 100

	base := oracleScore
	base = math.Max(base, float64(in.Veto.Score))
	for _, aux := range in.Auxiliary {
		base = math.Max(base, float64(aux.Score))
	}

	reasons := make([]domain.Reason, 0)
	for _, trigger := range in.Veto.Triggers {
		reasons = append(reasons, vetoReason(trigger))
	}

	trust := neutralTrust
	if in.Identity != nil {
		trust = in.Identity.TrustScore
		reasons = append(reasons, identityReasons(*in.Identity)...)
	}

	for _, aux := range in.Auxiliary {
		if aux.Reason != "" {
			reasons = append(reasons, domain.Reason{Kind: domain.ReasonAuxiliary, Message: aux.Reason})
		}
	}

	switch {
	case in.Identity != nil && trust == 0:
		base = 100
		reasons = prepend(reasons, domain.Reason{
			Kind:    domain.ReasonIdentityAlert,
			Message: identityAlert(in.Identity.Verdict),
		})
	case in.Identity != nil && trust < 50 && oracleScore > 50:
		base = 100
		reasons = prepend(reasons, domain.Reason{
			Kind:    domain.ReasonDoubleThreat,
			Message: "Double threat: suspicious text and unverified sender",
		})
	case in.Identity != nil && trust > 80 && oracleScore > 60:
		base = math.Max(0, base-shieldReduction)
		reasons = append(reasons, domain.Reason{
			Kind:    domain.ReasonTrustShield,
			Message: "Trusted sender lowers risk",
		})
	}

	// Veto policy is authoritative over identity policy
	if in.Veto.Fatal {
		base = 100
	}

	if oracleScore > linkNoticeCutoff && in.LinksFound {
		reasons = append(reasons, domain.Reason{
			Kind:    domain.ReasonLinks,
			Message: "Suspicious links detected in the evidence",
		})
	}

	reasons = append(reasons, in.Notices...)

	score := int(math.Round(clampFloat(base, 0, 100)))
	label, color := domain.LabelFor(score)

	if len(reasons) == 0 {
		reasons = append(reasons, defaultReason(label))
	}

	return domain.FusedReport{
		FinalScore:  score,
		Label:       label,
		Color:       color,
		Reasons:     reasons,
		Confidence:  domain.ConfidenceFor(in.EvidenceCount),
		TextPreview: preview(in.Text),
	}
}

// NoEvidence returns the degenerate report for an empty evidence bundle
func (f *FusionEngine) NoEvidence() domain.FusedReport {
	label, color := domain.LabelFor(0)
	return domain.FusedReport{
		FinalScore: 0,
		Label:      label,
		Color:      color,
		Reasons: []domain.Reason{
			{Kind: domain.ReasonDefault, Message: "No evidence supplied"},
		},
		Confidence: domain.ConfidenceLow,
	}
}

func vetoReason(t domain.VetoTrigger) domain.Reason {
	if t.Kind == domain.TriggerFatal {
		return domain.Reason{
			Kind:    domain.ReasonVetoFatal,
			Message: fmt.Sprintf("Fatal keyword: '%s'", t.Match),
		}
	}
	return domain.Reason{
		Kind:    domain.ReasonVetoSuspicious,
		Message: fmt.Sprintf("Suspicious phrase: '%s'", t.Match),
	}
}

// identityReasons surfaces the validator's findings only for untrusted senders;
// a perfect score is reported as a verified sender instead
func identityReasons(id domain.IdentitySignal) []domain.Reason {
	out := make([]domain.Reason, 0, len(id.Reasons))
	switch {
	case id.TrustScore < 80:
		for _, msg := range id.Reasons {
			out = append(out, domain.Reason{Kind: domain.ReasonIdentity, Message: msg})
		}
	case id.TrustScore == 100:
		out = append(out, domain.Reason{
			Kind:    domain.ReasonVerifiedSender,
			Message: fmt.Sprintf("Verified sender: %s", id.Email),
		})
	}
	return out
}

func identityAlert(verdict domain.IdentityVerdict) string {
	if verdict == domain.IdentityInvalid {
		return "Identity alert: malformed sender address"
	}
	return "Identity alert: fake or free-mail sender address"
}

func defaultReason(label domain.Label) domain.Reason {
	msg := "No threats detected"
	switch label {
	case domain.LabelHighRisk:
		msg = "Text classifier detected high-risk scam patterns"
	case domain.LabelModerate:
		msg = "Content is ambiguous, proceed with caution"
	}
	return domain.Reason{Kind: domain.ReasonDefault, Message: msg}
}

func prepend(reasons []domain.Reason, r domain.Reason) []domain.Reason {
	return append([]domain.Reason{r}, reasons...)
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes])
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
