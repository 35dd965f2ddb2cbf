package detection

import (
	"strings"
	"testing"

	"github.com/fjd/job-scam-detector/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity(score int) *domain.IdentitySignal {
	return &domain.IdentitySignal{
		Email:      "someone@example.com",
		TrustScore: score,
		Reasons:    []string{"identity finding"},
		Verdict:    verdictFor(score),
	}
}

func fatalVeto() domain.VetoSignal {
	return domain.VetoSignal{
		Score: 100,
		Fatal: true,
		Triggers: []domain.VetoTrigger{
			{Kind: domain.TriggerFatal, Pattern: "western union", Match: "western union"},
		},
	}
}

func TestFusionEngine_Fuse(t *testing.T) {
	engine := NewFusionEngine()

	tests := []struct {
		name          string
		input         FusionInput
		expectedScore int
		expectedLabel domain.Label
		expectedColor domain.Color
		firstReason   domain.ReasonKind
	}{
		{
			name:          "Fatal veto overrides a low classifier score",
			input:         FusionInput{OracleProbability: 0.05, Veto: fatalVeto()},
			expectedScore: 100,
			expectedLabel: domain.LabelHighRisk,
			expectedColor: domain.ColorRed,
			firstReason:   domain.ReasonVetoFatal,
		},
		{
			name:          "Fatal identity forces 100",
			input:         FusionInput{OracleProbability: 0.10, Identity: identity(0)},
			expectedScore: 100,
			expectedLabel: domain.LabelHighRisk,
			expectedColor: domain.ColorRed,
			firstReason:   domain.ReasonIdentityAlert,
		},
		{
			name:          "Double threat forces 100",
			input:         FusionInput{OracleProbability: 0.60, Identity: identity(30)},
			expectedScore: 100,
			expectedLabel: domain.LabelHighRisk,
			expectedColor: domain.ColorRed,
			firstReason:   domain.ReasonDoubleThreat,
		},
		{
			name:          "Weak identity with benign text keeps classifier score",
			input:         FusionInput{OracleProbability: 0.40, Identity: identity(30)},
			expectedScore: 40,
			expectedLabel: domain.LabelSafe,
			expectedColor: domain.ColorGreen,
			firstReason:   domain.ReasonIdentity,
		},
		{
			name:          "Trust shield lowers score by 20",
			input:         FusionInput{OracleProbability: 0.70, Identity: identity(90)},
			expectedScore: 50,
			expectedLabel: domain.LabelModerate,
			expectedColor: domain.ColorYellow,
			firstReason:   domain.ReasonTrustShield,
		},
		{
			name:          "Fatal veto beats trust shield",
			input:         FusionInput{OracleProbability: 0.70, Identity: identity(90), Veto: fatalVeto()},
			expectedScore: 100,
			expectedLabel: domain.LabelHighRisk,
			expectedColor: domain.ColorRed,
			firstReason:   domain.ReasonVetoFatal,
		},
		{
			name:          "No identity is neutral",
			input:         FusionInput{OracleProbability: 0.70},
			expectedScore: 70,
			expectedLabel: domain.LabelModerate,
			expectedColor: domain.ColorYellow,
			firstReason:   domain.ReasonDefault,
		},
		{
			name: "Suspicious veto raises the base",
			input: FusionInput{
				OracleProbability: 0.20,
				Veto: domain.VetoSignal{Score: 60, Triggers: []domain.VetoTrigger{
					{Kind: domain.TriggerSuspicious, Pattern: "telegram", Match: "telegram"},
					{Kind: domain.TriggerSuspicious, Pattern: "whatsapp", Match: "whatsapp"},
				}},
			},
			expectedScore: 60,
			expectedLabel: domain.LabelModerate,
			expectedColor: domain.ColorYellow,
			firstReason:   domain.ReasonVetoSuspicious,
		},
		{
			name: "Auxiliary signal raises the base",
			input: FusionInput{
				OracleProbability: 0.10,
				Auxiliary:         []domain.AuxSignal{{Source: domain.AuxBlacklist, Score: 100, Reason: "Link is on the scam blacklist"}},
			},
			expectedScore: 100,
			expectedLabel: domain.LabelHighRisk,
			expectedColor: domain.ColorRed,
			firstReason:   domain.ReasonAuxiliary,
		},
		{
			name:          "Out-of-range probability is clamped",
			input:         FusionInput{OracleProbability: 1.7},
			expectedScore: 100,
			expectedLabel: domain.LabelHighRisk,
			expectedColor: domain.ColorRed,
			firstReason:   domain.ReasonDefault,
		},
		{
			name:          "Negative probability is clamped",
			input:         FusionInput{OracleProbability: -0.3},
			expectedScore: 0,
			expectedLabel: domain.LabelSafe,
			expectedColor: domain.ColorGreen,
			firstReason:   domain.ReasonDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := engine.Fuse(tt.input)

			assert.Equal(t, tt.expectedScore, report.FinalScore)
			assert.Equal(t, tt.expectedLabel, report.Label)
			assert.Equal(t, tt.expectedColor, report.Color)
			require.NotEmpty(t, report.Reasons)
			assert.Equal(t, tt.firstReason, report.Reasons[0].Kind)
		})
	}
}

func TestFusionEngine_ScoreAlwaysInRange(t *testing.T) {
	engine := NewFusionEngine()
	probabilities := []float64{-1, 0, 0.3, 0.55, 0.65, 0.9, 1, 2}
	trusts := []*domain.IdentitySignal{nil, identity(0), identity(20), identity(60), identity(85), identity(100)}
	vetoes := []domain.VetoSignal{{}, {Score: 90}, fatalVeto()}

	for _, p := range probabilities {
		for _, id := range trusts {
			for _, veto := range vetoes {
				report := engine.Fuse(FusionInput{OracleProbability: p, Identity: id, Veto: veto})
				assert.GreaterOrEqual(t, report.FinalScore, 0)
				assert.LessOrEqual(t, report.FinalScore, 100)
				assert.NotEmpty(t, report.Reasons)
				if veto.Fatal {
					assert.Equal(t, 100, report.FinalScore)
				}
			}
		}
	}
}

func TestFusionEngine_Idempotent(t *testing.T) {
	engine := NewFusionEngine()
	input := FusionInput{
		OracleProbability: 0.66,
		Veto:              domain.VetoSignal{Score: 30, Triggers: []domain.VetoTrigger{{Kind: domain.TriggerSuspicious, Pattern: "telegram", Match: "telegram"}}},
		Identity:          identity(45),
		Auxiliary:         []domain.AuxSignal{{Source: domain.AuxDomainAge, Score: 40, Reason: "young domain"}},
		EvidenceCount:     2,
		Text:              "some evidence text",
		LinksFound:        true,
	}

	assert.Equal(t, engine.Fuse(input), engine.Fuse(input))
}

func TestFusionEngine_Confidence(t *testing.T) {
	engine := NewFusionEngine()
	expected := map[int]domain.Confidence{
		0: domain.ConfidenceLow,
		1: domain.ConfidenceLow,
		2: domain.ConfidenceHigh,
		3: domain.ConfidenceExtreme,
	}
	for count, want := range expected {
		report := engine.Fuse(FusionInput{OracleProbability: 0.9, EvidenceCount: count})
		assert.Equal(t, want, report.Confidence, "evidence count %d", count)
	}
}

func TestFusionEngine_IdentityReasons(t *testing.T) {
	engine := NewFusionEngine()

	verified := &domain.IdentitySignal{Email: "sarah@microsoft.com", TrustScore: 100, Verdict: domain.IdentityVerified}
	report := engine.Fuse(FusionInput{OracleProbability: 0.1, Identity: verified})
	require.Len(t, report.Reasons, 1)
	assert.Equal(t, domain.ReasonVerifiedSender, report.Reasons[0].Kind)
	assert.Equal(t, "Verified sender: sarah@microsoft.com", report.Reasons[0].Message)

	// Trusted but not perfect: validator findings are not surfaced
	trusted := &domain.IdentitySignal{Email: "a@b.com", TrustScore: 85, Reasons: []string{"hidden"}}
	report = engine.Fuse(FusionInput{OracleProbability: 0.1, Identity: trusted})
	assert.NotContains(t, report.ReasonMessages(), "hidden")
}

func TestFusionEngine_IdentityAlertMessage(t *testing.T) {
	engine := NewFusionEngine()

	tests := []struct {
		name     string
		verdict  domain.IdentityVerdict
		expected string
	}{
		{name: "Free-mail recruiter", verdict: domain.IdentityFatal, expected: "Identity alert: fake or free-mail sender address"},
		{name: "Malformed address", verdict: domain.IdentityInvalid, expected: "Identity alert: malformed sender address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal := &domain.IdentitySignal{Email: "x@y.com", TrustScore: 0, Verdict: tt.verdict}
			report := engine.Fuse(FusionInput{OracleProbability: 0.1, Identity: signal})

			require.NotEmpty(t, report.Reasons)
			assert.Equal(t, domain.ReasonIdentityAlert, report.Reasons[0].Kind)
			assert.Equal(t, tt.expected, report.Reasons[0].Message)
			assert.Equal(t, 100, report.FinalScore)
		})
	}
}

func TestFusionEngine_LinkNoticeAndNotices(t *testing.T) {
	engine := NewFusionEngine()
	notice := domain.Reason{Kind: domain.ReasonDegraded, Message: "Text classifier unavailable"}

	report := engine.Fuse(FusionInput{OracleProbability: 0.75, LinksFound: true, Notices: []domain.Reason{notice}})

	kinds := make([]domain.ReasonKind, 0)
	for _, r := range report.Reasons {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []domain.ReasonKind{domain.ReasonLinks, domain.ReasonDegraded}, kinds)

	report = engine.Fuse(FusionInput{OracleProbability: 0.65, LinksFound: true})
	assert.NotContains(t, report.ReasonMessages(), "Suspicious links detected in the evidence")
}

func TestFusionEngine_DefaultReasons(t *testing.T) {
	engine := NewFusionEngine()

	assert.Equal(t, "No threats detected", engine.Fuse(FusionInput{OracleProbability: 0.1}).Reasons[0].Message)
	assert.Equal(t, "Content is ambiguous, proceed with caution", engine.Fuse(FusionInput{OracleProbability: 0.5}).Reasons[0].Message)
	assert.Equal(t, "Text classifier detected high-risk scam patterns", engine.Fuse(FusionInput{OracleProbability: 0.95}).Reasons[0].Message)
}

func TestFusionEngine_Preview(t *testing.T) {
	engine := NewFusionEngine()
	long := strings.Repeat("é", 500)

	report := engine.Fuse(FusionInput{Text: long})

	assert.Equal(t, 300, len([]rune(report.TextPreview)))
}

func TestFusionEngine_NoEvidence(t *testing.T) {
	report := NewFusionEngine().NoEvidence()

	assert.Equal(t, 0, report.FinalScore)
	assert.Equal(t, domain.LabelSafe, report.Label)
	assert.Equal(t, domain.ColorGreen, report.Color)
	assert.Equal(t, domain.ConfidenceLow, report.Confidence)
	assert.Equal(t, []string{"No evidence supplied"}, report.ReasonMessages())
}
