package detection

import (
	"context"
	"fmt"
	"math"

	"github.com/fjd/job-scam-detector/internal/domain"
	"github.com/fjd/job-scam-detector/internal/ports"
)

// ContentReconStrategy scores the text of the linked page with the classifier
type ContentReconStrategy struct {
	oracle ports.TextProbabilityOracle
}

// NewContentReconStrategy creates a new linked-page content strategy
func NewContentReconStrategy(oracle ports.TextProbabilityOracle) *ContentReconStrategy {
	return &ContentReconStrategy{oracle: oracle}
}

// Name returns the strategy name
func (s *ContentReconStrategy) Name() string {
	return "Content Recon"
}

// Collect feeds the link-derived text to the oracle. The page is fetched once
// by the evidence aggregator; this strategy never goes to the network itself.
func (s *ContentReconStrategy) Collect(ctx context.Context, input SignalInput) *domain.AuxSignal {
	text := input.Extracted.Source(domain.EvidenceLink)
	if text == "" || s.oracle == nil {
		return nil
	}

	p, err := s.oracle.Predict(ctx, text)
	if err != nil {
		return nil
	}

	score := int(math.Round(clampFloat(p, 0, 1) * 100))
	signal := &domain.AuxSignal{Source: domain.AuxContentRecon, Score: score}
	if score > 50 {
		signal.Reason = fmt.Sprintf("Linked page content scored %d%% scam likelihood", score)
	}
	return signal
}
