package detection

import (
	"context"

	"github.com/fjd/job-scam-detector/internal/domain"
)

// SignalStrategy defines the interface every auxiliary signal collector implements
//
// Each collector looks at one aspect of the evidence (link blacklist, domain
// age, linked page content, uploaded file name) and reports a score
// contribution. The fusion engine treats all of them uniformly.
type SignalStrategy interface {
	// Collect returns a signal, or nil when the collector has nothing to say
	// or its upstream lookup was unavailable
	Collect(ctx context.Context, input SignalInput) *domain.AuxSignal

	// Name returns the human-readable name of this collector
	Name() string
}

// SignalInput is what auxiliary collectors may inspect
type SignalInput struct {
	Bundle    domain.EvidenceBundle
	Extracted domain.ExtractedText
}
