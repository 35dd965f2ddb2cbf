package detection

import (
	"context"

	"github.com/fjd/job-scam-detector/internal/domain"
	"github.com/fjd/job-scam-detector/internal/ports"
)

// BlacklistStrategy flags links that appear on the known-scam list
type BlacklistStrategy struct {
	blacklist ports.Blacklist
}

// NewBlacklistStrategy creates a new blacklist lookup strategy
func NewBlacklistStrategy(blacklist ports.Blacklist) *BlacklistStrategy {
	return &BlacklistStrategy{blacklist: blacklist}
}

// Name returns the strategy name
func (s *BlacklistStrategy) Name() string {
	return "Link Blacklist"
}

// Collect checks the submitted link against the blacklist
func (s *BlacklistStrategy) Collect(_ context.Context, input SignalInput) *domain.AuxSignal {
	if input.Bundle.Link == "" || s.blacklist == nil {
		return nil
	}
	if !s.blacklist.Contains(input.Bundle.Link) {
		return nil
	}
	return &domain.AuxSignal{
		Source: domain.AuxBlacklist,
		Score:  100,
		Reason: "Link is on the scam blacklist",
	}
}
