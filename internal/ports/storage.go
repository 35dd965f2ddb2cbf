package ports

import (
	"context"

	"github.com/fjd/job-scam-detector/internal/domain"
)

// ReportLog defines the contract for the append-only report store.
// Writes are fire-and-forget from the caller's point of view.
type ReportLog interface {
	// Append stores one finished report together with the text it was computed from
	Append(ctx context.Context, record domain.ReportRecord) error

	// Lifecycle
	Close() error
}

// ReportReader queries the report log
type ReportReader interface {
	// HighRisk returns the most recent HIGH RISK reports, newest first
	HighRisk(ctx context.Context, limit int) ([]domain.FusedReport, error)
}
