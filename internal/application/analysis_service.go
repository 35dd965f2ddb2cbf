package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fjd/job-scam-detector/internal/domain"
	"github.com/fjd/job-scam-detector/internal/domain/detection"
	"github.com/fjd/job-scam-detector/internal/metrics"
	"github.com/fjd/job-scam-detector/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errMissingExtractor = errors.New("extractor not configured")

// Options tunes the analysis service
type Options struct {
	// NeutralProbability replaces the classifier output when it fails
	NeutralProbability float64
	// SignalTimeout bounds the classifier, identity and auxiliary lookups
	SignalTimeout time.Duration
	// WriteTimeout bounds one background report write
	WriteTimeout time.Duration
}

// AnalysisService orchestrates evidence extraction, signal collection and fusion
type AnalysisService struct {
	aggregator *Aggregator
	oracle     ports.TextProbabilityOracle
	veto       *detection.VetoEngine
	identity   *detection.IdentityValidator
	strategies []detection.SignalStrategy
	fusion     *detection.FusionEngine

	// reports may be nil, in which case nothing is persisted
	reports ports.ReportLog

	opts    Options
	log     *zap.SugaredLogger
	metrics *metrics.Metrics
	now     func() time.Time

	pending sync.WaitGroup
}

// NewAnalysisService creates a new analysis service with dependency injection
func NewAnalysisService(
	aggregator *Aggregator,
	oracle ports.TextProbabilityOracle,
	veto *detection.VetoEngine,
	identity *detection.IdentityValidator,
	strategies []detection.SignalStrategy,
	fusion *detection.FusionEngine,
	reports ports.ReportLog,
	opts Options,
	log *zap.SugaredLogger,
	m *metrics.Metrics,
) *AnalysisService {
	return &AnalysisService{
		aggregator: aggregator,
		oracle:     oracle,
		veto:       veto,
		identity:   identity,
		strategies: strategies,
		fusion:     fusion,
		reports:    reports,
		opts:       opts,
		log:        log,
		metrics:    m,
		now:        time.Now,
	}
}

// Analyze produces a report for the bundle. It never fails: every
// collaborator error degrades to a weaker signal and an audit reason.
func (s *AnalysisService) Analyze(ctx context.Context, bundle domain.EvidenceBundle) domain.FusedReport {
	start := s.now()

	if bundle.IsEmpty() {
		report := s.stamp(s.fusion.NoEvidence(), bundle, start)
		s.finish(report, "", nil, start)
		return report
	}

	extracted := s.aggregator.Aggregate(ctx, bundle)
	text := extracted.Combined()

	input := s.collect(ctx, bundle, extracted, text)
	report := s.stamp(s.fusion.Fuse(input), bundle, start)

	s.finish(report, text, bundle.Document, start)
	return report
}

// Wait blocks until every background report write has finished
func (s *AnalysisService) Wait() {
	s.pending.Wait()
}

// collect runs the independent signal producers concurrently
func (s *AnalysisService) collect(ctx context.Context, bundle domain.EvidenceBundle, extracted domain.ExtractedText, text string) detection.FusionInput {
	if s.opts.SignalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.SignalTimeout)
		defer cancel()
	}

	input := detection.FusionInput{
		EvidenceCount: bundle.Count(),
		Text:          text,
		LinksFound:    len(extracted.URLs) > 0,
	}

	// Producers degrade on their own; only cancellation of the request reaches Wait
	g, gctx := errgroup.WithContext(ctx)
	var (
		probability float64
		notice      *domain.Reason
		identity    *domain.IdentitySignal
	)
	aux := make([]*domain.AuxSignal, len(s.strategies))

	g.Go(func() error {
		probability, notice = s.predict(gctx, text)
		return gctx.Err()
	})

	if email := detection.FindEmail(text); email != "" && s.identity != nil {
		g.Go(func() error {
			signal := s.identity.Validate(gctx, email, text)
			identity = &signal
			return gctx.Err()
		})
	}

	signalInput := detection.SignalInput{Bundle: bundle, Extracted: extracted}
	for i, strategy := range s.strategies {
		i, strategy := i, strategy
		g.Go(func() error {
			aux[i] = strategy.Collect(gctx, signalInput)
			return gctx.Err()
		})
	}

	input.Veto = s.veto.Scan(text)
	if err := g.Wait(); err != nil {
		s.log.Warnw("Signal collection cut short", "error", err)
		s.metrics.ObserveDegraded("signals")
	}

	input.OracleProbability = probability
	input.Identity = identity
	for _, signal := range aux {
		if signal != nil {
			input.Auxiliary = append(input.Auxiliary, *signal)
		}
	}
	if notice != nil {
		input.Notices = append(input.Notices, *notice)
	}
	return input
}

// predict returns the classifier probability and, when the classifier could
// not be used, the notice explaining why
func (s *AnalysisService) predict(ctx context.Context, text string) (float64, *domain.Reason) {
	if strings.TrimSpace(text) == "" {
		return 0, &domain.Reason{
			Kind:    domain.ReasonDegraded,
			Message: "No readable text could be extracted from the evidence",
		}
	}

	p, err := s.oracle.Predict(ctx, text)
	if err != nil {
		s.log.Warnw("Text classifier failed, using neutral probability",
			"neutral", s.opts.NeutralProbability, "error", err)
		s.metrics.ObserveDegraded("oracle")
		return s.opts.NeutralProbability, &domain.Reason{
			Kind:    domain.ReasonDegraded,
			Message: "Text classifier unavailable, neutral score used",
		}
	}
	return p, nil
}

func (s *AnalysisService) stamp(report domain.FusedReport, bundle domain.EvidenceBundle, at time.Time) domain.FusedReport {
	report.ID = uuid.New()
	report.CreatedAt = at.UTC()
	report.Evidence = bundle.Kinds()
	return report
}

func (s *AnalysisService) finish(report domain.FusedReport, text string, document *domain.Blob, start time.Time) {
	s.metrics.ObserveReport(string(report.Label), s.now().Sub(start))
	s.log.Infow("Analysis complete",
		"id", report.ID,
		"score", report.FinalScore,
		"label", report.Label,
		"confidence", report.Confidence,
		"reasons", len(report.Reasons),
	)

	if s.reports == nil {
		return
	}
	record := domain.ReportRecord{Report: report, Text: text}
	if document != nil {
		record.DocumentFilename = document.Filename
	}

	// Fire and forget: a logging failure never reaches the caller
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx := context.Background()
		if s.opts.WriteTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.opts.WriteTimeout)
			defer cancel()
		}
		if err := s.reports.Append(ctx, record); err != nil {
			s.log.Warnw("Failed to persist report", "id", report.ID, "error", err)
			s.metrics.ObserveDegraded("storage")
		}
	}()
}
