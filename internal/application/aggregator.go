package application

import (
	"context"
	"strings"
	"time"

	"github.com/fjd/job-scam-detector/internal/domain"
	"github.com/fjd/job-scam-detector/internal/domain/detection"
	"github.com/fjd/job-scam-detector/internal/metrics"
	"github.com/fjd/job-scam-detector/internal/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Aggregator extracts text from every evidence item of a bundle
//
// Error handling strategy:
//   - Items are extracted concurrently and buffered per slot, then joined in
//     image, document, link order
//   - A failing extractor yields empty text for its item and a warning log;
//     the aggregator itself never fails
//   - A missing extractor is treated like a failing one
type Aggregator struct {
	ocr     ports.ImageOCR
	docs    ports.DocumentParser
	recon   ports.LinkRecon
	timeout time.Duration
	log     *zap.SugaredLogger
	metrics *metrics.Metrics
}

// NewAggregator creates a new evidence aggregator
func NewAggregator(
	ocr ports.ImageOCR,
	docs ports.DocumentParser,
	recon ports.LinkRecon,
	timeout time.Duration,
	log *zap.SugaredLogger,
	m *metrics.Metrics,
) *Aggregator {
	return &Aggregator{
		ocr:     ocr,
		docs:    docs,
		recon:   recon,
		timeout: timeout,
		log:     log,
		metrics: m,
	}
}

// Aggregate returns the text of every item that produced any, plus the raw
// URL tokens found in that text
func (a *Aggregator) Aggregate(ctx context.Context, bundle domain.EvidenceBundle) domain.ExtractedText {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	kinds := []domain.EvidenceKind{domain.EvidenceImage, domain.EvidenceDocument, domain.EvidenceLink}
	texts := make([]string, len(kinds))

	// Extractors degrade on their own; only cancellation of the request reaches Wait
	g, gctx := errgroup.WithContext(ctx)
	if bundle.Image != nil {
		g.Go(func() error {
			texts[0] = a.image(gctx, *bundle.Image)
			return gctx.Err()
		})
	}
	if bundle.Document != nil {
		g.Go(func() error {
			texts[1] = a.document(gctx, *bundle.Document)
			return gctx.Err()
		})
	}
	if bundle.Link != "" {
		g.Go(func() error {
			texts[2] = a.link(gctx, bundle.Link)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		a.degraded("extraction", "bundle", err)
	}

	out := domain.ExtractedText{Segments: make([]domain.TextSegment, 0, len(kinds))}
	for i, kind := range kinds {
		if texts[i] != "" {
			out.Segments = append(out.Segments, domain.TextSegment{Source: kind, Text: texts[i]})
		}
	}
	for _, seg := range out.Segments {
		out.URLs = append(out.URLs, detection.FindURLs(seg.Text)...)
	}
	return out
}

func (a *Aggregator) image(ctx context.Context, blob domain.Blob) string {
	if a.ocr == nil {
		a.degraded("ocr", blob.Filename, errMissingExtractor)
		return ""
	}
	text, err := a.ocr.ExtractText(ctx, blob)
	if err != nil {
		a.degraded("ocr", blob.Filename, err)
		return ""
	}
	return strings.TrimSpace(text)
}

func (a *Aggregator) document(ctx context.Context, blob domain.Blob) string {
	// Screenshots are often uploaded through the document picker
	if blob.IsImage() {
		return a.image(ctx, blob)
	}
	if a.docs == nil {
		a.degraded("document", blob.Filename, errMissingExtractor)
		return ""
	}
	text, err := a.docs.ExtractText(ctx, blob)
	if err != nil {
		a.degraded("document", blob.Filename, err)
		return ""
	}
	return strings.TrimSpace(text)
}

// link returns the URL itself followed by the page title and body.
// The URL is kept even when the page cannot be fetched.
func (a *Aggregator) link(ctx context.Context, link string) string {
	link = strings.TrimSpace(link)
	if a.recon == nil {
		return link
	}
	page, err := a.recon.Fetch(ctx, link)
	if err != nil {
		a.degraded("recon", link, err)
		return link
	}

	parts := []string{link}
	for _, s := range []string{page.Title, page.Body} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func (a *Aggregator) degraded(source, item string, err error) {
	a.log.Warnw("Evidence extraction failed", "source", source, "item", item, "error", err)
	a.metrics.ObserveDegraded(source)
}
