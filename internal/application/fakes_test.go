package application

import (
	"context"
	"errors"
	"sync"

	"github.com/fjd/job-scam-detector/internal/domain"
	"github.com/fjd/job-scam-detector/internal/ports"
)

var errExtraction = errors.New("extraction failed")

type fakeExtractor struct {
	text string
	err  error
	mu   sync.Mutex
	seen []string
}

func (f *fakeExtractor) ExtractText(_ context.Context, blob domain.Blob) (string, error) {
	f.mu.Lock()
	f.seen = append(f.seen, blob.Filename)
	f.mu.Unlock()
	return f.text, f.err
}

type fakeRecon struct {
	page ports.PageContent
	err  error
}

func (f *fakeRecon) Fetch(context.Context, string) (ports.PageContent, error) {
	return f.page, f.err
}

// blockingRecon waits for the request to be cancelled
type blockingRecon struct{}

func (blockingRecon) Fetch(ctx context.Context, _ string) (ports.PageContent, error) {
	<-ctx.Done()
	return ports.PageContent{}, ctx.Err()
}

type fakeOracle struct {
	probability float64
	err         error
	mu          sync.Mutex
	texts       []string
}

func (f *fakeOracle) Predict(_ context.Context, text string) (float64, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	return f.probability, f.err
}

type fakeResolver struct {
	status ports.MXStatus
}

func (f fakeResolver) LookupMX(context.Context, string) ports.MXStatus {
	return f.status
}

type fakeReportLog struct {
	mu      sync.Mutex
	records []domain.ReportRecord
	err     error
}

func (f *fakeReportLog) Append(_ context.Context, rec domain.ReportRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeReportLog) Close() error { return nil }
