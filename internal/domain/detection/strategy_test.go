package detection

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fjd/job-scam-detector/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvidenceFileStrategy(t *testing.T) {
	strategy := NewEvidenceFileStrategy()

	tests := []struct {
		name          string
		filename      string
		expectedScore int
		expectSignal  bool
	}{
		{name: "Executable", filename: "offer_letter.exe", expectedScore: 90, expectSignal: true},
		{name: "Double extension executable", filename: "Offer_Letter.PDF.exe", expectedScore: 90, expectSignal: true},
		{name: "Double extension document", filename: "offer.pdf.docx", expectedScore: 85, expectSignal: true},
		{name: "Plain PDF", filename: "offer_letter.pdf", expectSignal: false},
		{name: "Dotted name", filename: "offer.v2.pdf", expectSignal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := SignalInput{Bundle: domain.EvidenceBundle{
				Document: &domain.Blob{Filename: tt.filename, Data: []byte("x")},
			}}

			signal := strategy.Collect(context.Background(), input)

			if !tt.expectSignal {
				assert.Nil(t, signal)
				return
			}
			require.NotNil(t, signal)
			assert.Equal(t, tt.expectedScore, signal.Score)
			assert.Equal(t, domain.AuxEvidenceFile, signal.Source)
			assert.Contains(t, signal.Reason, tt.filename)
		})
	}

	assert.Nil(t, strategy.Collect(context.Background(), SignalInput{}))
}

type fakeBlacklist map[string]bool

func (f fakeBlacklist) Contains(link string) bool {
	return f[link]
}

func TestBlacklistStrategy(t *testing.T) {
	strategy := NewBlacklistStrategy(fakeBlacklist{"http://scam.example": true})

	signal := strategy.Collect(context.Background(), SignalInput{Bundle: domain.EvidenceBundle{Link: "http://scam.example"}})
	require.NotNil(t, signal)
	assert.Equal(t, 100, signal.Score)

	assert.Nil(t, strategy.Collect(context.Background(), SignalInput{Bundle: domain.EvidenceBundle{Link: "http://fine.example"}}))
	assert.Nil(t, strategy.Collect(context.Background(), SignalInput{}))
}

type fakeAgeLookup struct {
	created time.Time
	err     error
	domain  string
}

func (f *fakeAgeLookup) CreatedAt(_ context.Context, domain string) (time.Time, error) {
	f.domain = domain
	return f.created, f.err
}

func TestDomainAgeStrategy(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		age           time.Duration
		err           error
		expectSignal  bool
		expectedScore int
		expectReason  bool
	}{
		{name: "Registered last week", age: 7 * 24 * time.Hour, expectSignal: true, expectedScore: 70, expectReason: true},
		{name: "Three months old", age: 90 * 24 * time.Hour, expectSignal: true, expectedScore: 40, expectReason: true},
		{name: "Established", age: 5 * 365 * 24 * time.Hour, expectSignal: true, expectedScore: 0},
		{name: "Lookup failed", err: errors.New("whois timeout")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := &fakeAgeLookup{created: now.Add(-tt.age), err: tt.err}
			strategy := NewDomainAgeStrategy(lookup)
			strategy.now = func() time.Time { return now }

			signal := strategy.Collect(context.Background(), SignalInput{
				Bundle: domain.EvidenceBundle{Link: "https://www.Jobs-Now.example/apply"},
			})

			assert.Equal(t, "jobs-now.example", lookup.domain)
			if !tt.expectSignal {
				assert.Nil(t, signal)
				return
			}
			require.NotNil(t, signal)
			assert.Equal(t, tt.expectedScore, signal.Score)
			assert.Equal(t, tt.expectReason, signal.Reason != "")
		})
	}
}

func TestLinkHost(t *testing.T) {
	assert.Equal(t, "example.com", LinkHost("https://www.example.com/path?q=1"))
	assert.Equal(t, "example.com", LinkHost("www.example.com"))
	assert.Equal(t, "sub.example.com", LinkHost("SUB.Example.com:8080/x"))
	assert.Equal(t, "", LinkHost("   "))
}

type fakeOracle struct {
	probability float64
	err         error
	calls       int
	lastText    string
}

func (f *fakeOracle) Predict(_ context.Context, text string) (float64, error) {
	f.calls++
	f.lastText = text
	return f.probability, f.err
}

func TestContentReconStrategy(t *testing.T) {
	linkText := domain.ExtractedText{Segments: []domain.TextSegment{
		{Source: domain.EvidenceImage, Text: "screenshot text"},
		{Source: domain.EvidenceLink, Text: "page title and body"},
	}}

	t.Run("high probability adds reason", func(t *testing.T) {
		oracle := &fakeOracle{probability: 0.83}
		signal := NewContentReconStrategy(oracle).Collect(context.Background(), SignalInput{Extracted: linkText})

		require.NotNil(t, signal)
		assert.Equal(t, 83, signal.Score)
		assert.True(t, strings.Contains(signal.Reason, "83%"))
		assert.Equal(t, "page title and body", oracle.lastText)
	})

	t.Run("low probability has no reason", func(t *testing.T) {
		signal := NewContentReconStrategy(&fakeOracle{probability: 0.2}).Collect(context.Background(), SignalInput{Extracted: linkText})

		require.NotNil(t, signal)
		assert.Equal(t, 20, signal.Score)
		assert.Empty(t, signal.Reason)
	})

	t.Run("oracle error drops the signal", func(t *testing.T) {
		signal := NewContentReconStrategy(&fakeOracle{err: errors.New("down")}).Collect(context.Background(), SignalInput{Extracted: linkText})
		assert.Nil(t, signal)
	})

	t.Run("no link text skips the oracle", func(t *testing.T) {
		oracle := &fakeOracle{probability: 0.9}
		signal := NewContentReconStrategy(oracle).Collect(context.Background(), SignalInput{})

		assert.Nil(t, signal)
		assert.Zero(t, oracle.calls)
	})
}
