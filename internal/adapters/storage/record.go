package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjd/job-scam-detector/internal/domain"
)

// encodedRecord is a report record flattened for column or field storage
type encodedRecord struct {
	ID               string
	CreatedAt        time.Time
	Score            int
	Label            string
	Color            string
	Confidence       string
	Reasons          []byte // JSON array of {kind, message}
	Evidence         []byte // JSON array of evidence kinds
	DocumentFilename string
	TextPreview      string
	Text             string
}

func encodeRecord(rec domain.ReportRecord) (encodedRecord, error) {
	r := rec.Report

	reasons := r.Reasons
	if reasons == nil {
		reasons = []domain.Reason{}
	}
	reasonsJSON, err := json.Marshal(reasons)
	if err != nil {
		return encodedRecord{}, fmt.Errorf("failed to marshal reasons: %w", err)
	}

	evidence := r.Evidence
	if evidence == nil {
		evidence = []domain.EvidenceKind{}
	}
	evidenceJSON, err := json.Marshal(evidence)
	if err != nil {
		return encodedRecord{}, fmt.Errorf("failed to marshal evidence kinds: %w", err)
	}

	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return encodedRecord{
		ID:               r.ID.String(),
		CreatedAt:        createdAt.UTC(),
		Score:            r.FinalScore,
		Label:            string(r.Label),
		Color:            string(r.Color),
		Confidence:       string(r.Confidence),
		Reasons:          reasonsJSON,
		Evidence:         evidenceJSON,
		DocumentFilename: rec.DocumentFilename,
		TextPreview:      r.TextPreview,
		Text:             rec.Text,
	}, nil
}

// streamValues is the field map written to a Redis stream entry
func (e encodedRecord) streamValues() map[string]any {
	return map[string]any{
		"id":                e.ID,
		"created_at":        e.CreatedAt.Format(time.RFC3339Nano),
		"score":             e.Score,
		"label":             e.Label,
		"color":             e.Color,
		"confidence":        e.Confidence,
		"reasons":           string(e.Reasons),
		"evidence":          string(e.Evidence),
		"document_filename": e.DocumentFilename,
		"text":              e.Text,
	}
}
